package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ServerConfig holds settings for the bot process.
type ServerConfig struct {
	// WebhookPort is the listen port for the inbound webhook server.
	WebhookPort int `mapstructure:"webhook_port" yaml:"webhook_port"`

	// DBPath is the SQLite database file for the unified inbox.
	DBPath string `mapstructure:"db_path" yaml:"db_path"`

	// ActionsPath is the JSON document of outbound action definitions.
	ActionsPath string `mapstructure:"actions_path" yaml:"actions_path"`

	// SystemPromptPath is the base system prompt markdown file.
	SystemPromptPath string `mapstructure:"system_prompt_path" yaml:"system_prompt_path"`

	// ContextDir holds additional *.md files appended to the system prompt.
	ContextDir string `mapstructure:"context_dir" yaml:"context_dir"`

	// AllowedUsers are the Telegram user IDs permitted to talk to the bot.
	// Empty means anyone.
	AllowedUsers []int64 `mapstructure:"allowed_users" yaml:"allowed_users"`
}

// AIConfig holds model settings for the assistant backends.
type AIConfig struct {
	ClaudeModel string `mapstructure:"claude_model" yaml:"claude_model"`
	GeminiModel string `mapstructure:"gemini_model" yaml:"gemini_model"`
	MaxTokens   int    `mapstructure:"max_tokens" yaml:"max_tokens"`

	// MaxHistory bounds the retained conversation turns per user session.
	MaxHistory int `mapstructure:"max_history" yaml:"max_history"`
}

// PollerConfig holds settings for the standalone poller process.
type PollerConfig struct {
	// StatePath is the SQLite database file holding per-source cursors.
	StatePath string `mapstructure:"state_path" yaml:"state_path"`

	// BotURL is the base URL of the bot's webhook server.
	BotURL string `mapstructure:"bot_url" yaml:"bot_url"`

	// MastodonInstance is the Mastodon server base URL; empty disables
	// the Mastodon source.
	MastodonInstance string `mapstructure:"mastodon_instance" yaml:"mastodon_instance"`

	// BlueskyHandle is the Bluesky account handle; empty disables the
	// Bluesky source.
	BlueskyHandle string `mapstructure:"bluesky_handle" yaml:"bluesky_handle"`

	// IMAP settings for the email source; empty host disables it.
	IMAPHost     string `mapstructure:"imap_host" yaml:"imap_host"`
	IMAPPort     string `mapstructure:"imap_port" yaml:"imap_port"`
	IMAPUsername string `mapstructure:"imap_username" yaml:"imap_username"`
	IMAPTLS      bool   `mapstructure:"imap_tls" yaml:"imap_tls"`
}

// AppConfig is the top-level application configuration shared by the bot
// and poller binaries. Secrets (API keys, tokens, the webhook secret) are
// never stored here; they resolve through the credential package.
type AppConfig struct {
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	AI     AIConfig     `mapstructure:"ai" yaml:"ai"`
	Poller PollerConfig `mapstructure:"poller" yaml:"poller"`
}

// DefaultConfigPath returns the default configuration file location,
// ~/.config/hypersecretary/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "hypersecretary", "config.yaml")
}

func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			WebhookPort:      8080,
			DBPath:           filepath.Join("data", "inbox.db"),
			ActionsPath:      "actions.json",
			SystemPromptPath: "system_prompt.md",
			ContextDir:       "context",
		},
		AI: AIConfig{
			ClaudeModel: "claude-sonnet-4-20250514",
			GeminiModel: "gemini-2.5-flash",
			MaxTokens:   4096,
			MaxHistory:  20,
		},
		Poller: PollerConfig{
			StatePath: filepath.Join("data", "poller_state.db"),
			IMAPPort:  "993",
			IMAPTLS:   true,
		},
	}
}

// LoadConfig reads configuration from the given YAML file using Viper.
// A missing file yields the default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("server.webhook_port", 8080)
	v.SetDefault("server.db_path", filepath.Join("data", "inbox.db"))
	v.SetDefault("server.actions_path", "actions.json")
	v.SetDefault("server.system_prompt_path", "system_prompt.md")
	v.SetDefault("server.context_dir", "context")
	v.SetDefault("ai.claude_model", "claude-sonnet-4-20250514")
	v.SetDefault("ai.gemini_model", "gemini-2.5-flash")
	v.SetDefault("ai.max_tokens", 4096)
	v.SetDefault("ai.max_history", 20)
	v.SetDefault("poller.state_path", filepath.Join("data", "poller_state.db"))
	v.SetDefault("poller.imap_port", "993")
	v.SetDefault("poller.imap_tls", true)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
