// Command socialpoller runs one polling cycle across the configured
// notification sources and exits. It is intended to be invoked by an
// external scheduler (cron, CI workflow) every few minutes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hypersec/hypersecretary/internal/credential"
	"github.com/hypersec/hypersecretary/internal/logging"
	"github.com/hypersec/hypersecretary/internal/model"
	"github.com/hypersec/hypersecretary/internal/source"
	"github.com/hypersec/hypersecretary/internal/source/bluesky"
	"github.com/hypersec/hypersecretary/internal/source/email"
	"github.com/hypersec/hypersecretary/internal/source/mastodon"
	"github.com/hypersec/hypersecretary/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", model.DefaultConfigPath(),
		"path to the configuration file")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	_ = godotenv.Load()

	log, err := logging.New(*verbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	cfg, err := model.LoadConfig(*configPath)
	if err != nil {
		return err
	}

	botURL := cfg.Poller.BotURL
	if botURL == "" {
		botURL = os.Getenv("WEBHOOK_URL")
	}
	webhookSecret := credential.Resolve("webhook_secret")
	if botURL == "" || webhookSecret == "" {
		return fmt.Errorf("bot URL and WEBHOOK_SECRET are required")
	}

	cursors, err := store.NewSQLiteStore(cfg.Poller.StatePath)
	if err != nil {
		return err
	}
	defer func() { _ = cursors.Close() }()

	adapters := buildAdapters(cfg, log)
	if len(adapters) == 0 {
		log.Warn("no sources configured, nothing to poll")
		return nil
	}

	forwarder := source.NewHTTPForwarder(botURL, webhookSecret)
	poller := source.NewPoller(cursors, forwarder, log)
	return poller.RunAll(context.Background(), adapters)
}

// buildAdapters assembles one adapter per configured source. A source
// missing its settings or credentials is skipped with a log line.
func buildAdapters(cfg *model.AppConfig, log *zap.Logger) []source.Adapter {
	var adapters []source.Adapter

	if cfg.Poller.MastodonInstance != "" {
		token := credential.Resolve("mastodon_token")
		if token == "" {
			log.Info("mastodon skipped: no token configured")
		} else {
			client := mastodon.NewClient(cfg.Poller.MastodonInstance, token)
			adapters = append(adapters, mastodon.NewAdapter(client))
		}
	}

	if cfg.Poller.BlueskyHandle != "" {
		password := credential.Resolve("bluesky_password")
		if password == "" {
			log.Info("bluesky skipped: no app password configured")
		} else {
			client := bluesky.NewClient(cfg.Poller.BlueskyHandle, password)
			adapters = append(adapters, bluesky.NewAdapter(client))
		}
	}

	if cfg.Poller.IMAPHost != "" {
		password := credential.Resolve("imap_password")
		if password == "" {
			log.Info("email skipped: no IMAP password configured")
		} else {
			client := email.NewIMAPClient(
				cfg.Poller.IMAPHost, cfg.Poller.IMAPPort,
				cfg.Poller.IMAPUsername, password, cfg.Poller.IMAPTLS)
			adapters = append(adapters, email.NewAdapter(client))
		}
	}

	return adapters
}
