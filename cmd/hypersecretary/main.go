// Command hypersecretary runs the bot process: the Telegram command
// loop and the webhook ingestion server, sharing one inbox store.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hypersec/hypersecretary/internal/action"
	"github.com/hypersec/hypersecretary/internal/assistant"
	"github.com/hypersec/hypersecretary/internal/credential"
	"github.com/hypersec/hypersecretary/internal/logging"
	"github.com/hypersec/hypersecretary/internal/model"
	"github.com/hypersec/hypersecretary/internal/server"
	"github.com/hypersec/hypersecretary/internal/store"
	"github.com/hypersec/hypersecretary/internal/telegram"
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

	telegramToken := credential.Resolve("telegram_token")
	if telegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is not configured")
	}
	anthropicKey := credential.Resolve("anthropic_api_key")
	if anthropicKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is not configured")
	}
	googleKey := credential.Resolve("google_api_key")
	if googleKey == "" {
		return fmt.Errorf("GOOGLE_API_KEY is not configured")
	}
	webhookSecret := credential.Resolve("webhook_secret")
	if webhookSecret == "" {
		return fmt.Errorf("WEBHOOK_SECRET is not configured")
	}

	inbox, err := store.NewSQLiteStore(cfg.Server.DBPath)
	if err != nil {
		return err
	}
	defer func() { _ = inbox.Close() }()

	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := action.LoadRegistry(cfg.Server.ActionsPath, log)
	executor := action.NewExecutor(registry, log)
	processor := action.NewProcessor(executor)

	prompts := assistant.BuildPrompts(
		cfg.Server.SystemPromptPath, cfg.Server.ContextDir, registry)
	sessions := assistant.NewSessionStore(cfg.AI.MaxHistory)
	assist := assistant.New(sessions, prompts, processor, log)

	claude := assistant.NewClaudeClient(
		anthropicKey, cfg.AI.ClaudeModel, cfg.AI.MaxTokens)
	gemini, err := assistant.NewGeminiClient(
		ctx, googleKey, cfg.AI.GeminiModel, cfg.AI.MaxTokens)
	if err != nil {
		return err
	}

	bot := telegram.NewBot(
		telegram.NewClient(telegramToken),
		inbox, assist, claude, gemini,
		registry, executor,
		cfg.Server.AllowedUsers, log)

	router := server.New(inbox, bot, webhookSecret, log)

	errCh := make(chan error, 2)
	go func() {
		log.Info("webhook server listening",
			zap.Int("port", cfg.Server.WebhookPort))
		errCh <- server.Run(router, cfg.Server.WebhookPort)
	}()
	go func() {
		log.Info("telegram bot polling",
			zap.Int("allowed_users", len(cfg.Server.AllowedUsers)))
		errCh <- bot.Run(ctx)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
		return nil
	case err := <-errCh:
		return err
	}
}
