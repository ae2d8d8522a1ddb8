package main

import (
	"fmt"
	"os"
	"time"

	"finance-tracker-backend/internal/common/config"
	"finance-tracker-backend/internal/common/logger"
	"finance-tracker-backend/internal/platform/telegram"
)

// Регистрирует вебхук бота по адресу SERVER_URL/webhook/<secret>
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.ServiceName, cfg.Debug)
	log := logger.Component("setwebhook")

	if cfg.Telegram.BotToken == "" || cfg.Telegram.WebhookSecret == "" {
		log.Fatal().Msg("TELEGRAM_BOT_TOKEN and TELEGRAM_WEBHOOK_SECRET must be set")
	}

	botAPI, err := telegram.NewBotAPI(cfg.Telegram.BotToken, 10*time.Second, cfg.Telegram.Debug)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Telegram bot")
	}

	if err := telegram.NewClient(botAPI, log).SetWebhook(cfg.TelegramWebhookURL()); err != nil {
		log.Fatal().Err(err).Msg("Failed to set webhook")
	}
}
