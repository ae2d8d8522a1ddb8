package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_URL", "https://finance.example.com/")
	t.Setenv("LIQPAY_WEBHOOK_SECRET", "liq")
	t.Setenv("TELEGRAM_WEBHOOK_SECRET", "tg")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTokenTTL)
	assert.Equal(t, 24*time.Hour, cfg.Bot.SessionTTL)
	assert.Equal(t, "4.99", cfg.Billing.Amount.StringFixed(2))
	assert.Equal(t, "https://finance.example.com/api/billing/webhook/liq", cfg.BillingWebhookURL())
	assert.Equal(t, "https://finance.example.com/webhook/tg", cfg.TelegramWebhookURL())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("BOT_SESSION_TTL", "2h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 2*time.Hour, cfg.Bot.SessionTTL)
	assert.Equal(t, 5, cfg.Postgres.ConnectAttempts)
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("PORT", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}
