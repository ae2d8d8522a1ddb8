package telegram

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// API is the part of *tgbotapi.BotAPI the service uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// RPSError представляет ошибку превышения лимита запросов
type RPSError struct {
	RetryAfter time.Duration
}

func (e *RPSError) Error() string {
	return fmt.Sprintf("telegram rate limit exceeded, retry after %s", e.RetryAfter)
}

type Client struct {
	api    API
	logger zerolog.Logger
}

// NewBotAPI создает клиента Bot API с таймаутом запросов
func NewBotAPI(token string, timeout time.Duration, debug bool) (*tgbotapi.BotAPI, error) {
	if token == "" {
		return nil, errors.New("telegram bot token is empty")
	}

	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to create bot api: %w", err)
	}
	bot.Debug = debug

	return bot, nil
}

func NewClient(api API, logger zerolog.Logger) *Client {
	return &Client{
		api:    api,
		logger: logger,
	}
}

// Send отправляет сообщение и переводит 429 в RPSError
func (c *Client) Send(msg tgbotapi.Chattable) error {
	if _, err := c.api.Send(msg); err != nil {
		return c.translate("send message", err)
	}
	return nil
}

// SetWebhook регистрирует адрес вебхука бота
func (c *Client) SetWebhook(url string) error {
	webhook, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("invalid webhook url: %w", err)
	}

	resp, err := c.api.Request(webhook)
	if err != nil {
		return c.translate("set webhook", err)
	}
	if !resp.Ok {
		return fmt.Errorf("set webhook rejected: %s", resp.Description)
	}

	c.logger.Info().Str("url", url).Msg("Telegram webhook registered")
	return nil
}

func (c *Client) translate(operation string, err error) error {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		c.logger.Warn().Int("retry_after", apiErr.RetryAfter).Str("operation", operation).Msg("Telegram rate limit hit")
		return &RPSError{RetryAfter: time.Duration(apiErr.RetryAfter) * time.Second}
	}
	return fmt.Errorf("failed to %s: %w", operation, err)
}
