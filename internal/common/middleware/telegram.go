package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	"finance-tracker-backend/internal/common/errors"
)

const (
	InitDataHeader  = "init_data"
	telegramUserKey = "telegram_user"
)

// TelegramInitData проверяет подпись init data мини-приложения и кладет
// пользователя Telegram в контекст
func TelegramInitData(botToken string, expIn time.Duration, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		initDataQuery := c.GetHeader(InitDataHeader)
		if initDataQuery == "" {
			Fail(c, errors.NewUnauthorizedError("Telegram init data required"))
			return
		}

		if botToken == "" {
			logger.Error().Msg("Telegram bot token is not configured")
			Fail(c, errors.New(errors.ErrCodeServiceUnavailable, "Telegram login is not configured"))
			return
		}

		if err := initdata.Validate(initDataQuery, botToken, expIn); err != nil {
			logger.Debug().Err(err).Msg("Init data validation failed")
			Fail(c, errors.NewUnauthorizedError("invalid init data"))
			return
		}

		parsedData, err := initdata.Parse(initDataQuery)
		if err != nil {
			Fail(c, errors.NewBadRequestError("failed to parse init data"))
			return
		}

		logger.Debug().Int64("telegram_user_id", parsedData.User.ID).Msg("Init data validated")

		c.Set(telegramUserKey, parsedData.User)
		c.Next()
	}
}

// TelegramUser возвращает пользователя, установленный TelegramInitData
func TelegramUser(c *gin.Context) (initdata.User, bool) {
	value, exists := c.Get(telegramUserKey)
	if !exists {
		return initdata.User{}, false
	}
	user, ok := value.(initdata.User)
	return user, ok
}
