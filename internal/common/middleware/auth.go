package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"finance-tracker-backend/internal/common/errors"
	"finance-tracker-backend/internal/features/account/models"
)

const (
	accountKey = "account"
	userIDKey  = "user_id"
)

type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*models.Account, error)
}

// RequireAuth проверяет Bearer токен и кладет аккаунт в контекст
func RequireAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			Fail(c, errors.NewUnauthorizedError("bearer token required"))
			return
		}

		account, err := auth.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			Fail(c, err)
			return
		}

		c.Set(accountKey, account)
		c.Set(userIDKey, account.ID)
		c.Next()
	}
}

// RequireSubscription пропускает только аккаунты с активной подпиской
func RequireSubscription() gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := CurrentAccount(c)
		if !ok {
			Fail(c, errors.NewUnauthorizedError("bearer token required"))
			return
		}

		if !account.IsSubscribed {
			Fail(c, errors.New(errors.ErrCodeSubscriptionRequired, "Active subscription required"))
			return
		}

		c.Next()
	}
}

// CurrentAccount возвращает аккаунт, установленный RequireAuth
func CurrentAccount(c *gin.Context) (*models.Account, bool) {
	value, exists := c.Get(accountKey)
	if !exists {
		return nil, false
	}
	account, ok := value.(*models.Account)
	return account, ok
}
