package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finance-tracker-backend/internal/common/errors"
	"finance-tracker-backend/internal/features/account/models"
)

type fakeAuthenticator struct {
	accounts map[string]*models.Account
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, token string) (*models.Account, error) {
	if account, ok := f.accounts[token]; ok {
		return account, nil
	}
	return nil, errors.NewUnauthorizedError("could not validate credentials")
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	auth := &fakeAuthenticator{accounts: map[string]*models.Account{
		"free": {ID: 1, Email: "free@example.com"},
		"paid": {ID: 2, Email: "paid@example.com", IsSubscribed: true},
	}}

	router := gin.New()
	router.Use(RequestID(), ErrorHandler(zerolog.Nop()), Errors(zerolog.Nop()))
	router.GET("/me", RequireAuth(auth), func(c *gin.Context) {
		account, _ := CurrentAccount(c)
		c.JSON(http.StatusOK, gin.H{"id": account.ID})
	})
	router.GET("/premium", RequireAuth(auth), RequireSubscription(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})
	router.GET("/plain-error", func(c *gin.Context) {
		_ = c.Error(assert.AnError)
	})
	return router
}

func do(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	router := newRouter()

	w := do(router, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = do(router, "/me", "unknown")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, errors.ErrCodeUnauthorized, resp.Error.Code)

	w = do(router, "/me", "free")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":1}`, w.Body.String())
}

func TestRequireSubscription(t *testing.T) {
	router := newRouter()

	w := do(router, "/premium", "free")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), string(errors.ErrCodeSubscriptionRequired))

	w = do(router, "/premium", "paid")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestErrorHandler_RecoversPanic(t *testing.T) {
	w := do(newRouter(), "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), string(errors.ErrCodeInternal))
}

func TestErrors_WrapsPlainError(t *testing.T) {
	w := do(newRouter(), "/plain-error", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Handler error occurred")
}

func TestTelegramInitData_Rejects(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Errors(zerolog.Nop()))
	router.POST("/tg", TelegramInitData("123:token", 0, zerolog.Nop()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/tg", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/tg", nil)
	req.Header.Set(InitDataHeader, "query_id=1&user=%7B%22id%22%3A1%7D&auth_date=1&hash=deadbeef")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusConflict, HTTPStatus(errors.New(errors.ErrCodeEmailTaken, "taken")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(errors.NewTransactionNotFoundError(1)))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(errors.NewExternalAPIError("liqpay", assert.AnError)))
}

func TestLogger_HidesPathSecrets(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer

	router := gin.New()
	router.Use(RequestID(), Logger(zerolog.New(&buf)))
	router.POST("/webhook/:secret", func(c *gin.Context) {
		c.Set(userIDKey, int64(42))
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/webhook/top-secret", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "/webhook/:secret", entry["route"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, float64(42), entry["user_id"])
	assert.NotContains(t, buf.String(), "top-secret")
}

func TestLogger_ProbesAtDebug(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer

	router := gin.New()
	router.Use(Logger(zerolog.New(&buf).Level(zerolog.InfoLevel)))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Empty(t, buf.String())
}
