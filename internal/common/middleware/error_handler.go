package middleware

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"finance-tracker-backend/internal/common/errors"
)

const (
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
)

// ErrorHandler восстанавливается после паники и отвечает 500
func ErrorHandler(logger zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error().
			Str("request_id", getRequestID(c)).
			Str("method", c.Request.Method).
			Str("route", c.FullPath()).
			Interface("panic", recovered).
			Bytes("stack", debug.Stack()).
			Msg("Panic recovered")

		appErr := errors.New(errors.ErrCodeInternal, "Internal server error").
			WithDetail("panic", fmt.Sprintf("%v", recovered))
		sendErrorResponse(c, appErr, logger)
	})
}

// RequestID берет X-Request-ID клиента или выдает новый
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.NewString()
		}

		c.Set(requestIDKey, requestID)
		c.Header(requestIDHeader, requestID)
		c.Next()
	}
}

type ErrorResponse struct {
	Success   bool             `json:"success"`
	Error     *errors.AppError `json:"error"`
	Timestamp time.Time        `json:"timestamp"`
	RequestID string           `json:"request_id"`
	Path      string           `json:"path,omitempty"`
	Method    string           `json:"method,omitempty"`
}

// Errors рендерит последнюю ошибку, переданную через Fail. Ответ, уже
// записанный обработчиком, не трогается.
func Errors(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		appErr, ok := errors.AsAppError(err)
		if !ok {
			appErr = errors.Wrap(err, errors.ErrCodeInternal, "Handler error occurred")
		}
		sendErrorResponse(c, appErr.WithUserID(getUserID(c)), logger)
	}
}

// Fail прерывает цепочку и передает ошибку в Errors
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func sendErrorResponse(c *gin.Context, appErr *errors.AppError, logger zerolog.Logger) {
	requestID := getRequestID(c)
	appErr.WithRequestID(requestID)

	logError(appErr, logger, c)

	c.AbortWithStatusJSON(HTTPStatus(appErr), ErrorResponse{
		Success:   false,
		Error:     appErr,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
		Path:      c.Request.URL.Path,
		Method:    c.Request.Method,
	})
}

// HTTPStatus возвращает HTTP статус для ошибки
func HTTPStatus(appErr *errors.AppError) int {
	return appErr.HTTPStatus()
}

func logError(appErr *errors.AppError, logger zerolog.Logger, c *gin.Context) {
	var event *zerolog.Event
	switch appErr.Class() {
	case errors.ClassInternal, errors.ClassUnavailable:
		event = logger.Error().Str("caller", appErr.Caller)
	case errors.ClassAuth:
		event = logger.Warn()
	default:
		event = logger.Info()
	}

	event = event.
		Str("request_id", appErr.RequestID).
		Str("method", c.Request.Method).
		Str("route", c.FullPath()).
		Str("error_code", string(appErr.Code)).
		Str("error_message", appErr.Message)

	if appErr.UserID != 0 {
		event = event.Int64("user_id", appErr.UserID)
	}
	if len(appErr.Details) > 0 {
		event = event.Interface("details", appErr.Details)
	}
	if appErr.Cause != nil {
		event = event.AnErr("cause", appErr.Cause)
	}

	event.Msg("Request failed")
}

func getRequestID(c *gin.Context) string {
	if id := c.GetString(requestIDKey); id != "" {
		return id
	}
	return "unknown"
}

func getUserID(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}
