package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Logger пишет строку на каждый запрос. Пробы и вебхуки с секретом в пути
// логируются без секрета.
func Logger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			event = logger.Error()
		case status >= http.StatusBadRequest:
			event = logger.Warn()
		case isProbe(c.Request.URL.Path):
			event = logger.Debug()
		default:
			event = logger.Info()
		}

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		event.
			Str("request_id", getRequestID(c)).
			Str("method", c.Request.Method).
			Str("route", route).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Int("body_size", c.Writer.Size())
		if userID := getUserID(c); userID != 0 {
			event.Int64("user_id", userID)
		}
		event.Msg("Request processed")
	}
}

func isProbe(path string) bool {
	switch strings.TrimSuffix(path, "/") {
	case "/ping", "/health", "/live", "/ready":
		return true
	}
	return false
}
