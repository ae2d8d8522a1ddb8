package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"finance-tracker-backend/internal/common/config"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

const pingTimeout = 5 * time.Second

// Client owns the connection pool shared by all repositories.
type Client struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewClient открывает пул и ждет, пока база начнет отвечать
func NewClient(ctx context.Context, cfg config.PostgresConfig, log zerolog.Logger) (*Client, error) {
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	c := &Client{db: db, log: log.With().Str("db_host", hostOf(cfg.URL)).Logger()}
	if err := c.waitReady(ctx, cfg.ConnectAttempts); err != nil {
		_ = db.Close()
		return nil, err
	}

	c.log.Info().
		Int("max_open_conns", cfg.MaxOpenConns).
		Int("max_idle_conns", cfg.MaxIdleConns).
		Msg("PostgreSQL client initialized")

	return c, nil
}

// waitReady пингует базу с линейно растущей паузой между попытками
func (c *Client) waitReady(ctx context.Context, attempts int) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err = c.db.PingContext(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		delay := time.Duration(attempt) * time.Second
		c.log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", delay).Msg("Database is not ready")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("failed to ping database after %d attempts: %w", attempts, err)
}

func (c *Client) GetDB() *sql.DB {
	return c.db
}

func (c *Client) Close() error {
	return c.db.Close()
}

// HealthCheck используется readiness пробой
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// hostOf достает хост из DSN, чтобы не писать пароль в лог
func hostOf(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}
