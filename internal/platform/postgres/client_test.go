package postgres

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostOf(t *testing.T) {
	assert.Equal(t, "db:5432", hostOf("postgres://user:secret@db:5432/finance?sslmode=disable"))
	assert.Equal(t, "unknown", hostOf("host=db user=postgres"))
	assert.Equal(t, "unknown", hostOf("::"))
}

func TestWaitReady(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	c := &Client{db: db, log: zerolog.Nop()}
	require.NoError(t, c.waitReady(context.Background(), 0))
	require.NoError(t, c.HealthCheck(context.Background()))
}
