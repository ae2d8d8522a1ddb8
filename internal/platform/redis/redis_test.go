package redis

import (
	"context"
	"strconv"
	"testing"
	"time"

	"finance-tracker-backend/internal/common/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	client, err := Open(context.Background(), config.RedisConfig{Host: mr.Host(), Port: port, DialTimeout: time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.HealthCheck(context.Background()))
	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	mr.CheckGet(t, "k", "v")
}

func TestOpen_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	port, _ := strconv.Atoi(mr.Port())
	mr.Close()

	_, err := Open(context.Background(), config.RedisConfig{Host: "127.0.0.1", Port: port, DialTimeout: 200 * time.Millisecond})
	assert.Error(t, err)

	_, err = Open(context.Background(), config.RedisConfig{})
	assert.Error(t, err)
}
