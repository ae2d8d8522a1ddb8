package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finance-tracker-backend/internal/features/bot/models"
	"finance-tracker-backend/internal/features/bot/repository"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

// SessionStore keeps dialogue sessions in Redis as msgpack with a TTL.
type SessionStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

var _ repository.SessionStore = (*SessionStore)(nil)

func NewSessionStore(client redis.Cmdable, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) key(chatID int64) string {
	return fmt.Sprintf("bot:session:%d", chatID)
}

// Get returns the session or nil when it is missing or expired.
func (s *SessionStore) Get(ctx context.Context, chatID int64) (*models.Session, error) {
	b, err := s.client.Get(ctx, s.key(chatID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session models.Session
	if err := msgpack.Unmarshal(b, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &session, nil
}

// Save stores the session and restarts its TTL.
func (s *SessionStore) Save(ctx context.Context, chatID int64, session *models.Session) error {
	if session.UpdatedAt.IsZero() {
		session.UpdatedAt = time.Now().UTC()
	}
	b, err := msgpack.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(chatID), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, chatID int64) error {
	if err := s.client.Del(ctx, s.key(chatID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
