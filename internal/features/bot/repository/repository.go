package repository

import (
	"context"

	"finance-tracker-backend/internal/features/bot/models"
)

// SessionStore keeps dialogue sessions by chat id. Get returns nil, nil for
// a chat without a live session.
type SessionStore interface {
	Get(ctx context.Context, chatID int64) (*models.Session, error)
	Save(ctx context.Context, chatID int64, session *models.Session) error
	Delete(ctx context.Context, chatID int64) error
}
