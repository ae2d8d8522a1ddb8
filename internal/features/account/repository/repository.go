package repository

import (
	"context"
	"errors"
	"time"

	"finance-tracker-backend/internal/features/account/models"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrEmailTaken      = errors.New("email already registered")
)

type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByTelegramChatID(ctx context.Context, chatID string) (*models.Account, error)
	UpdateProfile(ctx context.Context, id int64, update models.ProfileUpdate) error
	UpdateSubscription(ctx context.Context, id int64, update models.SubscriptionUpdate) error
	// ExpireSubscriptions снимает подписку у аккаунтов, отменивших продление,
	// если оплаченный период закончился до now
	ExpireSubscriptions(ctx context.Context, now time.Time) (int64, error)
}
