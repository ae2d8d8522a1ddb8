package repository

import (
	"context"
	"errors"

	"finance-tracker-backend/internal/features/billing/models"
)

var ErrOrderNotFound = errors.New("order not found")

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByKey(ctx context.Context, key string) (*models.Order, error)
}
