package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"finance-tracker-backend/internal/features/billing/models"
	"finance-tracker-backend/internal/features/billing/repository"
)

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) repository.OrderRepository {
	return &postgresRepository{db: db}
}

// Create сохраняет заказ до того, как запрос уйдет в LiqPay
func (r *postgresRepository) Create(ctx context.Context, order *models.Order) error {
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO orders (user_id, order_id, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query, order.UserID, order.Key, order.CreatedAt.UTC()).Scan(&order.ID)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

// GetByKey ищет заказ по order_id из колбэка
func (r *postgresRepository) GetByKey(ctx context.Context, key string) (*models.Order, error) {
	query := "SELECT id, user_id, order_id, created_at FROM orders WHERE order_id = $1"

	var order models.Order
	err := r.db.QueryRowContext(ctx, query, key).Scan(&order.ID, &order.UserID, &order.Key, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return &order, nil
}
