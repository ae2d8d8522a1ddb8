package repository

import (
	"context"
	"errors"

	"finance-tracker-backend/internal/features/transaction/models"

	"github.com/shopspring/decimal"
)

var ErrTransactionNotFound = errors.New("transaction not found")

type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	// GetByID и Delete видят только операции владельца
	GetByID(ctx context.Context, userID, id int64) (*models.Transaction, error)
	Delete(ctx context.Context, userID, id int64) error
	List(ctx context.Context, userID int64, filter models.ListFilter) ([]*models.Transaction, error)
	Sum(ctx context.Context, userID int64, txType models.Type, period models.Period) (decimal.Decimal, error)
	DailyTotals(ctx context.Context, userID int64, txType models.Type, period models.Period) ([]models.DailyTotal, error)
}
