package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"finance-tracker-backend/internal/features/transaction/models"
	"finance-tracker-backend/internal/features/transaction/repository"

	"github.com/shopspring/decimal"
)

const transactionColumns = "id, user_id, type, amount, currency, category, tx_date, created_at"

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) repository.TransactionRepository {
	return &postgresRepository{db: db}
}

// Create сохраняет операцию и заполняет ID
func (r *postgresRepository) Create(ctx context.Context, tx *models.Transaction) error {
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO transactions (user_id, type, amount, currency, category, tx_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		tx.UserID, string(tx.Type), tx.Amount, tx.Currency, tx.Category, tx.TxDate.UTC(), tx.CreatedAt.UTC(),
	).Scan(&tx.ID)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// GetByID получает операцию владельца
func (r *postgresRepository) GetByID(ctx context.Context, userID, id int64) (*models.Transaction, error) {
	query := "SELECT " + transactionColumns + " FROM transactions WHERE user_id = $1 AND id = $2"

	var tx models.Transaction
	err := r.db.QueryRowContext(ctx, query, userID, id).Scan(
		&tx.ID, &tx.UserID, &tx.Type, &tx.Amount, &tx.Currency, &tx.Category, &tx.TxDate, &tx.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return &tx, nil
}

// Delete удаляет операцию владельца
func (r *postgresRepository) Delete(ctx context.Context, userID, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM transactions WHERE user_id = $1 AND id = $2", userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return repository.ErrTransactionNotFound
	}

	return nil
}

// List возвращает операции владельца по фильтру
func (r *postgresRepository) List(ctx context.Context, userID int64, filter models.ListFilter) ([]*models.Transaction, error) {
	where := newWhere(userID)
	if filter.Type != "" {
		where.add("type = $%d", string(filter.Type))
	}
	where.period(filter.Period)

	order := "ASC"
	if filter.Desc {
		order = "DESC"
	}

	query := fmt.Sprintf("SELECT %s FROM transactions WHERE %s ORDER BY tx_date %s, id %s",
		transactionColumns, where.sql(), order, order)

	args := where.args
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]*models.Transaction, 0)
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Type, &tx.Amount, &tx.Currency, &tx.Category, &tx.TxDate, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, &tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return transactions, nil
}

// Sum считает сумму операций типа за период
func (r *postgresRepository) Sum(ctx context.Context, userID int64, txType models.Type, period models.Period) (decimal.Decimal, error) {
	where := newWhere(userID)
	where.add("type = $%d", string(txType))
	where.period(period)

	query := "SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE " + where.sql()

	var total decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, where.args...).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum transactions: %w", err)
	}

	return total, nil
}

// DailyTotals группирует суммы операций типа по дням
func (r *postgresRepository) DailyTotals(ctx context.Context, userID int64, txType models.Type, period models.Period) ([]models.DailyTotal, error) {
	where := newWhere(userID)
	where.add("type = $%d", string(txType))
	where.period(period)

	query := fmt.Sprintf(`
		SELECT DATE(tx_date) AS day, SUM(amount)
		FROM transactions
		WHERE %s
		GROUP BY DATE(tx_date)
		ORDER BY day ASC
	`, where.sql())

	rows, err := r.db.QueryContext(ctx, query, where.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to group transactions: %w", err)
	}
	defer rows.Close()

	totals := make([]models.DailyTotal, 0)
	for rows.Next() {
		var (
			day    string
			amount decimal.Decimal
		)
		if err := rows.Scan(&day, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan daily total: %w", err)
		}
		// postgres отдает date как timestamp, sqlite как строку
		if len(day) > 10 {
			day = day[:10]
		}
		totals = append(totals, models.DailyTotal{Date: day, Amount: amount})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate daily totals: %w", err)
	}

	return totals, nil
}

// where собирает условия с плейсхолдерами по порядку
type where struct {
	clauses []string
	args    []interface{}
}

func newWhere(userID int64) *where {
	w := &where{}
	w.add("user_id = $%d", userID)
	return w
}

func (w *where) add(clause string, arg interface{}) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, fmt.Sprintf(clause, len(w.args)))
}

func (w *where) period(p models.Period) {
	if !p.From.IsZero() {
		w.add("tx_date >= $%d", p.From.UTC())
	}
	if !p.To.IsZero() {
		w.add("tx_date <= $%d", p.To.UTC())
	}
}

func (w *where) sql() string {
	return strings.Join(w.clauses, " AND ")
}
