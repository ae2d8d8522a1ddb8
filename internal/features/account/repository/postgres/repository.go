package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"finance-tracker-backend/internal/features/account/models"
	"finance-tracker-backend/internal/features/account/repository"

	"github.com/lib/pq"
)

const accountColumns = `
	id, email, hashed_password, full_name, language, currency,
	telegram_chat_id, is_registered_from_telegram, is_active, created_at,
	is_subscribed, subscription_id, subscription_start, subscription_end,
	order_id, provider_order_id, cancel_at_period_end`

type postgresRepository struct {
	db *sql.DB
	// isUniqueViolation распознает нарушение UNIQUE у текущего драйвера
	isUniqueViolation func(error) bool
}

func NewPostgresRepository(db *sql.DB) repository.AccountRepository {
	return &postgresRepository{db: db, isUniqueViolation: isUniqueViolation}
}

// Create создает аккаунт и заполняет ID
func (r *postgresRepository) Create(ctx context.Context, account *models.Account) error {
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO users (
			email, hashed_password, full_name, language, currency,
			telegram_chat_id, is_registered_from_telegram, is_active, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		account.Email,
		nullString(account.HashedPassword),
		nullString(account.FullName),
		account.Language,
		account.Currency,
		nullString(account.TelegramChatID),
		account.IsRegisteredFromTelegram,
		account.IsActive,
		account.CreatedAt,
	).Scan(&account.ID)
	if err != nil {
		if r.isUniqueViolation(err) {
			return repository.ErrEmailTaken
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetByID получает аккаунт по ID
func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	return r.getOne(ctx, "id = $1", id)
}

// GetByEmail получает аккаунт по email
func (r *postgresRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.getOne(ctx, "email = $1", email)
}

// GetByTelegramChatID получает аккаунт, привязанный к чату бота
func (r *postgresRepository) GetByTelegramChatID(ctx context.Context, chatID string) (*models.Account, error) {
	return r.getOne(ctx, "telegram_chat_id = $1", chatID)
}

func (r *postgresRepository) getOne(ctx context.Context, where string, arg interface{}) (*models.Account, error) {
	query := "SELECT " + accountColumns + " FROM users WHERE " + where + " ORDER BY id LIMIT 1"

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return account, nil
}

// UpdateProfile обновляет имя, язык и валюту
func (r *postgresRepository) UpdateProfile(ctx context.Context, id int64, update models.ProfileUpdate) error {
	set := newSetBuilder()
	if update.FullName != nil {
		set.add("full_name", *update.FullName)
	}
	if update.Language != nil {
		set.add("language", *update.Language)
	}
	if update.Currency != nil {
		set.add("currency", *update.Currency)
	}

	return r.update(ctx, id, set)
}

// UpdateSubscription записывает только заданные поля подписки
func (r *postgresRepository) UpdateSubscription(ctx context.Context, id int64, update models.SubscriptionUpdate) error {
	set := newSetBuilder()
	if update.IsSubscribed != nil {
		set.add("is_subscribed", *update.IsSubscribed)
	}
	if update.SubscriptionStart != nil {
		set.add("subscription_start", update.SubscriptionStart.UTC())
	}
	if update.SubscriptionEnd != nil {
		set.add("subscription_end", update.SubscriptionEnd.UTC())
	}
	if update.OrderID != nil {
		set.add("order_id", nullString(*update.OrderID))
	}
	if update.ProviderOrderID != nil {
		set.add("provider_order_id", nullString(*update.ProviderOrderID))
	}
	if update.CancelAtPeriodEnd != nil {
		set.add("cancel_at_period_end", *update.CancelAtPeriodEnd)
	}

	return r.update(ctx, id, set)
}

func (r *postgresRepository) update(ctx context.Context, id int64, set *setBuilder) error {
	if len(set.columns) == 0 {
		return nil
	}

	// id идет последним параметром, чтобы номера плейсхолдеров шли по порядку
	args := append(set.args, id)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(set.columns, ", "), len(args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return repository.ErrAccountNotFound
	}

	return nil
}

// ExpireSubscriptions снимает подписку с истекших отмененных аккаунтов
func (r *postgresRepository) ExpireSubscriptions(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE users
		SET is_subscribed = $1
		WHERE is_subscribed = $2
			AND cancel_at_period_end = $3
			AND subscription_end IS NOT NULL
			AND subscription_end < $4
	`

	result, err := r.db.ExecContext(ctx, query, false, true, true, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to expire subscriptions: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

type setBuilder struct {
	columns []string
	args    []interface{}
}

func newSetBuilder() *setBuilder {
	return &setBuilder{}
}

func (b *setBuilder) add(column string, value interface{}) {
	b.args = append(b.args, value)
	b.columns = append(b.columns, fmt.Sprintf("%s = $%d", column, len(b.args)))
}

func scanAccount(row *sql.Row) (*models.Account, error) {
	var (
		account                                  models.Account
		hashedPassword, fullName, chatID         sql.NullString
		subscriptionID, orderID, providerOrderID sql.NullString
		subscriptionStart, subscriptionEnd       sql.NullTime
	)

	err := row.Scan(
		&account.ID, &account.Email, &hashedPassword, &fullName, &account.Language, &account.Currency,
		&chatID, &account.IsRegisteredFromTelegram, &account.IsActive, &account.CreatedAt,
		&account.IsSubscribed, &subscriptionID, &subscriptionStart, &subscriptionEnd,
		&orderID, &providerOrderID, &account.CancelAtPeriodEnd,
	)
	if err != nil {
		return nil, err
	}

	account.HashedPassword = hashedPassword.String
	account.FullName = fullName.String
	account.TelegramChatID = chatID.String
	account.SubscriptionID = subscriptionID.String
	account.OrderID = orderID.String
	account.ProviderOrderID = providerOrderID.String
	if subscriptionStart.Valid {
		t := subscriptionStart.Time
		account.SubscriptionStart = &t
	}
	if subscriptionEnd.Valid {
		t := subscriptionEnd.Time
		account.SubscriptionEnd = &t
	}

	return &account, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// isUniqueViolation проверяет SQLSTATE 23505 (unique_violation)
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
