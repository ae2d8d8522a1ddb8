package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"finance-tracker-backend/internal/features/account/models"
	"finance-tracker-backend/internal/features/account/repository"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL UNIQUE,
			hashed_password TEXT,
			full_name TEXT,
			language TEXT NOT NULL DEFAULT 'en',
			currency TEXT NOT NULL DEFAULT 'USD',
			telegram_chat_id TEXT,
			is_registered_from_telegram BOOLEAN NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT 1,
			created_at TIMESTAMP NOT NULL,
			is_subscribed BOOLEAN NOT NULL DEFAULT 0,
			subscription_id TEXT,
			subscription_start TIMESTAMP,
			subscription_end TIMESTAMP,
			order_id TEXT,
			provider_order_id TEXT,
			cancel_at_period_end BOOLEAN NOT NULL DEFAULT 0
		)
	`)
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })
	return db
}

// newTestRepo подменяет распознавание UNIQUE на коды sqlite
func newTestRepo(t *testing.T) repository.AccountRepository {
	t.Helper()
	repo := NewPostgresRepository(setupTestDB(t))
	repo.(*postgresRepository).isUniqueViolation = func(err error) bool {
		var sqliteErr sqlite3.Error
		return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return repo
}

func newAccount(email string) *models.Account {
	return &models.Account{
		Email:     email,
		Language:  "en",
		Currency:  "USD",
		IsActive:  true,
		CreatedAt: time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC),
	}
}

func TestCreateAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	account := newAccount("alice@example.com")
	account.TelegramChatID = "555"
	account.IsRegisteredFromTelegram = true
	require.NoError(t, repo.Create(ctx, account))
	assert.NotZero(t, account.ID)

	byID, err := repo.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", byID.Email)
	assert.Equal(t, "", byID.HashedPassword)
	assert.True(t, byID.IsRegisteredFromTelegram)
	assert.False(t, byID.IsSubscribed)
	assert.Nil(t, byID.SubscriptionEnd)

	byChat, err := repo.GetByTelegramChatID(ctx, "555")
	require.NoError(t, err)
	assert.Equal(t, account.ID, byChat.ID)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrAccountNotFound)
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newAccount("dup@example.com")))
	err := repo.Create(ctx, newAccount("dup@example.com"))
	assert.ErrorIs(t, err, repository.ErrEmailTaken)
}

func TestUpdateSubscription_OnlyGivenFields(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	account := newAccount("sub@example.com")
	require.NoError(t, repo.Create(ctx, account))

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	subscribed, cancel := true, false
	orderID, providerID := "order-1", "liq-1"

	require.NoError(t, repo.UpdateSubscription(ctx, account.ID, models.SubscriptionUpdate{
		IsSubscribed:      &subscribed,
		SubscriptionStart: &start,
		SubscriptionEnd:   &end,
		OrderID:           &orderID,
		ProviderOrderID:   &providerID,
		CancelAtPeriodEnd: &cancel,
	}))

	// отмена продления не трогает остальные поля
	cancel = true
	require.NoError(t, repo.UpdateSubscription(ctx, account.ID, models.SubscriptionUpdate{CancelAtPeriodEnd: &cancel}))

	got, err := repo.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, got.IsSubscribed)
	assert.True(t, got.CancelAtPeriodEnd)
	assert.Equal(t, "order-1", got.OrderID)
	assert.Equal(t, "liq-1", got.ProviderOrderID)
	require.NotNil(t, got.SubscriptionEnd)
	assert.True(t, end.Equal(*got.SubscriptionEnd))

	err = repo.UpdateSubscription(ctx, 999, models.SubscriptionUpdate{CancelAtPeriodEnd: &cancel})
	assert.ErrorIs(t, err, repository.ErrAccountNotFound)
}

func TestUpdateProfile(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	account := newAccount("profile@example.com")
	require.NoError(t, repo.Create(ctx, account))

	name, currency := "Alice", "EUR"
	require.NoError(t, repo.UpdateProfile(ctx, account.ID, models.ProfileUpdate{FullName: &name, Currency: &currency}))

	got, err := repo.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.FullName)
	assert.Equal(t, "EUR", got.Currency)
	assert.Equal(t, "en", got.Language)

	// пустое обновление ничего не делает
	assert.NoError(t, repo.UpdateProfile(ctx, account.ID, models.ProfileUpdate{}))
}

func TestExpireSubscriptions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	subscribe := func(email string, end time.Time, cancel bool) int64 {
		account := newAccount(email)
		require.NoError(t, repo.Create(ctx, account))
		yes := true
		require.NoError(t, repo.UpdateSubscription(ctx, account.ID, models.SubscriptionUpdate{
			IsSubscribed:      &yes,
			SubscriptionEnd:   &end,
			CancelAtPeriodEnd: &cancel,
		}))
		return account.ID
	}

	expired := subscribe("expired@example.com", now.Add(-time.Hour), true)
	renewing := subscribe("renewing@example.com", now.Add(-time.Hour), false)
	stillPaid := subscribe("paid@example.com", now.Add(time.Hour), true)

	count, err := repo.ExpireSubscriptions(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	for id, want := range map[int64]bool{expired: false, renewing: true, stillPaid: true} {
		got, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got.IsSubscribed, "account %d", id)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("UNIQUE constraint failed: users.email")))
}
