package service

import (
	"bytes"
	"context"
	"sort"
	"testing"
	"time"

	"finance-tracker-backend/internal/common/cache"
	apperrors "finance-tracker-backend/internal/common/errors"
	"finance-tracker-backend/internal/features/transaction/models"
	"finance-tracker-backend/internal/features/transaction/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type memoryRepo struct {
	items  []*models.Transaction
	nextID int64
}

func (r *memoryRepo) Create(_ context.Context, tx *models.Transaction) error {
	r.nextID++
	tx.ID = r.nextID
	stored := *tx
	r.items = append(r.items, &stored)
	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, userID, id int64) (*models.Transaction, error) {
	for _, tx := range r.items {
		if tx.ID == id && tx.UserID == userID {
			return tx, nil
		}
	}
	return nil, repository.ErrTransactionNotFound
}

func (r *memoryRepo) Delete(_ context.Context, userID, id int64) error {
	for i, tx := range r.items {
		if tx.ID == id && tx.UserID == userID {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return repository.ErrTransactionNotFound
}

func inPeriod(tx *models.Transaction, p models.Period) bool {
	if !p.From.IsZero() && tx.TxDate.Before(p.From) {
		return false
	}
	if !p.To.IsZero() && tx.TxDate.After(p.To) {
		return false
	}
	return true
}

func (r *memoryRepo) List(_ context.Context, userID int64, f models.ListFilter) ([]*models.Transaction, error) {
	var out []*models.Transaction
	for _, tx := range r.items {
		if tx.UserID == userID && (f.Type == "" || tx.Type == f.Type) && inPeriod(tx, f.Period) {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if f.Desc {
			return out[i].TxDate.After(out[j].TxDate)
		}
		return out[i].TxDate.Before(out[j].TxDate)
	})
	if f.Offset >= len(out) {
		return []*models.Transaction{}, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *memoryRepo) Sum(_ context.Context, userID int64, txType models.Type, p models.Period) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, tx := range r.items {
		if tx.UserID == userID && tx.Type == txType && inPeriod(tx, p) {
			total = total.Add(tx.Amount)
		}
	}
	return total, nil
}

func (r *memoryRepo) DailyTotals(_ context.Context, userID int64, txType models.Type, p models.Period) ([]models.DailyTotal, error) {
	byDay := map[string]decimal.Decimal{}
	for _, tx := range r.items {
		if tx.UserID == userID && tx.Type == txType && inPeriod(tx, p) {
			d := tx.TxDate.Format("2006-01-02")
			byDay[d] = byDay[d].Add(tx.Amount)
		}
	}
	out := make([]models.DailyTotal, 0, len(byDay))
	for d, amount := range byDay {
		out = append(out, models.DailyTotal{Date: d, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

type memoryCache struct {
	values      map[string]*models.Analytics
	invalidated []int64
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	v, ok := c.values[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	*dest.(*models.Analytics) = *v
	return nil
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.values[key] = value.(*models.Analytics)
	return nil
}

func (c *memoryCache) InvalidateAccountCache(_ context.Context, userID int64) error {
	c.invalidated = append(c.invalidated, userID)
	delete(c.values, cache.AnalyticsKey(userID))
	return nil
}

var fixedNow = time.Date(2024, 3, 20, 15, 0, 0, 0, time.UTC)

func newService(c Cache) (*transactionService, *memoryRepo) {
	repo := &memoryRepo{}
	svc := NewTransactionService(repo, c, time.Minute, zerolog.Nop()).(*transactionService)
	svc.now = func() time.Time { return fixedNow }
	return svc, repo
}

func add(t *testing.T, svc TransactionService, userID int64, txType models.Type, amount string, date time.Time) *models.Transaction {
	t.Helper()
	tx, err := svc.Create(context.Background(), userID, models.NewTransaction{
		Type:     txType,
		Amount:   decimal.RequireFromString(amount),
		Currency: "USD",
		Category: "Food",
		TxDate:   date,
	})
	require.NoError(t, err)
	return tx
}

func code(t *testing.T, err error) apperrors.ErrorCode {
	t.Helper()
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	return appErr.Code
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newService(nil)
	ctx := context.Background()

	valid := models.NewTransaction{
		Type: models.TypeExpense, Amount: decimal.NewFromInt(5), Currency: "USD", Category: "Food", TxDate: fixedNow,
	}

	bad := valid
	bad.Amount = decimal.NewFromInt(-1)
	_, err := svc.Create(ctx, 1, bad)
	assert.Equal(t, apperrors.ErrCodeValidation, code(t, err))

	bad = valid
	bad.Type = "transfer"
	_, err = svc.Create(ctx, 1, bad)
	assert.Equal(t, apperrors.ErrCodeValidation, code(t, err))

	bad = valid
	bad.Currency = "XYZ"
	_, err = svc.Create(ctx, 1, bad)
	assert.Equal(t, apperrors.ErrCodeValidation, code(t, err))

	bad = valid
	bad.TxDate = time.Time{}
	_, err = svc.Create(ctx, 1, bad)
	assert.Equal(t, apperrors.ErrCodeValidation, code(t, err))

	bad = valid
	bad.Amount = decimal.RequireFromString("99999999999999")
	_, err = svc.Create(ctx, 1, bad)
	assert.Equal(t, apperrors.ErrCodeValidation, code(t, err))

	bad = valid
	bad.Amount = decimal.RequireFromString("1e900000000")
	_, err = svc.Create(ctx, 1, bad)
	assert.Equal(t, apperrors.ErrCodeValidation, code(t, err))

	rounded := valid
	rounded.Amount = decimal.RequireFromString("3.456")
	tx, err := svc.Create(ctx, 1, rounded)
	require.NoError(t, err)
	assert.Equal(t, "3.46", tx.Amount.StringFixed(2))
}

func TestGetAndDelete_OwnerOnly(t *testing.T) {
	svc, _ := newService(nil)
	ctx := context.Background()

	tx := add(t, svc, 1, models.TypeIncome, "100", fixedNow)

	_, err := svc.Get(ctx, 2, tx.ID)
	assert.Equal(t, apperrors.ErrCodeTransactionNotFound, code(t, err))
	assert.Equal(t, apperrors.ErrCodeTransactionNotFound, code(t, svc.Delete(ctx, 2, tx.ID)))

	require.NoError(t, svc.Delete(ctx, 1, tx.ID))
	_, err = svc.Get(ctx, 1, tx.ID)
	assert.Equal(t, apperrors.ErrCodeTransactionNotFound, code(t, err))
}

func TestList_Defaults(t *testing.T) {
	svc, _ := newService(nil)
	ctx := context.Background()

	add(t, svc, 1, models.TypeExpense, "1", time.Date(2024, 2, 28, 12, 0, 0, 0, time.UTC))
	early := add(t, svc, 1, models.TypeExpense, "2", time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	late := add(t, svc, 1, models.TypeExpense, "3", time.Date(2024, 3, 19, 12, 0, 0, 0, time.UTC))

	// по умолчанию текущий месяц, новые сверху
	got, err := svc.List(ctx, 1, models.ListQuery{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, late.ID, got[0].ID)
	assert.Equal(t, early.ID, got[1].ID)

	got, err = svc.List(ctx, 1, models.ListQuery{StartDate: "2024-02-01", EndDate: "2024-02-28", Order: "asc"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	_, err = svc.List(ctx, 1, models.ListQuery{StartDate: "03/01/2024"})
	assert.Equal(t, apperrors.ErrCodeValidation, code(t, err))
	_, err = svc.List(ctx, 1, models.ListQuery{StartDate: "2024-03-10", EndDate: "2024-03-01"})
	assert.Equal(t, apperrors.ErrCodeValidation, code(t, err))
	_, err = svc.List(ctx, 1, models.ListQuery{Order: "sideways"})
	assert.Equal(t, apperrors.ErrCodeValidation, code(t, err))
}

func TestAnalytics(t *testing.T) {
	c := &memoryCache{values: map[string]*models.Analytics{}}
	svc, _ := newService(c)
	ctx := context.Background()

	add(t, svc, 1, models.TypeIncome, "1000", time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	add(t, svc, 1, models.TypeExpense, "20", time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC))
	add(t, svc, 1, models.TypeExpense, "7.5", time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC))
	add(t, svc, 1, models.TypeExpense, "99", time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC))
	for i := 0; i < 6; i++ {
		add(t, svc, 1, models.TypeExpense, "1", time.Date(2024, 3, 10+i, 9, 0, 0, 0, time.UTC))
	}

	analytics, err := svc.Analytics(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, analytics.LastIncomes, 1)
	assert.Len(t, analytics.LastExpenses, 5)
	assert.Equal(t, "1000.00", analytics.IncomeThisMonth.StringFixed(2))
	assert.Equal(t, "33.50", analytics.ExpenseThisMonth.StringFixed(2))
	assert.Equal(t, "7.50", analytics.ExpenseToday.StringFixed(2))
	assert.True(t, analytics.IncomeToday.IsZero())
	assert.Len(t, analytics.DailyExpenses, 8)

	// второй вызов отдается из кэша
	_, ok := c.values[cache.AnalyticsKey(1)]
	assert.True(t, ok)

	add(t, svc, 1, models.TypeIncome, "1", fixedNow)
	assert.Contains(t, c.invalidated, int64(1))
	_, ok = c.values[cache.AnalyticsKey(1)]
	assert.False(t, ok)
}

func TestTotalsAndRecent(t *testing.T) {
	svc, _ := newService(nil)
	ctx := context.Background()

	add(t, svc, 1, models.TypeIncome, "50", time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC))
	add(t, svc, 1, models.TypeExpense, "12.25", time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC))
	newest := add(t, svc, 1, models.TypeExpense, "0.75", time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC))

	totals, err := svc.Totals(ctx, 1, models.Period{From: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), To: fixedNow})
	require.NoError(t, err)
	assert.Equal(t, "50.00", totals.Income.StringFixed(2))
	assert.Equal(t, "13.00", totals.Expense.StringFixed(2))

	recent, err := svc.Recent(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, newest.ID, recent[0].ID)
}

func TestExport(t *testing.T) {
	svc, _ := newService(nil)
	ctx := context.Background()

	add(t, svc, 1, models.TypeExpense, "42.5", time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC))

	var buf bytes.Buffer
	require.NoError(t, svc.Export(ctx, 1, models.ListQuery{}, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Date", "Type", "Category", "Amount", "Currency"}, rows[0])
	assert.Equal(t, "2024-03-15", rows[1][0])
	assert.Equal(t, "expense", rows[1][1])
	assert.Equal(t, "42.5", rows[1][3])
}
