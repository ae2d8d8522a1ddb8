package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"finance-tracker-backend/internal/common/cache"
	apperrors "finance-tracker-backend/internal/common/errors"
	"finance-tracker-backend/internal/common/validation"
	"finance-tracker-backend/internal/features/transaction/models"
	"finance-tracker-backend/internal/features/transaction/repository"

	"github.com/rs/zerolog"
)

const analyticsRecentLimit = 5

// Cache is the subset of cache.CacheService used for analytics.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	InvalidateAccountCache(ctx context.Context, userID int64) error
}

type TransactionService interface {
	Create(ctx context.Context, userID int64, in models.NewTransaction) (*models.Transaction, error)
	Get(ctx context.Context, userID, id int64) (*models.Transaction, error)
	List(ctx context.Context, userID int64, query models.ListQuery) ([]*models.Transaction, error)
	Delete(ctx context.Context, userID, id int64) error
	Analytics(ctx context.Context, userID int64) (*models.Analytics, error)
	Totals(ctx context.Context, userID int64, period models.Period) (*models.Totals, error)
	Recent(ctx context.Context, userID int64, limit int) ([]*models.Transaction, error)
	Export(ctx context.Context, userID int64, query models.ListQuery, w io.Writer) error
}

type transactionService struct {
	repo         repository.TransactionRepository
	cache        Cache
	analyticsTTL time.Duration
	logger       zerolog.Logger
	now          func() time.Time
}

// NewTransactionService creates the ledger service. cache may be nil.
func NewTransactionService(repo repository.TransactionRepository, cache Cache, analyticsTTL time.Duration, logger zerolog.Logger) TransactionService {
	return &transactionService{
		repo:         repo,
		cache:        cache,
		analyticsTTL: analyticsTTL,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *transactionService) Create(ctx context.Context, userID int64, in models.NewTransaction) (*models.Transaction, error) {
	if err := validation.ValidateTransactionType(string(in.Type)); err != nil {
		return nil, apperrors.NewValidationError("type", err.Error())
	}
	if err := validation.ValidateAmount(in.Amount); err != nil {
		return nil, apperrors.NewValidationError("amount", err.Error())
	}
	if err := validation.ValidateCurrency(in.Currency); err != nil {
		return nil, apperrors.NewValidationError("currency", err.Error())
	}
	if in.Category != "" {
		if err := validation.ValidateCategory(in.Category); err != nil {
			return nil, apperrors.NewValidationError("category", err.Error())
		}
	}
	if in.TxDate.IsZero() {
		return nil, apperrors.NewValidationError("tx_date", "required")
	}

	tx := &models.Transaction{
		UserID:    userID,
		Type:      in.Type,
		Amount:    in.Amount.Round(validation.AmountScale),
		Currency:  in.Currency,
		Category:  strings.TrimSpace(in.Category),
		TxDate:    in.TxDate,
		CreatedAt: s.now().UTC(),
	}

	if err := s.repo.Create(ctx, tx); err != nil {
		return nil, apperrors.NewDatabaseError("create transaction", err)
	}

	s.invalidate(ctx, userID)
	return tx, nil
}

func (s *transactionService) Get(ctx context.Context, userID, id int64) (*models.Transaction, error) {
	tx, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			return nil, apperrors.NewTransactionNotFoundError(id)
		}
		return nil, apperrors.NewDatabaseError("get transaction", err)
	}
	return tx, nil
}

func (s *transactionService) List(ctx context.Context, userID int64, query models.ListQuery) ([]*models.Transaction, error) {
	filter, err := s.filterFromQuery(query)
	if err != nil {
		return nil, err
	}

	transactions, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list transactions", err)
	}
	return transactions, nil
}

func (s *transactionService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			return apperrors.NewTransactionNotFoundError(id)
		}
		return apperrors.NewDatabaseError("delete transaction", err)
	}

	s.invalidate(ctx, userID)
	return nil
}

// Analytics собирает дашборд текущего месяца
func (s *transactionService) Analytics(ctx context.Context, userID int64) (*models.Analytics, error) {
	key := cache.AnalyticsKey(userID)
	if s.cache != nil {
		var cached models.Analytics
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn().Err(err).Int64("user_id", userID).Msg("Analytics cache read failed")
		}
	}

	now := s.now()
	month := models.Period{From: startOfMonth(now), To: now}
	today := models.Period{From: startOfDay(now), To: now}

	analytics := &models.Analytics{}
	var err error

	if analytics.LastIncomes, err = s.repo.List(ctx, userID, models.ListFilter{
		Period: month, Type: models.TypeIncome, Desc: true, Limit: analyticsRecentLimit,
	}); err != nil {
		return nil, apperrors.NewDatabaseError("list incomes", err)
	}
	if analytics.LastExpenses, err = s.repo.List(ctx, userID, models.ListFilter{
		Period: month, Type: models.TypeExpense, Desc: true, Limit: analyticsRecentLimit,
	}); err != nil {
		return nil, apperrors.NewDatabaseError("list expenses", err)
	}
	if analytics.DailyIncomes, err = s.repo.DailyTotals(ctx, userID, models.TypeIncome, month); err != nil {
		return nil, apperrors.NewDatabaseError("group incomes", err)
	}
	if analytics.DailyExpenses, err = s.repo.DailyTotals(ctx, userID, models.TypeExpense, month); err != nil {
		return nil, apperrors.NewDatabaseError("group expenses", err)
	}

	todayTotals, err := s.Totals(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	monthTotals, err := s.Totals(ctx, userID, month)
	if err != nil {
		return nil, err
	}

	analytics.IncomeToday = todayTotals.Income
	analytics.ExpenseToday = todayTotals.Expense
	analytics.IncomeThisMonth = monthTotals.Income
	analytics.ExpenseThisMonth = monthTotals.Expense

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, analytics, s.analyticsTTL); err != nil {
			s.logger.Warn().Err(err).Int64("user_id", userID).Msg("Analytics cache write failed")
		}
	}

	return analytics, nil
}

func (s *transactionService) Totals(ctx context.Context, userID int64, period models.Period) (*models.Totals, error) {
	income, err := s.repo.Sum(ctx, userID, models.TypeIncome, period)
	if err != nil {
		return nil, apperrors.NewDatabaseError("sum incomes", err)
	}
	expense, err := s.repo.Sum(ctx, userID, models.TypeExpense, period)
	if err != nil {
		return nil, apperrors.NewDatabaseError("sum expenses", err)
	}

	return &models.Totals{Income: income, Expense: expense}, nil
}

// Recent возвращает последние операции за все время
func (s *transactionService) Recent(ctx context.Context, userID int64, limit int) ([]*models.Transaction, error) {
	transactions, err := s.repo.List(ctx, userID, models.ListFilter{Desc: true, Limit: limit})
	if err != nil {
		return nil, apperrors.NewDatabaseError("list recent transactions", err)
	}
	return transactions, nil
}

func (s *transactionService) Export(ctx context.Context, userID int64, query models.ListQuery, w io.Writer) error {
	if query.Limit == 0 {
		query.Limit = validation.MaxPageLimit
	}

	transactions, err := s.List(ctx, userID, query)
	if err != nil {
		return err
	}

	if err := WriteWorkbook(w, transactions); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to build export")
	}
	return nil
}

// filterFromQuery применяет значения по умолчанию: текущий месяц,
// первая страница по 100 записей, новые сверху
func (s *transactionService) filterFromQuery(query models.ListQuery) (models.ListFilter, error) {
	now := s.now()
	filter := models.ListFilter{
		Period: models.Period{From: startOfMonth(now), To: now},
		Limit:  validation.DefaultPageLimit,
		Desc:   true,
	}

	if query.StartDate != "" {
		from, err := time.ParseInLocation(validation.DateLayout, query.StartDate, now.Location())
		if err != nil {
			return filter, apperrors.NewValidationError("start_date", "expected YYYY-MM-DD")
		}
		filter.From = from
	}
	if query.EndDate != "" {
		to, err := time.ParseInLocation(validation.DateLayout, query.EndDate, now.Location())
		if err != nil {
			return filter, apperrors.NewValidationError("end_date", "expected YYYY-MM-DD")
		}
		// конец дня включительно
		filter.To = to.Add(24*time.Hour - time.Nanosecond)
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.From.After(filter.To) {
		return filter, apperrors.NewValidationError("start_date", "must not be after end_date")
	}

	if query.Limit != 0 {
		filter.Limit = query.Limit
	}
	if err := validation.ValidatePagination(query.Page, filter.Limit); err != nil {
		return filter, apperrors.NewValidationError("page", err.Error())
	}
	filter.Offset = query.Page * filter.Limit

	if query.Order != "" {
		if err := validation.ValidateOrder(query.Order); err != nil {
			return filter, apperrors.NewValidationError("order", err.Error())
		}
		filter.Desc = query.Order == "desc"
	}

	if query.Type != "" {
		if err := validation.ValidateTransactionType(query.Type); err != nil {
			return filter, apperrors.NewValidationError("type", err.Error())
		}
		filter.Type = models.Type(query.Type)
	}

	return filter, nil
}

func (s *transactionService) invalidate(ctx context.Context, userID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateAccountCache(ctx, userID); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", userID).Msg("Analytics cache invalidation failed")
	}
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
