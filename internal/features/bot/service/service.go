package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "finance-tracker-backend/internal/common/errors"
	"finance-tracker-backend/internal/common/validation"
	accountmodels "finance-tracker-backend/internal/features/account/models"
	accountrepo "finance-tracker-backend/internal/features/account/repository"
	"finance-tracker-backend/internal/features/bot/models"
	"finance-tracker-backend/internal/features/bot/repository"
	txmodels "finance-tracker-backend/internal/features/transaction/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	cmdStart            = "/start"
	cmdAddIncome        = "add income"
	cmdAddExpense       = "add expense"
	cmdReport           = "report"
	cmdLastTransactions = "last transactions"

	recentLimit = 5
)

const (
	msgAlreadyRegistered = "👋 Hi! You are already registered. You can start adding transactions."
	msgAskEmail          = "🔐 You are not registered yet. Let's fix that. First, please send your email address."
	msgInvalidEmail      = "🚫 Invalid email format. Please send a valid email address."
	msgEmailTaken        = "🚫 This email is already registered. Please use a different email."
	msgAskCurrency       = "💱 Please choose your default currency:"
	msgRegistered        = "🎉 Great! You are registered now. You can start adding income or expenses."
	msgNotRegistered     = "🔐 You are not registered yet. Send /start to begin."
	msgAskCategory       = "📂 Please choose a category:"
	msgInvalidCategory   = "❌ Invalid category. Please choose one from the list."
	msgAskAmount         = "💰 Please specify the amount:"
	msgInvalidAmount     = "❌ Invalid amount. Please enter a numeric value."
	msgAskDate           = "📅 Please specify the date with the format YYYY-MM-DD or click 'Today'"
	msgInvalidDate       = "❌ Invalid date format. Use YYYY-MM-DD"
	msgSaved             = "✅ Transaction saved!"
	msgNoTransactions    = "❌ No transactions found."
	msgChooseAction      = "Please choose an action from the menu."
)

// AccountStore is the part of the account repository the bot needs.
type AccountStore interface {
	GetByEmail(ctx context.Context, email string) (*accountmodels.Account, error)
	GetByTelegramChatID(ctx context.Context, chatID string) (*accountmodels.Account, error)
	Create(ctx context.Context, account *accountmodels.Account) error
}

// Ledger is implemented by the transaction service.
type Ledger interface {
	Create(ctx context.Context, userID int64, in txmodels.NewTransaction) (*txmodels.Transaction, error)
	Totals(ctx context.Context, userID int64, period txmodels.Period) (*txmodels.Totals, error)
	Recent(ctx context.Context, userID int64, limit int) ([]*txmodels.Transaction, error)
}

// ConversationService drives registration and transaction entry for one chat
// message at a time.
type ConversationService interface {
	Handle(ctx context.Context, chatID int64, text string) (*models.Reply, error)
}

type conversationService struct {
	sessions repository.SessionStore
	accounts AccountStore
	ledger   Ledger
	logger   zerolog.Logger
	now      func() time.Time
}

func NewConversationService(sessions repository.SessionStore, accounts AccountStore, ledger Ledger, logger zerolog.Logger) ConversationService {
	return &conversationService{
		sessions: sessions,
		accounts: accounts,
		ledger:   ledger,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *conversationService) Handle(ctx context.Context, chatID int64, text string) (*models.Reply, error) {
	text = strings.TrimSpace(text)
	command := strings.ToLower(text)

	if command == cmdStart {
		return s.start(ctx, chatID)
	}

	session, err := s.loadSession(ctx, chatID)
	if err != nil {
		return nil, err
	}

	switch session.State {
	case models.StateAwaitingEmail:
		return s.registerEmail(ctx, chatID, session, text)
	case models.StateAwaitingCurrency:
		return s.registerCurrency(ctx, chatID, session, text)
	}

	account, err := s.accountByChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return reply(models.StateIdle, msgNotRegistered, models.KeyboardRemove), nil
	}

	switch command {
	case cmdAddIncome:
		return s.beginEntry(ctx, chatID, validation.TypeIncome)
	case cmdAddExpense:
		return s.beginEntry(ctx, chatID, validation.TypeExpense)
	}

	switch session.State {
	case models.StateAwaitingCategory:
		return s.enterCategory(ctx, chatID, session, text)
	case models.StateAwaitingAmount:
		return s.enterAmount(ctx, chatID, session, text)
	case models.StateAwaitingDate:
		return s.enterDate(ctx, chatID, account, session, text)
	}

	switch command {
	case cmdReport:
		return s.report(ctx, account)
	case cmdLastTransactions:
		return s.lastTransactions(ctx, account)
	}

	return reply(models.StateReady, msgChooseAction, models.KeyboardMain), nil
}

// start сбрасывает сессию в любом состоянии
func (s *conversationService) start(ctx context.Context, chatID int64) (*models.Reply, error) {
	if err := s.clearSession(ctx, chatID); err != nil {
		return nil, err
	}

	account, err := s.accountByChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if account != nil {
		return reply(models.StateReady, msgAlreadyRegistered, models.KeyboardMain), nil
	}

	if err := s.saveSession(ctx, chatID, &models.Session{State: models.StateAwaitingEmail}); err != nil {
		return nil, err
	}
	return reply(models.StateAwaitingEmail, msgAskEmail, models.KeyboardRemove), nil
}

func (s *conversationService) registerEmail(ctx context.Context, chatID int64, session *models.Session, email string) (*models.Reply, error) {
	if !strings.Contains(email, "@") || len(email) > validation.MaxEmailLength {
		return reply(models.StateAwaitingEmail, msgInvalidEmail, models.KeyboardNone), nil
	}

	_, err := s.accounts.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return reply(models.StateAwaitingEmail, msgEmailTaken, models.KeyboardNone), nil
	case !errors.Is(err, accountrepo.ErrAccountNotFound):
		return nil, apperrors.NewDatabaseError("get account by email", err)
	}

	session.State = models.StateAwaitingCurrency
	session.Email = email
	if err := s.saveSession(ctx, chatID, session); err != nil {
		return nil, err
	}
	return reply(models.StateAwaitingCurrency, msgAskCurrency, models.KeyboardCurrency), nil
}

func (s *conversationService) registerCurrency(ctx context.Context, chatID int64, session *models.Session, text string) (*models.Reply, error) {
	currency := strings.ToUpper(text)
	if !validation.IsValidChoice(validation.Currencies, currency) {
		return reply(models.StateAwaitingCurrency, msgAskCurrency, models.KeyboardCurrency), nil
	}

	account := &accountmodels.Account{
		Email:                    session.Email,
		Language:                 "en",
		Currency:                 currency,
		TelegramChatID:           chatKey(chatID),
		IsRegisteredFromTelegram: true,
		IsActive:                 true,
		CreatedAt:                s.now().UTC(),
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, accountrepo.ErrEmailTaken) {
			// адрес заняли между проверкой и созданием
			session.State = models.StateAwaitingEmail
			session.Email = ""
			if err := s.saveSession(ctx, chatID, session); err != nil {
				return nil, err
			}
			return reply(models.StateAwaitingEmail, msgEmailTaken, models.KeyboardRemove), nil
		}
		return nil, apperrors.NewDatabaseError("create account", err)
	}

	if err := s.clearSession(ctx, chatID); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("chat_id", chatID).Int64("account_id", account.ID).Msg("Account registered from bot")
	return reply(models.StateReady, msgRegistered, models.KeyboardMain), nil
}

func (s *conversationService) beginEntry(ctx context.Context, chatID int64, txType string) (*models.Reply, error) {
	if err := s.saveSession(ctx, chatID, &models.Session{State: models.StateAwaitingCategory, Type: txType}); err != nil {
		return nil, err
	}

	keyboard := models.KeyboardExpenseCategories
	if txType == validation.TypeIncome {
		keyboard = models.KeyboardIncomeCategories
	}
	return reply(models.StateAwaitingCategory, msgAskCategory, keyboard), nil
}

func (s *conversationService) enterCategory(ctx context.Context, chatID int64, session *models.Session, category string) (*models.Reply, error) {
	if err := validation.ValidateCategory(category); err != nil {
		keyboard := models.KeyboardExpenseCategories
		if session.Type == validation.TypeIncome {
			keyboard = models.KeyboardIncomeCategories
		}
		return reply(models.StateAwaitingCategory, msgInvalidCategory, keyboard), nil
	}

	session.State = models.StateAwaitingAmount
	session.Category = category
	if err := s.saveSession(ctx, chatID, session); err != nil {
		return nil, err
	}
	return reply(models.StateAwaitingAmount, msgAskAmount, models.KeyboardRemove), nil
}

func (s *conversationService) enterAmount(ctx context.Context, chatID int64, session *models.Session, text string) (*models.Reply, error) {
	amount, err := validation.ParseAmount(text)
	if err != nil {
		return reply(models.StateAwaitingAmount, msgInvalidAmount, models.KeyboardNone), nil
	}

	session.State = models.StateAwaitingDate
	session.Amount = amount.StringFixed(validation.AmountScale)
	if err := s.saveSession(ctx, chatID, session); err != nil {
		return nil, err
	}
	return reply(models.StateAwaitingDate, msgAskDate, models.KeyboardDate), nil
}

func (s *conversationService) enterDate(ctx context.Context, chatID int64, account *accountmodels.Account, session *models.Session, text string) (*models.Reply, error) {
	txDate, err := validation.ParseTxDate(text, s.now())
	if err != nil {
		return reply(models.StateAwaitingDate, msgInvalidDate, models.KeyboardDate), nil
	}

	amount, err := decimal.NewFromString(session.Amount)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Corrupted session amount")
	}

	tx, err := s.ledger.Create(ctx, account.ID, txmodels.NewTransaction{
		Type:     txmodels.Type(session.Type),
		Amount:   amount,
		Currency: account.Currency,
		Category: session.Category,
		TxDate:   txDate,
	})
	if err != nil {
		return nil, err
	}

	if err := s.clearSession(ctx, chatID); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("chat_id", chatID).Int64("transaction_id", tx.ID).Msg("Transaction saved from bot")
	return reply(models.StateReady, msgSaved, models.KeyboardMain), nil
}

// report показывает суммы с начала месяца
func (s *conversationService) report(ctx context.Context, account *accountmodels.Account) (*models.Reply, error) {
	now := s.now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	totals, err := s.ledger.Totals(ctx, account.ID, txmodels.Period{From: start, To: now})
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf("📊 Monthly Report:\n\nIncome: %s %s\nExpense: %s %s",
		totals.Income.StringFixed(2), account.Currency,
		totals.Expense.StringFixed(2), account.Currency)
	return reply(models.StateReady, text, models.KeyboardMain), nil
}

func (s *conversationService) lastTransactions(ctx context.Context, account *accountmodels.Account) (*models.Reply, error) {
	transactions, err := s.ledger.Recent(ctx, account.ID, recentLimit)
	if err != nil {
		return nil, err
	}
	if len(transactions) == 0 {
		return reply(models.StateReady, msgNoTransactions, models.KeyboardMain), nil
	}

	var b strings.Builder
	b.WriteString("📝 Last 5 Transactions:\n")
	for _, tx := range transactions {
		icon := "🧾"
		if tx.Type == txmodels.TypeIncome {
			icon = "💰"
		}
		fmt.Fprintf(&b, "%s 💵 %s %s %s %s - %s\n",
			tx.TxDate.Format(validation.DateLayout), tx.Amount.StringFixed(2), tx.Currency, icon, tx.Type, tx.Category)
	}

	return reply(models.StateReady, b.String(), models.KeyboardMain), nil
}

func (s *conversationService) accountByChat(ctx context.Context, chatID int64) (*accountmodels.Account, error) {
	account, err := s.accounts.GetByTelegramChatID(ctx, chatKey(chatID))
	if err != nil {
		if errors.Is(err, accountrepo.ErrAccountNotFound) {
			return nil, nil
		}
		return nil, apperrors.NewDatabaseError("get account by chat", err)
	}
	return account, nil
}

func (s *conversationService) loadSession(ctx context.Context, chatID int64) (*models.Session, error) {
	session, err := s.sessions.Get(ctx, chatID)
	if err != nil {
		return nil, apperrors.NewCacheError("load session", err)
	}
	if session == nil {
		session = &models.Session{State: models.StateIdle}
	}
	return session, nil
}

func (s *conversationService) saveSession(ctx context.Context, chatID int64, session *models.Session) error {
	session.UpdatedAt = s.now().UTC()
	if err := s.sessions.Save(ctx, chatID, session); err != nil {
		return apperrors.NewCacheError("save session", err)
	}
	return nil
}

func (s *conversationService) clearSession(ctx context.Context, chatID int64) error {
	if err := s.sessions.Delete(ctx, chatID); err != nil {
		return apperrors.NewCacheError("clear session", err)
	}
	return nil
}

func chatKey(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

func reply(state models.State, text string, keyboard models.Keyboard) *models.Reply {
	return &models.Reply{State: state, Text: text, Keyboard: keyboard}
}
