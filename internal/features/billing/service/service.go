package service

import (
	"context"
	"encoding/json"
	"errors"

	apperrors "finance-tracker-backend/internal/common/errors"
	accountmodels "finance-tracker-backend/internal/features/account/models"
	accountrepo "finance-tracker-backend/internal/features/account/repository"
	"finance-tracker-backend/internal/features/billing/liqpay"
	"finance-tracker-backend/internal/features/billing/models"
	"finance-tracker-backend/internal/features/billing/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// AccountStore is the part of the account repository billing writes to.
type AccountStore interface {
	GetByID(ctx context.Context, id int64) (*accountmodels.Account, error)
	UpdateSubscription(ctx context.Context, id int64, update accountmodels.SubscriptionUpdate) error
}

// Gateway is implemented by *liqpay.Client.
type Gateway interface {
	Checkout(params liqpay.CheckoutParams) (models.SignedRequest, error)
	Unsubscribe(ctx context.Context, orderID string) (json.RawMessage, error)
	DecodeCallback(req models.SignedRequest) (*models.Callback, error)
}

// Plan is the fixed subscription offer.
type Plan struct {
	Amount      decimal.Decimal
	Currency    string
	Description string
	ResultURL   string
	ServerURL   string
}

type BillingService interface {
	Checkout(ctx context.Context, account *accountmodels.Account) (*models.SignedRequest, error)
	Cancel(ctx context.Context, account *accountmodels.Account) (json.RawMessage, error)
	HandleCallback(ctx context.Context, req models.SignedRequest) (*models.Callback, error)
}

type billingService struct {
	orders   repository.OrderRepository
	accounts AccountStore
	gateway  Gateway
	plan     Plan
	logger   zerolog.Logger
	newKey   func() string
}

func NewBillingService(orders repository.OrderRepository, accounts AccountStore, gateway Gateway, plan Plan, logger zerolog.Logger) BillingService {
	return &billingService{
		orders:   orders,
		accounts: accounts,
		gateway:  gateway,
		plan:     plan,
		logger:   logger,
		newKey:   uuid.NewString,
	}
}

// Checkout создает заказ и возвращает подписанный запрос для виджета LiqPay
func (s *billingService) Checkout(ctx context.Context, account *accountmodels.Account) (*models.SignedRequest, error) {
	order := &models.Order{UserID: account.ID, Key: s.newKey()}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, apperrors.NewDatabaseError("create order", err)
	}

	language := account.Language
	if language == "" {
		language = "en"
	}

	signed, err := s.gateway.Checkout(liqpay.CheckoutParams{
		Amount:      s.plan.Amount,
		Currency:    s.plan.Currency,
		Description: s.plan.Description,
		OrderID:     order.Key,
		Language:    language,
		ResultURL:   s.plan.ResultURL,
		ServerURL:   s.plan.ServerURL,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to build payment request")
	}

	s.logger.Info().
		Int64("user_id", account.ID).
		Str("order_id", order.Key).
		Msg("Checkout created")

	return &signed, nil
}

// Cancel отправляет unsubscribe в LiqPay. Состояние аккаунта меняет
// только последующий колбэк.
func (s *billingService) Cancel(ctx context.Context, account *accountmodels.Account) (json.RawMessage, error) {
	if account.OrderID == "" {
		return nil, apperrors.New(apperrors.ErrCodeNoSubscription, "No subscription to cancel")
	}

	resp, err := s.gateway.Unsubscribe(ctx, account.OrderID)
	if err != nil {
		return nil, apperrors.NewExternalAPIError("liqpay", err)
	}

	s.logger.Info().
		Int64("user_id", account.ID).
		Str("order_id", account.OrderID).
		Msg("Subscription cancellation requested")

	return resp, nil
}

// HandleCallback проверяет колбэк LiqPay и применяет переход подписки
func (s *billingService) HandleCallback(ctx context.Context, req models.SignedRequest) (*models.Callback, error) {
	cb, err := s.gateway.DecodeCallback(req)
	if err != nil {
		if errors.Is(err, liqpay.ErrInvalidSignature) {
			s.logger.Warn().Msg("Callback rejected: invalid signature")
			return nil, apperrors.New(apperrors.ErrCodeInvalidSignature, "Invalid signature")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "Invalid callback payload")
	}

	log := s.logger.With().
		Str("order_id", cb.OrderID).
		Str("action", cb.Action).
		Str("status", cb.Status).
		Logger()

	order, err := s.orders.GetByKey(ctx, cb.OrderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			log.Warn().Msg("Callback for unknown order")
			return nil, apperrors.New(apperrors.ErrCodeOrderNotFound, "Order not found").
				WithDetail("order_id", cb.OrderID)
		}
		return nil, apperrors.NewDatabaseError("get order", err)
	}

	if _, err := s.accounts.GetByID(ctx, order.UserID); err != nil {
		if errors.Is(err, accountrepo.ErrAccountNotFound) {
			log.Warn().Int64("user_id", order.UserID).Msg("Callback for missing account")
			return nil, apperrors.NewAccountNotFoundError(order.UserID)
		}
		return nil, apperrors.NewDatabaseError("get account", err)
	}

	transition, err := Resolve(cb)
	if err != nil {
		return nil, apperrors.NewValidationError("create_date", err.Error())
	}

	if transition.Kind == TransitionUnrecognized {
		log.Warn().Int64("user_id", order.UserID).Msg("Unrecognized callback, no changes applied")
		return cb, nil
	}

	if err := s.accounts.UpdateSubscription(ctx, order.UserID, transition.Update); err != nil {
		return nil, apperrors.NewDatabaseError("update subscription", err)
	}

	log.Info().
		Int64("user_id", order.UserID).
		Str("transition", transition.Kind.String()).
		Msg("Subscription updated from callback")

	return cb, nil
}
