package service

import (
	"errors"
	"time"

	accountmodels "finance-tracker-backend/internal/features/account/models"
	"finance-tracker-backend/internal/features/billing/models"
)

type TransitionKind int

const (
	TransitionUnrecognized TransitionKind = iota
	TransitionActivate
	TransitionScheduleCancel
	TransitionDeactivate
)

func (k TransitionKind) String() string {
	switch k {
	case TransitionActivate:
		return "activate"
	case TransitionScheduleCancel:
		return "schedule_cancel"
	case TransitionDeactivate:
		return "deactivate"
	default:
		return "unrecognized"
	}
}

// Transition is the subscription change a callback maps to.
type Transition struct {
	Kind   TransitionKind
	Update accountmodels.SubscriptionUpdate
}

var ErrMissingPeriod = errors.New("create_date and end_date are required to activate a subscription")

type callbackKey struct {
	action string
	status string
}

var transitions = map[callbackKey]TransitionKind{
	{"subscribe", "subscribed"}:   TransitionActivate,
	{"subscribe", "success"}:      TransitionActivate,
	{"pay", "success"}:            TransitionActivate,
	{"subscribe", "unsubscribed"}: TransitionScheduleCancel,
	{"subscribe", "failure"}:      TransitionDeactivate,
	{"subscribe", "error"}:        TransitionDeactivate,
	{"subscribe", "reversed"}:     TransitionDeactivate,
	{"pay", "failure"}:            TransitionDeactivate,
	{"pay", "error"}:              TransitionDeactivate,
	{"pay", "reversed"}:           TransitionDeactivate,
}

// Resolve переводит пару (action, status) в изменение подписки.
// Результат зависит только от колбэка, поэтому повторная доставка
// приводит к тому же состоянию аккаунта.
func Resolve(cb *models.Callback) (Transition, error) {
	kind, ok := transitions[callbackKey{cb.Action, cb.Status}]
	if !ok {
		return Transition{Kind: TransitionUnrecognized}, nil
	}

	switch kind {
	case TransitionActivate:
		if cb.CreateDate == nil || cb.EndDate == nil {
			return Transition{}, ErrMissingPeriod
		}
		start := time.UnixMilli(*cb.CreateDate).UTC()
		end := time.UnixMilli(*cb.EndDate).UTC()
		update := accountmodels.SubscriptionUpdate{
			IsSubscribed:      boolPtr(true),
			SubscriptionStart: &start,
			SubscriptionEnd:   &end,
			OrderID:           stringPtr(cb.OrderID),
			CancelAtPeriodEnd: boolPtr(false),
		}
		if cb.ProviderOrderID != "" {
			update.ProviderOrderID = stringPtr(cb.ProviderOrderID)
		}
		return Transition{Kind: kind, Update: update}, nil

	case TransitionScheduleCancel:
		return Transition{Kind: kind, Update: accountmodels.SubscriptionUpdate{
			CancelAtPeriodEnd: boolPtr(true),
		}}, nil

	default:
		// provider_order_id остается для разбора платежа
		return Transition{Kind: kind, Update: accountmodels.SubscriptionUpdate{
			IsSubscribed: boolPtr(false),
		}}, nil
	}
}

func boolPtr(v bool) *bool { return &v }

func stringPtr(v string) *string { return &v }
