package models

import "time"

// Account is a ledger user. It is created either through signup or by the
// Telegram bot registration flow and carries the subscription state that the
// billing webhook reconciles.
type Account struct {
	ID                       int64
	Email                    string
	HashedPassword           string
	FullName                 string
	Language                 string
	Currency                 string
	TelegramChatID           string
	IsRegisteredFromTelegram bool
	IsActive                 bool
	CreatedAt                time.Time

	IsSubscribed      bool
	SubscriptionID    string
	SubscriptionStart *time.Time
	SubscriptionEnd   *time.Time
	OrderID           string
	ProviderOrderID   string
	CancelAtPeriodEnd bool
}

// SubscriptionUpdate lists subscription columns to write. Nil fields keep
// their stored value.
type SubscriptionUpdate struct {
	IsSubscribed      *bool
	SubscriptionStart *time.Time
	SubscriptionEnd   *time.Time
	OrderID           *string
	ProviderOrderID   *string
	CancelAtPeriodEnd *bool
}

func (u SubscriptionUpdate) IsEmpty() bool {
	return u.IsSubscribed == nil &&
		u.SubscriptionStart == nil &&
		u.SubscriptionEnd == nil &&
		u.OrderID == nil &&
		u.ProviderOrderID == nil &&
		u.CancelAtPeriodEnd == nil
}

type ProfileUpdate struct {
	FullName *string `json:"full_name"`
	Language *string `json:"language"`
	Currency *string `json:"currency"`
}

type SignupRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name"`
	Language string `json:"language"`
	Currency string `json:"currency"`
}

type AccountResponse struct {
	ID                int64      `json:"id"`
	Email             string     `json:"email"`
	FullName          string     `json:"full_name"`
	Language          string     `json:"language"`
	Currency          string     `json:"currency"`
	CreatedAt         time.Time  `json:"created_at"`
	IsSubscribed      bool       `json:"is_subscribed"`
	SubscriptionEnd   *time.Time `json:"subscription_end,omitempty"`
	CancelAtPeriodEnd bool       `json:"cancel_at_period_end"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type EmailCheckRequest struct {
	Email string `json:"email" binding:"required"`
}

type EmailCheckResponse struct {
	Exists bool `json:"exists"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func ToAccountResponse(a *Account) *AccountResponse {
	return &AccountResponse{
		ID:                a.ID,
		Email:             a.Email,
		FullName:          a.FullName,
		Language:          a.Language,
		Currency:          a.Currency,
		CreatedAt:         a.CreatedAt,
		IsSubscribed:      a.IsSubscribed,
		SubscriptionEnd:   a.SubscriptionEnd,
		CancelAtPeriodEnd: a.CancelAtPeriodEnd,
	}
}
