package models

import "time"

type State string

const (
	StateIdle             State = "idle"
	StateAwaitingEmail    State = "awaiting_email"
	StateAwaitingCurrency State = "awaiting_currency"
	StateReady            State = "ready"
	StateAwaitingCategory State = "awaiting_category"
	StateAwaitingAmount   State = "awaiting_amount"
	StateAwaitingDate     State = "awaiting_date"
)

// Session is the per-chat dialogue state. Amount is kept as the normalized
// decimal string.
type Session struct {
	State     State     `msgpack:"state"`
	Email     string    `msgpack:"email,omitempty"`
	Type      string    `msgpack:"type,omitempty"`
	Category  string    `msgpack:"category,omitempty"`
	Amount    string    `msgpack:"amount,omitempty"`
	UpdatedAt time.Time `msgpack:"updated_at"`
}

type Keyboard int

const (
	KeyboardNone Keyboard = iota
	KeyboardMain
	KeyboardCurrency
	KeyboardExpenseCategories
	KeyboardIncomeCategories
	KeyboardDate
	KeyboardRemove
)

// Reply is what the bot answers to one message.
type Reply struct {
	State    State
	Text     string
	Keyboard Keyboard
}
