package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

type Transaction struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Type      Type            `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Category  string          `json:"category"`
	TxDate    time.Time       `json:"tx_date"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewTransaction is the input for recording an income or expense.
type NewTransaction struct {
	Type     Type            `json:"type" binding:"required"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency" binding:"required"`
	Category string          `json:"category"`
	TxDate   time.Time       `json:"tx_date" binding:"required"`
}

// Period bounds tx_date inclusively. A zero bound is open.
type Period struct {
	From time.Time
	To   time.Time
}

type ListFilter struct {
	Period
	Type   Type
	Offset int
	Limit  int
	Desc   bool
}

type DailyTotal struct {
	Date   string          `json:"tx_date"`
	Amount decimal.Decimal `json:"amount"`
}

type Totals struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

type Analytics struct {
	LastIncomes      []*Transaction  `json:"last_incomes"`
	LastExpenses     []*Transaction  `json:"last_expenses"`
	DailyIncomes     []DailyTotal    `json:"daily_incomes"`
	DailyExpenses    []DailyTotal    `json:"daily_expenses"`
	IncomeToday      decimal.Decimal `json:"income_today"`
	ExpenseToday     decimal.Decimal `json:"expense_today"`
	IncomeThisMonth  decimal.Decimal `json:"income_this_month"`
	ExpenseThisMonth decimal.Decimal `json:"expense_this_month"`
}

// ListQuery mirrors the listing query string.
type ListQuery struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
	Order     string `form:"order"`
	Type      string `form:"type"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
