package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// Максимальные длины для различных полей
	MaxEmailLength    = 150
	MaxFullNameLength = 150
	MaxCategoryLength = 100

	// Формат даты, который вводит пользователь бота
	DateLayout = "2006-01-02"

	// Количество знаков после запятой для сумм
	AmountScale = 2

	// Разрядность суммы: целая часть и самый мелкий порядок
	maxAmountIntDigits = 10
	minAmountExponent  = -20

	// Ограничения выборки операций
	DefaultPageLimit = 100
	MaxPageLimit     = 1000
)

// Transaction types
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

var (
	// Верхняя граница NUMERIC(12,2)
	MaxAmount = decimal.RequireFromString("9999999999.99")

	Currencies = []string{"USD", "EUR", "UAH", "GBP", "CAD", "AUD", "JPY", "CHF", "CNY", "PLN"}

	Languages = []string{"en", "uk"}

	ExpenseCategories = []string{
		"Food", "Transport", "Utilities", "Communication",
		"Entertainment", "Health", "Other",
	}

	IncomeCategories = []string{
		"Salary", "Business", "Investments", "Gifts", "Other",
	}
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+$`)

// ValidateEmail проверяет адрес почты
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}

	if len(email) > MaxEmailLength {
		return fmt.Errorf("email cannot exceed %d characters", MaxEmailLength)
	}

	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email address")
	}

	return nil
}

// ValidateFullName проверяет имя пользователя
func ValidateFullName(name string) error {
	if len(strings.TrimSpace(name)) > MaxFullNameLength {
		return fmt.Errorf("full name cannot exceed %d characters", MaxFullNameLength)
	}
	return nil
}

// ValidateCurrency проверяет код валюты
func ValidateCurrency(currency string) error {
	if !contains(Currencies, currency) {
		return fmt.Errorf("invalid currency: %s. Valid currencies: %v", currency, Currencies)
	}
	return nil
}

// ValidateLanguage проверяет код языка
func ValidateLanguage(language string) error {
	if !contains(Languages, language) {
		return fmt.Errorf("invalid language: %s. Valid languages: %v", language, Languages)
	}
	return nil
}

// ValidateTransactionType проверяет тип операции
func ValidateTransactionType(txType string) error {
	if txType != TypeIncome && txType != TypeExpense {
		return fmt.Errorf("invalid transaction type: %s", txType)
	}
	return nil
}

// ValidateCategory проверяет категорию операции. Категории из бота приходят
// кнопками, но пользователь может набрать свою, поэтому список не навязывается.
func ValidateCategory(category string) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return fmt.Errorf("category cannot be empty")
	}
	if len(category) > MaxCategoryLength {
		return fmt.Errorf("category cannot exceed %d characters", MaxCategoryLength)
	}
	return nil
}

// CategoriesFor возвращает варианты категорий для типа операции
func CategoriesFor(txType string) []string {
	if txType == TypeIncome {
		return IncomeCategories
	}
	return ExpenseCategories
}

// ValidateAmount проверяет сумму операции
func ValidateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("amount cannot be negative")
	}
	if amount.IsZero() {
		return nil
	}
	// порядок проверяется до Round и Cmp, иначе 1e900000000 масштабируется бесконечно
	exp := amount.Exponent()
	if exp < minAmountExponent || int(exp)+amount.NumDigits() > maxAmountIntDigits+1 {
		return fmt.Errorf("amount must not exceed %s", MaxAmount.StringFixed(AmountScale))
	}
	if amount.Round(AmountScale).GreaterThan(MaxAmount) {
		return fmt.Errorf("amount must not exceed %s", MaxAmount.StringFixed(AmountScale))
	}
	return nil
}

// ParseAmount разбирает сумму из текста и округляет до двух знаков
func ParseAmount(text string) (decimal.Decimal, error) {
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	if text == "" {
		return decimal.Zero, fmt.Errorf("amount cannot be empty")
	}
	if strings.ContainsAny(text, "eE") {
		return decimal.Zero, fmt.Errorf("invalid amount: %s", text)
	}

	amount, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount: %s", text)
	}

	if err := ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}

	return amount.Round(AmountScale), nil
}

// ParseTxDate разбирает дату операции: "today" или YYYY-MM-DD
func ParseTxDate(text string, now time.Time) (time.Time, error) {
	text = strings.TrimSpace(text)
	if strings.EqualFold(text, "today") {
		return now, nil
	}

	date, err := time.ParseInLocation(DateLayout, text, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", text)
	}

	return date, nil
}

// ValidateOrder проверяет направление сортировки
func ValidateOrder(order string) error {
	if order != "asc" && order != "desc" {
		return fmt.Errorf("invalid order: %s. Valid orders: asc, desc", order)
	}
	return nil
}

// ValidatePagination проверяет параметры страницы
func ValidatePagination(page, limit int) error {
	if page < 0 {
		return fmt.Errorf("page cannot be negative")
	}
	if limit <= 0 || limit > MaxPageLimit {
		return fmt.Errorf("limit must be between 1 and %d", MaxPageLimit)
	}
	return nil
}

// IsValidChoice проверяет, что значение входит в список вариантов
func IsValidChoice(choices []string, value string) bool {
	return contains(choices, value)
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
