package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"
)

type ErrorCode string

const (
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeBadRequest   ErrorCode = "BAD_REQUEST"

	// Аккаунты
	ErrCodeAccountNotFound    ErrorCode = "ACCOUNT_NOT_FOUND"
	ErrCodeEmailTaken         ErrorCode = "EMAIL_TAKEN"
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInactiveAccount    ErrorCode = "INACTIVE_ACCOUNT"

	// Операции
	ErrCodeTransactionNotFound ErrorCode = "TRANSACTION_NOT_FOUND"

	// Биллинг
	ErrCodeOrderNotFound        ErrorCode = "ORDER_NOT_FOUND"
	ErrCodeInvalidSignature     ErrorCode = "INVALID_SIGNATURE"
	ErrCodeSubscriptionRequired ErrorCode = "SUBSCRIPTION_REQUIRED"
	ErrCodeNoSubscription       ErrorCode = "NO_SUBSCRIPTION"

	// Инфраструктура
	ErrCodeDatabaseError      ErrorCode = "DATABASE_ERROR"
	ErrCodeCacheError         ErrorCode = "CACHE_ERROR"
	ErrCodeTelegramAPI        ErrorCode = "TELEGRAM_API_ERROR"
	ErrCodeExternalAPI        ErrorCode = "EXTERNAL_API_ERROR"
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)

// Class groups codes for logging and status mapping.
type Class int

const (
	ClassInternal Class = iota
	ClassValidation
	ClassNotFound
	ClassAuth
	ClassConflict
	ClassUnavailable
)

type codeInfo struct {
	class  Class
	status int
}

var codes = map[ErrorCode]codeInfo{
	ErrCodeInternal:             {ClassInternal, http.StatusInternalServerError},
	ErrCodeDatabaseError:        {ClassInternal, http.StatusInternalServerError},
	ErrCodeValidation:           {ClassValidation, http.StatusBadRequest},
	ErrCodeBadRequest:           {ClassValidation, http.StatusBadRequest},
	ErrCodeNoSubscription:       {ClassValidation, http.StatusBadRequest},
	ErrCodeNotFound:             {ClassNotFound, http.StatusNotFound},
	ErrCodeAccountNotFound:      {ClassNotFound, http.StatusNotFound},
	ErrCodeTransactionNotFound:  {ClassNotFound, http.StatusNotFound},
	ErrCodeOrderNotFound:        {ClassNotFound, http.StatusNotFound},
	ErrCodeUnauthorized:         {ClassAuth, http.StatusUnauthorized},
	ErrCodeInvalidCredentials:   {ClassAuth, http.StatusUnauthorized},
	ErrCodeInvalidSignature:     {ClassAuth, http.StatusUnauthorized},
	ErrCodeForbidden:            {ClassAuth, http.StatusForbidden},
	ErrCodeSubscriptionRequired: {ClassAuth, http.StatusForbidden},
	ErrCodeInactiveAccount:      {ClassAuth, http.StatusForbidden},
	ErrCodeConflict:             {ClassConflict, http.StatusConflict},
	ErrCodeEmailTaken:           {ClassConflict, http.StatusConflict},
	ErrCodeCacheError:           {ClassUnavailable, http.StatusServiceUnavailable},
	ErrCodeServiceUnavailable:   {ClassUnavailable, http.StatusServiceUnavailable},
	ErrCodeTelegramAPI:          {ClassUnavailable, http.StatusBadGateway},
	ErrCodeExternalAPI:          {ClassUnavailable, http.StatusBadGateway},
}

// AppError is the error type handlers hand to middleware.Fail. Only Code,
// Message, Details and the request fields are rendered to clients.
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	RequestID string                 `json:"request_id,omitempty"`
	UserID    int64                  `json:"user_id,omitempty"`

	// Caller is the first frame outside this package, file:line
	Caller string `json:"-"`
	Cause  error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Class возвращает группу кода; неизвестные коды считаются внутренними
func (e *AppError) Class() Class {
	return codes[e.Code].class
}

// HTTPStatus возвращает статус ответа для кода ошибки
func (e *AppError) HTTPStatus() int {
	if info, ok := codes[e.Code]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func (e *AppError) WithRequestID(requestID string) *AppError {
	e.RequestID = requestID
	return e
}

func (e *AppError) WithUserID(userID int64) *AppError {
	e.UserID = userID
	return e
}

// New создает ошибку приложения
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		Caller:    caller(),
	}
}

// Wrap оборачивает ошибку с сохранением причины
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

func caller() string {
	for i := 1; i < 8; i++ {
		_, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		if strings.HasSuffix(file, "common/errors/errors.go") {
			continue
		}
		return fmt.Sprintf("%s:%d", file, line)
	}
	return ""
}

func NewValidationError(field, reason string) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf("Validation failed for field '%s': %s", field, reason)).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

func NewBadRequestError(reason string) *AppError {
	return New(ErrCodeBadRequest, reason)
}

func NewNotFoundError(resource, id interface{}) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource)).
		WithDetail("resource", resource).
		WithDetail("id", id)
}

func NewAccountNotFoundError(key interface{}) *AppError {
	return New(ErrCodeAccountNotFound, "Account not found").
		WithDetail("account", key)
}

func NewTransactionNotFoundError(id int64) *AppError {
	return New(ErrCodeTransactionNotFound, fmt.Sprintf("Transaction not found: %d", id)).
		WithDetail("transaction_id", id)
}

func NewUnauthorizedError(reason string) *AppError {
	return New(ErrCodeUnauthorized, fmt.Sprintf("Unauthorized: %s", reason)).
		WithDetail("reason", reason)
}

// NewDatabaseError прячет текст драйвера от клиента, причина остается в Cause
func NewDatabaseError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeDatabaseError, fmt.Sprintf("Database operation failed: %s", operation)).
		WithDetail("operation", operation)
}

func NewCacheError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeCacheError, fmt.Sprintf("Cache operation failed: %s", operation)).
		WithDetail("operation", operation)
}

func NewExternalAPIError(service string, err error) *AppError {
	return Wrap(err, ErrCodeExternalAPI, fmt.Sprintf("External API call failed: %s", service)).
		WithDetail("service", service)
}

func NewConflictError(resource, reason string) *AppError {
	return New(ErrCodeConflict, fmt.Sprintf("Conflict with %s: %s", resource, reason)).
		WithDetail("resource", resource).
		WithDetail("reason", reason)
}

// AsAppError приводит ошибку к AppError, в том числе обернутую через %w
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if err != nil && stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode сообщает, несет ли цепочка ошибок AppError с данным кодом
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
