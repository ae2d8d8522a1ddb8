package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap_KeepsCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewDatabaseError("insert transaction", cause)

	assert.Equal(t, ErrCodeDatabaseError, err.Code)
	assert.True(t, stderrors.Is(err, cause))
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, ClassInternal, err.Class())
	assert.True(t, strings.Contains(err.Caller, "errors_test.go"), err.Caller)
}

func TestAsAppError_Wrapped(t *testing.T) {
	appErr := NewAccountNotFoundError("someone@example.com")
	wrapped := fmt.Errorf("lookup: %w", appErr)

	got, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Same(t, appErr, got)
	assert.Equal(t, ClassNotFound, got.Class())
	assert.True(t, HasCode(wrapped, ErrCodeAccountNotFound))
	assert.False(t, HasCode(wrapped, ErrCodeOrderNotFound))

	_, ok = AsAppError(stderrors.New("plain"))
	assert.False(t, ok)
	_, ok = AsAppError(nil)
	assert.False(t, ok)
}

func TestClassAndStatus(t *testing.T) {
	cases := []struct {
		err    *AppError
		class  Class
		status int
	}{
		{NewValidationError("amount", "must be positive"), ClassValidation, http.StatusBadRequest},
		{New(ErrCodeNoSubscription, "none"), ClassValidation, http.StatusBadRequest},
		{New(ErrCodeInvalidSignature, "bad"), ClassAuth, http.StatusUnauthorized},
		{New(ErrCodeSubscriptionRequired, "pay"), ClassAuth, http.StatusForbidden},
		{NewTransactionNotFoundError(7), ClassNotFound, http.StatusNotFound},
		{New(ErrCodeEmailTaken, "taken"), ClassConflict, http.StatusConflict},
		{NewConflictError("account", "email taken"), ClassConflict, http.StatusConflict},
		{NewCacheError("get", assert.AnError), ClassUnavailable, http.StatusServiceUnavailable},
		{NewExternalAPIError("liqpay", assert.AnError), ClassUnavailable, http.StatusBadGateway},
		{New("SOMETHING_NEW", "?"), ClassInternal, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(string(tc.err.Code), func(t *testing.T) {
			assert.Equal(t, tc.class, tc.err.Class())
			assert.Equal(t, tc.status, tc.err.HTTPStatus())
		})
	}
}
