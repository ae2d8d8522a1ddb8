package liqpay

import (
	"context"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"finance-tracker-backend/internal/features/billing/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	apiVersion           = 3
	subscribeDateLayout  = "2006-01-02 15:04:05"
	subscribePeriodicity = "month"
	maxResponseSize      = 1 << 20
)

var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInvalidPayload   = errors.New("invalid callback payload")
)

// CheckoutParams describes one subscription payment.
type CheckoutParams struct {
	Amount      decimal.Decimal
	Currency    string
	Description string
	OrderID     string
	Language    string
	ResultURL   string
	ServerURL   string
}

// Client signs LiqPay requests and verifies callbacks with the merchant key pair.
type Client struct {
	publicKey  string
	privateKey string
	apiURL     string
	httpClient *http.Client
	validate   *validator.Validate
	now        func() time.Time
}

func NewClient(publicKey, privateKey, apiURL string, timeout time.Duration) *Client {
	return &Client{
		publicKey:  publicKey,
		privateKey: privateKey,
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: timeout},
		validate:   validator.New(),
		now:        time.Now,
	}
}

// Sign возвращает base64(sha1(private_key + data + private_key))
func (c *Client) Sign(data string) string {
	sum := sha1.Sum([]byte(c.privateKey + data + c.privateKey))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// Verify сравнивает подпись за постоянное время
func (c *Client) Verify(data, signature string) bool {
	expected := c.Sign(data)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}

// Encode кодирует payload в data и подписывает его
func (c *Client) Encode(payload interface{}) (models.SignedRequest, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return models.SignedRequest{}, fmt.Errorf("failed to marshal payload: %w", err)
	}

	data := base64.StdEncoding.EncodeToString(raw)
	return models.SignedRequest{Data: data, Signature: c.Sign(data)}, nil
}

// Checkout собирает подписанный запрос на ежемесячную подписку
func (c *Client) Checkout(params CheckoutParams) (models.SignedRequest, error) {
	return c.Encode(models.CheckoutPayload{
		PublicKey:            c.publicKey,
		Version:              fmt.Sprint(apiVersion),
		Action:               "subscribe",
		Amount:               params.Amount.String(),
		Currency:             params.Currency,
		Description:          params.Description,
		OrderID:              params.OrderID,
		Language:             params.Language,
		ResultURL:            params.ResultURL,
		ServerURL:            params.ServerURL,
		Subscribe:            "1",
		SubscribeDateStart:   c.now().Format(subscribeDateLayout),
		SubscribePeriodicity: subscribePeriodicity,
	})
}

// Unsubscribe отменяет подписку по order_id и возвращает ответ LiqPay как есть
func (c *Client) Unsubscribe(ctx context.Context, orderID string) (json.RawMessage, error) {
	signed, err := c.Encode(models.UnsubscribePayload{
		Action:    "unsubscribe",
		Version:   apiVersion,
		PublicKey: c.publicKey,
		OrderID:   orderID,
	})
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("data", signed.Data)
	form.Set("signature", signed.Signature)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call liqpay: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read liqpay response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("liqpay returned status %d", resp.StatusCode)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("liqpay returned non-JSON response")
	}

	return json.RawMessage(body), nil
}

// DecodeCallback проверяет подпись и разбирает data колбэка
func (c *Client) DecodeCallback(req models.SignedRequest) (*models.Callback, error) {
	if !c.Verify(req.Data, req.Signature) {
		return nil, ErrInvalidSignature
	}

	raw, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	var cb models.Callback
	if err := json.Unmarshal(raw, &cb); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := c.validate.Struct(cb); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	return &cb, nil
}
