package models

import "time"

// Order correlates a checkout request with the callback LiqPay sends later.
type Order struct {
	ID        int64
	UserID    int64
	Key       string
	CreatedAt time.Time
}

// SignedRequest is the data/signature pair LiqPay accepts and sends back.
type SignedRequest struct {
	Data      string `json:"data" form:"data" binding:"required"`
	Signature string `json:"signature" form:"signature" binding:"required"`
}

// Callback is the decoded data of a LiqPay server callback.
type Callback struct {
	Action          string `json:"action" validate:"required"`
	Status          string `json:"status" validate:"required"`
	OrderID         string `json:"order_id" validate:"required"`
	CreateDate      *int64 `json:"create_date"`
	EndDate         *int64 `json:"end_date"`
	ProviderOrderID string `json:"liqpay_order_id"`
}

// CheckoutPayload is the JSON encoded into data for a subscription payment.
type CheckoutPayload struct {
	PublicKey            string `json:"public_key"`
	Version              string `json:"version"`
	Action               string `json:"action"`
	Amount               string `json:"amount"`
	Currency             string `json:"currency"`
	Description          string `json:"description"`
	OrderID              string `json:"order_id"`
	Language             string `json:"language"`
	ResultURL            string `json:"result_url"`
	ServerURL            string `json:"server_url"`
	Subscribe            string `json:"subscribe"`
	SubscribeDateStart   string `json:"subscribe_date_start"`
	SubscribePeriodicity string `json:"subscribe_periodicity"`
}

// UnsubscribePayload is the JSON encoded into data for a cancellation request.
type UnsubscribePayload struct {
	Action    string `json:"action"`
	Version   int    `json:"version"`
	PublicKey string `json:"public_key"`
	OrderID   string `json:"order_id"`
}

type CallbackResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
