package http

import (
	"crypto/subtle"
	"net/http"

	"finance-tracker-backend/internal/common/errors"
	"finance-tracker-backend/internal/common/middleware"
	"finance-tracker-backend/internal/features/billing/models"
	"finance-tracker-backend/internal/features/billing/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type BillingHandler struct {
	service       service.BillingService
	auth          middleware.Authenticator
	webhookSecret string
	logger        zerolog.Logger
}

func NewBillingHandler(service service.BillingService, auth middleware.Authenticator, webhookSecret string, logger zerolog.Logger) *BillingHandler {
	return &BillingHandler{
		service:       service,
		auth:          auth,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

func (h *BillingHandler) RegisterRoutes(router *gin.RouterGroup) {
	billing := router.Group("/billing")
	{
		billing.POST("/webhook/:secret", h.webhook)
		billing.POST("/checkout", middleware.RequireAuth(h.auth), h.checkout)
		billing.POST("/cancel", middleware.RequireAuth(h.auth), h.cancel)
	}
}

// @Summary LiqPay server callback
// @Description Verifies the signature and applies the subscription change
// @Tags billing
// @Accept x-www-form-urlencoded
// @Produce json
// @Param secret path string true "Webhook secret"
// @Param data formData string true "Base64 JSON payload"
// @Param signature formData string true "Payload signature"
// @Success 200 {object} models.CallbackResponse
// @Failure 400 {object} middleware.ErrorResponse "Malformed callback"
// @Failure 401 {object} models.CallbackResponse "Invalid signature"
// @Failure 404 {object} middleware.ErrorResponse "Unknown order"
// @Router /billing/webhook/{secret} [post]
func (h *BillingHandler) webhook(c *gin.Context) {
	if h.webhookSecret == "" || subtle.ConstantTimeCompare([]byte(c.Param("secret")), []byte(h.webhookSecret)) != 1 {
		middleware.Fail(c, errors.NewNotFoundError("route", c.Request.URL.Path))
		return
	}

	var req models.SignedRequest
	if err := c.ShouldBind(&req); err != nil {
		middleware.Fail(c, errors.NewBadRequestError("data and signature are required"))
		return
	}

	cb, err := h.service.HandleCallback(c.Request.Context(), req)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeInvalidSignature) {
			c.JSON(http.StatusUnauthorized, models.CallbackResponse{Status: "error", Message: "Invalid signature"})
			return
		}
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, models.CallbackResponse{Status: cb.Status})
}

// @Summary Start a subscription payment
// @Description Returns data and signature for the LiqPay checkout widget
// @Tags billing
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.SignedRequest
// @Failure 401 {object} middleware.ErrorResponse "Unauthorized"
// @Router /billing/checkout [post]
func (h *BillingHandler) checkout(c *gin.Context) {
	account, ok := middleware.CurrentAccount(c)
	if !ok {
		middleware.Fail(c, errors.NewUnauthorizedError("bearer token required"))
		return
	}

	signed, err := h.service.Checkout(c.Request.Context(), account)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, signed)
}

// @Summary Cancel the subscription
// @Description Asks LiqPay to stop renewals and returns its response unchanged
// @Tags billing
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object
// @Failure 400 {object} middleware.ErrorResponse "No subscription"
// @Failure 502 {object} middleware.ErrorResponse "LiqPay unavailable"
// @Router /billing/cancel [post]
func (h *BillingHandler) cancel(c *gin.Context) {
	account, ok := middleware.CurrentAccount(c)
	if !ok {
		middleware.Fail(c, errors.NewUnauthorizedError("bearer token required"))
		return
	}

	resp, err := h.service.Cancel(c.Request.Context(), account)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", resp)
}
