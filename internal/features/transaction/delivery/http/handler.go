package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"finance-tracker-backend/internal/common/errors"
	"finance-tracker-backend/internal/common/middleware"
	"finance-tracker-backend/internal/features/transaction/models"
	"finance-tracker-backend/internal/features/transaction/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type TransactionHandler struct {
	service service.TransactionService
	auth    middleware.Authenticator
	logger  zerolog.Logger
}

func NewTransactionHandler(service service.TransactionService, auth middleware.Authenticator, logger zerolog.Logger) *TransactionHandler {
	return &TransactionHandler{
		service: service,
		auth:    auth,
		logger:  logger,
	}
}

func (h *TransactionHandler) RegisterRoutes(router *gin.RouterGroup) {
	transactions := router.Group("/transactions")
	transactions.Use(middleware.RequireAuth(h.auth))
	{
		transactions.POST("", h.create)
		transactions.GET("", h.list)
		transactions.GET("/dashboard/analytics", h.analytics)
		transactions.GET("/export", h.export)
		transactions.GET("/:id", h.get)
		transactions.DELETE("/:id", h.delete)
	}
}

// @Summary Record a transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.NewTransaction true "Transaction"
// @Success 201 {object} models.Transaction
// @Failure 400 {object} middleware.ErrorResponse "Invalid data"
// @Failure 401 {object} middleware.ErrorResponse "Unauthorized"
// @Router /transactions [post]
func (h *TransactionHandler) create(c *gin.Context) {
	account, ok := middleware.CurrentAccount(c)
	if !ok {
		middleware.Fail(c, errors.NewUnauthorizedError("bearer token required"))
		return
	}

	var req models.NewTransaction
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, errors.NewBadRequestError(err.Error()))
		return
	}

	tx, err := h.service.Create(c.Request.Context(), account.ID, req)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, tx)
}

// @Summary List transactions
// @Description Defaults to the current month, newest first, 100 per page
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD, inclusive"
// @Param page query int false "Zero-based page"
// @Param limit query int false "Page size"
// @Param order query string false "asc or desc"
// @Param type query string false "income or expense"
// @Success 200 {array} models.Transaction
// @Failure 400 {object} middleware.ErrorResponse "Invalid query"
// @Router /transactions [get]
func (h *TransactionHandler) list(c *gin.Context) {
	account, ok := middleware.CurrentAccount(c)
	if !ok {
		middleware.Fail(c, errors.NewUnauthorizedError("bearer token required"))
		return
	}

	var query models.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.Fail(c, errors.NewBadRequestError(err.Error()))
		return
	}

	transactions, err := h.service.List(c.Request.Context(), account.ID, query)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, transactions)
}

// @Summary Get a transaction
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 200 {object} models.Transaction
// @Failure 404 {object} middleware.ErrorResponse "Not found"
// @Router /transactions/{id} [get]
func (h *TransactionHandler) get(c *gin.Context) {
	account, ok := middleware.CurrentAccount(c)
	if !ok {
		middleware.Fail(c, errors.NewUnauthorizedError("bearer token required"))
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		middleware.Fail(c, errors.NewValidationError("id", "must be an integer"))
		return
	}

	tx, err := h.service.Get(c.Request.Context(), account.ID, id)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, tx)
}

// @Summary Delete a transaction
// @Tags transactions
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse "Not found"
// @Router /transactions/{id} [delete]
func (h *TransactionHandler) delete(c *gin.Context) {
	account, ok := middleware.CurrentAccount(c)
	if !ok {
		middleware.Fail(c, errors.NewUnauthorizedError("bearer token required"))
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		middleware.Fail(c, errors.NewValidationError("id", "must be an integer"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), account.ID, id); err != nil {
		middleware.Fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Dashboard analytics
// @Description Current month totals, daily series and latest operations
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Analytics
// @Router /transactions/dashboard/analytics [get]
func (h *TransactionHandler) analytics(c *gin.Context) {
	account, ok := middleware.CurrentAccount(c)
	if !ok {
		middleware.Fail(c, errors.NewUnauthorizedError("bearer token required"))
		return
	}

	analytics, err := h.service.Analytics(c.Request.Context(), account.ID)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, analytics)
}

// @Summary Export transactions
// @Description Same filters as the listing, returned as an xlsx workbook
// @Tags transactions
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD, inclusive"
// @Param type query string false "income or expense"
// @Success 200 {file} file
// @Router /transactions/export [get]
func (h *TransactionHandler) export(c *gin.Context) {
	account, ok := middleware.CurrentAccount(c)
	if !ok {
		middleware.Fail(c, errors.NewUnauthorizedError("bearer token required"))
		return
	}

	var query models.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.Fail(c, errors.NewBadRequestError(err.Error()))
		return
	}

	// ответ пишется только после успешной сборки файла
	var buf bytes.Buffer
	if err := h.service.Export(c.Request.Context(), account.ID, query, &buf); err != nil {
		middleware.Fail(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="transactions-%d.xlsx"`, account.ID))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
