package http

import (
	"net/http"

	"finance-tracker-backend/internal/common/errors"
	"finance-tracker-backend/internal/common/middleware"
	"finance-tracker-backend/internal/features/assistant/models"
	"finance-tracker-backend/internal/features/assistant/service"

	"github.com/gin-gonic/gin"
)

type AssistantHandler struct {
	service service.AssistantService
	auth    middleware.Authenticator
}

func NewAssistantHandler(service service.AssistantService, auth middleware.Authenticator) *AssistantHandler {
	return &AssistantHandler{service: service, auth: auth}
}

func (h *AssistantHandler) RegisterRoutes(router *gin.RouterGroup) {
	assistant := router.Group("/assistant")
	assistant.Use(middleware.RequireAuth(h.auth), middleware.RequireSubscription())
	{
		assistant.POST("/ask", h.ask)
	}
}

// @Summary Ask the finance assistant
// @Description Answers a question using the caller's recent transactions. Subscribers only.
// @Tags assistant
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.AskRequest true "Question"
// @Success 200 {object} models.AskResponse
// @Failure 403 {object} middleware.ErrorResponse "Subscription required"
// @Failure 503 {object} middleware.ErrorResponse "Assistant not configured"
// @Router /assistant/ask [post]
func (h *AssistantHandler) ask(c *gin.Context) {
	account, ok := middleware.CurrentAccount(c)
	if !ok {
		middleware.Fail(c, errors.NewUnauthorizedError("bearer token required"))
		return
	}

	var req models.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, errors.NewBadRequestError(err.Error()))
		return
	}

	resp, err := h.service.Ask(c.Request.Context(), account, req.Question)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
