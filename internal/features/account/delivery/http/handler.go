package http

import (
	"net/http"
	"time"

	"finance-tracker-backend/internal/common/errors"
	"finance-tracker-backend/internal/common/middleware"
	"finance-tracker-backend/internal/features/account/models"
	"finance-tracker-backend/internal/features/account/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type AccountHandler struct {
	service     service.AccountService
	botToken    string
	initDataTTL time.Duration
	logger      zerolog.Logger
}

func NewAccountHandler(service service.AccountService, botToken string, initDataTTL time.Duration, logger zerolog.Logger) *AccountHandler {
	return &AccountHandler{
		service:     service,
		botToken:    botToken,
		initDataTTL: initDataTTL,
		logger:      logger,
	}
}

func (h *AccountHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.POST("/signup", h.signup)
		users.POST("/login", h.login)
		users.POST("/login/app", h.loginApp)
		users.POST("/refresh", h.refresh)
		users.POST("/check_email", h.checkEmail)
		users.POST("/telegram", middleware.TelegramInitData(h.botToken, h.initDataTTL, h.logger), h.telegramLogin)
	}

	me := router.Group("/users/me")
	me.Use(middleware.RequireAuth(h.service))
	{
		me.GET("", h.getMe)
		me.PUT("", h.updateMe)
	}
}

// @Summary Sign up
// @Description Create an account with email and password
// @Tags users
// @Accept json
// @Produce json
// @Param request body models.SignupRequest true "Signup data"
// @Success 201 {object} models.AccountResponse
// @Failure 400 {object} middleware.ErrorResponse "Invalid data"
// @Failure 409 {object} middleware.ErrorResponse "Email already registered"
// @Router /users/signup [post]
func (h *AccountHandler) signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, errors.NewBadRequestError(err.Error()))
		return
	}

	account, err := h.service.Signup(c.Request.Context(), req)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, account)
}

// @Summary Log in
// @Description Password login, returns access and refresh tokens
// @Tags users
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Email"
// @Param password formData string true "Password"
// @Success 200 {object} models.TokenResponse
// @Failure 401 {object} middleware.ErrorResponse "Incorrect email or password"
// @Router /users/login [post]
func (h *AccountHandler) login(c *gin.Context) {
	tokens, err := h.service.Login(c.Request.Context(), c.PostForm("username"), c.PostForm("password"))
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, tokens)
}

// @Summary Log in from the mobile app
// @Description Password login that returns only an access token
// @Tags users
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Email"
// @Param password formData string true "Password"
// @Success 200 {object} models.TokenResponse
// @Failure 401 {object} middleware.ErrorResponse "Incorrect email or password"
// @Router /users/login/app [post]
func (h *AccountHandler) loginApp(c *gin.Context) {
	tokens, err := h.service.Login(c.Request.Context(), c.PostForm("username"), c.PostForm("password"))
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, models.TokenResponse{AccessToken: tokens.AccessToken, TokenType: tokens.TokenType})
}

// @Summary Refresh access token
// @Tags users
// @Accept json
// @Produce json
// @Param request body models.RefreshRequest true "Refresh token"
// @Success 200 {object} models.TokenResponse
// @Failure 401 {object} middleware.ErrorResponse "Invalid refresh token"
// @Router /users/refresh [post]
func (h *AccountHandler) refresh(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, errors.NewBadRequestError(err.Error()))
		return
	}

	tokens, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, tokens)
}

// @Summary Check email
// @Description Reports whether an account with the email exists
// @Tags users
// @Accept json
// @Produce json
// @Param request body models.EmailCheckRequest true "Email"
// @Success 200 {object} models.EmailCheckResponse
// @Failure 400 {object} middleware.ErrorResponse "Missing email"
// @Router /users/check_email [post]
func (h *AccountHandler) checkEmail(c *gin.Context) {
	var req models.EmailCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, errors.NewValidationError("email", "required"))
		return
	}

	exists, err := h.service.EmailExists(c.Request.Context(), req.Email)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, models.EmailCheckResponse{Exists: exists})
}

// @Summary Log in with Telegram
// @Description Exchanges Mini App init data for tokens of the account registered through the bot
// @Tags users
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} models.TokenResponse
// @Failure 401 {object} middleware.ErrorResponse "Invalid init data"
// @Failure 404 {object} middleware.ErrorResponse "No account linked to this Telegram user"
// @Router /users/telegram [post]
func (h *AccountHandler) telegramLogin(c *gin.Context) {
	telegramUser, ok := middleware.TelegramUser(c)
	if !ok {
		middleware.Fail(c, errors.NewUnauthorizedError("Telegram init data required"))
		return
	}

	tokens, err := h.service.TelegramLogin(c.Request.Context(), telegramUser.ID)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, tokens)
}

// @Summary Get current account
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.AccountResponse
// @Failure 401 {object} middleware.ErrorResponse "Unauthorized"
// @Router /users/me [get]
func (h *AccountHandler) getMe(c *gin.Context) {
	account, ok := middleware.CurrentAccount(c)
	if !ok {
		middleware.Fail(c, errors.NewUnauthorizedError("bearer token required"))
		return
	}

	c.JSON(http.StatusOK, models.ToAccountResponse(account))
}

// @Summary Update current account
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ProfileUpdate true "Profile fields"
// @Success 200 {object} models.AccountResponse
// @Failure 400 {object} middleware.ErrorResponse "Invalid data"
// @Failure 401 {object} middleware.ErrorResponse "Unauthorized"
// @Router /users/me [put]
func (h *AccountHandler) updateMe(c *gin.Context) {
	account, ok := middleware.CurrentAccount(c)
	if !ok {
		middleware.Fail(c, errors.NewUnauthorizedError("bearer token required"))
		return
	}

	var update models.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		middleware.Fail(c, errors.NewBadRequestError(err.Error()))
		return
	}

	updated, err := h.service.UpdateProfile(c.Request.Context(), account, update)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}
