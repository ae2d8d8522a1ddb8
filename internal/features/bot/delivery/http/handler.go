package http

import (
	"crypto/subtle"
	"net/http"

	"finance-tracker-backend/internal/common/errors"
	"finance-tracker-backend/internal/common/middleware"
	"finance-tracker-backend/internal/common/validation"
	"finance-tracker-backend/internal/features/bot/models"
	"finance-tracker-backend/internal/features/bot/service"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const msgSomethingWentWrong = "⚠️ Something went wrong. Please try again later."

// Sender is implemented by *telegram.Client.
type Sender interface {
	Send(msg tgbotapi.Chattable) error
}

type BotHandler struct {
	service       service.ConversationService
	sender        Sender
	webhookSecret string
	logger        zerolog.Logger
}

func NewBotHandler(service service.ConversationService, sender Sender, webhookSecret string, logger zerolog.Logger) *BotHandler {
	return &BotHandler{
		service:       service,
		sender:        sender,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

func (h *BotHandler) RegisterRoutes(router gin.IRouter) {
	router.POST("/webhook/:secret", h.webhook)
}

// @Summary Telegram bot webhook
// @Description Receives bot updates and answers through the Bot API
// @Tags bot
// @Accept json
// @Produce json
// @Param secret path string true "Webhook secret"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} middleware.ErrorResponse "Malformed update"
// @Router /webhook/{secret} [post]
func (h *BotHandler) webhook(c *gin.Context) {
	if h.webhookSecret == "" || subtle.ConstantTimeCompare([]byte(c.Param("secret")), []byte(h.webhookSecret)) != 1 {
		middleware.Fail(c, errors.NewNotFoundError("route", c.Request.URL.Path))
		return
	}

	var update tgbotapi.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		middleware.Fail(c, errors.NewBadRequestError("invalid update"))
		return
	}

	msg := update.Message
	if msg == nil || msg.Chat == nil || msg.Text == "" {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	chatID := msg.Chat.ID
	log := h.logger.With().Int64("chat_id", chatID).Int("update_id", update.UpdateID).Logger()

	reply, err := h.service.Handle(c.Request.Context(), chatID, msg.Text)
	if err != nil {
		// Telegram повторяет апдейт при не-2xx, поэтому ошибка только логируется
		log.Error().Err(err).Msg("Failed to handle bot message")
		reply = &models.Reply{Text: msgSomethingWentWrong}
	}

	if err := h.sender.Send(BuildMessage(chatID, reply)); err != nil {
		log.Error().Err(err).Msg("Failed to send bot reply")
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// BuildMessage переводит ответ автомата в сообщение Bot API
func BuildMessage(chatID int64, reply *models.Reply) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, reply.Text)

	switch reply.Keyboard {
	case models.KeyboardMain:
		msg.ReplyMarkup = mainKeyboard()
	case models.KeyboardCurrency:
		msg.ReplyMarkup = columnKeyboard(validation.Currencies)
	case models.KeyboardExpenseCategories:
		msg.ReplyMarkup = columnKeyboard(validation.ExpenseCategories)
	case models.KeyboardIncomeCategories:
		msg.ReplyMarkup = columnKeyboard(validation.IncomeCategories)
	case models.KeyboardDate:
		msg.ReplyMarkup = columnKeyboard([]string{"Today"})
	case models.KeyboardRemove:
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	}

	return msg
}

func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Add income"),
			tgbotapi.NewKeyboardButton("Add expense"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Report"),
			tgbotapi.NewKeyboardButton("Last transactions"),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func columnKeyboard(options []string) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(options))
	for _, option := range options {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(option)))
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}
