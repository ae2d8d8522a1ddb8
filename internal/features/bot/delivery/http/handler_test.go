package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"finance-tracker-backend/internal/common/errors"
	"finance-tracker-backend/internal/common/middleware"
	"finance-tracker-backend/internal/features/bot/models"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConversation struct {
	chatID int64
	text   string
	fail   bool
}

func (s *stubConversation) Handle(_ context.Context, chatID int64, text string) (*models.Reply, error) {
	s.chatID = chatID
	s.text = text
	if s.fail {
		return nil, errors.NewDatabaseError("load account", assert.AnError)
	}
	return &models.Reply{State: models.StateReady, Text: "menu", Keyboard: models.KeyboardMain}, nil
}

type recordingSender struct {
	sent []tgbotapi.Chattable
}

func (r *recordingSender) Send(msg tgbotapi.Chattable) error {
	r.sent = append(r.sent, msg)
	return nil
}

func newTestRouter(conv *stubConversation, sender *recordingSender) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.ErrorHandler(zerolog.Nop()), middleware.Errors(zerolog.Nop()))
	NewBotHandler(conv, sender, "bot-secret", zerolog.Nop()).RegisterRoutes(router)
	return router
}

func post(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

const textUpdate = `{"update_id":10,"message":{"message_id":1,"date":1700000000,"chat":{"id":555,"type":"private"},"text":"Report"}}`

func TestWebhook_DispatchesText(t *testing.T) {
	conv := &stubConversation{}
	sender := &recordingSender{}
	router := newTestRouter(conv, sender)

	w := post(router, "/webhook/bot-secret", textUpdate)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())

	assert.Equal(t, int64(555), conv.chatID)
	assert.Equal(t, "Report", conv.text)

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0].(tgbotapi.MessageConfig)
	assert.Equal(t, int64(555), msg.ChatID)
	assert.Equal(t, "menu", msg.Text)
	_, ok := msg.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	assert.True(t, ok)
}

func TestWebhook_ServiceErrorStillAcknowledged(t *testing.T) {
	conv := &stubConversation{fail: true}
	sender := &recordingSender{}
	router := newTestRouter(conv, sender)

	w := post(router, "/webhook/bot-secret", textUpdate)
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, msgSomethingWentWrong, sender.sent[0].(tgbotapi.MessageConfig).Text)
}

func TestWebhook_Rejections(t *testing.T) {
	conv := &stubConversation{}
	sender := &recordingSender{}
	router := newTestRouter(conv, sender)

	w := post(router, "/webhook/wrong", textUpdate)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = post(router, "/webhook/bot-secret", `{"update_id":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post(router, "/webhook/bot-secret", `{"update_id":11,"message":{"message_id":2,"date":1700000000,"chat":{"id":555,"type":"private"}}}`)
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Empty(t, sender.sent)
	assert.Empty(t, conv.text)
}

func TestBuildMessage(t *testing.T) {
	msg := BuildMessage(1, &models.Reply{Text: "pick", Keyboard: models.KeyboardCurrency})
	kb, ok := msg.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	require.True(t, ok)
	assert.Len(t, kb.Keyboard, 10)
	assert.Equal(t, "USD", kb.Keyboard[0][0].Text)

	msg = BuildMessage(1, &models.Reply{Text: "main", Keyboard: models.KeyboardMain})
	kb = msg.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	assert.Equal(t, "Add income", kb.Keyboard[0][0].Text)
	assert.Equal(t, "Last transactions", kb.Keyboard[1][1].Text)

	msg = BuildMessage(1, &models.Reply{Text: "date", Keyboard: models.KeyboardDate})
	kb = msg.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	assert.Equal(t, "Today", kb.Keyboard[0][0].Text)

	msg = BuildMessage(1, &models.Reply{Text: "bye", Keyboard: models.KeyboardRemove})
	_, ok = msg.ReplyMarkup.(tgbotapi.ReplyKeyboardRemove)
	assert.True(t, ok)

	msg = BuildMessage(1, &models.Reply{Text: "plain"})
	assert.Nil(t, msg.ReplyMarkup)
}
