package telegram

import (
	"errors"
	"net/http"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	sent     []tgbotapi.Chattable
	sendErr  error
	response *tgbotapi.APIResponse
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.sendErr
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.sent = append(f.sent, c)
	return f.response, nil
}

func TestSend(t *testing.T) {
	api := &fakeAPI{}
	client := NewClient(api, zerolog.Nop())

	require.NoError(t, client.Send(tgbotapi.NewMessage(1, "hi")))
	require.Len(t, api.sent, 1)
	msg, ok := api.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(1), msg.ChatID)
	assert.Equal(t, "hi", msg.Text)
}

func TestSend_RateLimited(t *testing.T) {
	api := &fakeAPI{sendErr: &tgbotapi.Error{
		Code:               http.StatusTooManyRequests,
		Message:            "Too Many Requests",
		ResponseParameters: tgbotapi.ResponseParameters{RetryAfter: 3},
	}}
	client := NewClient(api, zerolog.Nop())

	err := client.Send(tgbotapi.NewMessage(1, "hi"))
	var rpsErr *RPSError
	require.True(t, errors.As(err, &rpsErr))
	assert.Equal(t, 3*time.Second, rpsErr.RetryAfter)
}

func TestSetWebhook(t *testing.T) {
	api := &fakeAPI{response: &tgbotapi.APIResponse{Ok: true}}
	client := NewClient(api, zerolog.Nop())

	require.NoError(t, client.SetWebhook("https://example.com/webhook/secret"))
	require.Len(t, api.sent, 1)
	_, ok := api.sent[0].(tgbotapi.WebhookConfig)
	assert.True(t, ok)

	api.response = &tgbotapi.APIResponse{Ok: false, Description: "bad webhook"}
	assert.Error(t, client.SetWebhook("https://example.com/webhook/secret"))
}

func TestNewBotAPI_EmptyToken(t *testing.T) {
	_, err := NewBotAPI("", time.Second, false)
	assert.Error(t, err)
}
