package service

import (
	"context"
	"fmt"
	"strings"

	apperrors "finance-tracker-backend/internal/common/errors"
	"finance-tracker-backend/internal/common/validation"
	accountmodels "finance-tracker-backend/internal/features/account/models"
	"finance-tracker-backend/internal/features/assistant/models"
	txmodels "finance-tracker-backend/internal/features/transaction/models"

	"github.com/rs/zerolog"
)

// Model is implemented by *gemini.Client.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// History is implemented by the transaction service.
type History interface {
	Recent(ctx context.Context, userID int64, limit int) ([]*txmodels.Transaction, error)
}

type AssistantService interface {
	Ask(ctx context.Context, account *accountmodels.Account, question string) (*models.AskResponse, error)
}

type assistantService struct {
	model        Model
	history      History
	historyLimit int
	logger       zerolog.Logger
}

// NewAssistantService creates the assistant. A nil model makes every
// question fail with SERVICE_UNAVAILABLE.
func NewAssistantService(model Model, history History, historyLimit int, logger zerolog.Logger) AssistantService {
	return &assistantService{
		model:        model,
		history:      history,
		historyLimit: historyLimit,
		logger:       logger,
	}
}

func (s *assistantService) Ask(ctx context.Context, account *accountmodels.Account, question string) (*models.AskResponse, error) {
	if s.model == nil {
		return nil, apperrors.New(apperrors.ErrCodeServiceUnavailable, "Assistant is not configured")
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, apperrors.NewValidationError("question", "cannot be empty")
	}

	transactions, err := s.history.Recent(ctx, account.ID, s.historyLimit)
	if err != nil {
		return nil, err
	}

	answer, err := s.model.Generate(ctx, BuildPrompt(account, transactions, question))
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", account.ID).Msg("Assistant generation failed")
		return nil, apperrors.NewExternalAPIError("gemini", err)
	}

	return &models.AskResponse{Answer: strings.TrimSpace(answer)}, nil
}

// BuildPrompt собирает запрос к модели: инструкция, история операций, вопрос
func BuildPrompt(account *accountmodels.Account, transactions []*txmodels.Transaction, question string) string {
	var b strings.Builder

	b.WriteString("You are a personal finance assistant. Answer only from the user's transactions below. ")
	b.WriteString("If the data is not enough to answer, say so. Keep the answer short.\n")
	fmt.Fprintf(&b, "Default currency: %s\n\n", account.Currency)

	b.WriteString("Transactions (date, type, amount, currency, category):\n")
	if len(transactions) == 0 {
		b.WriteString("none\n")
	}
	for _, tx := range transactions {
		fmt.Fprintf(&b, "%s, %s, %s, %s, %s\n",
			tx.TxDate.Format(validation.DateLayout), tx.Type, tx.Amount.StringFixed(2), tx.Currency, tx.Category)
	}

	fmt.Fprintf(&b, "\nQuestion: %s\n", question)
	return b.String()
}
