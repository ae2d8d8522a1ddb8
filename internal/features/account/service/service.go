package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	apperrors "finance-tracker-backend/internal/common/errors"
	"finance-tracker-backend/internal/common/validation"
	"finance-tracker-backend/internal/features/account/models"
	"finance-tracker-backend/internal/features/account/repository"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultLanguage = "en"
	defaultCurrency = "USD"
	tokenType       = "bearer"
)

type AccountService interface {
	Signup(ctx context.Context, req models.SignupRequest) (*models.AccountResponse, error)
	Login(ctx context.Context, email, password string) (*models.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenResponse, error)
	TelegramLogin(ctx context.Context, telegramUserID int64) (*models.TokenResponse, error)
	Authenticate(ctx context.Context, accessToken string) (*models.Account, error)
	UpdateProfile(ctx context.Context, account *models.Account, update models.ProfileUpdate) (*models.AccountResponse, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

type accountService struct {
	repo   repository.AccountRepository
	tokens *TokenIssuer
	logger zerolog.Logger
}

func NewAccountService(repo repository.AccountRepository, tokens *TokenIssuer, logger zerolog.Logger) AccountService {
	return &accountService{
		repo:   repo,
		tokens: tokens,
		logger: logger,
	}
}

func (s *accountService) Signup(ctx context.Context, req models.SignupRequest) (*models.AccountResponse, error) {
	email := strings.TrimSpace(req.Email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, apperrors.NewValidationError("email", err.Error())
	}
	if err := validation.ValidateFullName(req.FullName); err != nil {
		return nil, apperrors.NewValidationError("full_name", err.Error())
	}

	language := orDefault(req.Language, defaultLanguage)
	if err := validation.ValidateLanguage(language); err != nil {
		return nil, apperrors.NewValidationError("language", err.Error())
	}
	currency := orDefault(req.Currency, defaultCurrency)
	if err := validation.ValidateCurrency(currency); err != nil {
		return nil, apperrors.NewValidationError("currency", err.Error())
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to hash password")
	}

	account := &models.Account{
		Email:          email,
		HashedPassword: string(hashed),
		FullName:       strings.TrimSpace(req.FullName),
		Language:       language,
		Currency:       currency,
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, apperrors.New(apperrors.ErrCodeEmailTaken, "Email already registered").
				WithDetail("email", email)
		}
		return nil, apperrors.NewDatabaseError("create account", err)
	}

	s.logger.Info().Int64("account_id", account.ID).Msg("Account signed up")
	return models.ToAccountResponse(account), nil
}

func (s *accountService) Login(ctx context.Context, email, password string) (*models.TokenResponse, error) {
	account, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, invalidCredentials()
		}
		return nil, apperrors.NewDatabaseError("get account", err)
	}

	// аккаунты из бота не имеют пароля и входят через Telegram
	if account.HashedPassword == "" ||
		bcrypt.CompareHashAndPassword([]byte(account.HashedPassword), []byte(password)) != nil {
		return nil, invalidCredentials()
	}

	if !account.IsActive {
		return nil, apperrors.New(apperrors.ErrCodeInactiveAccount, "Account is inactive")
	}

	return s.issuePair(account.Email)
}

func (s *accountService) Refresh(ctx context.Context, refreshToken string) (*models.TokenResponse, error) {
	email, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("invalid refresh token")
	}

	if _, err := s.lookup(ctx, email); err != nil {
		return nil, err
	}

	access, err := s.tokens.IssueAccess(email)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to issue token")
	}

	return &models.TokenResponse{AccessToken: access, TokenType: tokenType}, nil
}

func (s *accountService) TelegramLogin(ctx context.Context, telegramUserID int64) (*models.TokenResponse, error) {
	// в личном чате chat id совпадает с id пользователя
	account, err := s.repo.GetByTelegramChatID(ctx, strconv.FormatInt(telegramUserID, 10))
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, apperrors.NewAccountNotFoundError(telegramUserID).
				WithDetail("hint", "register through the bot with /start")
		}
		return nil, apperrors.NewDatabaseError("get account", err)
	}

	return s.issuePair(account.Email)
}

// Authenticate возвращает владельца access токена
func (s *accountService) Authenticate(ctx context.Context, accessToken string) (*models.Account, error) {
	email, err := s.tokens.ParseAccess(accessToken)
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("could not validate credentials")
	}

	account, err := s.lookup(ctx, email)
	if err != nil {
		return nil, err
	}

	if !account.IsActive {
		return nil, apperrors.New(apperrors.ErrCodeInactiveAccount, "Account is inactive")
	}

	return account, nil
}

func (s *accountService) UpdateProfile(ctx context.Context, account *models.Account, update models.ProfileUpdate) (*models.AccountResponse, error) {
	if update.FullName != nil {
		if err := validation.ValidateFullName(*update.FullName); err != nil {
			return nil, apperrors.NewValidationError("full_name", err.Error())
		}
	}
	if update.Language != nil {
		if err := validation.ValidateLanguage(*update.Language); err != nil {
			return nil, apperrors.NewValidationError("language", err.Error())
		}
	}
	if update.Currency != nil {
		if err := validation.ValidateCurrency(*update.Currency); err != nil {
			return nil, apperrors.NewValidationError("currency", err.Error())
		}
	}

	if err := s.repo.UpdateProfile(ctx, account.ID, update); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, apperrors.NewAccountNotFoundError(account.ID)
		}
		return nil, apperrors.NewDatabaseError("update profile", err)
	}

	updated, err := s.repo.GetByID(ctx, account.ID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("get account", err)
	}

	return models.ToAccountResponse(updated), nil
}

func (s *accountService) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, repository.ErrAccountNotFound) {
		return false, nil
	}
	return false, apperrors.NewDatabaseError("get account", err)
}

func (s *accountService) lookup(ctx context.Context, email string) (*models.Account, error) {
	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, apperrors.NewUnauthorizedError("account no longer exists")
		}
		return nil, apperrors.NewDatabaseError("get account", err)
	}
	return account, nil
}

func (s *accountService) issuePair(email string) (*models.TokenResponse, error) {
	access, err := s.tokens.IssueAccess(email)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to issue token")
	}
	refresh, err := s.tokens.IssueRefresh(email)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to issue token")
	}

	return &models.TokenResponse{AccessToken: access, RefreshToken: refresh, TokenType: tokenType}, nil
}

func invalidCredentials() *apperrors.AppError {
	return apperrors.New(apperrors.ErrCodeInvalidCredentials, "Incorrect email or password")
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
