package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

type tokenClaims struct {
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenIssuer выпускает и проверяет HS256 токены. Subject токена это email.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (t *TokenIssuer) IssueAccess(email string) (string, error) {
	return t.issue(email, tokenTypeAccess, t.accessTTL)
}

func (t *TokenIssuer) IssueRefresh(email string) (string, error) {
	return t.issue(email, tokenTypeRefresh, t.refreshTTL)
}

// ParseAccess возвращает email из access токена
func (t *TokenIssuer) ParseAccess(token string) (string, error) {
	return t.parse(token, tokenTypeAccess)
}

// ParseRefresh возвращает email из refresh токена
func (t *TokenIssuer) ParseRefresh(token string) (string, error) {
	return t.parse(token, tokenTypeRefresh)
}

func (t *TokenIssuer) issue(email, tokenType string, ttl time.Duration) (string, error) {
	now := t.now()
	claims := tokenClaims{
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (t *TokenIssuer) parse(token, tokenType string) (string, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}

	if claims.Type != tokenType || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
