package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"fruitbox-be/internal/config"
	"fruitbox-be/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAdminNotConfigured = errors.New("admin login is not configured")
)

// Authenticator checks the single dashboard admin configured through the
// environment and issues its access token.
type Authenticator struct {
	email        string
	passwordHash []byte
	secret       string
	ttl          time.Duration
}

func NewAuthenticator(cfg config.AdminConfig) *Authenticator {
	return &Authenticator{
		email:        strings.ToLower(strings.TrimSpace(cfg.Email)),
		passwordHash: []byte(cfg.PasswordHash),
		secret:       cfg.JWTSecret,
		ttl:          cfg.TokenTTL,
	}
}

func (a *Authenticator) Configured() bool {
	return a.email != "" && len(a.passwordHash) > 0 && a.secret != ""
}

func (a *Authenticator) Secret() string {
	return a.secret
}

// Login returns a signed admin token when email and password match.
func (a *Authenticator) Login(ctx context.Context, email, password string) (string, error) {
	log := logger.FromCtx(ctx)

	if !a.Configured() {
		return "", ErrAdminNotConfigured
	}

	email = strings.ToLower(strings.TrimSpace(email))
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(a.email)) == 1
	passwordOK := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) == nil
	if !emailOK || !passwordOK {
		log.Warn("Admin login rejected", zap.String("email", email))
		return "", ErrInvalidCredentials
	}

	token, err := IssueToken(a.secret, a.email, RoleAdmin, a.ttl)
	if err != nil {
		return "", err
	}

	log.Info("Admin logged in", zap.String("email", a.email))
	return token, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}
