package service

import (
	"context"
	"coworking/internal/auth"
	"coworking/internal/db"
	apperrors "coworking/internal/errors"
	"coworking/internal/repository"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	msgInvalidCredentials = "Invalid credentials"
	msgAuthDisabled       = "Authentication is disabled on this server"
)

type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*db.User, error)
	Login(ctx context.Context, email, password string) (string, error)
}

type authService struct {
	repo   repository.UserRepository
	secret []byte
	ttl    time.Duration
	admins map[string]bool
	now    func() time.Time
}

// NewAuthService builds the account service. Users registering with one of
// adminEmails receive the admin role.
func NewAuthService(repo repository.UserRepository, secret string, ttl time.Duration, adminEmails ...string) AuthService {
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		admins[strings.ToLower(strings.TrimSpace(e))] = true
	}
	return &authService{
		repo:   repo,
		secret: []byte(secret),
		ttl:    ttl,
		admins: admins,
		now:    time.Now,
	}
}

func (s *authService) Register(ctx context.Context, name, email, password string) (*db.User, error) {
	user, err := s.repo.CreateUser(ctx, name, email, password)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			conflict := apperrors.ErrConflict("The email has already been taken.").WithCause(err)
			conflict.Fields = map[string][]string{"email": {"The email has already been taken."}}
			return nil, conflict
		}
		slog.ErrorContext(ctx, "register user", "error", err)
		return nil, apperrors.Internal("An error occurred while creating the user", err)
	}
	if s.admins[strings.ToLower(user.Email)] {
		if user, err = s.repo.SetAdmin(ctx, user.ID, true); err != nil {
			slog.ErrorContext(ctx, "grant admin role", "error", err)
			return nil, apperrors.Internal("An error occurred while creating the user", err)
		}
	}
	slog.InfoContext(ctx, "user registered", "id", user.ID, "admin", user.IsAdmin)
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	if len(s.secret) == 0 {
		return "", apperrors.NewHTTPError(http.StatusServiceUnavailable, msgAuthDisabled)
	}
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperrors.ErrUnauthorized(msgInvalidCredentials)
		}
		return "", apperrors.Internal("An error occurred while signing in", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", apperrors.ErrUnauthorized(msgInvalidCredentials)
	}

	token, err := auth.IssueToken(s.secret, user.ID, user.Email, user.IsAdmin, s.ttl, s.now())
	if err != nil {
		return "", apperrors.Internal("An error occurred while signing in", err)
	}
	return token, nil
}
