package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"launchhub/internal/apperrors"
	"launchhub/internal/model"
	"launchhub/pkg/rbac"
	"launchhub/pkg/util"
)

const minPasswordLength = 8

var ErrInvalidCredentials = errors.New("invalid email or password")

type AuthService struct {
	users     UserStore
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(users UserStore, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{users: users, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

// Register creates a user with the default role.
func (s *AuthService) Register(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var errs apperrors.ValidationErrors
	if _, err := mail.ParseAddress(email); err != nil {
		errs = append(errs, apperrors.NewValidationError("email", "invalid_email", "a valid email address is required"))
	}
	if len(password) < minPasswordLength {
		errs = append(errs, apperrors.NewValidationError("password", "too_short", "password must be at least 8 characters"))
	}
	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Email:        email,
		PasswordHash: hash,
		Role:         rbac.RoleUser,
		CreatedAt:    timeNow(),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login checks the credentials and returns a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, apperrors.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if !util.CheckPassword(password, u.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	return util.GenerateJWT(u.ID, u.Role, s.jwtSecret, s.tokenTTL)
}
