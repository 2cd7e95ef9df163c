package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/fkhayef/chama/pkg/apperr"
)

// Common errors
var (
	ErrUserNotFound         = apperr.NotFound("user")
	ErrUserExists           = apperr.Conflict("username or email")
	ErrInvalidCredentials   = fmt.Errorf("invalid username or password: %w", apperr.ErrUnauthorized)
	ErrRegistrationDisabled = errors.New("registration is disabled")
)

// TokenIssuer signs access tokens for authenticated users
type TokenIssuer interface {
	Generate(userID int64, username string) (string, time.Time, error)
}

// Service handles operator accounts
type Service struct {
	repo                Repository
	tokens              TokenIssuer
	registrationEnabled bool
	cost                int
}

// NewService creates a new user service
func NewService(repo Repository, tokens TokenIssuer, registrationEnabled bool) *Service {
	return &Service{
		repo:                repo,
		tokens:              tokens,
		registrationEnabled: registrationEnabled,
		cost:                bcrypt.DefaultCost,
	}
}

// Register creates an operator account
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*User, error) {
	if !s.registrationEnabled {
		return nil, ErrRegistrationDisabled
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}
	existing, err = s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, &User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "User registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login checks the credentials and issues an access token
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*User, string, time.Time, error) {
	user, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if user == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		slog.WarnContext(ctx, "Failed login", "username", req.Username)
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Generate(user.ID, user.Username)
	if err != nil {
		return nil, "", time.Time{}, fmt.Errorf("failed to issue token: %w", err)
	}

	return user, token, expiresAt, nil
}

// GetByID retrieves a user by their ID
func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
