package user

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/fkhayef/chama/pkg/apperr"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 50
	minPasswordLength = 8
	// bcrypt ignores input past 72 bytes
	maxPasswordBytes = 72
)

// RegisterRequest represents the request body for creating an operator account
type RegisterRequest struct {
	Username string `json:"username" example:"wanjiru"`
	Email    string `json:"email" example:"wanjiru@example.com"`
	Password string `json:"password" example:"correct horse"`
}

// Validate normalises the request in place
func (r *RegisterRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))

	n := utf8.RuneCountInString(r.Username)
	switch {
	case n == 0:
		return apperr.Required("username")
	case n < minUsernameLength || n > maxUsernameLength:
		return apperr.Invalid("username", "must be between 3 and 50 characters")
	}

	if r.Email == "" {
		return apperr.Required("email")
	}
	if addr, err := mail.ParseAddress(r.Email); err != nil || addr.Address != r.Email {
		return apperr.Invalid("email", "must be a valid email address")
	}

	switch {
	case r.Password == "":
		return apperr.Required("password")
	case utf8.RuneCountInString(r.Password) < minPasswordLength:
		return apperr.Invalid("password", "must be at least 8 characters")
	case len(r.Password) > maxPasswordBytes:
		return apperr.Invalid("password", "must be at most 72 bytes")
	}
	return nil
}

// LoginRequest represents the request body for signing in
type LoginRequest struct {
	Username string `json:"username" example:"wanjiru"`
	Password string `json:"password" example:"correct horse"`
}

// UserResponse represents the response for a single user
type UserResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

// ToResponse converts a User model to a UserResponse DTO
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// TokenResponse is returned by a successful login
type TokenResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type" example:"Bearer"`
	ExpiresAt   string        `json:"expires_at"`
	User        *UserResponse `json:"user"`
}
