package memory

import (
	"context"
	"strings"

	"github.com/fkhayef/chama/internal/user"
)

// UserRepository implements user.Repository
type UserRepository struct {
	s *Store
}

var _ user.Repository = (*UserRepository)(nil)

// Create stores a new user
func (r *UserRepository) Create(ctx context.Context, u *user.User) (*user.User, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.Username == u.Username || strings.EqualFold(existing.Email, u.Email) {
			return nil, user.ErrUserExists
		}
	}

	stored := &user.User{
		ID:           r.s.nextID("users"),
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    r.s.now(),
	}
	r.s.users[stored.ID] = stored

	cp := *stored
	return &cp, nil
}

func (r *UserRepository) find(ctx context.Context, match func(*user.User) bool) (*user.User, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// GetByID returns the user or nil
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return r.find(ctx, func(u *user.User) bool { return u.ID == id })
}

// GetByUsername returns the user or nil
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.find(ctx, func(u *user.User) bool { return u.Username == username })
}

// GetByEmail returns the user or nil
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.find(ctx, func(u *user.User) bool { return strings.EqualFold(u.Email, email) })
}
