package user

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/fkhayef/chama/pkg/apperr"
	"github.com/fkhayef/chama/pkg/middleware"
)

type fakeRepo struct {
	users []*User
}

func (f *fakeRepo) Create(_ context.Context, u *User) (*User, error) {
	cp := *u
	cp.ID = int64(len(f.users) + 1)
	cp.CreatedAt = time.Now()
	f.users = append(f.users, &cp)
	return &cp, nil
}

func (f *fakeRepo) find(match func(*User) bool) (*User, error) {
	for _, u := range f.users {
		if match(u) {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (*User, error) {
	return f.find(func(u *User) bool { return u.ID == id })
}

func (f *fakeRepo) GetByUsername(_ context.Context, username string) (*User, error) {
	return f.find(func(u *User) bool { return u.Username == username })
}

func (f *fakeRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	return f.find(func(u *User) bool { return u.Email == email })
}

type fakeTokens struct{}

func (fakeTokens) Generate(userID int64, username string) (string, time.Time, error) {
	return "token-" + username, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), nil
}

func newTestService(enabled bool) (*Service, *fakeRepo) {
	repo := &fakeRepo{}
	svc := NewService(repo, fakeTokens{}, enabled)
	svc.cost = bcrypt.MinCost
	return svc, repo
}

func TestRegisterRequest_Validate(t *testing.T) {
	tests := []struct {
		name  string
		req   RegisterRequest
		field string
	}{
		{"valid", RegisterRequest{Username: " wanjiru ", Email: "Wanjiru@Example.com", Password: "password1"}, ""},
		{"missing username", RegisterRequest{Email: "a@b.co", Password: "password1"}, "username"},
		{"short username", RegisterRequest{Username: "ab", Email: "a@b.co", Password: "password1"}, "username"},
		{"missing email", RegisterRequest{Username: "wanjiru", Password: "password1"}, "email"},
		{"bad email", RegisterRequest{Username: "wanjiru", Email: "Wanjiru <w@b.co>", Password: "password1"}, "email"},
		{"short password", RegisterRequest{Username: "wanjiru", Email: "a@b.co", Password: "short"}, "password"},
		{"long password", RegisterRequest{Username: "wanjiru", Email: "a@b.co", Password: string(bytes.Repeat([]byte("x"), 73))}, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.field == "" {
				require.NoError(t, err)
				assert.Equal(t, "wanjiru", tt.req.Username)
				assert.Equal(t, "wanjiru@example.com", tt.req.Email)
				return
			}
			var verr *apperr.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(true)

	u, err := svc.Register(ctx, &RegisterRequest{Username: "wanjiru", Email: "w@example.com", Password: "password1"})
	require.NoError(t, err)
	assert.NotEqual(t, "password1", repo.users[0].PasswordHash)

	_, err = svc.Register(ctx, &RegisterRequest{Username: "wanjiru", Email: "x@example.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrUserExists)
	_, err = svc.Register(ctx, &RegisterRequest{Username: "other", Email: "w@example.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrUserExists)

	got, token, expires, err := svc.Login(ctx, &LoginRequest{Username: "wanjiru", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "token-wanjiru", token)
	assert.Equal(t, 2030, expires.Year())

	_, _, _, err = svc.Login(ctx, &LoginRequest{Username: "wanjiru", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, _, _, err = svc.Login(ctx, &LoginRequest{Username: "nobody", Password: "password1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_LogMessages(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	ctx := context.Background()
	svc, _ := newTestService(true)

	tests := []struct {
		name  string
		run   func() error
		msg   string
		level string
	}{
		{"register", func() error {
			_, err := svc.Register(ctx, &RegisterRequest{Username: "wanjiru", Email: "w@example.com", Password: "password1"})
			return err
		}, "User registered", "INFO"},
		{"wrong password", func() error {
			_, _, _, err := svc.Login(ctx, &LoginRequest{Username: "wanjiru", Password: "wrong-password"})
			if errors.Is(err, ErrInvalidCredentials) {
				return nil
			}
			return err
		}, "Failed login", "WARN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			require.NoError(t, tt.run())

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tt.msg, entry["msg"])
			assert.Equal(t, tt.level, entry["level"])
		})
	}
}

func TestService_RegistrationDisabled(t *testing.T) {
	svc, repo := newTestService(false)

	_, err := svc.Register(context.Background(), &RegisterRequest{Username: "wanjiru", Email: "w@example.com", Password: "password1"})

	assert.ErrorIs(t, err, ErrRegistrationDisabled)
	assert.Empty(t, repo.users)
}

func TestHandler(t *testing.T) {
	svc, _ := newTestService(true)
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Mount("/auth", h.AuthRoutes())
	r.With(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithUserID(req.Context(), 1)))
		})
	}).Mount("/users", h.Routes())

	post := func(path, body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body)))
		return rec
	}

	rec := post("/auth/register", `{"username":"wanjiru","email":"w@example.com","password":"password1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = post("/auth/register", `{"username":"wanjiru","email":"w@example.com","password":"password1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = post("/auth/register", `{"username":"x","email":"w@example.com","password":"password1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post("/auth/login", `{"username":"wanjiru","password":"nope-nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = post("/auth/login", `{"username":"wanjiru","password":"password1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data TokenResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "token-wanjiru", body.Data.AccessToken)
	assert.Equal(t, "Bearer", body.Data.TokenType)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/me", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"wanjiru"`)
}

func TestHandler_RegistrationDisabled(t *testing.T) {
	svc, _ := newTestService(false)
	r := chi.NewRouter()
	r.Mount("/auth", NewHandler(svc).AuthRoutes())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/register",
		bytes.NewBufferString(`{"username":"wanjiru","email":"w@example.com","password":"password1"}`)))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
