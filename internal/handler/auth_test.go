package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/santechrwanda/broker-sub002/internal/auth"
	"github.com/santechrwanda/broker-sub002/internal/config"
	"github.com/santechrwanda/broker-sub002/internal/dto"
	"github.com/santechrwanda/broker-sub002/internal/middleware"
	"github.com/santechrwanda/broker-sub002/internal/model"
	"github.com/santechrwanda/broker-sub002/internal/repository"
	"github.com/santechrwanda/broker-sub002/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memUserRepo is a minimal in-memory repository.UserRepository for wiring the
// real service stack under httptest.
type memUserRepo struct {
	users map[string]*model.User
}

func newMemUserRepo() *memUserRepo { return &memUserRepo{users: make(map[string]*model.User)} }

func (r *memUserRepo) Create(_ context.Context, u *model.User) error {
	if _, ok := r.users[u.Email]; ok {
		return repository.ErrDuplicate
	}
	u.ID = uuid.New()
	r.users[u.Email] = u
	return nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	if u, ok := r.users[email]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) List(_ context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		if u.IsActive() {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *memUserRepo) ListAll(_ context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *memUserRepo) Update(_ context.Context, u *model.User) error {
	r.users[u.Email] = u
	return nil
}

func (r *memUserRepo) ChangeStatus(_ context.Context, id uuid.UUID, status string) error {
	for _, u := range r.users {
		if u.ID == id {
			u.Status = status
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	for email, u := range r.users {
		if u.ID == id {
			delete(r.users, email)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memUserRepo) BulkCreate(_ context.Context, users []model.User) error {
	for i := range users {
		if err := r.Create(context.Background(), &users[i]); err != nil {
			return err
		}
	}
	return nil
}

type noopDispatcher struct{}

func (noopDispatcher) EnqueueEmail(context.Context, interface{}) error  { return nil }
func (noopDispatcher) EnqueueReport(context.Context, interface{}) error { return nil }

// newTestServer wires the real auth service, handler, and gate over an
// in-memory repository, mirroring the production route layout.
func newTestServer(t *testing.T) (*gin.Engine, *memUserRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		JWTSecret:          "handler_test_secret_long_enough!!",
		JWTExpirationHours: 1,
		ResetTokenMinutes:  30,
		BcryptCost:         4,
		Domain:             "https://ops.example.com",
	}
	repo := newMemUserRepo()
	authSvc := service.NewAuthService(repo, auth.NewHasher(cfg.BcryptCost), auth.NewTokenManager(cfg.JWTSecret), noopDispatcher{}, cfg)
	h := NewAuthHandler(authSvc)

	r := gin.New()
	v1 := r.Group("/v1")
	v1.POST("/auth/login", h.Login)
	v1.POST("/auth/register", h.Register)
	v1.POST("/auth/forgot-password", h.ForgotPassword)

	gate := middleware.Authenticate(authSvc)
	v1.GET("/auth/me", gate, h.Me)
	v1.GET("/users", gate, middleware.RequireRole(model.RoleAdmin), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"detail": "ok"})
	})
	return r, repo
}

func postJSON(r *gin.Engine, path string, body interface{}, token string) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func getWithToken(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthFlow_RegisterLoginMe(t *testing.T) {
	r, _ := newTestServer(t)

	w := postJSON(r, "/v1/auth/register", dto.RegisterRequest{
		Name: "New Teller", Email: "new@x.com", Password: "password123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = postJSON(r, "/v1/auth/login", dto.LoginRequest{Email: "new@x.com", Password: "password123"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var login dto.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	assert.Equal(t, "bearer", login.TokenType)
	assert.Equal(t, 3600, login.ExpiresIn)
	assert.Equal(t, model.RoleTeller, login.User.Role)

	w = getWithToken(r, "/v1/auth/me", login.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "new@x.com")
}

func TestAuthFlow_LoginErrorsIndistinguishable(t *testing.T) {
	r, _ := newTestServer(t)

	w := postJSON(r, "/v1/auth/register", dto.RegisterRequest{
		Name: "Real", Email: "real@x.com", Password: "password123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	ghost := postJSON(r, "/v1/auth/login", dto.LoginRequest{Email: "ghost@x.com", Password: "password123"}, "")
	wrong := postJSON(r, "/v1/auth/login", dto.LoginRequest{Email: "real@x.com", Password: "wrongpass1"}, "")

	assert.Equal(t, http.StatusUnauthorized, ghost.Code)
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, ghost.Body.String(), wrong.Body.String())
}

func TestAuthFlow_RoleGuard(t *testing.T) {
	r, repo := newTestServer(t)

	w := postJSON(r, "/v1/auth/register", dto.RegisterRequest{
		Name: "Plain Teller", Email: "teller@x.com", Password: "password123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(r, "/v1/auth/login", dto.LoginRequest{Email: "teller@x.com", Password: "password123"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var tellerLogin dto.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tellerLogin))

	w = getWithToken(r, "/v1/users", tellerLogin.AccessToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Promote and log in again: the new token carries the admin role.
	repo.users["teller@x.com"].Role = model.RoleAdmin
	w = postJSON(r, "/v1/auth/login", dto.LoginRequest{Email: "teller@x.com", Password: "password123"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var adminLogin dto.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &adminLogin))

	w = getWithToken(r, "/v1/users", adminLogin.AccessToken)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthFlow_DeactivationTakesEffectImmediately(t *testing.T) {
	r, repo := newTestServer(t)

	w := postJSON(r, "/v1/auth/register", dto.RegisterRequest{
		Name: "Soon Gone", Email: "gone@x.com", Password: "password123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(r, "/v1/auth/login", dto.LoginRequest{Email: "gone@x.com", Password: "password123"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var login dto.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	require.Equal(t, http.StatusOK, getWithToken(r, "/v1/auth/me", login.AccessToken).Code)

	// Deactivate — the still-unexpired token stops working on the next request.
	repo.users["gone@x.com"].Status = model.StatusInactive
	w = getWithToken(r, "/v1/auth/me", login.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"detail":"Invalid or expired token"}`, w.Body.String())
}

func TestAuthFlow_ExpiredToken(t *testing.T) {
	r, repo := newTestServer(t)

	u := &model.User{
		ID: uuid.New(), Name: "Expired", Email: "expired@x.com",
		Role: model.RoleTeller, Status: model.StatusActive,
	}
	repo.users[u.Email] = u

	expired, err := auth.NewTokenManager("handler_test_secret_long_enough!!").
		Issue(u.ID.String(), u.Email, u.Role, auth.PurposeAccess, -time.Minute)
	require.NoError(t, err)

	w := getWithToken(r, "/v1/auth/me", expired)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthFlow_HashingFaultIsServerFault(t *testing.T) {
	r, _ := newTestServer(t)

	// bcrypt rejects inputs over 72 bytes — an internal fault, not a client
	// error, and its cause must never reach the response body.
	long := strings.Repeat("p", 100)
	w := postJSON(r, "/v1/auth/register", dto.RegisterRequest{
		Name: "Long Pass", Email: "long@x.com", Password: long,
	}, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail":"Internal server error"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "bcrypt")
}

func TestAuthFlow_DuplicateRegister(t *testing.T) {
	r, _ := newTestServer(t)

	req := dto.RegisterRequest{Name: "First", Email: "taken@x.com", Password: "password123"}
	require.Equal(t, http.StatusCreated, postJSON(r, "/v1/auth/register", req, "").Code)

	w := postJSON(r, "/v1/auth/register", req, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"detail":"Email already registered"}`, w.Body.String())
}

func TestAuthFlow_ValidationErrors(t *testing.T) {
	r, _ := newTestServer(t)

	w := postJSON(r, "/v1/auth/login", map[string]string{"email": "not-an-email", "password": "x"}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "fields")
}

func TestAuthFlow_ForgotPasswordAlways202(t *testing.T) {
	r, _ := newTestServer(t)

	w := postJSON(r, "/v1/auth/forgot-password", dto.ForgotPasswordRequest{Email: "nobody@x.com"}, "")
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), "If the account exists")
}
