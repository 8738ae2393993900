package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/santechrwanda/broker-sub002/internal/auth"
	"github.com/santechrwanda/broker-sub002/internal/config"
	"github.com/santechrwanda/broker-sub002/internal/dto"
	"github.com/santechrwanda/broker-sub002/internal/model"
	"github.com/santechrwanda/broker-sub002/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── In-memory Repository Stub ─────────────────────────────────────────────────

type stubUserRepo struct {
	users map[string]*model.User // keyed by email
	down  bool                   // simulate directory outage
}

var errStoreDown = errors.New("connection refused")

func newStubRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*model.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	if r.down {
		return errStoreDown
	}
	if _, exists := r.users[u.Email]; exists {
		return repository.ErrDuplicate
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	r.users[u.Email] = u
	return nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	if r.down {
		return nil, errStoreDown
	}
	u, ok := r.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	if r.down {
		return nil, errStoreDown
	}
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubUserRepo) List(_ context.Context) ([]model.User, error) {
	if r.down {
		return nil, errStoreDown
	}
	users := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		if u.IsActive() {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (r *stubUserRepo) ListAll(_ context.Context) ([]model.User, error) {
	if r.down {
		return nil, errStoreDown
	}
	users := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, *u)
	}
	return users, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	if r.down {
		return errStoreDown
	}
	r.users[u.Email] = u
	return nil
}

func (r *stubUserRepo) ChangeStatus(_ context.Context, id uuid.UUID, status string) error {
	if r.down {
		return errStoreDown
	}
	for _, u := range r.users {
		if u.ID == id {
			u.Status = status
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *stubUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	if r.down {
		return errStoreDown
	}
	for email, u := range r.users {
		if u.ID == id {
			delete(r.users, email)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *stubUserRepo) BulkCreate(_ context.Context, users []model.User) error {
	if r.down {
		return errStoreDown
	}
	for i := range users {
		if err := r.Create(context.Background(), &users[i]); err != nil {
			return err
		}
	}
	return nil
}

// ── Dispatcher stub ───────────────────────────────────────────────────────────

type stubDispatcher struct {
	emails  []json.RawMessage
	reports []json.RawMessage
	fail    bool
}

func (d *stubDispatcher) EnqueueEmail(_ context.Context, payload interface{}) error {
	if d.fail {
		return errors.New("queue down")
	}
	data, _ := json.Marshal(payload)
	d.emails = append(d.emails, data)
	return nil
}

func (d *stubDispatcher) EnqueueReport(_ context.Context, payload interface{}) error {
	if d.fail {
		return errors.New("queue down")
	}
	data, _ := json.Marshal(payload)
	d.reports = append(d.reports, data)
	return nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

const testSecret = "test_jwt_secret_32_chars_minimum!"

func newTestCfg() *config.Config {
	return &config.Config{
		JWTSecret:               testSecret,
		JWTExpirationHours:      8,
		ResetTokenMinutes:       30,
		BcryptCost:              4,
		DirectoryTimeoutSeconds: 1,
		Domain:                  "https://ops.example.com",
	}
}

func newAuthFixture(t *testing.T) (AuthService, *stubUserRepo, *stubDispatcher) {
	t.Helper()
	repo := newStubRepo()
	disp := &stubDispatcher{}
	cfg := newTestCfg()
	svc := NewAuthService(repo, auth.NewHasher(cfg.BcryptCost), auth.NewTokenManager(cfg.JWTSecret), disp, cfg)
	return svc, repo, disp
}

func seedUser(t *testing.T, repo *stubUserRepo, name, email, password, role string) *model.User {
	t.Helper()
	hash, err := auth.NewHasher(4).Hash(password)
	require.NoError(t, err)
	u := &model.User{
		ID: uuid.New(), Name: name, Email: email,
		PasswordHash: hash, Role: role, Status: model.StatusActive,
	}
	repo.users[email] = u
	return u
}

// ── Tests: Login ──────────────────────────────────────────────────────────────

func TestLogin_Success(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)
	seedUser(t, repo, "Alice Admin", "alice@ops.example.com", "password123", model.RoleAdmin)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{
		Email: "alice@ops.example.com", Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, model.RoleAdmin, resp.User.Role)
}

func TestLogin_NoEnumerationSignal(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)
	seedUser(t, repo, "Real User", "real@x.com", "correctpass", model.RoleTeller)

	_, ghostErr := svc.Login(context.Background(), dto.LoginRequest{Email: "ghost@x.com", Password: "anything"})
	_, wrongErr := svc.Login(context.Background(), dto.LoginRequest{Email: "real@x.com", Password: "wrongpass"})

	assert.ErrorIs(t, ghostErr, auth.ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, auth.ErrInvalidCredentials)
	assert.Equal(t, ghostErr.Error(), wrongErr.Error(), "unknown email and wrong password must be indistinguishable")
}

func TestLogin_InactiveUser(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)
	u := seedUser(t, repo, "Gone", "gone@x.com", "password123", model.RoleTeller)
	u.Status = model.StatusInactive

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "gone@x.com", Password: "password123"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLogin_DirectoryDown(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)
	repo.down = true

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "a@b.c", Password: "whatever1"})
	assert.ErrorIs(t, err, auth.ErrDirectoryUnavailable,
		"an outage must not be disguised as a credential failure")
}

// hangingUserRepo simulates a store that accepts the query and never answers.
type hangingUserRepo struct{ *stubUserRepo }

func (r *hangingUserRepo) FindByEmail(ctx context.Context, _ string) (*model.User, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (r *hangingUserRepo) FindByID(ctx context.Context, _ uuid.UUID) (*model.User, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func newHangingFixture(t *testing.T) AuthService {
	t.Helper()
	cfg := newTestCfg()
	repo := &hangingUserRepo{stubUserRepo: newStubRepo()}
	return NewAuthService(repo, auth.NewHasher(cfg.BcryptCost), auth.NewTokenManager(cfg.JWTSecret), &stubDispatcher{}, cfg)
}

func TestLogin_HungDirectoryFailsFast(t *testing.T) {
	svc := newHangingFixture(t)

	start := time.Now()
	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "a@b.c", Password: "whatever1"})
	assert.ErrorIs(t, err, auth.ErrDirectoryUnavailable)
	assert.Less(t, time.Since(start), 3*time.Second,
		"lookups must be bounded by the configured timeout, not the driver's patience")
}

func TestResolve_HungDirectoryFailsFast(t *testing.T) {
	svc := newHangingFixture(t)
	token, err := auth.NewTokenManager(testSecret).
		Issue(uuid.NewString(), "a@b.c", model.RoleTeller, auth.PurposeAccess, time.Hour)
	require.NoError(t, err)

	start := time.Now()
	_, err = svc.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, auth.ErrDirectoryUnavailable)
	assert.Less(t, time.Since(start), 3*time.Second)
}

// ── Tests: Resolve ────────────────────────────────────────────────────────────

func TestResolve_RefetchesDirectoryState(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)
	u := seedUser(t, repo, "Tina Teller", "tina@x.com", "password123", model.RoleTeller)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Email: "tina@x.com", Password: "password123"})
	require.NoError(t, err)

	resolved, err := svc.Resolve(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, resolved.ID)

	// Deactivate after issuance: the token still verifies cryptographically,
	// but resolution must reflect the directory's current state.
	u.Status = model.StatusInactive
	_, err = svc.Resolve(context.Background(), resp.AccessToken)
	assert.ErrorIs(t, err, auth.ErrIdentityInactive)

	tokens := auth.NewTokenManager(testSecret)
	_, err = tokens.Verify(resp.AccessToken, auth.PurposeAccess)
	assert.NoError(t, err, "the token itself remains valid — only resolution rejects it")
}

func TestResolve_DeletedIdentity(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)
	seedUser(t, repo, "Bob", "bob@x.com", "password123", model.RoleManager)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Email: "bob@x.com", Password: "password123"})
	require.NoError(t, err)

	delete(repo.users, "bob@x.com")
	_, err = svc.Resolve(context.Background(), resp.AccessToken)
	assert.ErrorIs(t, err, auth.ErrIdentityNotFound)
}

func TestResolve_BadToken(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.Resolve(context.Background(), "this.is.garbage")
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestResolve_DirectoryDown(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)
	seedUser(t, repo, "Carol", "carol@x.com", "password123", model.RoleTeller)
	resp, err := svc.Login(context.Background(), dto.LoginRequest{Email: "carol@x.com", Password: "password123"})
	require.NoError(t, err)

	repo.down = true
	_, err = svc.Resolve(context.Background(), resp.AccessToken)
	assert.ErrorIs(t, err, auth.ErrDirectoryUnavailable)
}

// ── Tests: Register ───────────────────────────────────────────────────────────

func TestRegister_CreatesActiveTeller(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)

	resp, err := svc.Register(context.Background(), dto.RegisterRequest{
		Name: "New Hire", Email: "hire@x.com", Password: "securepass",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleTeller, resp.Role)
	assert.Equal(t, model.StatusActive, resp.Status)

	stored := repo.users["hire@x.com"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "securepass", stored.PasswordHash, "plaintext must never be stored")
	assert.True(t, auth.NewHasher(4).Verify("securepass", stored.PasswordHash))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)
	seedUser(t, repo, "Taken", "taken@x.com", "password123", model.RoleTeller)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Name: "Other", Email: "taken@x.com", Password: "securepass",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.NotErrorIs(t, err, auth.ErrDirectoryUnavailable)
}

// ── Tests: Password reset flow ────────────────────────────────────────────────

func TestForgotPassword_EnqueuesMailForKnownUser(t *testing.T) {
	svc, repo, disp := newAuthFixture(t)
	seedUser(t, repo, "Dora", "dora@x.com", "oldpassword", model.RoleTeller)

	require.NoError(t, svc.ForgotPassword(context.Background(), "dora@x.com"))
	require.Len(t, disp.emails, 1)
	assert.Contains(t, string(disp.emails[0]), "dora@x.com")
	assert.Contains(t, string(disp.emails[0]), "reset-password?token=")
}

func TestForgotPassword_UnknownEmailSilentlySucceeds(t *testing.T) {
	svc, _, disp := newAuthFixture(t)

	assert.NoError(t, svc.ForgotPassword(context.Background(), "nobody@x.com"))
	assert.Empty(t, disp.emails, "no mail, no error — nothing observable")
}

func TestResetPassword_ReplacesHashButNotTokens(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)
	u := seedUser(t, repo, "Eve", "eve@x.com", "oldpassword", model.RoleTeller)

	loginResp, err := svc.Login(context.Background(), dto.LoginRequest{Email: "eve@x.com", Password: "oldpassword"})
	require.NoError(t, err)

	reset, err := auth.NewTokenManager(testSecret).
		Issue(u.ID.String(), u.Email, u.Role, auth.PurposePasswordReset, time.Hour)
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(context.Background(), reset, "brand-new-pass"))

	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "eve@x.com", Password: "oldpassword"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "eve@x.com", Password: "brand-new-pass"})
	assert.NoError(t, err)

	// Known limitation of stateless tokens: outstanding access tokens are not
	// revoked by a password change.
	_, err = svc.Resolve(context.Background(), loginResp.AccessToken)
	assert.NoError(t, err)
}

func TestResetPassword_RejectsAccessToken(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)
	seedUser(t, repo, "Frank", "frank@x.com", "oldpassword", model.RoleTeller)

	loginResp, err := svc.Login(context.Background(), dto.LoginRequest{Email: "frank@x.com", Password: "oldpassword"})
	require.NoError(t, err)

	err = svc.ResetPassword(context.Background(), loginResp.AccessToken, "newpassword")
	assert.ErrorIs(t, err, auth.ErrTokenInvalid, "an access token must not work as a reset token")
}
