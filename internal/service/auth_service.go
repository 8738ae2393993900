package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/santechrwanda/broker-sub002/internal/auth"
	"github.com/santechrwanda/broker-sub002/internal/config"
	"github.com/santechrwanda/broker-sub002/internal/dto"
	"github.com/santechrwanda/broker-sub002/internal/model"
	"github.com/santechrwanda/broker-sub002/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Dispatcher enqueues async jobs. Satisfied by worker.Dispatcher; kept as an
// interface here so services can be tested without Redis.
type Dispatcher interface {
	EnqueueEmail(ctx context.Context, payload interface{}) error
	EnqueueReport(ctx context.Context, payload interface{}) error
}

// AuthService orchestrates credential verification, token issuance, and
// per-request identity resolution.
type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserResponse, error)
	Resolve(ctx context.Context, token string) (*model.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type authService struct {
	repo       repository.UserRepository
	hasher     *auth.Hasher
	tokens     *auth.TokenManager
	dispatcher Dispatcher
	cfg        *config.Config
}

func NewAuthService(repo repository.UserRepository, hasher *auth.Hasher, tokens *auth.TokenManager, dispatcher Dispatcher, cfg *config.Config) AuthService {
	return &authService{repo: repo, hasher: hasher, tokens: tokens, dispatcher: dispatcher, cfg: cfg}
}

// directoryCtx bounds a directory lookup with the configured timeout. A hung
// store must fail fast as ErrDirectoryUnavailable, not hold the request open
// for as long as the driver is willing to wait.
func (s *authService) directoryCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := time.Duration(s.cfg.DirectoryTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

// Login verifies credentials and issues an access token. Unknown email and
// wrong password produce the same ErrInvalidCredentials — no enumeration
// signal. A directory I/O failure (including a lookup timeout) is surfaced as
// ErrDirectoryUnavailable, never disguised as a credential error.
func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	dctx, cancel := s.directoryCtx(ctx)
	defer cancel()

	user, err := s.repo.FindByEmail(dctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, auth.ErrInvalidCredentials
		}
		return nil, auth.ErrDirectoryUnavailable
	}

	if !user.IsActive() || !s.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, auth.ErrInvalidCredentials
	}

	ttl := time.Duration(s.cfg.JWTExpirationHours) * time.Hour
	token, err := s.tokens.Issue(user.ID.String(), user.Email, user.Role, auth.PurposeAccess, ttl)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   s.cfg.JWTExpirationHours * 3600,
		User:        toUserResponse(user),
	}, nil
}

// Register creates an active teller identity from the public sign-up form.
// Elevated roles are granted only by an admin through the user directory.
func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserResponse, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         model.RoleTeller,
		Status:       model.StatusActive,
	}
	dctx, cancel := s.directoryCtx(ctx)
	defer cancel()
	if err := s.repo.Create(dctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, auth.ErrDirectoryUnavailable
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// Resolve verifies the bearer token and then re-fetches the identity from the
// directory. The token stays cryptographically valid for its whole lifetime,
// but authorization must reflect the directory's current state — a user
// deactivated after issuance is rejected here.
func (s *authService) Resolve(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.tokens.Verify(token, auth.PurposeAccess)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, auth.ErrTokenInvalid
	}

	dctx, cancel := s.directoryCtx(ctx)
	defer cancel()
	user, err := s.repo.FindByID(dctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, auth.ErrIdentityNotFound
		}
		return nil, auth.ErrDirectoryUnavailable
	}
	if !user.IsActive() {
		return nil, auth.ErrIdentityInactive
	}
	return user, nil
}

// ForgotPassword issues a short-lived purpose-scoped reset token and enqueues
// the reset email. Unknown emails succeed silently — the response must not
// reveal whether an account exists.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	dctx, cancel := s.directoryCtx(ctx)
	defer cancel()

	user, err := s.repo.FindByEmail(dctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return auth.ErrDirectoryUnavailable
	}
	if !user.IsActive() {
		return nil
	}

	ttl := time.Duration(s.cfg.ResetTokenMinutes) * time.Minute
	token, err := s.tokens.Issue(user.ID.String(), user.Email, user.Role, auth.PurposePasswordReset, ttl)
	if err != nil {
		return err
	}

	payload := map[string]string{
		"to_email": user.Email,
		"subject":  "Password reset",
		"body": fmt.Sprintf(
			"Hello %s,\n\nUse the link below to reset your password. It expires in %d minutes.\n\n%s/reset-password?token=%s\n",
			user.Name, s.cfg.ResetTokenMinutes, s.cfg.Domain, token),
	}
	if err := s.dispatcher.EnqueueEmail(ctx, payload); err != nil {
		log.Error().Err(err).Msg("auth: failed to enqueue reset email")
		return err
	}
	return nil
}

// ResetPassword replaces the stored hash after verifying a reset-purpose
// token. Outstanding access tokens are NOT invalidated — stateless tokens
// carry no server-side revocation; they simply age out.
func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := s.tokens.Verify(token, auth.PurposePasswordReset)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return auth.ErrTokenInvalid
	}

	dctx, cancel := s.directoryCtx(ctx)
	defer cancel()
	user, err := s.repo.FindByID(dctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return auth.ErrIdentityNotFound
		}
		return auth.ErrDirectoryUnavailable
	}
	if !user.IsActive() {
		return auth.ErrIdentityInactive
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.repo.Update(dctx, user); err != nil {
		return auth.ErrDirectoryUnavailable
	}
	return nil
}

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:     u.ID.String(),
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		Status: u.Status,
	}
}
