package handler

import (
	"errors"
	"net/http"

	"github.com/santechrwanda/broker-sub002/internal/apierror"
	"github.com/santechrwanda/broker-sub002/internal/auth"
	"github.com/santechrwanda/broker-sub002/internal/dto"
	"github.com/santechrwanda/broker-sub002/internal/middleware"
	"github.com/santechrwanda/broker-sub002/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{ svc service.AuthService }

func NewAuthHandler(svc service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

// Login authenticates email+password and returns a bearer token. The 401
// body is identical for unknown email and wrong password.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, auth.ErrDirectoryUnavailable) {
			c.JSON(http.StatusServiceUnavailable, apierror.New("Service temporarily unavailable"))
			return
		}
		c.JSON(http.StatusUnauthorized, apierror.New("Invalid email or password"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Register is the public sign-up form. New accounts get the teller role.
// A hashing fault is an internal server error — its cause is never echoed.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusBadRequest, apierror.New("Email already registered"))
		case errors.Is(err, auth.ErrDirectoryUnavailable):
			c.JSON(http.StatusServiceUnavailable, apierror.New("Service temporarily unavailable"))
		default:
			c.JSON(http.StatusInternalServerError, apierror.New("Internal server error"))
		}
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ForgotPassword always answers 202 for well-formed requests — whether or not
// the account exists must not be observable.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, auth.ErrDirectoryUnavailable) {
			c.JSON(http.StatusServiceUnavailable, apierror.New("Service temporarily unavailable"))
			return
		}
		c.JSON(http.StatusInternalServerError, apierror.New("Internal server error"))
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"detail": "If the account exists, a reset link has been sent"})
}

// ResetPassword consumes a reset token from the email link.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		if errors.Is(err, auth.ErrDirectoryUnavailable) {
			c.JSON(http.StatusServiceUnavailable, apierror.New("Service temporarily unavailable"))
			return
		}
		c.JSON(http.StatusUnauthorized, apierror.New("Invalid or expired reset token"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "Password updated"})
}

// Me returns the identity resolved by the authorization gate.
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.GetIdentity(c)
	c.JSON(http.StatusOK, dto.UserResponse{
		ID:     user.ID.String(),
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
		Status: user.Status,
	})
}
