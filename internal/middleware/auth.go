package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/santechrwanda/broker-sub002/internal/apierror"
	"github.com/santechrwanda/broker-sub002/internal/auth"
	"github.com/santechrwanda/broker-sub002/internal/model"
	"github.com/santechrwanda/broker-sub002/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	IdentityKey = "identity"
)

// Authenticate validates the Bearer token on every protected route and
// resolves the identity against the current directory state — a token issued
// before a deactivation no longer passes. The downstream handler never runs
// unless a fully resolved, active identity is attached to the context.
//
// Credential, token, and identity failures all collapse into the same 401
// body; only a directory outage is distinguishable (503), since that is the
// one condition a client may legitimately retry.
func Authenticate(authSvc service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Authentication required"))
			return
		}

		user, err := authSvc.Resolve(c.Request.Context(), strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			if errors.Is(err, auth.ErrDirectoryUnavailable) {
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, apierror.New("Service temporarily unavailable"))
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Invalid or expired token"))
			return
		}

		c.Set(IdentityKey, user)
		c.Next()
	}
}

// RequireRole rejects requests whose resolved identity's role is not in the
// allowed list. Must be chained after Authenticate.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		user, ok := c.MustGet(IdentityKey).(*model.User)
		if !ok || !allowed[user.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("Insufficient permissions"))
			return
		}
		c.Next()
	}
}

// GetIdentity is a helper to retrieve the resolved user from the Gin context.
func GetIdentity(c *gin.Context) *model.User {
	user, _ := c.MustGet(IdentityKey).(*model.User)
	return user
}
