// Package middleware provides gin middleware for sessions and request logging.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/acesastra/ace-portal/internal/auth"
	"github.com/acesastra/ace-portal/pkg/logger"
)

const principalKey = "ace.principal"

// SessionResolver maps a session cookie value to a principal.
type SessionResolver interface {
	Resolve(ctx context.Context, sessionID string) (*auth.Principal, error)
}

// Session resolves the session cookie into a request-scoped principal.
// Requests without a valid session continue anonymously.
func Session(resolver SessionResolver, cookieName string, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(cookieName)
		if err != nil || sessionID == "" {
			c.Next()
			return
		}

		principal, err := resolver.Resolve(c.Request.Context(), sessionID)
		switch {
		case err == nil:
			c.Set(principalKey, principal)
		case errors.Is(err, auth.ErrNoSession):
		default:
			log.Warn().Err(err).Msg("Failed to resolve session")
		}
		c.Next()
	}
}

// PrincipalFrom returns the principal of the current request, if any.
func PrincipalFrom(c *gin.Context) (*auth.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*auth.Principal)
	return p, ok && p != nil
}

// SetPrincipal stores a principal on the request context.
func SetPrincipal(c *gin.Context, p *auth.Principal) {
	c.Set(principalKey, p)
}

// RequireSession aborts with 401 when the request has no principal.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := PrincipalFrom(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "authentication required",
				"timestamp": time.Now().UTC(),
			})
			return
		}
		c.Next()
	}
}
