// Package ginauth binds the authentication flow to Gin route handlers.
// It runs the same state machine as the Echo binding; only header
// access, context attachment, and rejection differ.
package ginauth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gatekit/userdir/directory"
	"github.com/gatekit/userdir/domain"
)

// ContextUserKey is the gin context key holding the *domain.User.
const ContextUserKey = "current_user"

// RequireAuth authenticates the request and injects the resolved user
// into the gin context, aborting with a JSON error envelope otherwise.
func RequireAuth(auth *directory.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.Authenticate(c.Request.Context(), c.GetHeader)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrUnauthenticated):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			case errors.Is(err, domain.ErrForbidden):
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})
			default:
				// Store failure: never presented as an auth outcome.
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user attached by RequireAuth.
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	val, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := val.(*domain.User)
	return user, ok
}
