// Package echoauth binds the authentication flow to Echo route handlers.
package echoauth

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gatekit/userdir/directory"
	"github.com/gatekit/userdir/domain"
)

// Context keys set on successful authentication. ContextUserKey holds
// the full *domain.User; the others are convenience scalars for
// handlers that only care about one attribute.
const (
	ContextUserKey  = "current_user"
	ContextKeyKey   = "user_id"
	ContextEmailKey = "user_email"
	ContextRoleKey  = "user_role"
)

// RequireAuth authenticates the request and injects the resolved user
// into the echo context. Unauthenticated and forbidden outcomes map to
// 401 and 403; store failures propagate to the error handler untouched.
func RequireAuth(auth *directory.Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := auth.Authenticate(c.Request().Context(), c.Request().Header.Get)
			if err != nil {
				switch {
				case errors.Is(err, domain.ErrUnauthenticated):
					return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
				case errors.Is(err, domain.ErrForbidden):
					return echo.NewHTTPError(http.StatusForbidden, err.Error())
				}
				return err
			}

			c.Set(ContextUserKey, user)
			c.Set(ContextKeyKey, user.Key)
			c.Set(ContextEmailKey, user.Email)
			c.Set(ContextRoleKey, string(user.Role))

			return next(c)
		}
	}
}

// CurrentUser returns the user attached by RequireAuth.
func CurrentUser(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(ContextUserKey).(*domain.User)
	return user, ok
}
