package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gatekit/userdir/domain"
	"github.com/gatekit/userdir/metrics"
	"github.com/gatekit/userdir/ports"
)

// Identity headers recognised during extraction. The configured primary
// header is consulted first; X-User-Id and the bearer token are
// fallbacks, in that order. The first non-empty source wins and later
// sources are not read.
const (
	HeaderEmail         = "X-User-Email"
	HeaderUserID        = "X-User-Id"
	HeaderAuthorization = "Authorization"
)

// AuthOptions configures the authentication state machine.
type AuthOptions struct {
	// Header is the primary identity header. Defaults to HeaderEmail.
	Header string
	// RequiredRoles restricts access to the listed roles. Empty means
	// any authenticated user is allowed.
	RequiredRoles []domain.Role
	// AutoCreate provisions a record with default attributes on first
	// sight of an unknown identity.
	AutoCreate bool
	// ParseIdentity maps a bearer token to a lookup key. Defaults to
	// RawIdentity.
	ParseIdentity IdentityParser
}

// Authenticator runs the per-request authentication flow:
// extract an identity from headers, look the user up, optionally
// provision it, optionally check role membership. Both framework
// bindings delegate here so the flow cannot drift between them.
type Authenticator struct {
	dir  ports.Directory
	opts AuthOptions
}

func NewAuthenticator(dir ports.Directory, opts AuthOptions) *Authenticator {
	if opts.Header == "" {
		opts.Header = HeaderEmail
	}
	if opts.ParseIdentity == nil {
		opts.ParseIdentity = RawIdentity
	}
	return &Authenticator{dir: dir, opts: opts}
}

// Authenticate resolves the request's user from its headers. The header
// func abstracts the hosting framework's header access (http.Header.Get
// shaped). Failure modes:
//   - domain.ErrUnauthenticated: no identity, or unknown identity
//     without auto-create.
//   - domain.ErrForbidden: identity resolved but role not in the
//     required set.
//   - anything else: store failure, propagated untouched.
func (a *Authenticator) Authenticate(ctx context.Context, header func(string) string) (*domain.User, error) {
	key, err := a.extract(header)
	if err != nil {
		metrics.AuthRequestsTotal.WithLabelValues(metrics.OutcomeUnauthenticated).Inc()
		return nil, err
	}

	user, err := a.dir.Get(ctx, key)
	if errors.Is(err, domain.ErrUserNotFound) {
		if !a.opts.AutoCreate {
			metrics.AuthRequestsTotal.WithLabelValues(metrics.OutcomeUnauthenticated).Inc()
			return nil, fmt.Errorf("%w: unknown user", domain.ErrUnauthenticated)
		}
		user, err = a.dir.GetOrCreate(ctx, key, "", domain.DefaultRole, key)
		if err == nil {
			metrics.UsersAutoCreatedTotal.Inc()
		}
	}
	if err != nil {
		metrics.AuthRequestsTotal.WithLabelValues(metrics.OutcomeStoreError).Inc()
		return nil, err
	}

	if len(a.opts.RequiredRoles) > 0 && !user.Role.In(a.opts.RequiredRoles) {
		metrics.AuthRequestsTotal.WithLabelValues(metrics.OutcomeForbidden).Inc()
		return nil, fmt.Errorf("%w: insufficient permissions", domain.ErrForbidden)
	}

	metrics.AuthRequestsTotal.WithLabelValues(metrics.OutcomeAllowed).Inc()
	return user, nil
}

func (a *Authenticator) extract(header func(string) string) (string, error) {
	if key := strings.TrimSpace(header(a.opts.Header)); key != "" {
		return key, nil
	}
	if key := strings.TrimSpace(header(HeaderUserID)); key != "" {
		return key, nil
	}

	if raw := strings.TrimSpace(header(HeaderAuthorization)); raw != "" {
		parts := strings.Fields(raw)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return "", fmt.Errorf("%w: invalid authorization header", domain.ErrUnauthenticated)
		}
		key, err := a.opts.ParseIdentity(parts[1])
		if err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
		}
		if key != "" {
			return key, nil
		}
	}

	return "", fmt.Errorf("%w: missing user identifier", domain.ErrUnauthenticated)
}
