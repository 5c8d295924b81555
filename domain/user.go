package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Role is a closed enumeration used for coarse-grained authorization.
type Role string

const (
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleViewer    Role = "viewer"
)

// DefaultRole is assigned when no role is supplied at creation time.
const DefaultRole = RoleUser

// KindUser tags every directory document so mixed containers can filter by type.
const KindUser = "user"

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrInvalidRole = errors.New("invalid role")
var ErrUnauthenticated = errors.New("unauthenticated")
var ErrForbidden = errors.New("access forbidden")
var ErrStoreUnavailable = errors.New("user store unavailable")

// ParseRole validates a raw string against the role enumeration.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleUser, RoleAdmin, RoleModerator, RoleViewer:
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

// Valid reports whether the role is a member of the enumeration.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// In reports whether the role is one of the supplied set.
func (r Role) In(roles []Role) bool {
	for _, allowed := range roles {
		if r == allowed {
			return true
		}
	}
	return false
}

// User models one authenticated principal in the directory.
type User struct {
	ID          string    `json:"id"`
	Kind        string    `json:"type"`
	Key         string    `json:"user_id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	Role        Role      `json:"role"`
	DisplayName string    `json:"display_name"`
	Active      bool      `json:"is_active"`
	AgentIDs    []string  `json:"agents"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DocumentID derives the stable record identifier for a lookup key.
// Same key always yields the same identifier, which is what makes
// creation idempotent at the store's primary-key level.
func DocumentID(key string) string {
	return "user_" + key
}

// NewUser builds a directory record with the original defaults applied:
// username falls back to the email local part, display name to the
// username and then the email, role to DefaultRole.
func NewUser(key, email, username string, role Role, displayName string) *User {
	if username == "" {
		username = email
		if at := strings.Index(email, "@"); at > 0 {
			username = email[:at]
		}
	}
	if role == "" {
		role = DefaultRole
	}
	if displayName == "" {
		displayName = username
		if displayName == "" {
			displayName = email
		}
	}

	now := time.Now().UTC()
	return &User{
		ID:          DocumentID(key),
		Kind:        KindUser,
		Key:         key,
		Email:       email,
		Username:    username,
		Role:        role,
		DisplayName: displayName,
		Active:      true,
		AgentIDs:    []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
