package ports

import (
	"context"

	"github.com/gatekit/userdir/domain"
)

// UserRepository defines the persistence contract for directory records.
// Implementations map store-level conditions onto the domain sentinels:
// absence is domain.ErrUserNotFound, duplicate keys are
// domain.ErrUserExists, and transport failures wrap
// domain.ErrStoreUnavailable.
type UserRepository interface {
	FindByKey(ctx context.Context, key string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Insert(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdateRole(ctx context.Context, key string, role domain.Role) error
}

// Directory is the accessor surface consumed by the framework bindings
// and the HTTP handlers.
type Directory interface {
	Exists(ctx context.Context, key string) (bool, error)
	Get(ctx context.Context, key string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, email, username string, role domain.Role, displayName string) (*domain.User, error)
	GetOrCreate(ctx context.Context, email, username string, role domain.Role, displayName string) (*domain.User, error)
	VerifyRole(ctx context.Context, key string, required []domain.Role) (bool, error)
	UpdateRole(ctx context.Context, key string, role domain.Role) (bool, error)
}
