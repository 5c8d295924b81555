package directory

import (
	"context"
	"errors"

	"github.com/gatekit/userdir/domain"
	"github.com/gatekit/userdir/ports"
)

// Service implements the directory accessor over a UserRepository.
// It is stateless and safe for use by any number of concurrent requests.
type Service struct {
	repo ports.UserRepository
}

func NewService(repo ports.UserRepository) *Service {
	return &Service{repo: repo}
}

// Exists reports whether a record with the key is present. Absence is
// not an error; only store failures are.
func (s *Service) Exists(ctx context.Context, key string) (bool, error) {
	if _, err := s.Get(ctx, key); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Get performs a point lookup by key.
func (s *Service) Get(ctx context.Context, key string) (*domain.User, error) {
	return s.repo.FindByKey(ctx, key)
}

// GetByEmail is a point lookup keyed on the email address. The email is
// the directory key, so this is the same read as Get.
func (s *Service) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.Get(ctx, email)
}

// GetByUsername looks a record up by its username field.
func (s *Service) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.repo.FindByUsername(ctx, username)
}

// Create inserts a new record keyed on the email. The role is validated
// against the enumeration before any write; a duplicate key surfaces as
// domain.ErrUserExists.
func (s *Service) Create(ctx context.Context, email, username string, role domain.Role, displayName string) (*domain.User, error) {
	if role != "" && !role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	user := domain.NewUser(email, email, username, role, displayName)
	return s.repo.Insert(ctx, user)
}

// GetOrCreate fetches the record for the email, creating it with the
// supplied defaults when absent. A concurrent creation losing the race
// surfaces the store's conflict error rather than swallowing it.
func (s *Service) GetOrCreate(ctx context.Context, email, username string, role domain.Role, displayName string) (*domain.User, error) {
	user, err := s.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	return s.Create(ctx, email, username, role, displayName)
}

// VerifyRole reports whether the record's role is a member of the
// required set. Absent users verify as false without error.
func (s *Service) VerifyRole(ctx context.Context, key string, required []domain.Role) (bool, error) {
	user, err := s.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.Role.In(required), nil
}

// UpdateRole patches only the role field of an existing record. It
// returns false when no record exists for the key and never creates one.
func (s *Service) UpdateRole(ctx context.Context, key string, role domain.Role) (bool, error) {
	if !role.Valid() {
		return false, domain.ErrInvalidRole
	}
	if err := s.repo.UpdateRole(ctx, key, role); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
