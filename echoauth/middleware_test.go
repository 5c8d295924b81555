package echoauth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/gatekit/userdir/directory"
	"github.com/gatekit/userdir/domain"
)

type stubUserRepo struct {
	users    map[string]*domain.User
	failWith error
	inserts  int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func (r *stubUserRepo) FindByKey(_ context.Context, key string) (*domain.User, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	if u, ok := r.users[key]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Insert(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	if _, exists := r.users[user.Key]; exists {
		return nil, domain.ErrUserExists
	}
	clone := *user
	r.users[user.Key] = &clone
	r.inserts++
	return user, nil
}

func (r *stubUserRepo) UpdateRole(_ context.Context, key string, role domain.Role) error {
	u, ok := r.users[key]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Role = role
	return nil
}

func seedUser(repo *stubUserRepo, key string, role domain.Role) {
	repo.users[key] = domain.NewUser(key, key, "", role, "")
}

func runMiddleware(t *testing.T, auth *directory.Authenticator, headers map[string]string, next echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for name, value := range headers {
		req.Header.Set(name, value)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RequireAuth(auth)(next)
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	repo := newStubUserRepo()
	auth := directory.NewAuthenticator(directory.NewService(repo), directory.AuthOptions{})

	rec := runMiddleware(t, auth, nil, func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if repo.inserts != 0 {
		t.Fatalf("no store write expected")
	}
}

func TestRequireAuth_UnknownUser(t *testing.T) {
	repo := newStubUserRepo()
	auth := directory.NewAuthenticator(directory.NewService(repo), directory.AuthOptions{})

	rec := runMiddleware(t, auth, map[string]string{directory.HeaderEmail: "a@x.com"}, func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuth_AttachesUser(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(repo, "a@x.com", domain.RoleUser)
	auth := directory.NewAuthenticator(directory.NewService(repo), directory.AuthOptions{})

	called := false
	rec := runMiddleware(t, auth, map[string]string{directory.HeaderEmail: "a@x.com"}, func(c echo.Context) error {
		called = true
		user, ok := CurrentUser(c)
		if !ok {
			t.Fatalf("user not attached")
		}
		if user.Key != "a@x.com" {
			t.Fatalf("unexpected user: %+v", user)
		}
		if c.Get(ContextEmailKey) != "a@x.com" || c.Get(ContextRoleKey) != "user" {
			t.Fatalf("convenience keys not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireAuth_AutoCreate(t *testing.T) {
	repo := newStubUserRepo()
	auth := directory.NewAuthenticator(directory.NewService(repo), directory.AuthOptions{AutoCreate: true})

	rec := runMiddleware(t, auth, map[string]string{directory.HeaderEmail: "new@x.com"}, func(c echo.Context) error {
		user, _ := CurrentUser(c)
		if user == nil || user.Role != domain.DefaultRole {
			t.Fatalf("expected provisioned user, got %+v", user)
		}
		return c.NoContent(http.StatusOK)
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if repo.inserts != 1 {
		t.Fatalf("expected exactly one record created, got %d", repo.inserts)
	}
}

func TestRequireAuth_Forbidden(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(repo, "a@x.com", domain.RoleUser)
	auth := directory.NewAuthenticator(directory.NewService(repo), directory.AuthOptions{
		RequiredRoles: []domain.Role{domain.RoleAdmin},
	})

	rec := runMiddleware(t, auth, map[string]string{directory.HeaderEmail: "a@x.com"}, func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireAuth_StoreFailure(t *testing.T) {
	repo := newStubUserRepo()
	repo.failWith = fmt.Errorf("%w: connection refused", domain.ErrStoreUnavailable)
	auth := directory.NewAuthenticator(directory.NewService(repo), directory.AuthOptions{})

	rec := runMiddleware(t, auth, map[string]string{directory.HeaderEmail: "a@x.com"}, func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
