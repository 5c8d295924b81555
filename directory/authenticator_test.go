package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/gatekit/userdir/domain"
)

func headerFunc(h map[string]string) func(string) string {
	return func(name string) string { return h[name] }
}

func TestAuthenticator_MissingIdentifier(t *testing.T) {
	repo := newStubUserRepo()
	auth := NewAuthenticator(NewService(repo), AuthOptions{})

	_, err := auth.Authenticate(context.Background(), headerFunc(nil))
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if repo.inserts != 0 {
		t.Fatalf("no store write expected, got %d", repo.inserts)
	}
}

func TestAuthenticator_UnknownUser_NoAutoCreate(t *testing.T) {
	repo := newStubUserRepo()
	auth := NewAuthenticator(NewService(repo), AuthOptions{})

	_, err := auth.Authenticate(context.Background(), headerFunc(map[string]string{
		HeaderEmail: "a@x.com",
	}))
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if repo.inserts != 0 {
		t.Fatalf("no store write expected, got %d", repo.inserts)
	}
}

func TestAuthenticator_UnknownUser_AutoCreate(t *testing.T) {
	repo := newStubUserRepo()
	auth := NewAuthenticator(NewService(repo), AuthOptions{AutoCreate: true})

	headers := headerFunc(map[string]string{HeaderEmail: "a@x.com"})

	user, err := auth.Authenticate(context.Background(), headers)
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if user.Key != "a@x.com" || user.Role != domain.DefaultRole {
		t.Fatalf("unexpected provisioned user: %+v", user)
	}
	if repo.inserts != 1 {
		t.Fatalf("expected exactly one record, got %d", repo.inserts)
	}

	// Second request resolves the existing record.
	if _, err := auth.Authenticate(context.Background(), headers); err != nil {
		t.Fatalf("second authenticate failed: %v", err)
	}
	if repo.inserts != 1 {
		t.Fatalf("expected no further insert, got %d", repo.inserts)
	}
}

func TestAuthenticator_RoleCheck(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewService(repo)
	if _, err := svc.Create(context.Background(), "a@x.com", "", domain.RoleUser, ""); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	headers := headerFunc(map[string]string{HeaderEmail: "a@x.com"})

	forbidding := NewAuthenticator(svc, AuthOptions{RequiredRoles: []domain.Role{domain.RoleAdmin}})
	if _, err := forbidding.Authenticate(context.Background(), headers); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	allowing := NewAuthenticator(svc, AuthOptions{RequiredRoles: []domain.Role{domain.RoleUser, domain.RoleAdmin}})
	if _, err := allowing.Authenticate(context.Background(), headers); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}

func TestAuthenticator_HeaderPrecedence(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewService(repo)
	_, _ = svc.Create(context.Background(), "primary@x.com", "", "", "")
	_, _ = svc.Create(context.Background(), "fallback@x.com", "", "", "")

	auth := NewAuthenticator(svc, AuthOptions{})

	user, err := auth.Authenticate(context.Background(), headerFunc(map[string]string{
		HeaderEmail:  "primary@x.com",
		HeaderUserID: "fallback@x.com",
	}))
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if user.Key != "primary@x.com" {
		t.Fatalf("expected primary header to win, got %q", user.Key)
	}

	user, err = auth.Authenticate(context.Background(), headerFunc(map[string]string{
		HeaderUserID: "fallback@x.com",
	}))
	if err != nil {
		t.Fatalf("fallback authenticate failed: %v", err)
	}
	if user.Key != "fallback@x.com" {
		t.Fatalf("expected id-header fallback, got %q", user.Key)
	}
}

func TestAuthenticator_BearerFallback(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewService(repo)
	_, _ = svc.Create(context.Background(), "a@x.com", "", "", "")

	auth := NewAuthenticator(svc, AuthOptions{})

	user, err := auth.Authenticate(context.Background(), headerFunc(map[string]string{
		HeaderAuthorization: "Bearer a@x.com",
	}))
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if user.Key != "a@x.com" {
		t.Fatalf("unexpected key: %q", user.Key)
	}

	_, err = auth.Authenticate(context.Background(), headerFunc(map[string]string{
		HeaderAuthorization: "Token a@x.com",
	}))
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for bad scheme, got %v", err)
	}
}

func TestAuthenticator_CustomHeader(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewService(repo)
	_, _ = svc.Create(context.Background(), "a@x.com", "", "", "")

	auth := NewAuthenticator(svc, AuthOptions{Header: "X-Acme-Identity"})

	user, err := auth.Authenticate(context.Background(), headerFunc(map[string]string{
		"X-Acme-Identity": "a@x.com",
	}))
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if user.Key != "a@x.com" {
		t.Fatalf("unexpected key: %q", user.Key)
	}
}

func TestAuthenticator_StoreFailurePropagates(t *testing.T) {
	repo := newStubUserRepo()
	repo.failWith = storeFailure()
	auth := NewAuthenticator(NewService(repo), AuthOptions{AutoCreate: true})

	_, err := auth.Authenticate(context.Background(), headerFunc(map[string]string{
		HeaderEmail: "a@x.com",
	}))
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected store failure, got %v", err)
	}
	if errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("store failure must not read as an auth outcome")
	}
}
