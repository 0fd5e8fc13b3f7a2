// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/AcolyteGlobal/SimProj-BE/internal/config"
	"github.com/AcolyteGlobal/SimProj-BE/internal/core"
)

type fakeRepo struct {
	mu     sync.Mutex
	admins map[string]*Admin
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{admins: map[string]*Admin{}}
}

func (f *fakeRepo) Create(_ context.Context, admin *Admin) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.admins {
		if a.Username == admin.Username {
			return &core.ConstraintError{Constraint: "admins_username_key", Field: "username", Code: "23505"}
		}
	}
	admin.CreatedAt = time.Now()
	cp := *admin
	f.admins[admin.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.admins[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeRepo) GetByUsername(_ context.Context, username string) (*Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.admins {
		if a.Username == username {
			cp := *a
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeRepo) UpdatePassword(_ context.Context, id, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.admins[id]
	if !ok {
		return core.ErrNotFound
	}
	a.PasswordHash = hash
	return nil
}

func (f *fakeRepo) IncrementTokenVersion(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.admins[id]
	if !ok {
		return core.ErrNotFound
	}
	a.TokenVersion++
	return nil
}

type memBlacklist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func (b *memBlacklist) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.revoked == nil {
		b.revoked = map[string]time.Time{}
	}
	b.revoked[jti] = expiresAt
	return nil
}

func (b *memBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.revoked[jti]
	return ok, nil
}

func newTestAuthService(t *testing.T) (*Service, *fakeRepo) {
	t.Helper()

	repo := newFakeRepo()
	svc := NewService(
		repo,
		newTestJWTManager(t),
		&memBlacklist{},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)

	created, err := svc.EnsureBootstrapAdmin(context.Background(), config.BootstrapConfig{
		AdminUsername: " Admin ",
		AdminPassword: "correct-horse-battery",
		AdminName:     "Head Office",
	})
	if err != nil || !created {
		t.Fatalf("EnsureBootstrapAdmin() = %v, %v", created, err)
	}

	return svc, repo
}

func TestBootstrapIsIdempotent(t *testing.T) {
	svc, repo := newTestAuthService(t)

	created, err := svc.EnsureBootstrapAdmin(context.Background(), config.BootstrapConfig{
		AdminUsername: "admin",
		AdminPassword: "another-password",
	})
	if err != nil {
		t.Fatalf("second EnsureBootstrapAdmin() error = %v", err)
	}
	if created {
		t.Error("second bootstrap should not create an admin")
	}
	if len(repo.admins) != 1 {
		t.Errorf("admins = %d, want 1", len(repo.admins))
	}

	created, err = svc.EnsureBootstrapAdmin(context.Background(), config.BootstrapConfig{})
	if err != nil || created {
		t.Errorf("empty password bootstrap = %v, %v, want skipped", created, err)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newTestAuthService(t)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Username: "ADMIN",
		Password: "correct-horse-battery",
	})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if resp.Admin.Name != "Head Office" || resp.Token.TokenType != "Bearer" {
		t.Errorf("resp = %+v", resp)
	}
	if resp.Token.ExpiresIn != 3600 {
		t.Errorf("ExpiresIn = %d, want 3600", resp.Token.ExpiresIn)
	}

	if _, err := svc.Login(context.Background(), LoginRequest{
		Username: "admin",
		Password: "wrong-password",
	}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v", err)
	}

	if _, err := svc.Login(context.Background(), LoginRequest{
		Username: "nobody",
		Password: "whatever-password",
	}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user error = %v", err)
	}
}

func TestLogoutRevokesOnlyThatToken(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	login := func() string {
		resp, err := svc.Login(ctx, LoginRequest{Username: "admin", Password: "correct-horse-battery"})
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		return resp.Token.AccessToken
	}

	first, second := login(), login()

	claims, err := svc.VerifyAccessToken(ctx, first)
	if err != nil {
		t.Fatalf("VerifyAccessToken() error = %v", err)
	}
	if claims.Name != "Head Office" {
		t.Errorf("claims.Name = %q", claims.Name)
	}

	if err := svc.Logout(ctx, claims); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}

	if _, err := svc.VerifyAccessToken(ctx, first); !errors.Is(err, core.ErrTokenRevoked) {
		t.Errorf("revoked token error = %v, want ErrTokenRevoked", err)
	}
	if _, err := svc.VerifyAccessToken(ctx, second); err != nil {
		t.Errorf("other session error = %v, want nil", err)
	}
}

func TestLogoutAllBumpsTokenVersion(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	resp, err := svc.Login(ctx, LoginRequest{Username: "admin", Password: "correct-horse-battery"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if err := svc.LogoutAll(ctx, resp.Admin.ID); err != nil {
		t.Fatalf("LogoutAll() error = %v", err)
	}

	if _, err := svc.VerifyAccessToken(ctx, resp.Token.AccessToken); !errors.Is(err, core.ErrTokenRevoked) {
		t.Errorf("stale token error = %v, want ErrTokenRevoked", err)
	}
}
