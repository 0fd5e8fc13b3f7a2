// AngelaMos | 2026
// jwt_test.go

package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/AcolyteGlobal/SimProj-BE/internal/config"
	"github.com/AcolyteGlobal/SimProj-BE/internal/core"
)

func newTestJWTManager(t *testing.T) *JWTManager {
	t.Helper()

	dir := t.TempDir()
	cfg := config.JWTConfig{
		PrivateKeyPath:    filepath.Join(dir, "keys", "private.pem"),
		PublicKeyPath:     filepath.Join(dir, "keys", "public.pem"),
		AccessTokenExpire: time.Hour,
		Issuer:            "sim-ledger",
		Audience:          "sim-ledger-admin",
		GenerateKeys:      true,
	}

	m, err := NewJWTManager(cfg)
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	return m
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := newTestJWTManager(t)
	admin := &Admin{
		ID:           "0b7c2f5e-9a51-4d8e-9f0a-3c1d2e4f5a6b",
		Username:     "ops",
		Name:         "Ops Desk",
		Role:         "admin",
		TokenVersion: 2,
	}

	issued, err := m.CreateAccessToken(admin)
	if err != nil {
		t.Fatalf("CreateAccessToken() error = %v", err)
	}

	claims, err := m.VerifyAccessToken(context.Background(), issued.Token)
	if err != nil {
		t.Fatalf("VerifyAccessToken() error = %v", err)
	}

	if claims.AdminID != admin.ID || claims.Role != "admin" || claims.Name != "Ops Desk" {
		t.Errorf("claims = %+v", claims)
	}
	if claims.TokenVersion != 2 {
		t.Errorf("TokenVersion = %d, want 2", claims.TokenVersion)
	}
	if claims.JTI != issued.JTI {
		t.Errorf("JTI = %q, want %q", claims.JTI, issued.JTI)
	}
	if d := claims.ExpiresAt.Sub(issued.ExpiresAt); d > time.Second || d < -time.Second {
		t.Errorf("ExpiresAt = %v, want %v", claims.ExpiresAt, issued.ExpiresAt)
	}
}

func TestVerifyRejectsExpiredAndForeignTokens(t *testing.T) {
	m := newTestJWTManager(t)
	admin := &Admin{ID: "a1", Username: "ops", Role: "admin"}

	issued, err := m.CreateAccessToken(admin)
	if err != nil {
		t.Fatalf("CreateAccessToken() error = %v", err)
	}

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := m.VerifyAccessToken(context.Background(), issued.Token); !errors.Is(err, core.ErrTokenExpired) {
		t.Errorf("expired token error = %v, want ErrTokenExpired", err)
	}

	m.now = time.Now
	other := newTestJWTManager(t)
	foreign, err := other.CreateAccessToken(admin)
	if err != nil {
		t.Fatalf("CreateAccessToken() error = %v", err)
	}
	if _, err := m.VerifyAccessToken(context.Background(), foreign.Token); !errors.Is(err, core.ErrTokenInvalid) {
		t.Errorf("foreign token error = %v, want ErrTokenInvalid", err)
	}

	if _, err := m.VerifyAccessToken(context.Background(), "not-a-jwt"); !errors.Is(err, core.ErrTokenInvalid) {
		t.Errorf("garbage token error = %v, want ErrTokenInvalid", err)
	}
}

func TestJWKSHandler(t *testing.T) {
	m := newTestJWTManager(t)

	rec := httptest.NewRecorder()
	m.GetJWKSHandler()(rec, httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"keys"`) || !strings.Contains(body, `"EC"`) {
		t.Errorf("jwks body = %s", body)
	}
	if strings.Contains(body, `"d"`) {
		t.Error("jwks must not expose the private scalar")
	}
}
