// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/AcolyteGlobal/SimProj-BE/internal/config"
	"github.com/AcolyteGlobal/SimProj-BE/internal/core"
	"github.com/AcolyteGlobal/SimProj-BE/internal/middleware"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Service struct {
	repo      Repository
	jwt       *JWTManager
	blacklist Blacklist
	logger    *slog.Logger
}

func NewService(
	repo Repository,
	jwt *JWTManager,
	blacklist Blacklist,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		jwt:       jwt,
		blacklist: blacklist,
		logger:    logger,
	}
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	admin, err := s.repo.GetByUsername(ctx, normalizeUsername(req.Username))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get admin: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(req.Password, &admin.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		//nolint:errcheck // best-effort rehash upgrade
		_ = s.repo.UpdatePassword(ctx, admin.ID, newHash)
	}

	issued, err := s.jwt.CreateAccessToken(admin)
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	return &LoginResponse{
		Admin: ToAdminResponse(admin),
		Token: TokenResponse{
			AccessToken: issued.Token,
			TokenType:   "Bearer",
			ExpiresIn:   int(s.jwt.ExpiresIn().Seconds()),
			ExpiresAt:   issued.ExpiresAt,
		},
	}, nil
}

// Logout revokes the presented token only. Other sessions of the same
// admin stay valid.
func (s *Service) Logout(ctx context.Context, claims *middleware.AccessTokenClaims) error {
	if claims == nil {
		return fmt.Errorf("logout: %w", core.ErrUnauthorized)
	}

	if err := s.blacklist.Revoke(ctx, claims.JTI, claims.ExpiresAt); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	return nil
}

// LogoutAll invalidates every outstanding token for the admin.
func (s *Service) LogoutAll(ctx context.Context, adminID string) error {
	if err := s.repo.IncrementTokenVersion(ctx, adminID); err != nil {
		return fmt.Errorf("logout all: %w", err)
	}
	return nil
}

func (s *Service) GetCurrentAdmin(ctx context.Context, adminID string) (*Admin, error) {
	if adminID == "" {
		return nil, fmt.Errorf("get current admin: %w", core.ErrUnauthorized)
	}
	return s.repo.GetByID(ctx, adminID)
}

// VerifyAccessToken satisfies middleware.TokenVerifier. Beyond the
// signature it rejects blacklisted tokens and tokens minted before the
// admin's last token version bump.
func (s *Service) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := s.jwt.VerifyAccessToken(ctx, token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.blacklist.IsRevoked(ctx, claims.JTI)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}

	admin, err := s.repo.GetByID(ctx, claims.AdminID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("verify token: %w", err)
	}

	if claims.TokenVersion < admin.TokenVersion {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}

	claims.Role = admin.Role
	claims.Name = admin.Name

	return claims, nil
}

// EnsureBootstrapAdmin creates the configured first admin when it does not
// exist yet. It reports whether an account was created.
func (s *Service) EnsureBootstrapAdmin(
	ctx context.Context,
	cfg config.BootstrapConfig,
) (bool, error) {
	if cfg.AdminPassword == "" {
		return false, nil
	}

	username := normalizeUsername(cfg.AdminUsername)

	_, err := s.repo.GetByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}

	hash, err := core.HashPassword(cfg.AdminPassword)
	if err != nil {
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}

	name := cfg.AdminName
	if name == "" {
		name = username
	}

	admin := &Admin{
		ID:           uuid.New().String(),
		Username:     username,
		Name:         name,
		PasswordHash: hash,
		Role:         middleware.RoleAdmin,
	}

	if err := s.repo.Create(ctx, admin); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return false, nil
		}
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}

	s.logger.InfoContext(ctx, "bootstrap admin created", "username", username)
	return true, nil
}

func normalizeUsername(u string) string {
	return strings.ToLower(strings.TrimSpace(u))
}

var _ middleware.TokenVerifier = (*Service)(nil)
