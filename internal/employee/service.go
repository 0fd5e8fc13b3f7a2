// AngelaMos | 2026
// service.go

package employee

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AcolyteGlobal/SimProj-BE/internal/core"
	"github.com/AcolyteGlobal/SimProj-BE/internal/ledger"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Onboard(
	ctx context.Context,
	req CreateEmployeeRequest,
	actor string,
) (*Employee, error) {
	e := &Employee{
		Name:           strings.TrimSpace(req.Name),
		Branch:         strings.TrimSpace(req.Branch),
		Department:     strings.TrimSpace(req.Department),
		OfficeNumber:   strings.TrimSpace(req.OfficeNumber),
		HandledByAdmin: actor,
	}

	if email := strings.ToLower(strings.TrimSpace(req.OfficialEmail)); email != "" {
		e.OfficialEmail = &email
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "employee onboarded",
		"user_id", e.UserID,
		"biometric_id", ledger.FormatBiometricID(e.BiometricID),
		"actor", actor,
	)

	return e, nil
}

func (s *Service) Get(ctx context.Context, rawBiometricID string) (*Employee, error) {
	id, err := ledger.ParseBiometricID(rawBiometricID)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByBiometricID(ctx, id)
}

func (s *Service) List(
	ctx context.Context,
	params ListEmployeesParams,
) ([]Employee, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) SetStatus(
	ctx context.Context,
	rawBiometricID, status, actor string,
) (*Employee, error) {
	id, err := ledger.ParseBiometricID(rawBiometricID)
	if err != nil {
		return nil, err
	}

	if status != ledger.UserActive && status != ledger.UserInactive {
		return nil, fmt.Errorf("status %q: %w", status, core.ErrInvalidInput)
	}

	e, err := s.repo.UpdateStatus(ctx, id, status, actor)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "employee status changed",
		"biometric_id", ledger.FormatBiometricID(id),
		"status", status,
		"actor", actor,
	)

	return e, nil
}
