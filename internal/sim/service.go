// AngelaMos | 2026
// service.go

package sim

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

func (s *Service) Intake(
	ctx context.Context,
	req CreateSIMRequest,
	actor string,
) (*SIM, error) {
	phone := strings.TrimSpace(req.PhoneNumber)
	if !isDigits(phone) {
		return nil, fmt.Errorf("phone number %q: %w", phone, core.ErrInvalidInput)
	}

	sim := &SIM{
		PhoneNumber:    phone,
		Provider:       strings.TrimSpace(req.Provider),
		HandledByAdmin: actor,
	}

	if err := s.repo.Create(ctx, sim); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "sim added",
		"sim_id", sim.SIMID,
		"phone_number", sim.PhoneNumber,
		"actor", actor,
	)

	return sim, nil
}

func (s *Service) Get(ctx context.Context, phone string) (*SIM, error) {
	if !isDigits(phone) {
		return nil, fmt.Errorf("get sim: %w", core.ErrNotFound)
	}
	return s.repo.GetByPhone(ctx, phone)
}

func (s *Service) List(ctx context.Context, params ListSIMsParams) ([]SIM, int, error) {
	return s.repo.List(ctx, params)
}

// SetStatus moves a SIM in or out of service. Assigned is owned by the
// ledger and cannot be set here.
func (s *Service) SetStatus(
	ctx context.Context,
	phone, status, actor string,
) (*SIM, error) {
	switch status {
	case ledger.SIMAvailable, ledger.SIMInactive, ledger.SIMOutOfService:
	default:
		return nil, fmt.Errorf("status %q: %w", status, core.ErrInvalidInput)
	}

	if !isDigits(phone) {
		return nil, fmt.Errorf("update sim status: %w", core.ErrNotFound)
	}

	sim, err := s.repo.UpdateStatus(ctx, phone, status, actor)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "sim status changed",
		"phone_number", phone,
		"status", status,
		"actor", actor,
	)

	return sim, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
