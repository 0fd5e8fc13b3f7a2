// AngelaMos | 2026
// service.go

package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/AcolyteGlobal/SimProj-BE/internal/core"
)

type AssignInput struct {
	BiometricID string
	PhoneNumber string
	Force       bool
	Actor       string
}

type SwapInput struct {
	BiometricID string
	PhoneNumber string
	Force       bool
	Actor       string
}

type ExitInput struct {
	BiometricID string
	Reason      string
	Actor       string
}

// AssignResult is the new active assignment plus the numbers that went
// back to the available pool as a side effect.
type AssignResult struct {
	Assignment *AssignmentDetail
	Released   []string
	Displaced  *Holding
}

type ExitResult struct {
	ExitLog *ExitLog
	Purged  []string
}

type Service struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Assign gives the SIM to the user. If another user holds it the call
// fails with *ConflictError unless force is set, in which case the old
// holding is closed first.
func (s *Service) Assign(ctx context.Context, in AssignInput) (*AssignResult, error) {
	biometricID, err := ParseBiometricID(in.BiometricID)
	if err != nil {
		return nil, err
	}

	ctx, span := core.StartSpan(ctx, "ledger.assign",
		attribute.Int("ledger.biometric_id", biometricID),
		attribute.String("ledger.phone_number", in.PhoneNumber),
		attribute.Bool("ledger.force", in.Force),
	)
	defer span.End()

	var res *AssignResult
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		user, err := lockActiveUser(ctx, tx, biometricID)
		if err != nil {
			return err
		}

		res, err = s.reassign(ctx, tx, user, in.PhoneNumber, in.Force, false, in.Actor)
		return err
	})
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "sim assigned",
		"assignment_id", res.Assignment.AssignmentID,
		"biometric_id", FormatBiometricID(biometricID),
		"phone_number", in.PhoneNumber,
		"forced", res.Displaced != nil,
		"released", res.Released,
		"actor", in.Actor,
	)

	return res, nil
}

// Swap moves the user onto a different SIM. The biometric id must use the
// prefixed employee code.
func (s *Service) Swap(ctx context.Context, in SwapInput) (*AssignResult, error) {
	biometricID, err := ParseBiometricCode(in.BiometricID)
	if err != nil {
		return nil, err
	}

	ctx, span := core.StartSpan(ctx, "ledger.swap",
		attribute.Int("ledger.biometric_id", biometricID),
		attribute.String("ledger.phone_number", in.PhoneNumber),
		attribute.Bool("ledger.force", in.Force),
	)
	defer span.End()

	var res *AssignResult
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		user, err := lockActiveUser(ctx, tx, biometricID)
		if err != nil {
			return err
		}

		res, err = s.reassign(ctx, tx, user, in.PhoneNumber, in.Force, true, in.Actor)
		return err
	})
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "sim swapped",
		"assignment_id", res.Assignment.AssignmentID,
		"biometric_id", FormatBiometricID(biometricID),
		"phone_number", in.PhoneNumber,
		"released", res.Released,
		"actor", in.Actor,
	)

	return res, nil
}

// Exit deactivates the user, records the exit and returns every SIM the
// user held to the pool. Dead SIMs in the user's history are deleted.
func (s *Service) Exit(ctx context.Context, in ExitInput) (*ExitResult, error) {
	biometricID, err := ParseBiometricID(in.BiometricID)
	if err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, fmt.Errorf("reason is required: %w", core.ErrInvalidInput)
	}

	ctx, span := core.StartSpan(ctx, "ledger.exit",
		attribute.Int("ledger.biometric_id", biometricID),
	)
	defer span.End()

	var res ExitResult
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		user, err := tx.LockUserByBiometricID(ctx, biometricID)
		if err != nil {
			return err
		}
		if user.Status == UserInactive {
			return ErrAlreadyExited
		}

		held, err := lockHeldSIMs(ctx, tx, user.UserID)
		if err != nil {
			return err
		}

		now := s.now().UTC()

		var phone *string
		for _, a := range held {
			closed, err := tx.CloseAssignment(ctx, a.AssignmentID, now)
			if err != nil {
				return err
			}
			if !closed {
				continue
			}
			if err := tx.UpdateSIMStatus(ctx, a.SIMID, SIMAvailable, in.Actor, now); err != nil {
				return err
			}
			if phone == nil {
				p := a.phone
				phone = &p
			}
		}

		exit := &ExitLog{
			UserID:         user.UserID,
			Reason:         reason,
			BiometricID:    user.BiometricID,
			PhoneNumber:    phone,
			HandledByAdmin: in.Actor,
			ExitDate:       now,
		}
		if err := tx.InsertExitLog(ctx, exit); err != nil {
			return err
		}

		if err := tx.DeactivateUser(ctx, user.UserID, in.Actor, now); err != nil {
			return err
		}

		purged, err := tx.PurgeDeadSIMs(ctx, user.UserID)
		if err != nil {
			return err
		}

		res = ExitResult{ExitLog: exit, Purged: purged}
		return nil
	})
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "user exited",
		"exit_id", res.ExitLog.ExitID,
		"biometric_id", FormatBiometricID(biometricID),
		"purged_sims", res.Purged,
		"actor", in.Actor,
	)

	return &res, nil
}

func lockActiveUser(ctx context.Context, tx Tx, biometricID int) (*Holder, error) {
	user, err := tx.LockUserByBiometricID(ctx, biometricID)
	if err != nil {
		return nil, err
	}
	if user.Status != UserActive {
		return nil, ErrUserInactive
	}
	return user, nil
}

type heldSIM struct {
	Assignment
	phone string
}

// lockHeldSIMs locks every SIM the user currently holds, then re-reads the
// holdings so forced reassignments that won the race are not acted on.
func lockHeldSIMs(ctx context.Context, tx Tx, userID int64, extra ...int64) ([]heldSIM, error) {
	_, held, err := lockUserSIMs(ctx, tx, userID, extra...)
	return held, err
}

func lockUserSIMs(
	ctx context.Context,
	tx Tx,
	userID int64,
	extra ...int64,
) (map[int64]*SIM, []heldSIM, error) {
	current, err := tx.ActiveAssignmentsForUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	ids := slices.Clone(extra)
	for _, a := range current {
		ids = append(ids, a.SIMID)
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	locked := map[int64]*SIM{}
	if len(ids) > 0 {
		locked, err = tx.LockSIMs(ctx, ids)
		if err != nil {
			return nil, nil, err
		}
	}

	current, err = tx.ActiveAssignmentsForUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	held := make([]heldSIM, 0, len(current))
	for _, a := range current {
		sim, ok := locked[a.SIMID]
		if !ok {
			continue
		}
		held = append(held, heldSIM{Assignment: a, phone: sim.PhoneNumber})
	}

	return locked, held, nil
}

func (s *Service) reassign(
	ctx context.Context,
	tx Tx,
	user *Holder,
	phone string,
	force, swap bool,
	actor string,
) (*AssignResult, error) {
	found, err := tx.FindSIMByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}

	locked, held, err := lockUserSIMs(ctx, tx, user.UserID, found.SIMID)
	if err != nil {
		return nil, err
	}

	target, ok := locked[found.SIMID]
	if !ok {
		return nil, ErrSIMNotFound
	}
	if !Assignable(target.Status) {
		return nil, fmt.Errorf("%s is %s: %w", target.PhoneNumber, target.Status, ErrSIMUnavailable)
	}

	current, err := tx.ActiveAssignmentForSIM(ctx, target.SIMID)
	if err != nil {
		return nil, err
	}

	if swap && current != nil && current.UserID == user.UserID {
		return nil, ErrAlreadyHolds
	}

	if current != nil && current.UserID != user.UserID && !force {
		core.AddSpanEvent(ctx, "ledger.conflict",
			attribute.String("ledger.phone_number", target.PhoneNumber),
			attribute.Int("ledger.holder_biometric_id", current.HolderBiometricID),
		)
		s.logger.InfoContext(ctx, "sim assignment conflict",
			"biometric_id", FormatBiometricID(user.BiometricID),
			"phone_number", target.PhoneNumber,
			"holder_biometric_id", FormatBiometricID(current.HolderBiometricID),
			"actor", actor,
		)
		return nil, &ConflictError{
			PhoneNumber:       target.PhoneNumber,
			HolderUserID:      current.UserID,
			HolderName:        current.HolderName,
			HolderBiometricID: current.HolderBiometricID,
		}
	}

	now := s.now().UTC()
	res := &AssignResult{}

	if current != nil {
		if _, err := tx.CloseAssignment(ctx, current.AssignmentID, now); err != nil {
			return nil, err
		}
		if current.UserID != user.UserID {
			res.Displaced = current
		}
	}

	for _, a := range held {
		if a.SIMID == target.SIMID {
			continue
		}
		closed, err := tx.CloseAssignment(ctx, a.AssignmentID, now)
		if err != nil {
			return nil, err
		}
		if !closed {
			continue
		}
		if err := tx.UpdateSIMStatus(ctx, a.SIMID, SIMAvailable, actor, now); err != nil {
			return nil, err
		}
		res.Released = append(res.Released, a.phone)
	}

	next := &Assignment{
		UserID:     user.UserID,
		SIMID:      target.SIMID,
		AssignedAt: now,
	}
	if err := tx.InsertAssignment(ctx, next); err != nil {
		return nil, err
	}

	if err := tx.UpdateSIMStatus(ctx, target.SIMID, SIMAssigned, actor, now); err != nil {
		return nil, err
	}

	res.Assignment, err = tx.AssignmentDetail(ctx, next.AssignmentID)
	if err != nil {
		return nil, err
	}

	return res, nil
}
