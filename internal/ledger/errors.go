// AngelaMos | 2026
// errors.go

package ledger

import (
	"errors"
	"fmt"

	"github.com/AcolyteGlobal/SimProj-BE/internal/core"
)

var (
	ErrUserNotFound       = fmt.Errorf("user: %w", core.ErrNotFound)
	ErrSIMNotFound        = fmt.Errorf("sim: %w", core.ErrNotFound)
	ErrInvalidBiometricID = fmt.Errorf("biometric id: %w", core.ErrInvalidInput)
	ErrUserInactive       = fmt.Errorf("user is inactive: %w", core.ErrInvalidInput)
	ErrSIMUnavailable     = fmt.Errorf("sim is not assignable: %w", core.ErrInvalidInput)
	ErrAlreadyHolds       = fmt.Errorf("user already holds this sim: %w", core.ErrInvalidInput)
	ErrAlreadyExited      = errors.New("user already exited")
)

// ConflictError reports that a SIM is actively held by another user and
// the caller did not ask to force the reassignment.
type ConflictError struct {
	PhoneNumber       string
	HolderUserID      int64
	HolderName        string
	HolderBiometricID int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf(
		"sim %s is assigned to %s (%s)",
		e.PhoneNumber,
		e.HolderName,
		FormatBiometricID(e.HolderBiometricID),
	)
}

func (e *ConflictError) Is(target error) bool {
	return target == core.ErrConflict
}

// Details is the payload a client needs to confirm and retry with force.
func (e *ConflictError) Details() map[string]any {
	return map[string]any{
		"phone_number":          e.PhoneNumber,
		"holder_name":           e.HolderName,
		"holder_biometric_id":   e.HolderBiometricID,
		"holder_biometric_code": FormatBiometricID(e.HolderBiometricID),
		"requires_force":        true,
	}
}
