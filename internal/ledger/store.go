// AngelaMos | 2026
// store.go

package ledger

import (
	"context"
	"time"
)

// Store runs ledger operations atomically. Everything done through the
// Tx handed to fn commits together or not at all.
type Store interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the set of reads and writes the assignment protocol needs. Lock*
// methods hold row locks until the transaction ends; callers take the
// user lock before any SIM lock.
type Tx interface {
	LockUserByBiometricID(ctx context.Context, biometricID int) (*Holder, error)
	FindSIMByPhone(ctx context.Context, phone string) (*SIM, error)
	// LockSIMs locks the given SIM rows in ascending id order. Ids that no
	// longer exist are absent from the result.
	LockSIMs(ctx context.Context, simIDs []int64) (map[int64]*SIM, error)

	ActiveAssignmentForSIM(ctx context.Context, simID int64) (*Holding, error)
	ActiveAssignmentsForUser(ctx context.Context, userID int64) ([]Assignment, error)
	// CloseAssignment reports false when the assignment was already closed.
	CloseAssignment(ctx context.Context, assignmentID int64, at time.Time) (bool, error)
	InsertAssignment(ctx context.Context, a *Assignment) error
	AssignmentDetail(ctx context.Context, assignmentID int64) (*AssignmentDetail, error)

	UpdateSIMStatus(ctx context.Context, simID int64, status, actor string, at time.Time) error
	DeactivateUser(ctx context.Context, userID int64, actor string, at time.Time) error
	InsertExitLog(ctx context.Context, e *ExitLog) error
	// PurgeDeadSIMs deletes inactive or out of service SIMs whose history
	// includes a closed assignment to the user, returning their numbers.
	PurgeDeadSIMs(ctx context.Context, userID int64) ([]string, error)
}
