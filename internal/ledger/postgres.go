// AngelaMos | 2026
// postgres.go

package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/AcolyteGlobal/SimProj-BE/internal/core"
)

const activeSIMIndex = "sim_assignments_one_active_per_sim"

var assignmentConstraints = core.ConstraintFields{
	activeSIMIndex: "phone_number",
}

type pgStore struct {
	db        *sqlx.DB
	txTimeout time.Duration
}

// NewPostgresStore runs every transaction at READ COMMITTED and relies on
// explicit row locks for serialisation.
func NewPostgresStore(db *sqlx.DB, txTimeout time.Duration) Store {
	return &pgStore{db: db, txTimeout: txTimeout}
}

func (s *pgStore) WithinTx(
	ctx context.Context,
	fn func(ctx context.Context, tx Tx) error,
) error {
	if s.txTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.txTimeout)
		defer cancel()
	}

	opts := &sql.TxOptions{Isolation: sql.LevelReadCommitted}

	return core.InTxWithOptions(ctx, s.db, opts, func(tx *sqlx.Tx) error {
		return fn(ctx, &pgTx{tx: tx})
	})
}

type pgTx struct {
	tx *sqlx.Tx
}

func (t *pgTx) LockUserByBiometricID(
	ctx context.Context,
	biometricID int,
) (*Holder, error) {
	query := `
		SELECT user_id, name, biometric_id, status
		FROM users
		WHERE biometric_id = $1
		FOR UPDATE`

	var h Holder
	err := t.tx.GetContext(ctx, &h, query, biometricID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock user: %w", err)
	}

	return &h, nil
}

func (t *pgTx) FindSIMByPhone(ctx context.Context, phone string) (*SIM, error) {
	query := `
		SELECT sim_id, phone_number, provider, status
		FROM sims
		WHERE phone_number = $1`

	var s SIM
	err := t.tx.GetContext(ctx, &s, query, phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSIMNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find sim: %w", err)
	}

	return &s, nil
}

func (t *pgTx) LockSIMs(
	ctx context.Context,
	simIDs []int64,
) (map[int64]*SIM, error) {
	query := `
		SELECT sim_id, phone_number, provider, status
		FROM sims
		WHERE sim_id = ANY($1)
		ORDER BY sim_id
		FOR UPDATE`

	var rows []SIM
	if err := t.tx.SelectContext(ctx, &rows, query, simIDs); err != nil {
		return nil, fmt.Errorf("lock sims: %w", err)
	}

	locked := make(map[int64]*SIM, len(rows))
	for i := range rows {
		locked[rows[i].SIMID] = &rows[i]
	}

	return locked, nil
}

func (t *pgTx) ActiveAssignmentForSIM(
	ctx context.Context,
	simID int64,
) (*Holding, error) {
	query := `
		SELECT a.assignment_id, a.user_id, a.sim_id, a.assigned_at,
		       a.unassigned_at, a.active,
		       u.name AS holder_name, u.biometric_id AS holder_biometric_id
		FROM sim_assignments a
		JOIN users u ON u.user_id = a.user_id
		WHERE a.sim_id = $1 AND a.active`

	var h Holding
	err := t.tx.GetContext(ctx, &h, query, simID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("active assignment for sim: %w", err)
	}

	return &h, nil
}

func (t *pgTx) ActiveAssignmentsForUser(
	ctx context.Context,
	userID int64,
) ([]Assignment, error) {
	query := `
		SELECT assignment_id, user_id, sim_id, assigned_at, unassigned_at, active
		FROM sim_assignments
		WHERE user_id = $1 AND active
		ORDER BY assigned_at DESC, assignment_id DESC`

	var rows []Assignment
	if err := t.tx.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("active assignments for user: %w", err)
	}

	return rows, nil
}

func (t *pgTx) CloseAssignment(
	ctx context.Context,
	assignmentID int64,
	at time.Time,
) (bool, error) {
	query := `
		UPDATE sim_assignments
		SET active = FALSE, unassigned_at = GREATEST($2, assigned_at)
		WHERE assignment_id = $1 AND active`

	result, err := t.tx.ExecContext(ctx, query, assignmentID, at)
	if err != nil {
		return false, fmt.Errorf("close assignment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("close assignment: %w", err)
	}

	return rows == 1, nil
}

func (t *pgTx) InsertAssignment(ctx context.Context, a *Assignment) error {
	query := `
		INSERT INTO sim_assignments (user_id, sim_id, assigned_at, active)
		VALUES ($1, $2, $3, TRUE)
		RETURNING assignment_id`

	err := t.tx.GetContext(ctx, &a.AssignmentID, query, a.UserID, a.SIMID, a.AssignedAt)
	if err != nil {
		err = core.TranslateConstraint(err, assignmentConstraints)
		var ce *core.ConstraintError
		if errors.As(err, &ce) && ce.Constraint == activeSIMIndex {
			return fmt.Errorf("insert assignment: %w", core.ErrConflict)
		}
		return fmt.Errorf("insert assignment: %w", err)
	}

	a.Active = true
	return nil
}

func (t *pgTx) AssignmentDetail(
	ctx context.Context,
	assignmentID int64,
) (*AssignmentDetail, error) {
	query := `
		SELECT a.assignment_id, a.user_id, u.name AS user_name, u.biometric_id,
		       a.sim_id, s.phone_number, s.provider,
		       a.assigned_at, a.unassigned_at, a.active
		FROM sim_assignments a
		JOIN users u ON u.user_id = a.user_id
		JOIN sims s ON s.sim_id = a.sim_id
		WHERE a.assignment_id = $1`

	var d AssignmentDetail
	err := t.tx.GetContext(ctx, &d, query, assignmentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("assignment detail: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("assignment detail: %w", err)
	}

	return &d, nil
}

func (t *pgTx) UpdateSIMStatus(
	ctx context.Context,
	simID int64,
	status, actor string,
	at time.Time,
) error {
	query := `
		UPDATE sims
		SET status = $2, handled_by_admin = $3, updated_at = $4
		WHERE sim_id = $1`

	if _, err := t.tx.ExecContext(ctx, query, simID, status, actor, at); err != nil {
		return fmt.Errorf("update sim status: %w", err)
	}

	return nil
}

func (t *pgTx) DeactivateUser(
	ctx context.Context,
	userID int64,
	actor string,
	at time.Time,
) error {
	query := `
		UPDATE users
		SET status = $2, handled_by_admin = $3, updated_at = $4
		WHERE user_id = $1`

	if _, err := t.tx.ExecContext(ctx, query, userID, UserInactive, actor, at); err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}

	return nil
}

func (t *pgTx) InsertExitLog(ctx context.Context, e *ExitLog) error {
	query := `
		INSERT INTO exit_logs
		    (user_id, reason, biometric_id, phone_number, handled_by_admin, exit_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING exit_id`

	err := t.tx.GetContext(ctx, &e.ExitID, query,
		e.UserID,
		e.Reason,
		e.BiometricID,
		e.PhoneNumber,
		e.HandledByAdmin,
		e.ExitDate,
	)
	if err != nil {
		return fmt.Errorf("insert exit log: %w", err)
	}

	return nil
}

func (t *pgTx) PurgeDeadSIMs(ctx context.Context, userID int64) ([]string, error) {
	query := `
		DELETE FROM sims s
		WHERE s.status IN ($2, $3)
		  AND EXISTS (
		      SELECT 1 FROM sim_assignments a
		      WHERE a.sim_id = s.sim_id AND a.user_id = $1 AND NOT a.active)
		  AND NOT EXISTS (
		      SELECT 1 FROM sim_assignments a
		      WHERE a.sim_id = s.sim_id AND a.active)
		RETURNING s.phone_number`

	var phones []string
	if err := t.tx.SelectContext(ctx, &phones, query, userID, SIMInactive, SIMOutOfService); err != nil {
		return nil, fmt.Errorf("purge dead sims: %w", err)
	}

	return phones, nil
}
