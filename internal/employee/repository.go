// AngelaMos | 2026
// repository.go

package employee

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/AcolyteGlobal/SimProj-BE/internal/core"
	"github.com/AcolyteGlobal/SimProj-BE/internal/ledger"
)

var employeeConstraints = core.ConstraintFields{
	"users_official_email_key": "official_email",
	"users_biometric_id_key":   "biometric_id",
}

// ErrHoldsSIM is returned when deactivating an employee who still holds
// a SIM. Exit is the path that reclaims it.
var ErrHoldsSIM = fmt.Errorf("employee holds an active sim: %w", core.ErrConflict)

const currentPhoneColumn = `(SELECT s.phone_number
	FROM sim_assignments a
	JOIN sims s ON s.sim_id = a.sim_id
	WHERE a.user_id = u.user_id AND a.active
	ORDER BY a.assigned_at DESC
	LIMIT 1) AS current_phone`

var employeeColumns = []string{
	"u.user_id", "u.name", "u.branch", "u.department", "u.office_number",
	"u.official_email", "u.biometric_id", "u.status", "u.handled_by_admin",
	"u.created_at", "u.updated_at", currentPhoneColumn,
}

type Repository interface {
	Create(ctx context.Context, e *Employee) error
	GetByBiometricID(ctx context.Context, biometricID int) (*Employee, error)
	List(ctx context.Context, params ListEmployeesParams) ([]Employee, int, error)
	UpdateStatus(ctx context.Context, biometricID int, status, actor string) (*Employee, error)
}

type repository struct {
	db *sqlx.DB
	qb sq.StatementBuilderType
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{
		db: db,
		qb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Create inserts the employee and lets the biometric sequence issue the id.
func (r *repository) Create(ctx context.Context, e *Employee) error {
	query := `
		INSERT INTO users
		    (name, branch, department, office_number, official_email, handled_by_admin)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING user_id, biometric_id, status, created_at, updated_at`

	row := r.db.QueryRowxContext(ctx, query,
		e.Name,
		e.Branch,
		e.Department,
		e.OfficeNumber,
		e.OfficialEmail,
		e.HandledByAdmin,
	)
	err := row.Scan(&e.UserID, &e.BiometricID, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create employee: %w", core.TranslateConstraint(err, employeeConstraints))
	}

	return nil
}

func (r *repository) GetByBiometricID(
	ctx context.Context,
	biometricID int,
) (*Employee, error) {
	query, args, err := r.qb.
		Select(employeeColumns...).
		From("users u").
		Where(sq.Eq{"u.biometric_id": biometricID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get employee: %w", err)
	}

	var e Employee
	err = r.db.GetContext(ctx, &e, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get employee: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get employee: %w", err)
	}

	return &e, nil
}

func (r *repository) List(
	ctx context.Context,
	params ListEmployeesParams,
) ([]Employee, int, error) {
	params.Normalize()

	where := sq.And{}
	if params.Search != "" {
		pattern := "%" + escapeLike(params.Search) + "%"
		where = append(where, sq.Or{
			sq.ILike{"u.name": pattern},
			sq.ILike{"u.branch": pattern},
			sq.ILike{"u.department": pattern},
			sq.ILike{"u.official_email": pattern},
		})
	}
	if params.Status != "" {
		where = append(where, sq.Eq{"u.status": params.Status})
	}

	countSQL, countArgs, err := r.qb.Select("COUNT(*)").From("users u").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count employees: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count employees: %w", err)
	}

	query, args, err := r.qb.
		Select(employeeColumns...).
		From("users u").
		Where(where).
		OrderBy("u.biometric_id").
		Limit(uint64(params.PageSize)).  //nolint:gosec // normalized positive
		Offset(uint64(params.Offset())). //nolint:gosec // normalized positive
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list employees: %w", err)
	}

	rows := []Employee{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list employees: %w", err)
	}

	return rows, total, nil
}

// UpdateStatus refuses to deactivate an employee with an active
// assignment. It holds the user row lock the ledger takes, so the check
// cannot race an assignment.
func (r *repository) UpdateStatus(
	ctx context.Context,
	biometricID int,
	status, actor string,
) (*Employee, error) {
	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var userID int64
		err := tx.GetContext(ctx, &userID,
			`SELECT user_id FROM users WHERE biometric_id = $1 FOR UPDATE`,
			biometricID,
		)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("update employee status: %w", core.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("update employee status: %w", err)
		}

		if status == ledger.UserInactive {
			var holds bool
			err := tx.GetContext(ctx, &holds,
				`SELECT EXISTS(SELECT 1 FROM sim_assignments WHERE user_id = $1 AND active)`,
				userID,
			)
			if err != nil {
				return fmt.Errorf("update employee status: %w", err)
			}
			if holds {
				return ErrHoldsSIM
			}
		}

		query := `
			UPDATE users
			SET status = $2, handled_by_admin = $3, updated_at = NOW()
			WHERE user_id = $1`

		if _, err := tx.ExecContext(ctx, query, userID, status, actor); err != nil {
			return fmt.Errorf("update employee status: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetByBiometricID(ctx, biometricID)
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
