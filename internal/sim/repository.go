// AngelaMos | 2026
// repository.go

package sim

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

var simConstraints = core.ConstraintFields{
	"sims_phone_number_key": "phone_number",
}

var ErrInUse = fmt.Errorf("sim is actively assigned: %w", core.ErrConflict)

var simColumns = []string{
	"s.sim_id", "s.phone_number", "s.provider", "s.status", "s.handled_by_admin",
	"s.added_date", "s.updated_at",
	"h.name AS holder_name", "h.biometric_id AS holder_biometric_id",
}

const holderJoin = `(SELECT a.sim_id, u.name, u.biometric_id
	FROM sim_assignments a
	JOIN users u ON u.user_id = a.user_id
	WHERE a.active) h ON h.sim_id = s.sim_id`

type Repository interface {
	Create(ctx context.Context, s *SIM) error
	GetByPhone(ctx context.Context, phone string) (*SIM, error)
	List(ctx context.Context, params ListSIMsParams) ([]SIM, int, error)
	UpdateStatus(ctx context.Context, phone, status, actor string) (*SIM, error)
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

func (r *repository) Create(ctx context.Context, s *SIM) error {
	query := `
		INSERT INTO sims (phone_number, provider, status, handled_by_admin)
		VALUES ($1, $2, $3, $4)
		RETURNING sim_id, added_date, updated_at`

	row := r.db.QueryRowxContext(ctx, query,
		s.PhoneNumber,
		s.Provider,
		ledger.SIMAvailable,
		s.HandledByAdmin,
	)
	if err := row.Scan(&s.SIMID, &s.AddedDate, &s.UpdatedAt); err != nil {
		return fmt.Errorf("create sim: %w", core.TranslateConstraint(err, simConstraints))
	}

	s.Status = ledger.SIMAvailable
	return nil
}

func (r *repository) GetByPhone(ctx context.Context, phone string) (*SIM, error) {
	query, args, err := r.qb.
		Select(simColumns...).
		From("sims s").
		LeftJoin(holderJoin).
		Where(sq.Eq{"s.phone_number": phone}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get sim: %w", err)
	}

	var s SIM
	err = r.db.GetContext(ctx, &s, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get sim: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get sim: %w", err)
	}

	return &s, nil
}

// List returns SIMs together with the name of whoever holds them now.
func (r *repository) List(
	ctx context.Context,
	params ListSIMsParams,
) ([]SIM, int, error) {
	params.Normalize()

	where := sq.And{}
	if params.Search != "" {
		pattern := "%" + escapeLike(params.Search) + "%"
		where = append(where, sq.Or{
			sq.Like{"s.phone_number": pattern},
			sq.ILike{"s.provider": pattern},
			sq.ILike{"h.name": pattern},
		})
	}
	if params.Status != "" {
		where = append(where, sq.Eq{"s.status": params.Status})
	}

	countSQL, countArgs, err := r.qb.
		Select("COUNT(*)").
		From("sims s").
		LeftJoin(holderJoin).
		Where(where).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count sims: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count sims: %w", err)
	}

	query, args, err := r.qb.
		Select(simColumns...).
		From("sims s").
		LeftJoin(holderJoin).
		Where(where).
		OrderBy("s.added_date DESC", "s.sim_id DESC").
		Limit(uint64(params.PageSize)).  //nolint:gosec // normalized positive
		Offset(uint64(params.Offset())). //nolint:gosec // normalized positive
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list sims: %w", err)
	}

	rows := []SIM{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sims: %w", err)
	}

	return rows, total, nil
}

// UpdateStatus takes the SIM row lock the ledger takes before checking for
// an active assignment, so a concurrent assign cannot slip in between.
func (r *repository) UpdateStatus(
	ctx context.Context,
	phone, status, actor string,
) (*SIM, error) {
	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var simID int64
		err := tx.GetContext(ctx, &simID,
			`SELECT sim_id FROM sims WHERE phone_number = $1 FOR UPDATE`,
			phone,
		)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("update sim status: %w", core.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("update sim status: %w", err)
		}

		var held bool
		err = tx.GetContext(ctx, &held,
			`SELECT EXISTS(SELECT 1 FROM sim_assignments WHERE sim_id = $1 AND active)`,
			simID,
		)
		if err != nil {
			return fmt.Errorf("update sim status: %w", err)
		}
		if held {
			return ErrInUse
		}

		query := `
			UPDATE sims
			SET status = $2, handled_by_admin = $3, updated_at = NOW()
			WHERE sim_id = $1`

		if _, err := tx.ExecContext(ctx, query, simID, status, actor); err != nil {
			return fmt.Errorf("update sim status: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetByPhone(ctx, phone)
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
