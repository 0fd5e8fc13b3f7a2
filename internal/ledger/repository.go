// AngelaMos | 2026
// repository.go

package ledger

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/AcolyteGlobal/SimProj-BE/internal/core"
)

type ListAssignmentsParams struct {
	Page        int
	PageSize    int
	Active      *bool
	BiometricID int
	PhoneNumber string
}

type ListExitsParams struct {
	Page        int
	PageSize    int
	BiometricID int
}

func normalizePage(page, pageSize *int) {
	if *page < 1 {
		*page = 1
	}
	if *pageSize < 1 {
		*pageSize = 20
	}
	if *pageSize > 100 {
		*pageSize = 100
	}
}

func offset(page, pageSize int) uint64 {
	return uint64((page - 1) * pageSize) //nolint:gosec // page and size are normalized positive
}

// Reader serves the read-only history views.
type Reader interface {
	ListAssignments(ctx context.Context, params *ListAssignmentsParams) ([]AssignmentDetail, int, error)
	ListExits(ctx context.Context, params *ListExitsParams) ([]ExitLogDetail, int, error)
}

type reader struct {
	db core.DBTX
	qb sq.StatementBuilderType
}

func NewReader(db core.DBTX) Reader {
	return &reader{
		db: db,
		qb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *reader) ListAssignments(
	ctx context.Context,
	params *ListAssignmentsParams,
) ([]AssignmentDetail, int, error) {
	normalizePage(&params.Page, &params.PageSize)

	where := sq.And{}
	if params.Active != nil {
		where = append(where, sq.Eq{"a.active": *params.Active})
	}
	if params.BiometricID > 0 {
		where = append(where, sq.Eq{"u.biometric_id": params.BiometricID})
	}
	if params.PhoneNumber != "" {
		where = append(where, sq.Eq{"s.phone_number": params.PhoneNumber})
	}

	from := "sim_assignments a " +
		"JOIN users u ON u.user_id = a.user_id " +
		"JOIN sims s ON s.sim_id = a.sim_id"

	countSQL, countArgs, err := r.qb.Select("COUNT(*)").From(from).Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count assignments: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count assignments: %w", err)
	}

	query, args, err := r.qb.
		Select(
			"a.assignment_id", "a.user_id", "u.name AS user_name", "u.biometric_id",
			"a.sim_id", "s.phone_number", "s.provider",
			"a.assigned_at", "a.unassigned_at", "a.active",
		).
		From(from).
		Where(where).
		OrderBy("a.assigned_at DESC", "a.assignment_id DESC").
		Limit(uint64(params.PageSize)). //nolint:gosec // normalized positive
		Offset(offset(params.Page, params.PageSize)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list assignments: %w", err)
	}

	rows := []AssignmentDetail{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list assignments: %w", err)
	}

	return rows, total, nil
}

func (r *reader) ListExits(
	ctx context.Context,
	params *ListExitsParams,
) ([]ExitLogDetail, int, error) {
	normalizePage(&params.Page, &params.PageSize)

	where := sq.And{}
	if params.BiometricID > 0 {
		where = append(where, sq.Eq{"e.biometric_id": params.BiometricID})
	}

	from := "exit_logs e JOIN users u ON u.user_id = e.user_id"

	countSQL, countArgs, err := r.qb.Select("COUNT(*)").From(from).Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count exits: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count exits: %w", err)
	}

	query, args, err := r.qb.
		Select(
			"e.exit_id", "e.user_id", "e.reason", "e.biometric_id", "e.phone_number",
			"e.handled_by_admin", "e.exit_date", "u.name AS user_name",
		).
		From(from).
		Where(where).
		OrderBy("e.exit_date DESC", "e.exit_id DESC").
		Limit(uint64(params.PageSize)). //nolint:gosec // normalized positive
		Offset(offset(params.Page, params.PageSize)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list exits: %w", err)
	}

	rows := []ExitLogDetail{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list exits: %w", err)
	}

	return rows, total, nil
}
