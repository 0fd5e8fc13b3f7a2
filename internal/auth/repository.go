// AngelaMos | 2026
// repository.go

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AcolyteGlobal/SimProj-BE/internal/core"
)

var adminConstraints = core.ConstraintFields{
	"admins_username_key": "username",
}

type Repository interface {
	Create(ctx context.Context, admin *Admin) error
	GetByID(ctx context.Context, id string) (*Admin, error)
	GetByUsername(ctx context.Context, username string) (*Admin, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	IncrementTokenVersion(ctx context.Context, id string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, admin *Admin) error {
	query := `
		INSERT INTO admins (id, username, name, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING token_version, created_at, updated_at`

	row := r.db.QueryRowxContext(ctx, query,
		admin.ID,
		admin.Username,
		admin.Name,
		admin.PasswordHash,
		admin.Role,
	)
	if err := row.Scan(&admin.TokenVersion, &admin.CreatedAt, &admin.UpdatedAt); err != nil {
		return fmt.Errorf("create admin: %w", core.TranslateConstraint(err, adminConstraints))
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Admin, error) {
	query := `
		SELECT id, username, name, password_hash, role, token_version,
		       created_at, updated_at
		FROM admins
		WHERE id = $1`

	var admin Admin
	err := r.db.GetContext(ctx, &admin, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get admin: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get admin: %w", err)
	}

	return &admin, nil
}

func (r *repository) GetByUsername(
	ctx context.Context,
	username string,
) (*Admin, error) {
	query := `
		SELECT id, username, name, password_hash, role, token_version,
		       created_at, updated_at
		FROM admins
		WHERE username = $1`

	var admin Admin
	err := r.db.GetContext(ctx, &admin, query, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get admin by username: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get admin by username: %w", err)
	}

	return &admin, nil
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	query := `
		UPDATE admins
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) IncrementTokenVersion(ctx context.Context, id string) error {
	query := `
		UPDATE admins
		SET token_version = token_version + 1, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("increment token version: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment token version: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("increment token version: %w", core.ErrNotFound)
	}

	return nil
}
