// AngelaMos | 2026
// inventory.go

package admin

import (
	"context"
	"fmt"

	"github.com/AcolyteGlobal/SimProj-BE/internal/core"
)

type Inventory struct {
	UsersByStatus     map[string]int `json:"users_by_status"`
	SIMsByStatus      map[string]int `json:"sims_by_status"`
	ActiveAssignments int            `json:"active_assignments"`
	Exits             int            `json:"exits"`
}

type InventoryReader interface {
	Summary(ctx context.Context) (*Inventory, error)
}

type inventoryRepository struct {
	db core.DBTX
}

func NewInventoryRepository(db core.DBTX) InventoryReader {
	return &inventoryRepository{db: db}
}

type statusCount struct {
	Status string `db:"status"`
	Count  int    `db:"count"`
}

func (r *inventoryRepository) Summary(ctx context.Context) (*Inventory, error) {
	inv := &Inventory{
		UsersByStatus: map[string]int{},
		SIMsByStatus:  map[string]int{},
	}

	var users []statusCount
	if err := r.db.SelectContext(ctx, &users,
		`SELECT status, COUNT(*) AS count FROM users GROUP BY status`,
	); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	for _, c := range users {
		inv.UsersByStatus[c.Status] = c.Count
	}

	var sims []statusCount
	if err := r.db.SelectContext(ctx, &sims,
		`SELECT status, COUNT(*) AS count FROM sims GROUP BY status`,
	); err != nil {
		return nil, fmt.Errorf("count sims: %w", err)
	}
	for _, c := range sims {
		inv.SIMsByStatus[c.Status] = c.Count
	}

	if err := r.db.GetContext(ctx, &inv.ActiveAssignments,
		`SELECT COUNT(*) FROM sim_assignments WHERE active`,
	); err != nil {
		return nil, fmt.Errorf("count assignments: %w", err)
	}

	if err := r.db.GetContext(ctx, &inv.Exits,
		`SELECT COUNT(*) FROM exit_logs`,
	); err != nil {
		return nil, fmt.Errorf("count exits: %w", err)
	}

	return inv, nil
}
