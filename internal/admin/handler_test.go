// AngelaMos | 2026
// handler_test.go

package admin

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/AcolyteGlobal/SimProj-BE/internal/ledger"
	"github.com/AcolyteGlobal/SimProj-BE/internal/middleware"
)

type fakeInventory struct {
	inv   *Inventory
	err   error
	calls int
}

func (f *fakeInventory) Summary(context.Context) (*Inventory, error) {
	f.calls++
	return f.inv, f.err
}

func router(h *Handler, role string) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := middleware.WithClaims(req.Context(), &middleware.AccessTokenClaims{
				AdminID: "a1",
				Role:    role,
			})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	h.RegisterRoutes(r, middleware.RequireAdmin)
	return r
}

func get(t *testing.T, h http.Handler, path string) (int, map[string]json.RawMessage) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var env struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return rec.Code, env.Data
}

func TestSystemStatsIncludesInventory(t *testing.T) {
	inv := &fakeInventory{inv: &Inventory{
		UsersByStatus:     map[string]int{ledger.UserActive: 3, ledger.UserInactive: 1},
		SIMsByStatus:      map[string]int{ledger.SIMAssigned: 2, ledger.SIMAvailable: 5},
		ActiveAssignments: 2,
		Exits:             1,
	}}
	h := NewHandler(HandlerConfig{
		DBStats:   func() sql.DBStats { return sql.DBStats{MaxOpenConnections: 10, InUse: 1} },
		DBPing:    func(context.Context) error { return nil },
		Inventory: inv,
	})

	code, data := get(t, router(h, middleware.RoleAdmin), "/admin/stats")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}

	var got Inventory
	if err := json.Unmarshal(data["inventory"], &got); err != nil {
		t.Fatalf("decode inventory: %v", err)
	}
	if got.ActiveAssignments != 2 || got.SIMsByStatus[ledger.SIMAvailable] != 5 {
		t.Errorf("inventory = %+v", got)
	}

	var db DatabaseStatus
	if err := json.Unmarshal(data["database"], &db); err != nil {
		t.Fatalf("decode database: %v", err)
	}
	if !db.Healthy || db.Stats == nil || db.Stats.MaxOpenConnections != 10 {
		t.Errorf("database = %+v", db)
	}
}

func TestSystemStatsSkipsInventoryWhenDatabaseDown(t *testing.T) {
	inv := &fakeInventory{}
	h := NewHandler(HandlerConfig{
		DBPing:    func(context.Context) error { return errors.New("connection refused") },
		Inventory: inv,
	})

	code, data := get(t, router(h, middleware.RoleAdmin), "/admin/stats")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if _, ok := data["inventory"]; ok {
		t.Error("inventory should be omitted while the database is unhealthy")
	}
	if inv.calls != 0 {
		t.Errorf("inventory queried %d times, want 0", inv.calls)
	}
}

func TestInventoryEndpoint(t *testing.T) {
	failing := NewHandler(HandlerConfig{Inventory: &fakeInventory{err: errors.New("boom")}})

	rec := httptest.NewRecorder()
	router(failing, middleware.RoleAdmin).ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/admin/stats/inventory", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("failing summary status = %d, want 500", rec.Code)
	}

	rec = httptest.NewRecorder()
	router(failing, middleware.RoleViewer).ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/admin/stats/inventory", nil))
	if rec.Code != http.StatusForbidden {
		t.Errorf("viewer status = %d, want 403", rec.Code)
	}
}
