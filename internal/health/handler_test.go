// AngelaMos | 2026
// handler_test.go

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestReadiness(t *testing.T) {
	tests := []struct {
		name       string
		deps       []Dependency
		wantCode   int
		wantStatus string
	}{
		{
			name: "all healthy",
			deps: []Dependency{
				{Name: "database", Checker: pinger{}},
				{Name: "redis", Checker: pinger{}},
			},
			wantCode:   http.StatusOK,
			wantStatus: "ok",
		},
		{
			name: "redis down",
			deps: []Dependency{
				{Name: "database", Checker: pinger{}},
				{Name: "redis", Checker: pinger{err: errors.New("dial tcp: refused")}},
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "degraded",
		},
		{
			name:       "unconfigured checker",
			deps:       []Dependency{{Name: "database"}},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "degraded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(NewHandler(tt.deps...), "/readyz")
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}

			var body ReadinessResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Status != tt.wantStatus {
				t.Errorf("body status = %q, want %q", body.Status, tt.wantStatus)
			}
			if len(body.Checks) != len(tt.deps) {
				t.Errorf("checks = %d, want %d", len(body.Checks), len(tt.deps))
			}
			for i, c := range body.Checks {
				if c.Name != tt.deps[i].Name {
					t.Errorf("check[%d] = %q, want %q", i, c.Name, tt.deps[i].Name)
				}
			}
		})
	}
}

func TestShutdownFailsProbes(t *testing.T) {
	h := NewHandler(Dependency{Name: "database", Checker: pinger{}})

	if rec := serve(h, "/livez"); rec.Code != http.StatusOK {
		t.Fatalf("livez before shutdown = %d", rec.Code)
	}

	h.SetShutdown(true)
	for _, path := range []string{"/healthz", "/livez", "/readyz"} {
		if rec := serve(h, path); rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s during shutdown = %d, want 503", path, rec.Code)
		}
	}
}

func TestNotReady(t *testing.T) {
	h := NewHandler()
	h.SetReady(false)

	rec := serve(h, "/readyz")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if rec.Header().Get("Cache-Control") == "" {
		t.Error("probe responses must not be cached")
	}
}
