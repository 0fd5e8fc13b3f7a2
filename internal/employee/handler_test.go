// AngelaMos | 2026
// handler_test.go

package employee

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgerrcode"

	"github.com/AcolyteGlobal/SimProj-BE/internal/core"
	"github.com/AcolyteGlobal/SimProj-BE/internal/ledger"
	"github.com/AcolyteGlobal/SimProj-BE/internal/middleware"
)

type fakeRepo struct {
	mu       sync.Mutex
	rows     []Employee
	nextBio  int
	maxBio   int
	holding  map[int]string
	lastList ListEmployeesParams
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{maxBio: 9999, holding: map[int]string{}}
}

func (f *fakeRepo) Create(_ context.Context, e *Employee) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if e.OfficialEmail != nil {
		for _, row := range f.rows {
			if row.OfficialEmail != nil && *row.OfficialEmail == *e.OfficialEmail {
				return fmt.Errorf("create employee: %w", &core.ConstraintError{
					Constraint: "users_official_email_key",
					Field:      employeeConstraints["users_official_email_key"],
					Code:       pgerrcode.UniqueViolation,
				})
			}
		}
	}

	if f.nextBio >= f.maxBio {
		return fmt.Errorf("create employee: %w", core.ErrSequenceLimit)
	}
	f.nextBio++

	e.UserID = int64(f.nextBio)
	e.BiometricID = f.nextBio
	e.Status = ledger.UserActive
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	f.rows = append(f.rows, *e)
	return nil
}

func (f *fakeRepo) GetByBiometricID(_ context.Context, id int) (*Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.BiometricID == id {
			if phone, ok := f.holding[id]; ok {
				row.CurrentPhone = &phone
			}
			return &row, nil
		}
	}
	return nil, fmt.Errorf("get employee: %w", core.ErrNotFound)
}

func (f *fakeRepo) List(_ context.Context, params ListEmployeesParams) ([]Employee, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	params.Normalize()
	f.lastList = params
	return f.rows, len(f.rows), nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, id int, status, actor string) (*Employee, error) {
	f.mu.Lock()
	for i := range f.rows {
		if f.rows[i].BiometricID != id {
			continue
		}
		if _, held := f.holding[id]; held && status == ledger.UserInactive {
			f.mu.Unlock()
			return nil, ErrHoldsSIM
		}
		f.rows[i].Status = status
		f.rows[i].HandledByAdmin = actor
		f.mu.Unlock()
		return f.GetByBiometricID(ctx, id)
	}
	f.mu.Unlock()
	return nil, fmt.Errorf("get employee: %w", core.ErrNotFound)
}

func newTestRouter(t *testing.T) (http.Handler, *fakeRepo) {
	t.Helper()

	repo := newFakeRepo()
	svc := NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := middleware.WithClaims(req.Context(), &middleware.AccessTokenClaims{
				AdminID:  "a1",
				Username: "hr",
				Role:     middleware.RoleAdmin,
			})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	NewHandler(svc).RegisterRoutes(r, middleware.RequireAdmin)

	return r, repo
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func do(t *testing.T, h http.Handler, method, path, body string) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, reader))

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return rec.Code, env
}

func TestOnboardIssuesBiometricID(t *testing.T) {
	router, repo := newTestRouter(t)

	code, env := do(t, router, http.MethodPost, "/users",
		`{"name":" Alice ","branch":"Lahore","official_email":"Alice@Corp.example"}`)
	if code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", code)
	}

	var got EmployeeResponse
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if got.BiometricID != 1 || got.BiometricCode != "BIO001" {
		t.Errorf("biometric = %d/%s, want 1/BIO001", got.BiometricID, got.BiometricCode)
	}
	if got.Name != "Alice" || got.Status != ledger.UserActive {
		t.Errorf("employee = %+v", got)
	}
	if repo.rows[0].OfficialEmail == nil || *repo.rows[0].OfficialEmail != "alice@corp.example" {
		t.Errorf("stored email = %v, want lower-cased", repo.rows[0].OfficialEmail)
	}
	if repo.rows[0].HandledByAdmin != "hr" {
		t.Errorf("handled_by_admin = %q, want hr", repo.rows[0].HandledByAdmin)
	}
}

func TestOnboardErrors(t *testing.T) {
	router, repo := newTestRouter(t)

	do(t, router, http.MethodPost, "/users",
		`{"name":"Alice","branch":"Lahore","official_email":"alice@corp.example"}`)

	code, env := do(t, router, http.MethodPost, "/users",
		`{"name":"Alias","branch":"Karachi","official_email":"ALICE@corp.example"}`)
	if code != http.StatusConflict || env.Error.Code != "DUPLICATE_KEY" {
		t.Fatalf("duplicate = %d %+v, want 409 DUPLICATE_KEY", code, env.Error)
	}
	if env.Error.Details["field"] != "official_email" {
		t.Errorf("details = %v, want field official_email", env.Error.Details)
	}

	code, env = do(t, router, http.MethodPost, "/users", `{"branch":"Lahore"}`)
	if code != http.StatusBadRequest || env.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("missing name = %d %+v", code, env.Error)
	}

	code, _ = do(t, router, http.MethodPost, "/users",
		`{"name":"Bob","branch":"Lahore","official_email":"not-an-email"}`)
	if code != http.StatusBadRequest {
		t.Errorf("bad email status = %d, want 400", code)
	}

	repo.maxBio = repo.nextBio
	code, env = do(t, router, http.MethodPost, "/users", `{"name":"Zed","branch":"Lahore"}`)
	if code != http.StatusBadRequest || env.Error.Code != "BIOMETRIC_POOL_EXHAUSTED" {
		t.Errorf("exhausted = %d %+v, want 400 BIOMETRIC_POOL_EXHAUSTED", code, env.Error)
	}
}

func TestGetAndStatus(t *testing.T) {
	router, repo := newTestRouter(t)

	do(t, router, http.MethodPost, "/users", `{"name":"Alice","branch":"Lahore"}`)
	do(t, router, http.MethodPost, "/users", `{"name":"Bob","branch":"Lahore"}`)
	repo.holding[2] = "5550002"

	code, env := do(t, router, http.MethodGet, "/users/bio002", "")
	if code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", code)
	}
	var got EmployeeResponse
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.CurrentPhone == nil || *got.CurrentPhone != "5550002" {
		t.Errorf("current_phone = %v, want 5550002", got.CurrentPhone)
	}

	tests := []struct {
		name     string
		path     string
		body     string
		wantCode int
		wantErr  string
	}{
		{"deactivate free employee", "/users/1/status", `{"status":"inactive"}`, http.StatusOK, ""},
		{"deactivate holder", "/users/BIO002/status", `{"status":"inactive"}`, http.StatusConflict, "USER_HOLDS_SIM"},
		{"reactivate", "/users/BIO001/status", `{"status":"active"}`, http.StatusOK, ""},
		{"unknown employee", "/users/BIO050/status", `{"status":"active"}`, http.StatusNotFound, "NOT_FOUND"},
		{"bad status", "/users/BIO001/status", `{"status":"retired"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"bad id", "/users/abc/status", `{"status":"active"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := do(t, router, http.MethodPatch, tt.path, tt.body)
			if code != tt.wantCode {
				t.Fatalf("status = %d, want %d", code, tt.wantCode)
			}
			if tt.wantErr != "" && (env.Error == nil || env.Error.Code != tt.wantErr) {
				t.Errorf("error = %+v, want %s", env.Error, tt.wantErr)
			}
		})
	}
}

func TestListValidatesStatusFilter(t *testing.T) {
	router, repo := newTestRouter(t)

	code, _ := do(t, router, http.MethodGet, "/users?status=gone", "")
	if code != http.StatusBadRequest {
		t.Errorf("bad filter status = %d, want 400", code)
	}

	code, _ = do(t, router, http.MethodGet, "/users?status=active&search=lah&page=2&page_size=5", "")
	if code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", code)
	}
	if repo.lastList.Search != "lah" || repo.lastList.Page != 2 || repo.lastList.PageSize != 5 {
		t.Errorf("params = %+v", repo.lastList)
	}
}

func TestEscapeLike(t *testing.T) {
	if got := escapeLike(`50%_off\`); got != `50\%\_off\\` {
		t.Errorf("escapeLike = %q", got)
	}
}
