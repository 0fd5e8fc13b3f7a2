// AngelaMos | 2026
// requestid_test.go

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"generated when absent", "", false},
		{"propagated when present", "req-123", true},
		{"replaced when too long", strings.Repeat("x", 100), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetRequestID(r.Context())
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()

			RequestID(next).ServeHTTP(rec, req)

			if seen == "" {
				t.Fatal("request id missing from context")
			}
			if rec.Header().Get(RequestIDHeader) != seen {
				t.Error("response header does not echo the request id")
			}
			if tt.keep && seen != tt.incoming {
				t.Errorf("request id = %q, want %q", seen, tt.incoming)
			}
			if !tt.keep && seen == tt.incoming {
				t.Error("incoming id should have been replaced")
			}
		})
	}
}
