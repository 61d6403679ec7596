package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestRequestID(t *testing.T) {
	tests := []struct {
		name    string
		inbound string
		keep    bool
	}{
		{name: "missing header", inbound: "", keep: false},
		{name: "proxy id kept", inbound: "edge-7f3a.42", keep: true},
		{name: "log injection rejected", inbound: "abc\nlevel=error", keep: false},
		{name: "oversized rejected", inbound: strings.Repeat("a", 65), keep: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var seen string
			h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = RequestIDFromContext(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/api/user/thumbnails", nil)
			if tc.inbound != "" {
				req.Header.Set(RequestIDHeader, tc.inbound)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if got := rec.Header().Get(RequestIDHeader); got != seen {
				t.Fatalf("response id = %q, context id = %q", got, seen)
			}
			if tc.keep {
				if seen != tc.inbound {
					t.Fatalf("id = %q, want %q", seen, tc.inbound)
				}
				return
			}
			if _, err := uuid.Parse(seen); err != nil {
				t.Fatalf("id = %q, want a generated uuid", seen)
			}
		})
	}
}
