package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"thumbgen/internal/session"
)

type resolverFunc func(ctx context.Context, r *http.Request) (string, error)

func (f resolverFunc) Resolve(ctx context.Context, r *http.Request) (string, error) {
	return f(ctx, r)
}

func TestRequireSession(t *testing.T) {
	tests := []struct {
		name       string
		resolver   resolverFunc
		wantStatus int
		wantUser   string
		wantBody   string
	}{
		{
			name:       "valid session",
			resolver:   func(context.Context, *http.Request) (string, error) { return "user-1", nil },
			wantStatus: http.StatusOK,
			wantUser:   "user-1",
		},
		{
			name:       "missing session",
			resolver:   func(context.Context, *http.Request) (string, error) { return "", session.ErrNotFound },
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"message":"Not authorized"}`,
		},
		{
			name: "tampered token",
			resolver: func(context.Context, *http.Request) (string, error) {
				return "", fmt.Errorf("%w: signature is invalid", session.ErrInvalidToken)
			},
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"message":"Not authorized"}`,
		},
		{
			name:       "empty user",
			resolver:   func(context.Context, *http.Request) (string, error) { return "", nil },
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"message":"Not authorized"}`,
		},
		{
			name: "store unreachable",
			resolver: func(context.Context, *http.Request) (string, error) {
				return "", fmt.Errorf("load session: %w", errors.New("dial tcp: connection refused"))
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"message":"Internal server error"}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var gotUser string
			h := RequireSession(tc.resolver, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser = UserIDFromContext(r.Context())
			}))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/user/thumbnails", nil))

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			if gotUser != tc.wantUser {
				t.Fatalf("user = %q, want %q", gotUser, tc.wantUser)
			}
			if tc.wantBody != "" && rec.Body.String() != tc.wantBody {
				t.Fatalf("body = %q, want %q", rec.Body.String(), tc.wantBody)
			}
		})
	}
}
