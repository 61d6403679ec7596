package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"thumbgen/internal/session"
)

type userKey struct{}

// SessionResolver maps a request to the user behind its session cookie.
type SessionResolver interface {
	Resolve(ctx context.Context, r *http.Request) (string, error)
}

// RequireSession answers 401 for a missing or invalid session and 500 when
// the session store fails. Otherwise it stores the user id in the context.
func RequireSession(resolver SessionResolver, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := resolver.Resolve(r.Context(), r)
			if err != nil && !session.IsUnauthenticated(err) {
				logger.Error().Err(err).
					Str("request_id", RequestIDFromContext(r.Context())).
					Str("path", r.URL.Path).
					Msg("session lookup failed")
				writeMessage(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if err != nil || userID == "" {
				writeMessage(w, http.StatusUnauthorized, "Not authorized")
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), userID)))
		})
	}
}

func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userKey{}).(string); ok {
		return v
	}
	return ""
}

func ContextWithUserID(ctx context.Context, userID string) context.Context {
	if strings.TrimSpace(userID) == "" {
		return ctx
	}
	return context.WithValue(ctx, userKey{}, userID)
}

func writeMessage(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(`{"message":` + strconv.Quote(message) + `}`))
}
