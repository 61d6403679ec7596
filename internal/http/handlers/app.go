package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"thumbgen/internal/auth"
	"thumbgen/internal/domain"
	"thumbgen/internal/middleware"
	"thumbgen/internal/session"
	"thumbgen/internal/thumbnail"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

type AuthService interface {
	Register(ctx context.Context, in auth.RegisterInput) (*domain.User, error)
	Login(ctx context.Context, in auth.LoginInput) (*domain.User, error)
	Verify(ctx context.Context, userID string) (*domain.User, error)
}

type ThumbnailService interface {
	Generate(ctx context.Context, userID string, in thumbnail.GenerateInput) (*domain.Thumbnail, error)
	List(ctx context.Context, userID string) ([]domain.Thumbnail, error)
	Get(ctx context.Context, userID, id string) (*domain.Thumbnail, error)
	Delete(ctx context.Context, userID, id string) error
	Download(ctx context.Context, userID, id string) (*thumbnail.Download, error)
}

type SessionManager interface {
	Start(ctx context.Context, w http.ResponseWriter, userID string) error
	Resolve(ctx context.Context, r *http.Request) (string, error)
	End(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

type App struct {
	DB         Pinger
	Logger     zerolog.Logger
	Auth       AuthService
	Thumbnails ThumbnailService
	Sessions   SessionManager
}

type messageResponse struct {
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, message string) {
	a.json(w, code, messageResponse{Message: message})
}

// fail maps service errors to a status and a client-safe message. Anything
// unexpected is logged with the request id and reported generically.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		a.error(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, domain.ErrValidation):
		a.error(w, http.StatusBadRequest, "Invalid request")
	case errors.Is(err, domain.ErrUnauthorized), session.IsUnauthenticated(err):
		a.error(w, http.StatusUnauthorized, "Not authorized")
	case errors.Is(err, domain.ErrUserExists):
		a.error(w, http.StatusBadRequest, "User already exists")
	case errors.Is(err, domain.ErrInvalidCredentials):
		a.error(w, http.StatusBadRequest, "Invalid email or password")
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "Not found")
	default:
		a.Logger.Error().Err(err).
			Str("request_id", middleware.RequestIDFromContext(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
		a.error(w, http.StatusInternalServerError, internalMessage(err))
	}
}

func internalMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrGenerationFailed), errors.Is(err, domain.ErrProviderFailure):
		return "Thumbnail generation failed, please try again"
	case errors.Is(err, domain.ErrUpload):
		return "Could not store the generated image"
	default:
		return "Internal server error"
	}
}

func (a *App) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		a.error(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}
