package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"thumbgen/internal/http/handlers"
	"thumbgen/internal/middleware"
)

// Options configures the cross-cutting parts of the router.
type Options struct {
	AllowedOrigins    []string
	GenerateRateLimit int
	// TrustProxyHeaders enables chi RealIP. Leave it off unless a proxy in
	// front of the API sets X-Forwarded-For itself.
	TrustProxyHeaders bool
	// StaticDir is served under /static when set, for the local storage driver.
	StaticDir string
}

func NewRouter(app *handlers.App, opts Options, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	if opts.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(
		middleware.RequestID,
		middleware.Logger(logger),
		chimw.Recoverer,
		middleware.CORS(opts.AllowedOrigins),
	)

	r.Get("/healthz", app.Health)
	r.Get("/api/openapi.json", app.OpenAPIJSON)
	r.Get("/api/docs", app.OpenAPIDocs)

	if opts.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir))))
	}

	requireSession := middleware.RequireSession(app.Sessions, logger)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", app.Register)
		r.Post("/login", app.Login)
		r.With(requireSession).Post("/logout", app.Logout)
		r.With(requireSession).Get("/verify", app.Verify)
	})

	r.Route("/api/thumbnail", func(r chi.Router) {
		r.Use(requireSession)
		r.With(middleware.RateLimit(opts.GenerateRateLimit, time.Minute)).Post("/generate", app.GenerateThumbnail)
		r.Delete("/delete/{id}", app.DeleteThumbnail)
	})

	r.Route("/api/user", func(r chi.Router) {
		r.Use(requireSession)
		r.Get("/thumbnails", app.ListThumbnails)
		r.Get("/thumbnail/{id}", app.GetThumbnail)
		r.Get("/thumbnail/{id}/download", app.DownloadThumbnail)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not found"}`))
	})

	return r
}
