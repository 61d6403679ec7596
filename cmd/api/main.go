package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"thumbgen/internal/adapter/repo"
	"thumbgen/internal/auth"
	"thumbgen/internal/http/handlers"
	httpapi "thumbgen/internal/http/httpapi"
	"thumbgen/internal/infra"
	"thumbgen/internal/infra/credentials"
	"thumbgen/internal/providers/genai"
	"thumbgen/internal/providers/image"
	"thumbgen/internal/session"
	"thumbgen/internal/storage"
	"thumbgen/internal/thumbnail"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	runner := infra.NewSQLRunner(dbpool, logger)

	apiKey, err := credentials.NewStore(runner).ResolveGeminiAPIKey(ctx, cfg.GeminiAPIKey)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load gemini api key from store")
	}
	if apiKey == "" {
		if cfg.IsProduction() {
			logger.Fatal().Msg("gemini api key missing: set GEMINI_API_KEY or run cmd/geminikey")
		}
		logger.Warn().Msg("gemini api key missing, generation requests will fail")
	}

	geminiClient, err := genai.NewClient(genai.Options{
		APIKey:               apiKey,
		BaseURL:              cfg.GeminiBaseURL,
		Model:                cfg.GeminiModel,
		ImageSize:            cfg.GeminiImageSize,
		HTTPClient:           &http.Client{Timeout: cfg.GeminiTimeout},
		Logger:               &logger,
		DisableSafetyFilters: cfg.GeminiSafetyDisabled,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure gemini client")
	}

	backend, staticDir, err := newStorageBackend(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("failed to configure storage")
	}
	uploader := storage.NewUploader(backend, cfg.StorageStagingDir, logger)

	store, closeStore, err := newSessionStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("store", cfg.SessionStore).Msg("failed to configure sessions")
	}
	defer closeStore()

	sessions := session.NewManager(store, session.NewTokens(cfg.SessionSecret), session.CookieConfig{
		Name:   cfg.SessionCookieName,
		Secure: cfg.IsProduction(),
		TTL:    cfg.SessionTTL,
	})

	app := &handlers.App{
		DB:     dbpool,
		Logger: logger,
		Auth:   auth.NewService(repo.NewUserRepository(runner), logger),
		Thumbnails: thumbnail.NewService(
			repo.NewThumbnailRepository(runner),
			image.NewGeminiGenerator(geminiClient),
			uploader,
			logger,
			thumbnail.Options{GenerationTimeout: cfg.GeminiTimeout + 30*time.Second},
		),
		Sessions: sessions,
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		AllowedOrigins:    cfg.CORSOrigins,
		GenerateRateLimit: cfg.RateLimitPerMin,
		TrustProxyHeaders: cfg.TrustProxyHeaders,
		StaticDir:         staticDir,
	}, logger)

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().
			Str("addr", server.Addr()).
			Str("storage", cfg.StorageDriver).
			Str("sessions", cfg.SessionStore).
			Str("model", geminiClient.Model()).
			Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Error().Err(err).Msg("http server failed")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

// newStorageBackend returns the configured backend and, for the local driver,
// the directory to serve under /static.
func newStorageBackend(ctx context.Context, cfg *infra.Config) (storage.Backend, string, error) {
	switch cfg.StorageDriver {
	case infra.StorageDriverS3:
		b, err := storage.NewS3Store(ctx, storage.S3Options{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			UsePathStyle:    cfg.S3UsePathStyle,
			PublicBaseURL:   cfg.S3PublicBaseURL,
		})
		return b, "", err
	case infra.StorageDriverMinIO:
		b, err := storage.NewMinIOStore(storage.MinIOOptions{
			Endpoint:      cfg.MinIOEndpoint,
			AccessKey:     cfg.MinIOAccessKey,
			SecretKey:     cfg.MinIOSecretKey,
			Bucket:        cfg.MinIOBucket,
			UseSSL:        cfg.MinIOUseSSL,
			PublicBaseURL: cfg.MinIOPublicBaseURL,
		})
		return b, "", err
	case infra.StorageDriverSupabase:
		b, err := storage.NewSupabaseStore(storage.SupabaseOptions{
			URL:        cfg.SupabaseURL,
			ServiceKey: cfg.SupabaseServiceKey,
			Bucket:     cfg.SupabaseBucket,
		})
		return b, "", err
	default:
		path := cfg.StoragePath
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		b, err := storage.NewFileStore(path, cfg.StorageBaseURL)
		if err != nil {
			return nil, "", err
		}
		return b, b.BasePath(), nil
	}
}

func newSessionStore(ctx context.Context, cfg *infra.Config) (session.Store, func(), error) {
	if cfg.SessionStore != infra.SessionStoreRedis {
		return session.NewMemoryStore(), func() {}, nil
	}
	client, err := session.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, nil, err
	}
	return session.NewRedisStore(client), func() { _ = client.Close() }, nil
}
