package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	DatabaseURL      string
	SessionSecret    string
	CORSOrigins      []string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int

	// TrustProxyHeaders lets X-Forwarded-For and X-Real-IP replace the
	// remote address. Only enable it behind a proxy that overwrites them.
	TrustProxyHeaders bool

	GeminiAPIKey         string
	GeminiModel          string
	GeminiBaseURL        string
	GeminiImageSize      string
	GeminiTimeout        time.Duration
	GeminiSafetyDisabled bool

	StorageDriver     string
	StoragePath       string
	StorageBaseURL    string
	StorageStagingDir string

	S3Endpoint        string
	S3Region          string
	S3Bucket          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3UsePathStyle    bool
	S3PublicBaseURL   string

	MinIOEndpoint      string
	MinIOAccessKey     string
	MinIOSecretKey     string
	MinIOBucket        string
	MinIOUseSSL        bool
	MinIOPublicBaseURL string

	SupabaseURL        string
	SupabaseServiceKey string
	SupabaseBucket     string

	SessionStore      string
	SessionCookieName string
	SessionTTL        time.Duration
	RedisAddr         string
	RedisPassword     string
	RedisDB           int

	SweepStaleAfter time.Duration
	SweepInterval   time.Duration
}

const (
	StorageDriverLocal    = "local"
	StorageDriverS3       = "s3"
	StorageDriverMinIO    = "minio"
	StorageDriverSupabase = "supabase"

	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	port := getEnv("PORT", "8080")
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             port,
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		SessionSecret:    os.Getenv("SESSION_SECRET"),
		CORSOrigins:      getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 180)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("GENERATE_RATE_LIMIT_PER_MINUTE", 10),

		TrustProxyHeaders: getEnvBool("TRUST_PROXY_HEADERS", false),

		GeminiAPIKey:         strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:          getEnv("GEMINI_MODEL", "gemini-3-pro-image-preview"),
		GeminiBaseURL:        getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiImageSize:      getEnv("GEMINI_IMAGE_SIZE", "1K"),
		GeminiTimeout:        time.Second * time.Duration(getEnvInt("GEMINI_TIMEOUT_SECONDS", 120)),
		GeminiSafetyDisabled: getEnvBool("GEMINI_SAFETY_FILTERS_DISABLED", false),

		StorageDriver:     strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverLocal)),
		StoragePath:       getEnv("STORAGE_PATH", "./storage"),
		StorageBaseURL:    getEnv("STORAGE_BASE_URL", fmt.Sprintf("http://localhost:%s/static", port)),
		StorageStagingDir: os.Getenv("STORAGE_STAGING_DIR"),

		S3Endpoint:        os.Getenv("S3_ENDPOINT"),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		S3Bucket:          os.Getenv("S3_BUCKET"),
		S3AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		S3UsePathStyle:    getEnvBool("S3_USE_PATH_STYLE", false),
		S3PublicBaseURL:   os.Getenv("S3_PUBLIC_BASE_URL"),

		MinIOEndpoint:      os.Getenv("MINIO_ENDPOINT"),
		MinIOAccessKey:     os.Getenv("MINIO_ACCESS_KEY"),
		MinIOSecretKey:     os.Getenv("MINIO_SECRET_KEY"),
		MinIOBucket:        getEnv("MINIO_BUCKET", "thumbnails"),
		MinIOUseSSL:        getEnvBool("MINIO_USE_SSL", false),
		MinIOPublicBaseURL: os.Getenv("MINIO_PUBLIC_BASE_URL"),

		SupabaseURL:        os.Getenv("SUPABASE_URL"),
		SupabaseServiceKey: os.Getenv("SUPABASE_SERVICE_KEY"),
		SupabaseBucket:     getEnv("SUPABASE_BUCKET", "thumbnails"),

		SessionStore:      strings.ToLower(getEnv("SESSION_STORE", SessionStoreMemory)),
		SessionCookieName: getEnv("SESSION_COOKIE_NAME", "thumbgen_session"),
		SessionTTL:        time.Hour * time.Duration(getEnvInt("SESSION_TTL_HOURS", 168)),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           getEnvInt("REDIS_DB", 0),

		SweepStaleAfter: time.Minute * time.Duration(getEnvInt("SWEEP_STALE_AFTER_MINUTES", 30)),
		SweepInterval:   time.Second * time.Duration(getEnvInt("SWEEP_INTERVAL_SECONDS", 60)),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}

	if err := cfg.validateStorage(); err != nil {
		return nil, err
	}

	switch cfg.SessionStore {
	case SessionStoreMemory, SessionStoreRedis:
	default:
		return nil, fmt.Errorf("unsupported SESSION_STORE %q", cfg.SessionStore)
	}

	return cfg, nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

func (c *Config) validateStorage() error {
	switch c.StorageDriver {
	case StorageDriverLocal:
		return nil
	case StorageDriverS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for the s3 storage driver")
		}
	case StorageDriverMinIO:
		if c.MinIOEndpoint == "" {
			return fmt.Errorf("MINIO_ENDPOINT is required for the minio storage driver")
		}
	case StorageDriverSupabase:
		if c.SupabaseURL == "" || c.SupabaseServiceKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_KEY are required for the supabase storage driver")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.StorageDriver)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
