package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageDriverLocal = "local"
	StorageDriverS3    = "s3"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret      string
	JWTExpiry      time.Duration
	DisableAuth    bool
	AuthRateLimit  int
	AuthRateWindow time.Duration

	// Observability (optional)
	SentryDSN string

	// Storage: "local" writes under UploadDir, "s3" uses any S3-compatible bucket
	StorageDriver string
	UploadDir     string

	S3Region               string
	S3Bucket               string
	S3AccessKey            string
	S3SecretKey            string
	S3Endpoint             string        // Optional: for S3-compatible services (MinIO, DO Spaces, R2, etc.)
	S3PresignExpiryPrivate time.Duration // Expiry for presigned download links
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "Calldesk"),
		AppEnv:  envString("APP_ENV", "development"),
		Port:    envString("PORT", "8090"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/calldesk.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		// Security
		DisableAuth:    envBool("DISABLE_AUTH", false),
		JWTExpiry:      envDuration("JWT_EXPIRY", 168*time.Hour), // 7 days
		AuthRateLimit:  envInt("AUTH_RATE_LIMIT", 20),
		AuthRateWindow: envDuration("AUTH_RATE_WINDOW", 15*time.Minute),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Storage
		StorageDriver: envString("STORAGE_DRIVER", StorageDriverLocal),
		UploadDir:     envString("UPLOAD_DIR", "./data"),
	}

	// Tokens are still issued on register/login when auth is disabled, so a secret is
	// only optional in that mode.
	if cfg.DisableAuth {
		cfg.JWTSecret = envString("JWT_SECRET", "disabled-auth")
	} else {
		cfg.JWTSecret = envRequired("JWT_SECRET")
	}

	if cfg.StorageDriver == StorageDriverS3 {
		cfg.S3Region = envRequired("S3_REGION")
		cfg.S3Bucket = envRequired("S3_BUCKET")
		cfg.S3AccessKey = envString("S3_ACCESS_KEY", "")
		cfg.S3SecretKey = envString("S3_SECRET_KEY", "")
		cfg.S3Endpoint = envString("S3_ENDPOINT", "")
		cfg.S3PresignExpiryPrivate = envDuration("S3_PRESIGN_EXPIRY_PRIVATE", 1*time.Hour)
	}

	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction refuses setups that are only acceptable on a developer machine.
func validateProduction(cfg *Config) {
	if cfg.DisableAuth {
		slog.Warn("authentication is disabled in production, every request runs as the public user")
	}
	if len(cfg.JWTSecret) < 32 {
		slog.Error("production deployment requires JWT_SECRET of at least 32 characters")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
