package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	CORSOrigins string
	TablePrefix string
	AutoMigrate bool
	// Auth
	JWTSecret string
	JWKSURL   string
	// Uploads and storage
	StorageDriver     string // local | s3
	UploadDir         string
	UploadPublicPath  string
	UploadPolicyFile  string
	MaxVideoBytes     int64 // 0 = policy default
	MaxThumbnailBytes int64
	MaxPDFBytes       int64
	S3Bucket          string
	S3Region          string
	S3Endpoint        string
	S3AccessKey       string
	S3SecretKey       string
	// PDF rendering
	PDFRenderer          string // fpdf | chrome
	ChromePath           string
	ChromeNoSandbox      bool
	PDFRenderTimeout     time.Duration
	PDFRenderConcurrency int
	// Logging
	LogLevel    string
	LogDir      string
	LogMaxFiles int
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix: getTablePrefix(env),
		AutoMigrate: getEnv("AUTO_MIGRATE", "false") == "true",

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWKSURL:   getEnv("JWKS_URL", ""),

		StorageDriver:     getEnv("STORAGE_DRIVER", "local"),
		UploadDir:         getEnv("UPLOAD_DIR", "./uploads"),
		UploadPublicPath:  normalizePublicPath(getEnv("UPLOAD_PUBLIC_PATH", "/uploads/")),
		UploadPolicyFile:  getEnv("UPLOAD_POLICY_FILE", ""),
		MaxVideoBytes:     getEnvInt64("UPLOAD_MAX_VIDEO_BYTES", 0),
		MaxThumbnailBytes: getEnvInt64("UPLOAD_MAX_THUMBNAIL_BYTES", 0),
		MaxPDFBytes:       getEnvInt64("UPLOAD_MAX_PDF_BYTES", 0),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3AccessKey:       getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:       getEnv("S3_SECRET_KEY", ""),

		PDFRenderer:          getEnv("PDF_RENDERER", "fpdf"),
		ChromePath:           getEnv("CHROME_PATH", ""),
		ChromeNoSandbox:      getEnv("CHROME_NO_SANDBOX", "false") == "true",
		PDFRenderTimeout:     getEnvDuration("PDF_RENDER_TIMEOUT", 30*time.Second),
		PDFRenderConcurrency: int(getEnvInt64("PDF_RENDER_CONCURRENCY", 1)),

		LogLevel:    getEnv("LOG_LEVEL", ""),
		LogDir:      getEnv("LOG_DIR", ""),
		LogMaxFiles: int(getEnvInt64("LOG_MAX_FILES", 10)),
	}
}

// SlogLevel resolves the configured log level. Dev defaults to debug.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	if c.Environment == "dev" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

// normalizePublicPath makes sure the path has leading and trailing slashes
func normalizePublicPath(p string) string {
	p = "/" + strings.Trim(p, "/") + "/"
	if p == "//" {
		return "/"
	}
	return p
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", value)
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("invalid duration in environment, using default", "key", key, "value", value)
		return defaultValue
	}
	return d
}
