package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/staynest/staynest-go/internal/crypto"
)

const devJWTSecret = "dev-secret-change-in-production"

type Config struct {
	Port            string
	Env             string
	LogLevel        string
	StoreDriver     string
	DatabaseDSN     string
	MigrateOnStart  bool
	JWTSecret       string
	JWTExpiry       time.Duration
	Hash            crypto.HashParams
	Media           MediaConfig
	MetricsEnabled  bool
	ShutdownTimeout time.Duration
}

// MediaConfig selects and configures the attachment storage backend.
type MediaConfig struct {
	Backend        string
	UploadDir      string
	PublicPath     string
	MaxUploadBytes int64
	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string
	S3Prefix       string
}

func Load() Config {
	hash := crypto.DefaultHashParams()
	hash.Memory = uint32(getEnvInt("ARGON2_MEMORY_KB", int(hash.Memory)))
	hash.Iterations = uint32(getEnvInt("ARGON2_ITERATIONS", int(hash.Iterations)))

	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		StoreDriver:    getEnv("STORE_DRIVER", "mysql"),
		DatabaseDSN:    getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/staynest?parseTime=true"),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", true),
		JWTSecret:      getEnv("JWT_SECRET", devJWTSecret),
		JWTExpiry:      getEnvDuration("JWT_EXPIRY", 24*time.Hour),
		Hash:           hash,
		Media: MediaConfig{
			Backend:        getEnv("MEDIA_BACKEND", "local"),
			UploadDir:      getEnv("UPLOAD_DIR", "public/uploads"),
			PublicPath:     getEnv("UPLOAD_PUBLIC_PATH", "public/uploads"),
			MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 32<<20)),
			S3Bucket:       getEnv("S3_BUCKET", ""),
			S3Region:       getEnv("S3_REGION", "us-east-1"),
			S3Endpoint:     getEnv("S3_ENDPOINT", ""),
			S3AccessKey:    getEnv("S3_ACCESS_KEY", ""),
			S3SecretKey:    getEnv("S3_SECRET_KEY", ""),
			S3Prefix:       getEnv("S3_PREFIX", "uploads"),
		},
		MetricsEnabled:  getEnvBool("METRICS_ENABLED", true),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if cfg.Env == "production" && cfg.JWTSecret == devJWTSecret {
		slog.Error("JWT_SECRET must be set in production environment")
		os.Exit(1)
	}
	if cfg.Media.Backend == "s3" && cfg.Media.S3Bucket == "" {
		slog.Error("S3_BUCKET must be set when MEDIA_BACKEND=s3")
		os.Exit(1)
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", v)
		return fallback
	}
	return i
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("invalid duration in environment, using default", "key", key, "value", v)
		return fallback
	}
	return d
}
