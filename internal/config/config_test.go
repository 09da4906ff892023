package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("JWT_EXPIRY", "")
	t.Setenv("MEDIA_BACKEND", "")
	t.Setenv("UPLOAD_PUBLIC_PATH", "")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.JWTExpiry != 24*time.Hour {
		t.Errorf("JWTExpiry = %v, want 24h", cfg.JWTExpiry)
	}
	if cfg.Media.Backend != "local" {
		t.Errorf("Media.Backend = %q, want local", cfg.Media.Backend)
	}
	if cfg.Media.UploadDir != "public/uploads" {
		t.Errorf("Media.UploadDir = %q, want public/uploads", cfg.Media.UploadDir)
	}
	if cfg.Media.PublicPath != "public/uploads" {
		t.Errorf("Media.PublicPath = %q, want public/uploads", cfg.Media.PublicPath)
	}
	if cfg.Hash.Iterations != 3 {
		t.Errorf("Hash.Iterations = %d, want 3", cfg.Hash.Iterations)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_EXPIRY", "90m")
	t.Setenv("ARGON2_ITERATIONS", "5")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("METRICS_ENABLED", "false")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.JWTExpiry != 90*time.Minute {
		t.Errorf("JWTExpiry = %v, want 90m", cfg.JWTExpiry)
	}
	if cfg.Hash.Iterations != 5 {
		t.Errorf("Hash.Iterations = %d, want 5", cfg.Hash.Iterations)
	}
	if cfg.StoreDriver != "memory" {
		t.Errorf("StoreDriver = %q, want memory", cfg.StoreDriver)
	}
	if cfg.MetricsEnabled {
		t.Error("MetricsEnabled = true, want false")
	}
}

func TestGetEnvFallbacks(t *testing.T) {
	t.Setenv("SOME_INT", "not-a-number")
	t.Setenv("SOME_DURATION", "soon")

	if got := getEnvInt("SOME_INT", 7); got != 7 {
		t.Errorf("getEnvInt() = %d, want 7", got)
	}
	if got := getEnvDuration("SOME_DURATION", time.Second); got != time.Second {
		t.Errorf("getEnvDuration() = %v, want 1s", got)
	}
	if got := getEnvBool("UNSET_BOOL_KEY", true); !got {
		t.Error("getEnvBool() = false, want true")
	}
}
