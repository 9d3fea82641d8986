package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iho/brook/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"HTTP_PORT", "SEED_DEMO", "IDEMPOTENCY_TTL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := config.LoadFiles()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if cfg.Addr() != ":8080" {
		t.Fatalf("expected addr :8080, got %s", cfg.Addr())
	}

	if cfg.SeedDemo {
		t.Fatalf("expected demo seeding to be off by default")
	}

	if cfg.IdempotencyTTL != 24*time.Hour {
		t.Fatalf("expected default idempotency TTL 24h, got %s", cfg.IdempotencyTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("HTTP_SHUTDOWN_TIMEOUT", "45s")
	t.Setenv("LOG_FORMAT", "console")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("SEED_DEMO", "true")

	cfg, err := config.LoadFiles()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.HTTPShutdownTimeout != 45*time.Second {
		t.Fatalf("expected shutdown timeout override, got %s", cfg.HTTPShutdownTimeout)
	}

	if cfg.LogFormat != "console" {
		t.Fatalf("expected console log format, got %s", cfg.LogFormat)
	}

	if cfg.RateLimitRPS != 2.5 || !cfg.SeedDemo {
		t.Fatalf("expected rate limit and seed overrides, got rps=%v seed=%v", cfg.RateLimitRPS, cfg.SeedDemo)
	}
}

func TestLoadDotenv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	os.Unsetenv("LOG_LEVEL")
	t.Setenv("HTTP_PORT", "7070")

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("LOG_LEVEL=debug\nHTTP_PORT=6060\n"), 0o600); err != nil {
		t.Fatalf("failed to write dotenv: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("LOG_LEVEL") })

	cfg, err := config.LoadFiles(path, filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Fatalf("expected LOG_LEVEL from dotenv, got %s", cfg.LogLevel)
	}

	if cfg.HTTPPort != "7070" {
		t.Fatalf("expected environment to win over dotenv, got %s", cfg.HTTPPort)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("HTTP_READ_TIMEOUT", "not-a-duration")

	if _, err := config.LoadFiles(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}
