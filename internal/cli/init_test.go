package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"expensetracker/internal/config"
)

func TestLoadEnvFile(t *testing.T) {
	const key = "EXPENSETRACKER_TEST_ENV_KEY"
	os.Unsetenv(key)
	t.Cleanup(func() { os.Unsetenv(key) })

	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte(key+"=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	LoadEnvFile(filepath.Join(t.TempDir(), "missing.env"), path)
	if got := os.Getenv(key); got != "from-file" {
		t.Fatalf("%s = %q", key, got)
	}

	t.Setenv(key, "from-env")
	LoadEnvFile(path)
	if got := os.Getenv(key); got != "from-env" {
		t.Fatalf("existing variable overridden: %q", got)
	}
}

func TestSetupLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := SetupLogger(&config.Config{LogLevel: "warn", LogFormat: "json"}, "api")
	if logger.Component() != "api" {
		t.Fatalf("component = %q", logger.Component())
	}
	if logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("info should be disabled at warn level")
	}
	if !slog.Default().Enabled(context.Background(), slog.LevelWarn) {
		t.Fatal("default logger not installed")
	}
}
