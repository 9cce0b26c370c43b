package config

import (
	"os"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != AppEnvDev {
		t.Fatalf("expected App.Env to default to dev, got %q", cfg.App.Env)
	}

	if cfg.App.LogLevel != "info" {
		t.Fatalf("expected default log level info, got %q", cfg.App.LogLevel)
	}

	if cfg.Inspect.MaxBodyBytes != 1048576 {
		t.Fatalf("unexpected default max body bytes: %d", cfg.Inspect.MaxBodyBytes)
	}

	if cfg.Inspect.FailFast {
		t.Fatalf("fail fast should default to false")
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAppEnv, "prod")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvInspectMetricsFile, "/tmp/inspect.prom")
	t.Setenv(EnvInspectFailFast, "true")
	t.Setenv(EnvInspectMaxBodyBytes, "2048")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if !cfg.App.IsProd() {
		t.Fatalf("expected prod environment, got %q", cfg.App.Env)
	}

	if cfg.Inspect.MetricsFile != "/tmp/inspect.prom" {
		t.Fatalf("unexpected metrics file %q", cfg.Inspect.MetricsFile)
	}

	if !cfg.Inspect.FailFast {
		t.Fatal("expected fail fast to be enabled")
	}

	if cfg.Inspect.MaxBodyBytes != 2048 {
		t.Fatalf("unexpected max body bytes: %d", cfg.Inspect.MaxBodyBytes)
	}
}

func TestLoad_RejectsUnknownEnvName(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAppEnv, "qa")

	if _, err := Load(); err == nil {
		t.Fatal("expected unknown environment name to return an error")
	}
}

func TestLoad_RejectsNonPositiveBodyLimit(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvInspectMaxBodyBytes, "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected zero body limit to return an error")
	}
}

func clearEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		EnvAppEnv,
		EnvLogLevel,
		EnvLogWarnStack,
		EnvInspectMetricsFile,
		EnvInspectFailFast,
		EnvInspectMaxBodyBytes,
	} {
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("failed to unset %s: %v", key, err)
		}
	}
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "prod"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
	if prodConfig.IsDev() {
		t.Fatalf("expected IsDev false for %q", prodConfig.Env)
	}
}
