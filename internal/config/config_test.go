package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var envKeys = []string{
	"PACEFUL_CONFIG_FILE", "PACEFUL_MODE", "PACEFUL_PORT", "PORT", "PACEFUL_LOG_MODE", "PACEFUL_LOG_FILE",
	"PACEFUL_OTEL_ENABLED", "PACEFUL_STORAGE_BACKEND", "PACEFUL_POSTGRES_DSN", "PACEFUL_SQLITE_PATH",
	"PACEFUL_GCP_PROJECT", "PACEFUL_GCP_LOCATION", "PACEFUL_ANALYZER", "PACEFUL_MODEL_NAME",
	"PACEFUL_OPENAI_API_KEY", "OPENAI_API_KEY", "PACEFUL_JWT_SECRET", "PACEFUL_TRUST_USER_HEADER",
	"PACEFUL_ALLOWED_ORIGINS", "PACEFUL_RECOMPUTE_MODE", "PACEFUL_RECOMPUTE_INTERVAL", "PACEFUL_REDIS_ADDR",
}

// clearEnv blanks every key Load reads; an empty value counts as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Mode != ModeLocal || cfg.Port != "8080" {
		t.Fatalf("mode=%s port=%s", cfg.Mode, cfg.Port)
	}
	if cfg.StorageBackend != StorageMemory || cfg.Analyzer != AnalyzerRule || cfg.RecomputeMode != RecomputeSync {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if !cfg.TrustUserHeader {
		t.Fatalf("local mode should trust the user header")
	}
	if cfg.RecomputeInterval != 5*time.Second {
		t.Fatalf("interval = %v", cfg.RecomputeInterval)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("PACEFUL_STORAGE_BACKEND", "POSTGRES")
	t.Setenv("PACEFUL_POSTGRES_DSN", "postgres://localhost/paceful")
	t.Setenv("PACEFUL_ANALYZER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("PACEFUL_RECOMPUTE_MODE", "debounced")
	t.Setenv("PACEFUL_RECOMPUTE_INTERVAL", "250ms")
	t.Setenv("PACEFUL_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9000" {
		t.Fatalf("PORT fallback not used, got %s", cfg.Port)
	}
	if cfg.StorageBackend != StoragePostgres {
		t.Fatalf("storage = %s", cfg.StorageBackend)
	}
	if cfg.ModelName != defaultOpenAIModel || cfg.OpenAIAPIKey != "sk-test" {
		t.Fatalf("model=%s key=%s", cfg.ModelName, cfg.OpenAIAPIKey)
	}
	if cfg.RecomputeInterval != 250*time.Millisecond {
		t.Fatalf("interval = %v", cfg.RecomputeInterval)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("origins = %v", cfg.AllowedOrigins)
	}
}

func TestLoadFileOverlay(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "paceful.yaml")
	body := `
mode: local
port: "7000"
storage_backend: sqlite
sqlite_path: /tmp/paceful-test.db
analyzer: vertex
gcp_project: demo-project
recompute_mode: debounced
recompute_interval: 2s
allowed_origins:
  - https://app.example
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PACEFUL_CONFIG_FILE", path)
	t.Setenv("PACEFUL_PORT", "7001")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "7001" {
		t.Fatalf("env should override the file, got port %s", cfg.Port)
	}
	if cfg.StorageBackend != StorageSQLite || cfg.SQLitePath != "/tmp/paceful-test.db" {
		t.Fatalf("storage = %s %s", cfg.StorageBackend, cfg.SQLitePath)
	}
	if cfg.Analyzer != AnalyzerVertex || cfg.ModelName != defaultVertexModel || cfg.GCPProjectID != "demo-project" {
		t.Fatalf("analyzer = %s model = %s project = %s", cfg.Analyzer, cfg.ModelName, cfg.GCPProjectID)
	}
	if cfg.RecomputeInterval != 2*time.Second {
		t.Fatalf("interval = %v", cfg.RecomputeInterval)
	}
	if len(cfg.AllowedOrigins) != 1 {
		t.Fatalf("origins = %v", cfg.AllowedOrigins)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"unknown mode", map[string]string{"PACEFUL_MODE": "cloud"}, "PACEFUL_MODE"},
		{"postgres without dsn", map[string]string{"PACEFUL_STORAGE_BACKEND": "postgres"}, "PACEFUL_POSTGRES_DSN"},
		{"firestore without project", map[string]string{"PACEFUL_STORAGE_BACKEND": "firestore"}, "PACEFUL_GCP_PROJECT"},
		{"unknown storage", map[string]string{"PACEFUL_STORAGE_BACKEND": "mongo"}, "unknown storage"},
		{"openai without key", map[string]string{"PACEFUL_ANALYZER": "openai"}, "PACEFUL_OPENAI_API_KEY"},
		{"unknown analyzer", map[string]string{"PACEFUL_ANALYZER": "bert"}, "unknown analyzer"},
		{"bad interval", map[string]string{"PACEFUL_RECOMPUTE_INTERVAL": "soon"}, "PACEFUL_RECOMPUTE_INTERVAL"},
		{"gcp without secret", map[string]string{"PACEFUL_MODE": "gcp"}, "PACEFUL_JWT_SECRET"},
		{"gcp trusting header", map[string]string{
			"PACEFUL_MODE": "gcp", "PACEFUL_JWT_SECRET": "s", "PACEFUL_TRUST_USER_HEADER": "1",
		}, "PACEFUL_TRUST_USER_HEADER"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil {
				t.Fatalf("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("PACEFUL_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Fatalf("expected an error for a missing config file")
	}
}
