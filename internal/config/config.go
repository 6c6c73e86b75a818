package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCP   Mode = "gcp"
)

const (
	StorageMemory    = "memory"
	StorageSQLite    = "sqlite"
	StoragePostgres  = "postgres"
	StorageFirestore = "firestore"

	AnalyzerRule   = "rule"
	AnalyzerVertex = "vertex"
	AnalyzerOpenAI = "openai"

	RecomputeSync      = "sync"
	RecomputeDebounced = "debounced"
)

const (
	defaultVertexModel = "gemini-2.5-flash-lite"
	defaultOpenAIModel = "gpt-4o-mini"
)

type Config struct {
	Mode Mode   `yaml:"mode"`
	Port string `yaml:"port"`

	LogMode     string `yaml:"log_mode"`     // "dev" or "prod"
	LogFile     string `yaml:"log_file"`     // optional rotated JSON log
	OTelEnabled bool   `yaml:"otel_enabled"` // stdout span exporter

	StorageBackend string `yaml:"storage_backend"` // memory, sqlite, postgres, firestore
	PostgresDSN    string `yaml:"postgres_dsn"`
	SQLitePath     string `yaml:"sqlite_path"`

	GCPProjectID string `yaml:"gcp_project"`
	GCPLocation  string `yaml:"gcp_location"`

	Analyzer     string `yaml:"analyzer"` // rule, vertex, openai
	ModelName    string `yaml:"model_name"`
	OpenAIAPIKey string `yaml:"-"`

	JWTSecret       string   `yaml:"-"`
	TrustUserHeader bool     `yaml:"trust_user_header"`
	AllowedOrigins  []string `yaml:"allowed_origins"`

	RecomputeMode     string        `yaml:"recompute_mode"` // sync or debounced
	RecomputeInterval time.Duration `yaml:"recompute_interval"`
	RedisAddr         string        `yaml:"redis_addr"` // empty keeps the debouncer in memory
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if v == "1" || v == "true" || v == "TRUE" {
		return true
	}
	return false
}

func getDurationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getListEnv(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaults() *Config {
	return &Config{
		Mode:              ModeLocal,
		Port:              "8080",
		LogMode:           "dev",
		StorageBackend:    StorageMemory,
		SQLitePath:        "paceful.db",
		GCPLocation:       "us-central1",
		Analyzer:          AnalyzerRule,
		RecomputeMode:     RecomputeSync,
		RecomputeInterval: 5 * time.Second,
	}
}

// Load builds the config from defaults, then the optional YAML file named by
// PACEFUL_CONFIG_FILE, then PACEFUL_* env vars. Env always wins.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("PACEFUL_CONFIG_FILE"); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Mode = Mode(strings.ToLower(getEnv("PACEFUL_MODE", string(cfg.Mode))))
	// Cloud Run injects PORT
	cfg.Port = getEnv("PACEFUL_PORT", getEnv("PORT", cfg.Port))

	cfg.LogMode = getEnv("PACEFUL_LOG_MODE", cfg.LogMode)
	cfg.LogFile = getEnv("PACEFUL_LOG_FILE", cfg.LogFile)
	cfg.OTelEnabled = getBoolEnv("PACEFUL_OTEL_ENABLED", cfg.OTelEnabled)

	cfg.StorageBackend = strings.ToLower(getEnv("PACEFUL_STORAGE_BACKEND", cfg.StorageBackend))
	cfg.PostgresDSN = getEnv("PACEFUL_POSTGRES_DSN", cfg.PostgresDSN)
	cfg.SQLitePath = getEnv("PACEFUL_SQLITE_PATH", cfg.SQLitePath)

	cfg.GCPProjectID = getEnv("PACEFUL_GCP_PROJECT", cfg.GCPProjectID)
	cfg.GCPLocation = getEnv("PACEFUL_GCP_LOCATION", cfg.GCPLocation)

	cfg.Analyzer = strings.ToLower(getEnv("PACEFUL_ANALYZER", cfg.Analyzer))
	cfg.ModelName = getEnv("PACEFUL_MODEL_NAME", cfg.ModelName)
	cfg.OpenAIAPIKey = getEnv("PACEFUL_OPENAI_API_KEY", getEnv("OPENAI_API_KEY", ""))

	cfg.JWTSecret = getEnv("PACEFUL_JWT_SECRET", "")
	cfg.TrustUserHeader = getBoolEnv("PACEFUL_TRUST_USER_HEADER", cfg.TrustUserHeader || cfg.Mode == ModeLocal)
	cfg.AllowedOrigins = getListEnv("PACEFUL_ALLOWED_ORIGINS", cfg.AllowedOrigins)

	cfg.RecomputeMode = strings.ToLower(getEnv("PACEFUL_RECOMPUTE_MODE", cfg.RecomputeMode))
	cfg.RedisAddr = getEnv("PACEFUL_REDIS_ADDR", cfg.RedisAddr)
	interval, err := getDurationEnv("PACEFUL_RECOMPUTE_INTERVAL", cfg.RecomputeInterval)
	if err != nil {
		return nil, err
	}
	cfg.RecomputeInterval = interval

	if cfg.ModelName == "" {
		switch cfg.Analyzer {
		case AnalyzerVertex:
			cfg.ModelName = defaultVertexModel
		case AnalyzerOpenAI:
			cfg.ModelName = defaultOpenAIModel
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) overlayFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Mode {
	case ModeLocal, ModeGCP:
	default:
		errs = append(errs, fmt.Errorf("PACEFUL_MODE must be local or gcp, got %q", c.Mode))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("PACEFUL_PORT must not be empty"))
	}

	switch c.StorageBackend {
	case StorageMemory:
	case StorageSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("PACEFUL_SQLITE_PATH must be set for sqlite storage"))
		}
	case StoragePostgres:
		if c.PostgresDSN == "" {
			errs = append(errs, errors.New("PACEFUL_POSTGRES_DSN must be set for postgres storage"))
		}
	case StorageFirestore:
		if c.GCPProjectID == "" {
			errs = append(errs, errors.New("PACEFUL_GCP_PROJECT must be set for firestore storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.StorageBackend))
	}

	switch c.Analyzer {
	case AnalyzerRule:
	case AnalyzerVertex:
		if c.GCPProjectID == "" {
			errs = append(errs, errors.New("PACEFUL_GCP_PROJECT must be set for the vertex analyzer"))
		}
	case AnalyzerOpenAI:
		if c.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("PACEFUL_OPENAI_API_KEY must be set for the openai analyzer"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown analyzer %q", c.Analyzer))
	}

	switch c.RecomputeMode {
	case RecomputeSync:
	case RecomputeDebounced:
		if c.RecomputeInterval <= 0 {
			errs = append(errs, errors.New("PACEFUL_RECOMPUTE_INTERVAL must be positive"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown recompute mode %q", c.RecomputeMode))
	}

	// gcp mode never trusts a bare header
	if c.Mode == ModeGCP {
		if c.JWTSecret == "" {
			errs = append(errs, errors.New("PACEFUL_JWT_SECRET must be set in gcp mode"))
		}
		if c.TrustUserHeader {
			errs = append(errs, errors.New("PACEFUL_TRUST_USER_HEADER is not allowed in gcp mode"))
		}
	}

	return errors.Join(errs...)
}
