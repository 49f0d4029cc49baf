package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/core/services"
	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/logger"
)

const (
	BackendOllama        = "ollama"
	BackendDeterministic = "deterministic"

	SourceYAML    = "yaml"
	SourceSQLite  = "sqlite"
	SourceLibrary = "library"
	SourceRemote  = "remote"
)

// Config stores the application configuration.
type Config struct {
	HTTPAddr       string
	MaxUploadBytes int64

	LogLevel logger.Level
	LogFile  string

	ClassifierBackend    string
	OllamaHost           string
	OllamaModel          string
	ClassifyTimeout      time.Duration
	DeterministicLatency time.Duration

	MinConfidence   float64
	FailurePolicy   services.FailurePolicy
	Ranking         services.Ranking
	DefaultLanguage string

	CatalogSource string
	CatalogPath   string // yaml catalog file
	DatabasePath  string // sqlite catalog
	LibraryDir    string // songs/<language>/<emotion>/...
	LibraryWatch  bool
	CoverBaseURL  string

	RemoteCatalogURL   string
	RemoteClientID     string
	RemoteClientSecret string
	RemoteTokenURL     string

	Workers    int
	QueueSize  int
	SessionTTL time.Duration
}

// Load reads the optional .env files (the working directory's .env when
// none are named) and then the environment. Existing environment variables
// win over .env entries.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && len(envFiles) > 0 {
		return nil, fmt.Errorf("config: load env files: %w", err)
	}

	r := &envReader{}
	cfg := &Config{
		HTTPAddr:       r.str("HTTP_ADDR", ":8080"),
		MaxUploadBytes: int64(r.integer("MAX_UPLOAD_BYTES", 10<<20)),

		LogFile: r.str("LOG_FILE", ""),

		ClassifierBackend:    strings.ToLower(r.str("CLASSIFIER_BACKEND", BackendOllama)),
		OllamaHost:           r.str("OLLAMA_HOST", "http://localhost:11434"),
		OllamaModel:          r.str("OLLAMA_MODEL", "llava"),
		ClassifyTimeout:      r.duration("CLASSIFY_TIMEOUT", services.DefaultClassifyTimeout),
		DeterministicLatency: r.duration("DETERMINISTIC_LATENCY", 0),

		MinConfidence:   r.float("MIN_CONFIDENCE", 0),
		DefaultLanguage: strings.ToLower(r.str("DEFAULT_LANGUAGE", "english")),

		CatalogSource: strings.ToLower(r.str("CATALOG_SOURCE", SourceYAML)),
		CatalogPath:   r.str("CATALOG_PATH", "catalog.yaml"),
		DatabasePath:  r.str("DATABASE_PATH", "data/catalog.db"),
		LibraryDir:    r.str("LIBRARY_DIR", "songs"),
		LibraryWatch:  r.boolean("LIBRARY_WATCH", true),
		CoverBaseURL:  r.str("COVER_BASE_URL", "/covers"),

		RemoteCatalogURL:   r.str("REMOTE_CATALOG_URL", ""),
		RemoteClientID:     r.str("REMOTE_CLIENT_ID", ""),
		RemoteClientSecret: os.Getenv("REMOTE_CLIENT_SECRET"),
		RemoteTokenURL:     r.str("REMOTE_TOKEN_URL", ""),

		Workers:    r.integer("WORKERS", 4),
		QueueSize:  r.integer("QUEUE_SIZE", 32),
		SessionTTL: r.duration("SESSION_TTL", services.DefaultSessionTTL),
	}

	var err error
	if cfg.LogLevel, err = logger.ParseLevel(r.str("LOG_LEVEL", "info")); err != nil {
		r.errs = append(r.errs, err)
	}
	if cfg.FailurePolicy, err = services.ParseFailurePolicy(r.str("FAILURE_POLICY", "")); err != nil {
		r.errs = append(r.errs, err)
	}
	if cfg.Ranking, err = services.ParseRanking(r.str("RANKING", "")); err != nil {
		r.errs = append(r.errs, err)
	}
	if len(r.errs) > 0 {
		return nil, errors.Join(r.errs...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	var errs []error
	switch c.ClassifierBackend {
	case BackendOllama:
		if c.OllamaHost == "" {
			errs = append(errs, errors.New("config: OLLAMA_HOST is required for the ollama backend"))
		}
	case BackendDeterministic:
	default:
		errs = append(errs, fmt.Errorf("config: unknown CLASSIFIER_BACKEND %q", c.ClassifierBackend))
	}

	switch c.CatalogSource {
	case SourceYAML:
		if c.CatalogPath == "" {
			errs = append(errs, errors.New("config: CATALOG_PATH is required for the yaml source"))
		}
	case SourceSQLite:
		if c.DatabasePath == "" {
			errs = append(errs, errors.New("config: DATABASE_PATH is required for the sqlite source"))
		}
	case SourceLibrary:
		if c.LibraryDir == "" {
			errs = append(errs, errors.New("config: LIBRARY_DIR is required for the library source"))
		}
	case SourceRemote:
		if c.RemoteCatalogURL == "" {
			errs = append(errs, errors.New("config: REMOTE_CATALOG_URL is required for the remote source"))
		}
	default:
		errs = append(errs, fmt.Errorf("config: unknown CATALOG_SOURCE %q", c.CatalogSource))
	}

	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		errs = append(errs, fmt.Errorf("config: MIN_CONFIDENCE %v must be within [0,1]", c.MinConfidence))
	}
	if c.ClassifyTimeout <= 0 {
		errs = append(errs, errors.New("config: CLASSIFY_TIMEOUT must be positive"))
	}
	if c.Workers < 1 || c.QueueSize < 1 {
		errs = append(errs, errors.New("config: WORKERS and QUEUE_SIZE must be at least 1"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("config: MAX_UPLOAD_BYTES must be positive"))
	}
	if strings.TrimSpace(c.DefaultLanguage) == "" {
		errs = append(errs, errors.New("config: DEFAULT_LANGUAGE must not be empty"))
	}
	return errors.Join(errs...)
}

// envReader collects parse errors instead of silently falling back.
type envReader struct {
	errs []error
}

func (r *envReader) str(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return strings.TrimSpace(value)
	}
	return fallback
}

func (r *envReader) integer(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("config: %s: %w", key, err))
		return fallback
	}
	return n
}

func (r *envReader) float(key string, fallback float64) float64 {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("config: %s: %w", key, err))
		return fallback
	}
	return f
}

func (r *envReader) boolean(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return fallback
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("config: %s: %w", key, err))
		return fallback
	}
	return b
}

func (r *envReader) duration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("config: %s: %w", key, err))
		return fallback
	}
	return d
}
