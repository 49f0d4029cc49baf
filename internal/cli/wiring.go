package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/adapters/catalogfile"
	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/adapters/deterministic"
	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/adapters/library"
	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/adapters/ollama"
	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/adapters/remote"
	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/adapters/sqlite"
	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/config"
	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/core/ports"
	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/core/services"
	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/logger"
)

// classifier is what the commands need from a backend.
type classifier interface {
	ports.Classifier
	ports.Pinger
}

func newClassifier(cfg *config.Config) (classifier, error) {
	switch cfg.ClassifierBackend {
	case config.BackendOllama:
		return ollama.NewClient(cfg.OllamaHost, cfg.OllamaModel), nil
	case config.BackendDeterministic:
		return deterministic.New(cfg.DeterministicLatency), nil
	default:
		return nil, fmt.Errorf("unknown classifier backend %q", cfg.ClassifierBackend)
	}
}

// coversDir is the images/ directory next to the music library.
func coversDir(cfg *config.Config) string {
	return filepath.Join(filepath.Dir(filepath.Clean(cfg.LibraryDir)), "images")
}

func newScanner(cfg *config.Config) *library.Scanner {
	return library.NewScanner(cfg.LibraryDir, library.Options{
		CoversDir:       coversDir(cfg),
		CoverBaseURL:    cfg.CoverBaseURL,
		DefaultLanguage: cfg.DefaultLanguage,
	})
}

// newCatalogSource returns the configured source and a closer for any
// resources it holds.
func newCatalogSource(cfg *config.Config) (ports.CatalogSource, func() error, error) {
	noop := func() error { return nil }
	switch cfg.CatalogSource {
	case config.SourceYAML:
		return catalogfile.NewFile(cfg.CatalogPath), noop, nil
	case config.SourceSQLite:
		db, err := sqlite.NewAdapter(cfg.DatabasePath)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	case config.SourceLibrary:
		return newScanner(cfg), noop, nil
	case config.SourceRemote:
		return remote.NewClient(nil, cfg.RemoteCatalogURL, remote.Options{
			ClientID:     cfg.RemoteClientID,
			ClientSecret: cfg.RemoteClientSecret,
			TokenURL:     cfg.RemoteTokenURL,
		}), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown catalog source %q", cfg.CatalogSource)
	}
}

// loadCatalog loads the configured catalog into a fresh store.
func loadCatalog(ctx context.Context, cfg *config.Config) (*services.CatalogStore, error) {
	source, closeSource, err := newCatalogSource(cfg)
	if err != nil {
		return nil, err
	}
	defer closeSource()

	catalog, err := source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s catalog: %w", cfg.CatalogSource, err)
	}
	logger.Info("catalog loaded",
		logger.String("source", cfg.CatalogSource),
		logger.String("version", catalog.Version()),
		logger.Int("languages", len(catalog.Languages())),
	)
	return services.NewCatalogStore(catalog), nil
}
