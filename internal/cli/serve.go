package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/adapters/library"
	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/adapters/rest"
	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/config"
	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/core/domain"
	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/core/services"
	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/logger"
	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/observability"
	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/worker"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a.cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	classifier, err := newClassifier(cfg)
	if err != nil {
		return err
	}
	store, err := loadCatalog(ctx, cfg)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := observability.NewMetrics(registry)
	if err != nil {
		return err
	}
	metrics.ObserveCatalog(store.Snapshot())

	pool := worker.NewPool(cfg.Workers, cfg.QueueSize)
	pool.Start()
	defer pool.Stop()

	matcher := services.NewMatcher(store, cfg.Ranking)
	sessions := services.NewSessions(cfg.SessionTTL, func() *services.Coordinator {
		return services.NewCoordinator(classifier, matcher, services.CoordinatorConfig{
			Timeout:       cfg.ClassifyTimeout,
			MinConfidence: cfg.MinConfidence,
			FailurePolicy: cfg.FailurePolicy,
			Language:      cfg.DefaultLanguage,
			Executor:      pool,
			Recorder:      metrics,
		})
	})
	go sessions.Run(ctx)

	if cfg.CatalogSource == config.SourceLibrary && cfg.LibraryWatch {
		watcher := library.NewWatcher(newScanner(cfg), 0, func(c *domain.Catalog) {
			prev := store.Replace(c)
			metrics.ObserveCatalog(c)
			logger.Info("catalog replaced",
				logger.String("previous", prev.Version()),
				logger.String("version", c.Version()),
			)
		})
		go func() {
			if err := watcher.Run(ctx); err != nil {
				logger.Error("library watcher stopped", logger.ErrorField(err))
			}
		}()
	}

	handler := rest.NewHandler(rest.Deps{
		Matcher:        matcher,
		Sessions:       sessions,
		Pinger:         classifier,
		Metrics:        promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		MaxUploadBytes: cfg.MaxUploadBytes,
		CoversDir:      coversDir(cfg),
		CoverBaseURL:   cfg.CoverBaseURL,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", logger.String("addr", cfg.HTTPAddr))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown error", logger.ErrorField(err))
		}
		sessions.CloseAll()
		return nil
	}
}
