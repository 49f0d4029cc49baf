package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/config"
	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/core/domain"
	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/core/ports"
	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/core/services"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var language string
	cmd := &cobra.Command{
		Use:   "analyze <image>",
		Short: "Classify one image and print the resulting state as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			classifier, err := newClassifier(a.cfg)
			if err != nil {
				return err
			}
			store, err := loadCatalog(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			state, err := analyzeFile(cmd.Context(), a.cfg, classifier, store, args[0], language)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(state)
		},
	}
	cmd.Flags().StringVar(&language, "language", "", "catalog language (defaults to DEFAULT_LANGUAGE)")
	return cmd
}

// analyzeFile runs one image through a throwaway coordinator. A Failed
// state is returned as a state, not as an error.
func analyzeFile(ctx context.Context, cfg *config.Config, classifier ports.Classifier, store *services.CatalogStore, path, language string) (domain.PresentationState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.PresentationState{}, fmt.Errorf("read image: %w", err)
	}
	img, err := domain.NewImage(data, "")
	if err != nil {
		return domain.PresentationState{}, err
	}

	if language == "" {
		language = cfg.DefaultLanguage
	}
	coord := services.NewCoordinator(classifier, services.NewMatcher(store, cfg.Ranking), services.CoordinatorConfig{
		Timeout:       cfg.ClassifyTimeout,
		MinConfidence: cfg.MinConfidence,
		FailurePolicy: cfg.FailurePolicy,
		Language:      language,
	})
	defer coord.Close()

	id, err := coord.Trigger(img)
	if err != nil {
		return domain.PresentationState{}, err
	}
	waitCtx, cancel := context.WithTimeout(ctx, cfg.ClassifyTimeout+5*time.Second)
	defer cancel()
	return coord.Wait(waitCtx, id)
}
