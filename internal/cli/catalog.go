package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/adapters/catalogfile"
	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/adapters/sqlite"
	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/core/domain"
	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/core/services"
	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/logger"
)

func newCatalogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and manage the song catalog",
	}
	cmd.AddCommand(
		newCatalogImportCmd(a),
		newCatalogExportCmd(a),
		newCatalogShowCmd(a),
	)
	return cmd
}

func newCatalogImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Replace the sqlite catalog with a YAML catalog file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := catalogfile.NewFile(args[0]).Load(cmd.Context())
			if err != nil {
				return err
			}
			db, err := sqlite.NewAdapter(a.cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Import(cmd.Context(), catalog); err != nil {
				return err
			}
			total := 0
			for _, lang := range catalog.Languages() {
				total += catalog.Count(lang)
			}
			logger.Info("catalog imported",
				logger.String("database", a.cfg.DatabasePath),
				logger.String("version", catalog.Version()),
				logger.Int("songs", total),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d songs (version %s) into %s\n", total, catalog.Version(), a.cfg.DatabasePath)
			return nil
		},
	}
}

func newCatalogExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print the configured catalog as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadCatalog(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			return catalogfile.Encode(cmd.OutOrStdout(), store.Snapshot())
		},
	}
}

func newCatalogShowCmd(a *app) *cobra.Command {
	var language string
	cmd := &cobra.Command{
		Use:   "show <emotion>",
		Short: "Print the ranked recommendations for an emotion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := domain.ParseEmotion(args[0])
			if err != nil {
				return err
			}
			store, err := loadCatalog(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			if language == "" {
				language = a.cfg.DefaultLanguage
			}
			list, err := services.NewMatcher(store, a.cfg.Ranking).RecommendIn(language, e)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(list)
		},
	}
	cmd.Flags().StringVar(&language, "language", "", "catalog language (defaults to DEFAULT_LANGUAGE)")
	return cmd
}
