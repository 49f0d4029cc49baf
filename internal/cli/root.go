// Package cli holds the cobra commands of the recommender binary.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/config"
	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/logger"
)

// app carries state shared by every subcommand once the root pre-run has
// loaded the configuration.
type app struct {
	envFiles []string
	cfg      *config.Config
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "moodtunes",
		Short:         "Recommends a song for the emotion on a face.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.envFiles...)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return logger.Init(logger.Config{
				Level:      cfg.LogLevel,
				OutputPath: cfg.LogFile,
				MaxSize:    50,
				MaxBackups: 3,
				MaxAge:     28,
				Compress:   true,
			})
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}
	root.PersistentFlags().StringSliceVar(&a.envFiles, "env-file", nil, "dotenv files to load before the environment")

	root.AddCommand(
		newServeCmd(a),
		newAnalyzeCmd(a),
		newCatalogCmd(a),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
