package cmd

import (
	"log/slog"
	"os"

	"github.com/inovacc/gitboard/internal/application"
	"github.com/inovacc/gitboard/internal/model"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   application.AppName,
	Short: "A message board mirrored to GitHub repositories",
	Long: `Gitboard is a small message board. Posts are written durably to a local
store and opportunistically mirrored as JSON blobs into one or more GitHub
repositories. Reads merge the local table and all mirrors into a single
timestamp-ordered feed.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})))
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", model.DefaultConfigPath(), "path to the settings file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
