package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go_ytdigest/internal/engine"
	"github.com/anatolykoptev/go_ytdigest/internal/engine/video"
	"github.com/anatolykoptev/go_ytdigest/internal/toolutil"
	"github.com/spf13/cobra"
)

var version = "dev"

// runnerFactory builds the pipeline; tests swap it for a stub.
var runnerFactory = func(cmd *cobra.Command) (toolutil.Runner, error) {
	return video.NewPipeline(cmd.Context(), engine.LoadConfig())
}

func newRootCommand() *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "ytdigest",
		Short:         "Build a JSON digest of a YouTube video",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(engine.NewLogger(os.Stderr, logLevel, env.Str("LOG_FORMAT", "text")))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", env.Str("LOG_LEVEL", "warn"), "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newExtractCommand())
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	})
	return rootCmd
}
