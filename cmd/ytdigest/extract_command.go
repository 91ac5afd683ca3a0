package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/anatolykoptev/go_ytdigest/internal/engine"
	"github.com/anatolykoptev/go_ytdigest/internal/toolutil"
	"github.com/spf13/cobra"
)

func newExtractCommand() *cobra.Command {
	var (
		withComments bool
		outDir       string
	)

	cmd := &cobra.Command{
		Use:   "extract <url>",
		Short: "Fetch metadata, transcript and comments of a video",
		Long: `Fetch a video's metadata, timestamped transcript, channel statistics and
(optionally) comments, and write them as one JSON document.

Examples:
  ytdigest extract https://youtu.be/dQw4w9WgXcQ              # print to stdout
  ytdigest extract --comments --out ./notes <url>           # write ./notes/<title>.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := runnerFactory(cmd)
			if err != nil {
				return fmt.Errorf("init pipeline: %w", err)
			}

			res := toolutil.Execute(cmd.Context(), runner, engine.Request{URL: args[0], ExtractComments: withComments})
			if res.Err != nil {
				body, _ := res.Body.(engine.ErrorResponse)
				if body.Retryable {
					return fmt.Errorf("%s (retryable)", body.Error)
				}
				return errors.New(body.Error)
			}

			content, err := toolutil.MarshalDocument(res.Output.Document)
			if err != nil {
				return err
			}
			if outDir == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(content))
				return err
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			path := filepath.Join(outDir, res.Output.Filename)
			if err := os.WriteFile(path, append(content, '\n'), 0o644); err != nil {
				return fmt.Errorf("write document: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&withComments, "comments", false, "Also collect top-level comments")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory to write <title>.json into (default: stdout)")
	return cmd
}
