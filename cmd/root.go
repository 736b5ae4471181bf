package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var logFile string
	var verbose bool
	var logOut io.Closer

	cmd := &cobra.Command{
		Use:   "occugen",
		Short: "Bilingual occupation image dataset generator",
		Long: `Occugen builds a dataset of AI-generated occupation images.

It derives English and German prompt tables, sends them to several image
generation backends, and enumerates the resulting image tree into a flat
dataset with a metadata index.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			closer, err := setupLogging(logFile, verbose)
			if err != nil {
				return err
			}
			logOut = closer
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logOut != nil {
				_ = logOut.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Append logs to this file instead of stderr")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	// Add subcommands
	cmd.AddCommand(newDatasetCmd())
	cmd.AddCommand(newGenerateCmd())
	cmd.AddCommand(newPromptsCmd())
	cmd.AddCommand(newCompressCmd())

	return cmd
}

// setupLogging installs the default slog handler. The returned closer is nil when logging to stderr.
func setupLogging(logFile string, verbose bool) (io.Closer, error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	var out io.Writer = os.Stderr
	var closer io.Closer
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out, closer = f, f
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})))
	return closer, nil
}
