// Package cmd holds the ghost CLI.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/charmbracelet/ghost/internal/config"
)

var (
	flagConfig  string
	flagLogFile string
	flagDebug   bool
)

var rootCmd = &cobra.Command{
	Use:   "ghost",
	Short: "Inline-completion intelligence layer for code suggestion backends",
	Long: `ghost decides when to request an inline code suggestion, manages the
lifecycle of each request against a mutating document, and reconciles
model-returned diffs with the live editor state.`,
	SilenceUsage: true,
}

// ExecuteContext runs the CLI with the given base context.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "write logs to this file (rotated) instead of stderr")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(classifyCmd)
}

// setupLogging configures the process-wide slog default. When serving over
// stdio the protocol owns stdout, so logs go to a rotated file or stderr.
func setupLogging() io.Closer {
	level := slog.LevelInfo
	if flagDebug {
		level = slog.LevelDebug
	}

	var w io.Writer = os.Stderr
	var closer io.Closer
	if flagLogFile != "" {
		lj := &lumberjack.Logger{
			Filename:   flagLogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     14, // days
		}
		w = lj
		closer = lj
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
	return closer
}

func loadOptions() (config.Options, error) {
	if flagConfig == "" {
		return config.Default(), nil
	}
	opts, err := config.Load(flagConfig)
	if err != nil {
		return config.Options{}, fmt.Errorf("loading %s: %w", flagConfig, err)
	}
	return opts, nil
}
