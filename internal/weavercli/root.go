// Package weavercli wires the weaver subcommands (resolve, check,
// generate, stats, serve, init) into a single Cobra command tree,
// mirroring the Blueprint CLI's package-per-command layout.
package weavercli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version is the weaver build version, reported by `weaver --version`.
const Version = "0.1.0"

var (
	logLevel string
	logger   *slog.Logger
)

// RootCmd is the top-level `weaver` command.
var RootCmd = &cobra.Command{
	Use:   "weaver",
	Short: "Semantic convention registry compiler and code generator",
	Long: `weaver resolves and validates a semantic-convention registry and
renders it into target-language artifacts from Jinja-compatible templates.

Use "weaver init" to scaffold a new registry and target, "weaver check"
to validate a registry, "weaver generate" to render artifacts, and
"weaver serve" to run one generation pass and then serve its status.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		switch logLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		return nil
	},
}

func init() {
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	RootCmd.AddCommand(resolveCmd)
	RootCmd.AddCommand(checkCmd)
	RootCmd.AddCommand(generateCmd)
	RootCmd.AddCommand(statsCmd)
	RootCmd.AddCommand(serveCmd)
	RootCmd.AddCommand(initCmd)
}

// Execute runs the root command and returns the process exit code defined
// by the ExitX constants.
func Execute() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	RootCmd.SetContext(ctx)
	err := RootCmd.Execute()
	if err == nil {
		return ExitSuccess
	}
	if ctx.Err() != nil {
		return ExitCancelled
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if logger != nil {
			logger.Error(ee.Error())
		} else {
			os.Stderr.WriteString(ee.Error() + "\n")
		}
		return ee.code
	}

	// Cobra-level errors (bad flags, unknown command) are config errors.
	os.Stderr.WriteString(err.Error() + "\n")
	return ExitConfigError
}
