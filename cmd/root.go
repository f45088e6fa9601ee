// Copyright (c) 2025 Zentaoctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for zentaoctl.
// Each subcommand lives in its own file and registers itself with the root
// command in init.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"zentaoctl/cli/internal/config"
	"zentaoctl/cli/internal/logging"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	showVersion bool
	verbose     bool
	logFormat   string
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "zentaoctl",
	Short: "Query and update ZenTao bugs through a shared admin account",
	Long: `zentaoctl drives a ZenTao portal through a headless browser. It logs in with
a shared admin account, lists the bugs of a project and closes, activates,
resolves or reassigns a single bug. Every use of the admin account is recorded
in an audit log together with the name of the operator.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Commands that need the config load it again and report the error.
		cfg, err := config.Load()
		if err != nil {
			cfg = config.Default()
		}
		return setupLogger(cfg)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			printVersion()
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the CLI application. SIGINT and SIGTERM cancel the command
// context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		code := 1
		var ee *exitError
		if errors.As(err, &ee) {
			code = ee.code
		} else {
			fmt.Fprintln(os.Stderr, logging.PresentError("", err))
		}
		stop()
		os.Exit(code)
	}
}

// exitError ends the process with code after the command already reported
// the failure itself.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// setupLogger installs the default slog logger. Diagnostics go to stderr so
// tables on stdout stay clean.
func setupLogger(cfg config.Config) error {
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	format := cfg.LogFormat
	if logFormat != "" {
		format = logFormat
	}
	logger, err := logging.NewLogger(logging.Options{
		Level:  level,
		Format: format,
		Writer: os.Stderr,
		Color:  term.IsTerminal(int(os.Stderr.Fd())),
	})
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI version information")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging and show every progress line")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: console or json")
}
