// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/invowk/modrun/internal/config"
	"github.com/invowk/modrun/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables debug logging and detailed errors
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// appConfig is the effective configuration, loaded before any command runs.
	appConfig = config.DefaultConfig()
	// appConfigPath is the file appConfig was read from ("" for defaults).
	appConfigPath string
	// logger is shared by all commands; it discards output until configured.
	logger = log.New(io.Discard)

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "modrun",
		Short: "A module-aware script launcher",
		Long: TitleStyle.Render("modrun") + SubtitleStyle.Render(" - A module-aware script launcher") + `

modrun resolves a versioned module from one or more repositories, builds
an isolated execution context holding the module and its requirements,
and runs the module's entry point with the given arguments.

Entry points are shell scripts executed by an embedded POSIX shell
interpreter (mvdan/sh). Module descriptors are written in CUE.

` + SubtitleStyle.Render("Examples:") + `
  modrun run com.example.hello                                Run the module's 'run' entry point
  modrun run com.example.hello/^1.0.0 a b                     Run the newest 1.x with arguments
  modrun run --run com.example.hello::greet com.example.hello Run another entry point
  modrun info com.example.hello                               Show how the module resolves
  modrun config show                                          Show current configuration`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			initRootConfig(cmd)
		},
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/modrun/config.cue)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(configCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the root command and returns the process exit code.
// This is called by main.main().
func Execute() int {
	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	return exitCode(fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(handleError),
	))
}

// initRootConfig loads the configuration and sets up the logger and styles.
func initRootConfig(cmd *cobra.Command) {
	cfg, path, err := config.NewProvider().Load(cmd.Context(), config.LoadOptions{ConfigFilePath: cfgFile})
	if err != nil {
		// Config problems never block a launch; fall back to defaults.
		fmt.Fprintln(cmd.ErrOrStderr(), WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
		cfg = config.DefaultConfig()
		path = ""
	}
	appConfig = cfg
	appConfigPath = path

	// Apply verbose from config if not set via flag
	if !verbose {
		verbose = cfg.UI.Verbose
	}

	applyColorScheme(cfg.UI.ColorScheme)
	logger = newLogger(cmd.ErrOrStderr(), verbose)
	if path != "" {
		logger.Debug("loaded configuration", "path", path)
	}
}

// newLogger creates the CLI logger. Debug output is enabled in verbose mode.
func newLogger(w io.Writer, verboseMode bool) *log.Logger {
	l := log.NewWithOptions(w, log.Options{Prefix: "modrun"})
	if verboseMode {
		l.SetLevel(log.DebugLevel)
	}
	return l
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
