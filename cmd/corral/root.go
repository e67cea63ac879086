// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for corral.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"corral-cli/internal/config"
	"corral-cli/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string
	// interactive attaches a PTY when dispatching into the container
	interactive bool

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "corral",
		Short: "Route Node.js tooling into your project's dev container",
		Long: TitleStyle.Render("corral") + SubtitleStyle.Render(" - command routing for containerized Node.js projects") + `

corral enforces one rule: package-manager and runtime commands (npm, yarn,
pnpm, bun, node, ...) execute inside the project's dev container, never on
the host. Host-safe tools like git keep running locally.

Projects declare their environment in a 'corralfile.cue' at the project
root; corral compiles it, keeps the container alive, and relays commands
into it with their exit codes intact.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Run 'corral init' in your project directory
  2. Adjust the generated corralfile.cue
  3. Route commands with: corral run -- npm install

` + SubtitleStyle.Render("Examples:") + `
  corral run -- npm install    Run npm inside the project container
  corral check npm install     Show how a command would be routed
  corral status                Show profile and container state
  corral up                    Bring the container up without running anything
  corral policy                Show the routing tables`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/corral/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&interactive, "interactive", "i", false, "attach a PTY to dispatched commands")

	// Add subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(upCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(policyCmd)
	rootCmd.AddCommand(configCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Use fang.Execute for enhanced Cobra styling.
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// initRootConfig reads in the config file and ENV variables if set.
func initRootConfig() {
	cfg, err := config.Load(config.LoadOptions{Path: cfgFile})
	if err != nil {
		// Config problems never block a command; defaults apply and the
		// user is told why.
		wrapped := issue.NewErrorContext().
			WithOperation("loading configuration").
			WithResource(configPathForDisplay()).
			WithSuggestion("Run 'corral config init' to write a fresh default config").
			Wrap(err).
			BuildError()
		renderIssue(issue.ConfigLoadFailedId)
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(wrapped, verbose))
		cfg = config.Default()
	}
	config.SetGlobal(cfg)

	// Apply verbose from config if not set via flag
	if !verbose {
		verbose = cfg.UI.Verbose
	}
}

// configPathForDisplay names the config file a load failure refers to.
func configPathForDisplay() string {
	if cfgFile != "" {
		return cfgFile
	}
	if path, err := config.DefaultPath(); err == nil {
		return path
	}
	return "default config"
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

// GetVerbose returns the verbose flag value
func GetVerbose() bool {
	return verbose
}
