// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"

	"corral-cli/internal/route"

	"github.com/spf13/cobra"
)

// runCmd routes one command line to the host or the project container.
var runCmd = &cobra.Command{
	Use:   "run [--] <command> [args...]",
	Short: "Run a command, routed by policy",
	Long: `Classify a command line and execute it where the policy says:
host-safe commands run locally, package-manager and runtime commands are
dispatched into the project's dev container. The command's exit code is
preserved either way.

Use '--' to stop corral from interpreting the command's own flags.`,
	Example: `  corral run -- npm install
  corral run -- npm run build
  corral run git status
  corral run -i -- node`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	command, err := shellJoin(args)
	if err != nil {
		return err
	}

	router, err := newSessionRouter()
	if err != nil {
		return err
	}

	outcome, err := router.Route(cmd.Context(), route.Request{
		Command:     command,
		Interactive: interactive,
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
	})
	if err != nil {
		var refusal *route.RefusalError
		if errors.As(err, &refusal) {
			renderIssue(refusal.IssueId)
			fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
			return &ExitError{Code: 1}
		}
		return err
	}

	if outcome.ExitCode != 0 {
		return &ExitError{Code: outcome.ExitCode}
	}
	return nil
}
