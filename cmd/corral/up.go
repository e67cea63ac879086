// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"corral-cli/internal/config"
	"corral-cli/internal/issue"
	"corral-cli/internal/liveness"

	"github.com/spf13/cobra"
)

// upCmd brings the project container to the Running state without
// dispatching anything into it.
var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Bring the project container up",
	Long: `Resolve the project profile and drive its container to the Running
state: start it if it exited, build the image and recreate it if it is
missing. Run with --verbose to see the image build output.`,
	Args: cobra.NoArgs,
	RunE: runUp,
}

func runUp(cmd *cobra.Command, _ []string) error {
	compiled, _, err := resolveProfile()
	if err != nil {
		renderIssue(profileErrorIssueId(err))
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
		return &ExitError{Code: 1}
	}

	cfg := config.Global()
	engine, err := loadEngine(cfg)
	if err != nil {
		renderIssue(issue.ContainerEngineNotFoundId)
		return err
	}

	buildOutput := io.Writer(io.Discard)
	if verbose {
		buildOutput = os.Stderr
	}
	supervisor := liveness.NewSupervisor(
		liveness.NewEngineController(engine, buildOutput),
		liveness.WithLogger(newLogger()))

	result, err := supervisor.EnsureReady(cmd.Context(), compiled, cfg.Liveness.MaxAttempts)
	if err != nil {
		var livenessErr *liveness.LivenessError
		if errors.As(err, &livenessErr) {
			renderIssue(issue.RecoveryExhaustedId)
		}
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
		return &ExitError{Code: 1}
	}

	if result.AlreadyRunning {
		cmd.Println(SuccessStyle.Render("✓ ") + compiled.ContainerName.String() + " is already running")
		return nil
	}
	cmd.Println(SuccessStyle.Render("✓ ") + fmt.Sprintf("%s is running (%d recovery attempt(s))",
		compiled.ContainerName, result.AttemptsMade))
	return nil
}
