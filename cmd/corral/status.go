// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"

	"corral-cli/internal/config"
	"corral-cli/internal/container"
	"corral-cli/internal/issue"
	"corral-cli/internal/profile"
	"corral-cli/internal/profilefile"

	"github.com/spf13/cobra"
)

// statusCmd shows the compiled profile and the observed container state.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the project profile and container state",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, _ []string) error {
	compiled, path, err := resolveProfile()
	if err != nil {
		renderIssue(profileErrorIssueId(err))
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
		return &ExitError{Code: 1}
	}

	cmd.Println(TitleStyle.Render("Project profile") + SubtitleStyle.Render("  "+path))
	cmd.Println(SubtitleStyle.Render("  container:   ") + compiled.ContainerName.String())
	family := string(compiled.BaseImageFamily)
	if compiled.WasOverridden {
		family += WarningStyle.Render("  (adjusted for native modules)")
	}
	cmd.Println(SubtitleStyle.Render("  family:      ") + family)
	cmd.Println(SubtitleStyle.Render("  base image:  ") + compiled.BaseImage.String())
	cmd.Println(SubtitleStyle.Render("  image tag:   ") + compiled.ImageTag().String())
	cmd.Println(SubtitleStyle.Render("  port:        ") + compiled.Port.String())
	cmd.Println(SubtitleStyle.Render("  dev command: ") + CmdStyle.Render(compiled.DevCommand))

	engine, err := loadEngine(config.Global())
	if err != nil {
		cmd.Println(WarningStyle.Render("No container engine available; state unknown"))
		return nil
	}

	state, err := engine.Status(cmd.Context(), compiled.ContainerName)
	if err != nil {
		return fmt.Errorf("failed to query container state: %w", err)
	}

	cmd.Println(TitleStyle.Render("Container") + SubtitleStyle.Render("  via "+engine.Name()))
	cmd.Println(SubtitleStyle.Render("  state:       ") + formatState(state))
	return nil
}

// profileErrorIssueId maps a profile resolution failure to its catalog entry.
func profileErrorIssueId(err error) issue.Id {
	switch {
	case errors.Is(err, profilefile.ErrNotFound):
		return issue.CorralfileNotFoundId
	case errors.Is(err, profile.ErrInvalidConfiguration):
		return issue.InvalidProfileId
	default:
		return issue.CorralfileParseErrorId
	}
}

// formatState renders a container state with its status color.
func formatState(state container.State) string {
	switch state {
	case container.StateRunning:
		return SuccessStyle.Render(string(state))
	case container.StateExited:
		return WarningStyle.Render(string(state))
	case container.StateAbsent:
		return SubtitleStyle.Render(string(state))
	default:
		return string(state)
	}
}
