// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"corral-cli/internal/config"
	"corral-cli/internal/issue"
	"corral-cli/internal/policy"

	"github.com/spf13/cobra"
)

// checkCmd classifies a command line without executing it.
var checkCmd = &cobra.Command{
	Use:   "check <command> [args...]",
	Short: "Show how a command would be routed, without running it",
	Example: `  corral check npm install
  corral check git status
  corral check "npm run build && git push"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg := config.Global()
	classifier := policy.NewClassifier(policy.Options{
		ExtraDeny:  cfg.Policy.ExtraDeny,
		ExtraAllow: cfg.Policy.ExtraAllow,
	})

	command, err := shellJoin(args)
	if err != nil {
		return err
	}

	decision, err := classifier.Classify(command)
	if err != nil {
		return err
	}

	cmd.Println(formatDecision(decision))
	if decision.Rule == policy.RuleDenylist {
		renderIssue(issue.DenylistedCommandId)
	}
	return nil
}

// formatDecision renders a classification verdict for display.
func formatDecision(d policy.Decision) string {
	var sb strings.Builder

	switch d.Action {
	case policy.ActionRunInContainer:
		sb.WriteString(WarningStyle.Render("run-in-container"))
	case policy.ActionRunLocally:
		sb.WriteString(SuccessStyle.Render("run-locally"))
	default:
		sb.WriteString(ErrorStyle.Render(string(d.Action)))
	}

	sb.WriteString(SubtitleStyle.Render("  rule: ") + string(d.Rule))
	if d.MatchedProgram != "" {
		sb.WriteString(SubtitleStyle.Render("  program: ") + CmdStyle.Render(d.MatchedProgram))
	}
	if d.Warning {
		sb.WriteString("\n" + WarningStyle.Render("Warning: ") +
			fmt.Sprintf("%q is not in any policy table; it would run on the host", d.MatchedProgram))
	}
	return sb.String()
}
