// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"corral-cli/internal/config"
	"corral-cli/internal/policy"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

// policyCmd shows the effective routing tables, including per-user
// extensions from the global config.
var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Show the command routing tables",
	Args:  cobra.NoArgs,
	RunE:  runPolicy,
}

func runPolicy(cmd *cobra.Command, _ []string) error {
	cfg := config.Global()
	classifier := policy.NewClassifier(policy.Options{
		ExtraDeny:  cfg.Policy.ExtraDeny,
		ExtraAllow: cfg.Policy.ExtraAllow,
	})

	out, err := glamour.Render(policyMarkdown(classifier), issueStyle)
	if err != nil {
		// Styled rendering is best-effort; plain markdown still answers
		// the question.
		cmd.Println(policyMarkdown(classifier))
		return nil
	}
	cmd.Println(out)
	return nil
}

// policyMarkdown renders the effective tables as a markdown document.
func policyMarkdown(c *policy.Classifier) string {
	var sb strings.Builder

	sb.WriteString("# Command routing policy\n\n")
	sb.WriteString("Program names match exactly; `npminstall` is not `npm`. ")
	sb.WriteString("For chained or piped lines the most restrictive segment wins.\n\n")

	sb.WriteString("## Container-required (denylist)\n\n")
	for _, p := range c.Denylist() {
		fmt.Fprintf(&sb, "- `%s`\n", p)
	}

	sb.WriteString("\n## Host-safe (allowlist)\n\n")
	for _, p := range c.Allowlist() {
		fmt.Fprintf(&sb, "- `%s`\n", p)
	}

	sb.WriteString("\n## Dispatch wrappers\n\n")
	sb.WriteString("Lines already dispatching into a container are never wrapped again:\n\n")
	for _, p := range policy.WrapperPrograms() {
		fmt.Fprintf(&sb, "- `%s`\n", p)
	}

	sb.WriteString("\nUnrecognized programs run on the host with a warning. ")
	sb.WriteString("Extend the tables via `extra_deny` and `extra_allow` in the corral config.\n")
	return sb.String()
}
