// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"corral-cli/internal/config"
	"corral-cli/internal/profilefile"

	"github.com/spf13/cobra"
)

var (
	initName  string
	initPort  int
	initForce bool

	// initCmd creates a starter corralfile in the current directory.
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Create a starter corralfile in the current directory",
		Example: `  corral init
  corral init --name api-dev --port 8080`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}
)

func init() {
	initCmd.Flags().StringVar(&initName, "name", "", "container name (default: derived from the directory name)")
	initCmd.Flags().IntVar(&initPort, "port", 3000, "dev-server port exposed from the container")
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing corralfile")
}

func runInit(cmd *cobra.Command, _ []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	name := initName
	if name == "" {
		name = containerNameFromDir(filepath.Base(cwd))
	}

	content := profilefile.Scaffold(name, initPort)
	// Validate before writing so a bad flag combination never produces a
	// corralfile that corral itself cannot load.
	if _, err := profilefile.Parse([]byte(content), profilefile.DefaultFileName); err != nil {
		return fmt.Errorf("refusing to write an invalid corralfile: %w", err)
	}

	path := filepath.Join(cwd, profilefile.DefaultFileName)
	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write corralfile: %w", err)
	}

	cmd.Println(SuccessStyle.Render("✓ ") + "Created " + CmdStyle.Render(path))

	// First run convenience: materialize the global config so users can see
	// what is tunable. An existing config is left alone.
	if cfgPath, err := config.DefaultPath(); err == nil {
		if _, err := os.Stat(cfgPath); errors.Is(err, fs.ErrNotExist) {
			if err := config.WriteDefault(cfgPath); err == nil {
				cmd.Println(SuccessStyle.Render("✓ ") + "Created " + CmdStyle.Render(cfgPath))
			}
		}
	}

	cmd.Println(SubtitleStyle.Render("Next steps:"))
	cmd.Println(SubtitleStyle.Render("  1. ") + "Adjust the dev command and port in " + profilefile.DefaultFileName)
	cmd.Println(SubtitleStyle.Render("  2. ") + "Bring the container up: " + CmdStyle.Render("corral up"))
	cmd.Println(SubtitleStyle.Render("  3. ") + "Route a command: " + CmdStyle.Render("corral run -- npm install"))
	return nil
}

// containerNameFromDir derives a schema-valid container name from a project
// directory name.
func containerNameFromDir(dir string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(dir) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			sb.WriteRune(r)
		default:
			sb.WriteRune('-')
		}
	}
	name := strings.Trim(sb.String(), "-_.")
	if name == "" {
		name = "project"
	}
	return name + "-dev"
}
