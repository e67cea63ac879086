// SPDX-License-Identifier: MPL-2.0

package profilefile

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"corral-cli/internal/container"
	"corral-cli/internal/cueschema"
	"corral-cli/internal/profile"
)

//go:embed corralfile_schema.cue
var corralfileSchema []byte

// DefaultFileName is the corralfile's name at the project root.
const DefaultFileName = "corralfile.cue"

// ErrNotFound indicates no corralfile exists for the project.
var ErrNotFound = errors.New("corralfile not found")

// Corralfile is the decoded project declaration. Field names mirror the CUE
// schema; validation happens there, not here.
type Corralfile struct {
	ContainerName     string            `json:"container_name"`
	BaseImage         string            `json:"base_image,omitempty"`
	Port              int               `json:"port"`
	HasNativeModules  bool              `json:"has_native_modules"`
	DevCommand        string            `json:"dev_command"`
	EnvFile           string            `json:"env_file,omitempty"`
	AdditionalVolumes []string          `json:"additional_volumes,omitempty"`
	BuildArgs         map[string]string `json:"build_args,omitempty"`
}

// Parse validates data against the corralfile schema and decodes it.
// filename is used only in error output.
func Parse(data []byte, filename string) (*Corralfile, error) {
	result, err := cueschema.ParseAndDecode[Corralfile](
		corralfileSchema, data, "#Corralfile",
		cueschema.WithFilename(filename))
	if err != nil {
		return nil, err
	}
	return result.Value, nil
}

// Load reads and parses the corralfile at path.
func Load(path string) (*Corralfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read corralfile: %w", err)
	}
	return Parse(data, filepath.Base(path))
}

// Find walks up from startDir looking for a corralfile and returns its path.
// The walk stops at the filesystem root.
func Find(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, DefaultFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w in %s or any parent directory", ErrNotFound, startDir)
		}
		dir = parent
	}
}

// Profile converts the decoded corralfile to a declared project profile.
func (c *Corralfile) Profile() profile.ProjectProfile {
	return profile.ProjectProfile{
		ContainerName:     container.ContainerName(c.ContainerName),
		BaseImageFamily:   profile.BaseImageFamily(c.BaseImage),
		Port:              c.Port,
		HasNativeModules:  c.HasNativeModules,
		DevCommand:        c.DevCommand,
		EnvFile:           c.EnvFile,
		AdditionalVolumes: c.AdditionalVolumes,
		BuildArgs:         c.BuildArgs,
	}
}

// Scaffold returns the initial corralfile content written by project setup.
func Scaffold(containerName string, port int) string {
	return fmt.Sprintf(`// Corral project declaration. See 'corral policy' for what gets routed
// into this container.

container_name: %q

// base_image: "alpine" | "slim" | "full" (omit to auto-select)

port: %d

has_native_modules: false

dev_command: "npm run dev"
`, containerName, port)
}
