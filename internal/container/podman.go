// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// PodmanEngine implements the Engine interface using the Podman CLI.
// It embeds BaseCLIEngine for common CLI operations.
type PodmanEngine struct {
	*BaseCLIEngine
}

// NewPodmanEngine creates a new Podman engine.
// On Linux, volume mounts are labeled with :z for SELinux compatibility.
func NewPodmanEngine(opts ...BaseCLIEngineOption) *PodmanEngine {
	path, _ := exec.LookPath("podman")

	// Podman needs SELinux volume labels on Linux (prepend to user options)
	allOpts := append([]BaseCLIEngineOption{
		WithName(string(EngineTypePodman)),
		WithVolumeFormatter(addSELinuxLabel),
	}, opts...)

	return &PodmanEngine{
		BaseCLIEngine: NewBaseCLIEngine(path, allOpts...),
	}
}

// addSELinuxLabel appends the shared :z label to a volume mount on Linux.
// Mounts that already carry a label or mode suffix are left untouched.
func addSELinuxLabel(volume string) string {
	if runtime.GOOS != "linux" {
		return volume
	}
	if strings.Count(volume, ":") != 1 {
		return volume
	}
	return volume + ":z"
}

// Available checks if Podman is available.
func (e *PodmanEngine) Available() bool {
	if e.BinaryPath() == "" {
		return false
	}
	cmd := e.CreateCommand(context.Background(), "version", "--format", "{{.Version}}")
	return cmd.Run() == nil
}

// Version returns the Podman version.
func (e *PodmanEngine) Version(ctx context.Context) (string, error) {
	out, err := e.RunCommandWithOutput(ctx, "version", "--format", "{{.Version}}")
	if err != nil {
		return "", fmt.Errorf("failed to get podman version: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Status returns the observed state of a container.
func (e *PodmanEngine) Status(ctx context.Context, name ContainerName) (State, error) {
	return queryStatus(ctx, e.BaseCLIEngine, name)
}

// Build builds an image from a Dockerfile.
func (e *PodmanEngine) Build(ctx context.Context, opts BuildOptions) error {
	args := e.BuildArgs(opts)

	cmd := e.CreateCommand(ctx, args...)
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("podman build of %s failed: %w", opts.Tag, err)
	}

	return nil
}

// Create creates and starts a long-lived container.
// Volume mounts are automatically labeled for SELinux if needed.
func (e *PodmanEngine) Create(ctx context.Context, opts CreateOptions) error {
	out, err := e.RunCommandCombined(ctx, e.CreateArgs(opts)...)
	if err != nil {
		return fmt.Errorf("podman run failed: %s: %w", strings.TrimSpace(string(out)), err)
	}
	return nil
}

// Start starts an existing stopped container.
func (e *PodmanEngine) Start(ctx context.Context, name ContainerName) error {
	return e.RunCommandStatus(ctx, e.StartArgs(name)...)
}

// Exec runs a command in a running container.
func (e *PodmanEngine) Exec(ctx context.Context, name ContainerName, command []string, opts ExecOptions) (*ExecResult, error) {
	return execViaCLI(ctx, e.BaseCLIEngine, name, command, opts)
}

// Remove removes a container.
func (e *PodmanEngine) Remove(ctx context.Context, name ContainerName, force bool) error {
	return e.RunCommandStatus(ctx, e.RemoveArgs(name, force)...)
}

// ImageExists checks if an image exists.
func (e *PodmanEngine) ImageExists(ctx context.Context, image ImageTag) (bool, error) {
	err := e.RunCommandStatus(ctx, "image", "inspect", string(image))
	return err == nil, nil
}
