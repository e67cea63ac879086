// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// DockerEngine implements the Engine interface using the Docker CLI.
// It embeds BaseCLIEngine for common CLI operations.
type DockerEngine struct {
	*BaseCLIEngine
}

// NewDockerEngine creates a new Docker engine.
func NewDockerEngine(opts ...BaseCLIEngineOption) *DockerEngine {
	path, _ := exec.LookPath("docker")

	// CLI hints ("What's next: ...") would pollute the inspect/run output
	// this engine parses (prepend so user options win).
	allOpts := append([]BaseCLIEngineOption{
		WithName(string(EngineTypeDocker)),
		WithCmdEnvOverride("DOCKER_CLI_HINTS", "false"),
	}, opts...)

	return &DockerEngine{
		BaseCLIEngine: NewBaseCLIEngine(path, allOpts...),
	}
}

// Available checks if Docker is available.
func (e *DockerEngine) Available() bool {
	if e.BinaryPath() == "" {
		return false
	}
	cmd := e.CreateCommand(context.Background(), "version", "--format", "{{.Server.Version}}")
	return cmd.Run() == nil
}

// Version returns the Docker version.
func (e *DockerEngine) Version(ctx context.Context) (string, error) {
	out, err := e.RunCommandWithOutput(ctx, "version", "--format", "{{.Server.Version}}")
	if err != nil {
		return "", fmt.Errorf("failed to get docker version: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Status returns the observed state of a container.
func (e *DockerEngine) Status(ctx context.Context, name ContainerName) (State, error) {
	return queryStatus(ctx, e.BaseCLIEngine, name)
}

// Build builds an image from a Dockerfile.
func (e *DockerEngine) Build(ctx context.Context, opts BuildOptions) error {
	args := e.BuildArgs(opts)

	cmd := e.CreateCommand(ctx, args...)
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("docker build of %s failed: %w", opts.Tag, err)
	}

	return nil
}

// Create creates and starts a long-lived container.
func (e *DockerEngine) Create(ctx context.Context, opts CreateOptions) error {
	out, err := e.RunCommandCombined(ctx, e.CreateArgs(opts)...)
	if err != nil {
		return fmt.Errorf("docker run failed: %s: %w", strings.TrimSpace(string(out)), err)
	}
	return nil
}

// Start starts an existing stopped container.
func (e *DockerEngine) Start(ctx context.Context, name ContainerName) error {
	return e.RunCommandStatus(ctx, e.StartArgs(name)...)
}

// Exec runs a command in a running container.
func (e *DockerEngine) Exec(ctx context.Context, name ContainerName, command []string, opts ExecOptions) (*ExecResult, error) {
	return execViaCLI(ctx, e.BaseCLIEngine, name, command, opts)
}

// Remove removes a container.
func (e *DockerEngine) Remove(ctx context.Context, name ContainerName, force bool) error {
	return e.RunCommandStatus(ctx, e.RemoveArgs(name, force)...)
}

// ImageExists checks if an image exists.
func (e *DockerEngine) ImageExists(ctx context.Context, image ImageTag) (bool, error) {
	err := e.RunCommandStatus(ctx, "image", "inspect", string(image))
	return err == nil, nil
}

// queryStatus implements the status query shared by both CLI engines.
// A failed inspect whose output mentions a missing object maps to StateAbsent
// rather than an error: absence is an expected observation, not a failure.
func queryStatus(ctx context.Context, base *BaseCLIEngine, name ContainerName) (State, error) {
	out, err := base.RunCommandCombined(ctx, base.StatusArgs(name)...)
	if err != nil {
		if isNoSuchContainer(string(out)) {
			return StateAbsent, nil
		}
		return StateUnknown, fmt.Errorf("failed to query status of container %s: %w", name, err)
	}
	return parseState(string(out)), nil
}

// isNoSuchContainer reports whether inspect output indicates a missing container.
// Docker prints "No such object", Podman "no such container".
func isNoSuchContainer(out string) bool {
	lower := strings.ToLower(out)
	return strings.Contains(lower, "no such object") || strings.Contains(lower, "no such container")
}

// execViaCLI implements the exec operation shared by both CLI engines.
// A non-zero exit of the command inside the container is reported via
// ExitCode, not as an error; errors are reserved for infrastructure failures.
func execViaCLI(ctx context.Context, base *BaseCLIEngine, name ContainerName, command []string, opts ExecOptions) (*ExecResult, error) {
	args := base.ExecArgs(name, command, opts)

	cmd := base.CreateCommand(ctx, args...)
	cmd.Stdin = opts.Stdin
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr

	err := cmd.Run()

	result := &ExecResult{}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = 1
			result.Error = err
		}
	}

	return result, nil
}
