// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Engine defines the interface for container operations
type Engine interface {
	// Name returns the engine name (docker or podman)
	Name() string
	// Available checks if the engine is available on the system
	Available() bool
	// Version returns the engine version
	Version(ctx context.Context) (string, error)

	// Status returns the observed state of a container. The result is a
	// point-in-time observation and must not be cached by callers.
	Status(ctx context.Context, name ContainerName) (State, error)
	// Build builds an image from a Dockerfile
	Build(ctx context.Context, opts BuildOptions) error
	// Create creates and starts a long-lived container (run -d)
	Create(ctx context.Context, opts CreateOptions) error
	// Start starts an existing stopped container
	Start(ctx context.Context, name ContainerName) error
	// Exec runs a command inside a running container
	Exec(ctx context.Context, name ContainerName, command []string, opts ExecOptions) (*ExecResult, error)
	// Remove removes a container
	Remove(ctx context.Context, name ContainerName, force bool) error
	// ImageExists checks if an image exists
	ImageExists(ctx context.Context, image ImageTag) (bool, error)
}

// State is the observed status of a container, as reported by the engine.
type State string

const (
	// StateUnknown means no observation has been made yet.
	StateUnknown State = "unknown"
	// StateRunning means the container exists and its main process is running.
	StateRunning State = "running"
	// StateExited means the container exists but its main process has stopped.
	StateExited State = "exited"
	// StateAbsent means no container with the given name exists.
	StateAbsent State = "absent"
)

// parseState maps an engine-reported status string to a State.
// Docker and Podman report the same status vocabulary from inspect.
func parseState(raw string) State {
	switch strings.TrimSpace(raw) {
	case "running":
		return StateRunning
	case "created", "exited", "paused", "restarting", "dead", "stopping":
		return StateExited
	case "":
		return StateAbsent
	default:
		return StateExited
	}
}

// BuildOptions contains options for building an image
type BuildOptions struct {
	// ContextDir is the build context directory
	ContextDir string
	// Dockerfile is the path to the Dockerfile (relative to ContextDir)
	Dockerfile string
	// Tag is the image tag
	Tag ImageTag
	// BuildArgs are build-time variables
	BuildArgs map[string]string
	// NoCache disables the build cache
	NoCache bool
	// Stdout is where to write build output
	Stdout io.Writer
	// Stderr is where to write build errors
	Stderr io.Writer
}

// CreateOptions contains options for creating a long-lived container.
type CreateOptions struct {
	// Name is the container name
	Name ContainerName
	// Image is the image to run
	Image ImageTag
	// Command is the long-lived process the container runs (e.g., the dev server)
	Command []string
	// WorkDir is the working directory inside the container
	WorkDir string
	// Env contains environment variables
	Env map[string]string
	// EnvFile is an optional env file passed through to the engine
	EnvFile string
	// Volumes are volume mounts in "host:container" format
	Volumes []string
	// Ports are port mappings
	Ports []PortMapping
}

// ExecOptions contains options for executing a command in a running container.
type ExecOptions struct {
	// WorkDir is the working directory inside the container
	WorkDir string
	// Env contains environment variables
	Env map[string]string
	// Interactive keeps stdin open
	Interactive bool
	// TTY allocates a pseudo-TTY
	TTY bool
	// Stdin is the standard input
	Stdin io.Reader
	// Stdout is where to write standard output
	Stdout io.Writer
	// Stderr is where to write standard error
	Stderr io.Writer
}

// ExecResult contains the result of executing a command in a container.
type ExecResult struct {
	// ExitCode is the exit code of the command
	ExitCode int
	// Error contains any infrastructure error (not a non-zero exit)
	Error error
}

// EngineType identifies the container engine type
type EngineType string

const (
	EngineTypeDocker EngineType = "docker"
	EngineTypePodman EngineType = "podman"
)

// ErrEngineNotAvailable is returned when a container engine is not available
type ErrEngineNotAvailable struct {
	Engine string
	Reason string
}

func (e *ErrEngineNotAvailable) Error() string {
	return fmt.Sprintf("container engine '%s' is not available: %s", e.Engine, e.Reason)
}

// NewEngine creates a new container engine based on preference
func NewEngine(preferredType EngineType) (Engine, error) {
	switch preferredType {
	case EngineTypeDocker:
		engine := NewDockerEngine()
		if engine.Available() {
			return engine, nil
		}
		// Fall back to Podman
		podmanEngine := NewPodmanEngine()
		if podmanEngine.Available() {
			return podmanEngine, nil
		}
		return nil, &ErrEngineNotAvailable{
			Engine: "docker",
			Reason: "docker is not installed or not accessible, and podman fallback is also not available",
		}

	case EngineTypePodman:
		engine := NewPodmanEngine()
		if engine.Available() {
			return engine, nil
		}
		// Fall back to Docker
		dockerEngine := NewDockerEngine()
		if dockerEngine.Available() {
			return dockerEngine, nil
		}
		return nil, &ErrEngineNotAvailable{
			Engine: "podman",
			Reason: "podman is not installed or not accessible, and docker fallback is also not available",
		}

	default:
		return nil, fmt.Errorf("unknown container engine type: %s", preferredType)
	}
}

// AutoDetectEngine tries to find an available container engine
func AutoDetectEngine() (Engine, error) {
	// Try Docker first (the common case for Node dev environments)
	docker := NewDockerEngine()
	if docker.Available() {
		return docker, nil
	}

	podman := NewPodmanEngine()
	if podman.Available() {
		return podman, nil
	}

	return nil, &ErrEngineNotAvailable{
		Engine: "any",
		Reason: "no container engine (docker or podman) is available on this system",
	}
}
