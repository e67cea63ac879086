// SPDX-License-Identifier: MPL-2.0

package liveness

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"corral-cli/internal/container"
	"corral-cli/internal/profile"
)

// EngineController adapts a container.Engine to the Controller interface.
// Rebuild renders the compiled profile's Dockerfile into a temp build
// context, builds the image, removes any stale container of the same name,
// and creates a fresh one running the profile's dev command.
type EngineController struct {
	engine      container.Engine
	buildOutput io.Writer
}

// NewEngineController creates a controller around engine. Build output is
// streamed to buildOutput; pass io.Discard to silence it.
func NewEngineController(engine container.Engine, buildOutput io.Writer) *EngineController {
	if buildOutput == nil {
		buildOutput = io.Discard
	}
	return &EngineController{engine: engine, buildOutput: buildOutput}
}

// Status reports the observed state of the named container.
func (c *EngineController) Status(ctx context.Context, name container.ContainerName) (container.State, error) {
	return c.engine.Status(ctx, name)
}

// Start starts an existing stopped container. Transient engine failures
// (daemon hiccups, exit 125) get one quick retry before the failure counts
// against the supervisor's attempt budget.
func (c *EngineController) Start(ctx context.Context, name container.ContainerName) error {
	return container.RetryWithBackoff(ctx, 2, 500*time.Millisecond,
		func(int) (bool, error) {
			err := c.engine.Start(ctx, name)
			return container.IsTransientError(err), err
		})
}

// Rebuild builds the profile's image and recreates its container from
// scratch. Any existing container with the same name is removed first so the
// new one always runs the freshly built image.
func (c *EngineController) Rebuild(ctx context.Context, compiled profile.CompiledProfile) error {
	dir, err := os.MkdirTemp("", "corral-build-")
	if err != nil {
		return fmt.Errorf("failed to create build context: %w", err)
	}
	defer os.RemoveAll(dir)

	dockerfile, err := compiled.WriteBuildContext(dir)
	if err != nil {
		return err
	}

	if err := c.engine.Build(ctx, container.BuildOptions{
		ContextDir: dir,
		Dockerfile: dockerfile,
		Tag:        compiled.ImageTag(),
		BuildArgs:  compiled.BuildArgs,
		Stdout:     c.buildOutput,
		Stderr:     c.buildOutput,
	}); err != nil {
		return fmt.Errorf("failed to build image %q: %w", compiled.ImageTag(), err)
	}

	name := compiled.ContainerName
	state, err := c.engine.Status(ctx, name)
	if err != nil {
		return err
	}
	if state != container.StateAbsent {
		if err := c.engine.Remove(ctx, name, true); err != nil {
			return fmt.Errorf("failed to remove stale container %q: %w", name, err)
		}
	}

	if err := c.engine.Create(ctx, container.CreateOptions{
		Name:    name,
		Image:   compiled.ImageTag(),
		Command: []string{"sh", "-lc", compiled.DevCommand},
		WorkDir: "/workspace",
		EnvFile: compiled.EnvFile,
		Volumes: compiled.AdditionalVolumes,
		Ports:   []container.PortMapping{compiled.PortMapping()},
	}); err != nil {
		return fmt.Errorf("failed to create container %q: %w", name, err)
	}
	return nil
}
