// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"corral-cli/internal/config"
	"corral-cli/internal/container"
	"corral-cli/internal/dispatch"
	"corral-cli/internal/issue"
	"corral-cli/internal/liveness"
	"corral-cli/internal/policy"
	"corral-cli/internal/profile"
	"corral-cli/internal/profilefile"
	"corral-cli/internal/route"
)

// issueStyle is the glamour style used when rendering issue cards.
const issueStyle = "dark"

// newLogger builds the session logger; verbose mode lowers the level to
// debug so routing and recovery decisions become visible.
func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// loadEngine resolves the configured container engine, falling back to
// auto-detection when none is configured.
func loadEngine(cfg *config.Config) (container.Engine, error) {
	switch cfg.ContainerEngine {
	case "docker":
		return container.NewEngine(container.EngineTypeDocker)
	case "podman":
		return container.NewEngine(container.EngineTypePodman)
	default:
		return container.AutoDetectEngine()
	}
}

// resolveProfile finds, loads, and compiles the project's corralfile
// starting from the current directory. It returns the corralfile path so
// commands can show where the profile came from.
func resolveProfile() (profile.CompiledProfile, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return profile.CompiledProfile{}, "", err
	}
	path, err := profilefile.Find(cwd)
	if err != nil {
		return profile.CompiledProfile{}, "", issue.NewErrorContext().
			WithOperation("locating project corralfile").
			WithResource(cwd).
			WithSuggestion("Run 'corral init' in the project root to create a corralfile.cue").
			Wrap(err).
			BuildError()
	}
	cf, err := profilefile.Load(path)
	if err != nil {
		return profile.CompiledProfile{}, path, issue.NewErrorContext().
			WithOperation("loading project corralfile").
			WithResource(path).
			WithSuggestion("Check the corralfile.cue against the schema shown by 'corral init'").
			Wrap(err).
			BuildError()
	}
	compiled, err := profile.Compile(cf.Profile())
	if err != nil {
		return profile.CompiledProfile{}, path, issue.NewErrorContext().
			WithOperation("compiling project profile").
			WithResource(path).
			WithSuggestion("Fix the reported field in corralfile.cue and retry").
			Wrap(err).
			BuildError()
	}
	return compiled, path, nil
}

// unavailableReadier fails container recovery with the engine resolution
// error, so host-safe commands still run when no engine is installed and
// only container-required ones get refused.
type unavailableReadier struct{ err error }

func (u unavailableReadier) EnsureReady(context.Context, profile.CompiledProfile, int) (liveness.ReadyResult, error) {
	return liveness.ReadyResult{}, u.err
}

// newSessionRouter wires a router from the global config and the resolved
// container engine.
func newSessionRouter() (*route.Router, error) {
	cfg := config.Global()
	logger := newLogger()

	buildOutput := io.Writer(io.Discard)
	if verbose {
		buildOutput = os.Stderr
	}

	var (
		readier    route.ContainerReadier
		dispatcher *dispatch.Dispatcher
	)
	engine, err := loadEngine(cfg)
	if err != nil {
		readier = unavailableReadier{err: err}
		dispatcher = dispatch.NewDispatcher(nil, dispatch.WithDispatchLogger(logger))
	} else {
		readier = liveness.NewSupervisor(
			liveness.NewEngineController(engine, buildOutput),
			liveness.WithLogger(logger))
		dispatcher = dispatch.NewDispatcher(engine,
			dispatch.WithDispatchLogger(logger))
	}

	classifier := policy.NewClassifier(policy.Options{
		ExtraDeny:  cfg.Policy.ExtraDeny,
		ExtraAllow: cfg.Policy.ExtraAllow,
	})

	router := route.NewRouter(
		classifier,
		func() (profile.CompiledProfile, error) {
			compiled, _, err := resolveProfile()
			return compiled, err
		},
		readier,
		dispatcher,
		route.WithRouteLogger(logger),
		route.WithMaxAttempts(cfg.Liveness.MaxAttempts))

	return router, nil
}

// renderIssue prints the cataloged issue card for id to stderr. Rendering
// problems degrade to silence; the caller still prints the raw error.
func renderIssue(id issue.Id) {
	i := issue.Get(id)
	if i == nil {
		return
	}
	out, err := i.Render(issueStyle)
	if err != nil {
		return
	}
	fmt.Fprintln(os.Stderr, out)
}
