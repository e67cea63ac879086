// SPDX-License-Identifier: MPL-2.0

package route

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/charmbracelet/log"

	"corral-cli/internal/container"
	"corral-cli/internal/dispatch"
	"corral-cli/internal/issue"
	"corral-cli/internal/liveness"
	"corral-cli/internal/policy"
	"corral-cli/internal/profile"
	"corral-cli/internal/profilefile"
)

type (
	// Request is one command line to route.
	Request struct {
		Command string
		// Interactive is the caller's explicit choice; the router never
		// infers it.
		Interactive bool
		Env         map[string]string

		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// Outcome reports how a routed command ran.
	Outcome struct {
		Decision policy.Decision
		// Dispatched is set when the command ran inside the container.
		Dispatched bool
		// AttemptsMade counts liveness recovery actions taken before
		// dispatch; zero when the container was already running or the
		// command ran on the host.
		AttemptsMade int
		ExitCode     int
	}

	// RefusalError reports a container-required command that could not be
	// dispatched. The command did not run anywhere.
	RefusalError struct {
		Decision policy.Decision
		IssueId  issue.Id
		Cause    error
	}

	// ProfileResolver produces the project's compiled profile on demand.
	// Host-safe commands never trigger it, so running "git status" outside
	// any project works without a corralfile.
	ProfileResolver func() (profile.CompiledProfile, error)

	// ContainerReadier brings a container to the Running state.
	ContainerReadier interface {
		EnsureReady(ctx context.Context, compiled profile.CompiledProfile, maxAttempts int) (liveness.ReadyResult, error)
	}

	// LocalRunner executes a command line on the host and returns its exit
	// code. Infrastructure failures (command could not start) are errors;
	// a non-zero exit is not.
	LocalRunner func(ctx context.Context, req Request) (int, error)

	// Router routes classified commands to the host or the container.
	Router struct {
		classifier  *policy.Classifier
		profiles    ProfileResolver
		readier     ContainerReadier
		dispatcher  *dispatch.Dispatcher
		local       LocalRunner
		logger      *log.Logger
		maxAttempts int
	}

	// RouterOption configures a Router.
	RouterOption func(*Router)
)

// Error implements the error interface.
func (e *RefusalError) Error() string {
	return fmt.Sprintf("refusing to run %q on the host (rule: %s, program: %s): %v",
		e.Decision.Action, e.Decision.Rule, e.Decision.MatchedProgram, e.Cause)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *RefusalError) Unwrap() error { return e.Cause }

// WithLocalRunner overrides host execution; tests inject a fake.
func WithLocalRunner(run LocalRunner) RouterOption {
	return func(r *Router) { r.local = run }
}

// WithRouteLogger sets the logger routing decisions are reported to.
func WithRouteLogger(logger *log.Logger) RouterOption {
	return func(r *Router) { r.logger = logger }
}

// WithMaxAttempts bounds liveness recovery per dispatch.
func WithMaxAttempts(n int) RouterOption {
	return func(r *Router) { r.maxAttempts = n }
}

// NewRouter wires a router from its collaborators.
func NewRouter(
	classifier *policy.Classifier,
	profiles ProfileResolver,
	readier ContainerReadier,
	dispatcher *dispatch.Dispatcher,
	opts ...RouterOption,
) *Router {
	r := &Router{
		classifier:  classifier,
		profiles:    profiles,
		readier:     readier,
		dispatcher:  dispatcher,
		local:       runLocal,
		logger:      log.Default(),
		maxAttempts: liveness.DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Check classifies a command line without running it.
func (r *Router) Check(command string) (policy.Decision, error) {
	return r.classifier.Classify(command)
}

// Route classifies the request and executes it where the verdict says.
// The returned Outcome carries the command's own exit code; a non-zero exit
// is not an error.
func (r *Router) Route(ctx context.Context, req Request) (Outcome, error) {
	decision, err := r.classifier.Classify(req.Command)
	if err != nil {
		return Outcome{}, err
	}

	if decision.Warning {
		r.logger.Warn("program not in any policy table, running on host",
			"program", decision.MatchedProgram, "command", req.Command)
	}

	switch decision.Action {
	case policy.ActionRunLocally:
		code, err := r.local(ctx, req)
		if err != nil {
			return Outcome{}, fmt.Errorf("failed to run %q on the host: %w", req.Command, err)
		}
		return Outcome{Decision: decision, ExitCode: code}, nil

	case policy.ActionRunInContainer:
		return r.routeToContainer(ctx, decision, req)

	default:
		return Outcome{}, fmt.Errorf("unroutable action %q", decision.Action)
	}
}

func (r *Router) routeToContainer(ctx context.Context, decision policy.Decision, req Request) (Outcome, error) {
	compiled, err := r.profiles()
	if err != nil {
		return Outcome{}, &RefusalError{
			Decision: decision,
			IssueId:  profileIssueId(err),
			Cause:    err,
		}
	}

	ready, err := r.readier.EnsureReady(ctx, compiled, r.maxAttempts)
	if err != nil {
		id := issue.RecoveryExhaustedId
		var notAvail *container.ErrEngineNotAvailable
		if errors.As(err, &notAvail) {
			id = issue.ContainerEngineNotFoundId
		}
		return Outcome{}, &RefusalError{
			Decision: decision,
			IssueId:  id,
			Cause:    err,
		}
	}

	r.logger.Debug("dispatching into container",
		"container", compiled.ContainerName,
		"rule", decision.Rule,
		"program", decision.MatchedProgram,
		"recovery_attempts", ready.AttemptsMade)

	result, err := r.dispatcher.Dispatch(ctx, compiled.ContainerName, dispatch.Request{
		Command:     req.Command,
		Interactive: req.Interactive,
		Env:         req.Env,
		Stdin:       req.Stdin,
		Stdout:      req.Stdout,
		Stderr:      req.Stderr,
	})
	if err != nil {
		return Outcome{}, &RefusalError{
			Decision: decision,
			IssueId:  issue.DispatchFailedId,
			Cause:    err,
		}
	}

	return Outcome{
		Decision:     decision,
		Dispatched:   true,
		AttemptsMade: ready.AttemptsMade,
		ExitCode:     result.ExitCode,
	}, nil
}

// profileIssueId maps a profile resolution failure to its catalog entry.
func profileIssueId(err error) issue.Id {
	switch {
	case errors.Is(err, profilefile.ErrNotFound):
		return issue.CorralfileNotFoundId
	case errors.Is(err, profile.ErrInvalidConfiguration):
		return issue.InvalidProfileId
	default:
		return issue.CorralfileParseErrorId
	}
}

// runLocal executes the request's command line on the host via sh -lc,
// mirroring in-container dispatch semantics.
func runLocal(ctx context.Context, req Request) (int, error) {
	cmd := exec.CommandContext(ctx, "sh", "-lc", req.Command)
	cmd.Stdin = req.Stdin
	cmd.Stdout = req.Stdout
	cmd.Stderr = req.Stderr
	if len(req.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range req.Env {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
		}
	}

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return 0, err
	}
	return 0, nil
}
