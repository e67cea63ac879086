// SPDX-License-Identifier: MPL-2.0

package route

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"corral-cli/internal/container"
	"corral-cli/internal/dispatch"
	"corral-cli/internal/issue"
	"corral-cli/internal/liveness"
	"corral-cli/internal/policy"
	"corral-cli/internal/profile"
	"corral-cli/internal/profilefile"
)

// execEngine is a container.Engine whose Exec returns a canned result.
type execEngine struct {
	lastName    container.ContainerName
	lastCommand []string
	result      *container.ExecResult
	err         error
}

func (f *execEngine) Name() string                                   { return "fake" }
func (f *execEngine) Available() bool                                { return true }
func (f *execEngine) Version(context.Context) (string, error)        { return "0.0.0", nil }
func (f *execEngine) Build(context.Context, container.BuildOptions) error { return nil }
func (f *execEngine) Create(context.Context, container.CreateOptions) error { return nil }
func (f *execEngine) Start(context.Context, container.ContainerName) error  { return nil }
func (f *execEngine) Remove(context.Context, container.ContainerName, bool) error {
	return nil
}
func (f *execEngine) ImageExists(context.Context, container.ImageTag) (bool, error) {
	return true, nil
}
func (f *execEngine) Status(context.Context, container.ContainerName) (container.State, error) {
	return container.StateRunning, nil
}

func (f *execEngine) Exec(_ context.Context, name container.ContainerName, command []string, _ container.ExecOptions) (*container.ExecResult, error) {
	f.lastName = name
	f.lastCommand = command
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &container.ExecResult{}, nil
}

// fakeReadier returns a canned liveness result.
type fakeReadier struct {
	result      liveness.ReadyResult
	err         error
	maxAttempts int
	calls       int
}

func (f *fakeReadier) EnsureReady(_ context.Context, _ profile.CompiledProfile, maxAttempts int) (liveness.ReadyResult, error) {
	f.calls++
	f.maxAttempts = maxAttempts
	if f.err != nil {
		return liveness.ReadyResult{}, f.err
	}
	return f.result, nil
}

func resolveTo(compiled profile.CompiledProfile, err error) ProfileResolver {
	return func() (profile.CompiledProfile, error) { return compiled, err }
}

func resolverMustNotRun(t *testing.T) ProfileResolver {
	return func() (profile.CompiledProfile, error) {
		t.Error("profile resolver must not run for host-safe commands")
		return profile.CompiledProfile{}, nil
	}
}

func compiledProfile(t *testing.T) profile.CompiledProfile {
	t.Helper()
	compiled, err := profile.Compile(profile.ProjectProfile{
		ContainerName: "myapp-dev",
		Port:          3000,
		DevCommand:    "npm run dev",
	})
	if err != nil {
		t.Fatal(err)
	}
	return compiled
}

func newTestRouter(profiles ProfileResolver, readier ContainerReadier, engine container.Engine, opts ...RouterOption) *Router {
	quiet := log.New(io.Discard)
	opts = append([]RouterOption{WithRouteLogger(quiet)}, opts...)
	return NewRouter(
		policy.NewClassifier(policy.Options{}),
		profiles,
		readier,
		dispatch.NewDispatcher(engine, dispatch.WithDispatchLogger(quiet)),
		opts...)
}

func TestRouteHostSafeCommandRunsLocally(t *testing.T) {
	t.Parallel()

	localCalls := 0
	r := newTestRouter(resolverMustNotRun(t), &fakeReadier{}, &execEngine{},
		WithLocalRunner(func(_ context.Context, req Request) (int, error) {
			localCalls++
			if req.Command != "git status" {
				t.Errorf("unexpected command %q", req.Command)
			}
			return 0, nil
		}))

	outcome, err := r.Route(context.Background(), Request{Command: "git status"})
	if err != nil {
		t.Fatalf("Route() failed: %v", err)
	}
	if localCalls != 1 {
		t.Errorf("expected 1 local run, got %d", localCalls)
	}
	if outcome.Dispatched {
		t.Error("host-safe command must not be dispatched")
	}
	if outcome.Decision.Rule != policy.RuleAllowlist {
		t.Errorf("expected allowlist rule, got %q", outcome.Decision.Rule)
	}
}

func TestRouteDenylistedCommandDispatches(t *testing.T) {
	t.Parallel()

	engine := &execEngine{result: &container.ExecResult{ExitCode: 5}}
	readier := &fakeReadier{result: liveness.ReadyResult{AttemptsMade: 1, FinalState: container.StateRunning}}
	r := newTestRouter(resolveTo(compiledProfile(t), nil), readier, engine,
		WithLocalRunner(func(context.Context, Request) (int, error) {
			t.Error("denylisted command must not run locally")
			return 0, nil
		}))

	outcome, err := r.Route(context.Background(), Request{Command: "npm install"})
	if err != nil {
		t.Fatalf("Route() failed: %v", err)
	}

	if !outcome.Dispatched {
		t.Error("expected the command to dispatch into the container")
	}
	if outcome.ExitCode != 5 {
		t.Errorf("expected the command's own exit code 5, got %d", outcome.ExitCode)
	}
	if outcome.AttemptsMade != 1 {
		t.Errorf("expected recovery attempts to surface, got %d", outcome.AttemptsMade)
	}
	if readier.calls != 1 {
		t.Errorf("expected liveness check before dispatch, got %d calls", readier.calls)
	}
	if readier.maxAttempts != liveness.DefaultMaxAttempts {
		t.Errorf("expected default attempt bound, got %d", readier.maxAttempts)
	}
	if engine.lastName != "myapp-dev" {
		t.Errorf("expected dispatch into myapp-dev, got %q", engine.lastName)
	}
	if len(engine.lastCommand) != 3 || engine.lastCommand[2] != "npm install" {
		t.Errorf("expected sh -lc wrapping, got %v", engine.lastCommand)
	}
}

func TestRouteRefusals(t *testing.T) {
	t.Parallel()

	parseErr := fmt.Errorf("corralfile.cue: field port: invalid value")
	invalidErr := &profile.InvalidConfigurationError{Field: "port", Value: 0, Reason: "out of range"}
	notFoundErr := fmt.Errorf("%w in /project", profilefile.ErrNotFound)

	tests := []struct {
		name     string
		profiles ProfileResolver
		readier  ContainerReadier
		engine   *execEngine
		wantId   issue.Id
	}{
		{
			name:     "no corralfile",
			profiles: resolveTo(profile.CompiledProfile{}, notFoundErr),
			readier:  &fakeReadier{},
			engine:   &execEngine{},
			wantId:   issue.CorralfileNotFoundId,
		},
		{
			name:     "invalid profile",
			profiles: resolveTo(profile.CompiledProfile{}, invalidErr),
			readier:  &fakeReadier{},
			engine:   &execEngine{},
			wantId:   issue.InvalidProfileId,
		},
		{
			name:     "corralfile parse error",
			profiles: resolveTo(profile.CompiledProfile{}, parseErr),
			readier:  &fakeReadier{},
			engine:   &execEngine{},
			wantId:   issue.CorralfileParseErrorId,
		},
		{
			name:     "recovery exhausted",
			profiles: nil,
			readier: &fakeReadier{err: &liveness.LivenessError{
				ContainerName:     "myapp-dev",
				LastObservedState: container.StateAbsent,
				AttemptsMade:      2,
			}},
			engine: &execEngine{},
			wantId: issue.RecoveryExhaustedId,
		},
		{
			name:     "dispatch failed",
			profiles: nil,
			readier:  &fakeReadier{},
			engine:   &execEngine{err: errors.New("engine unreachable")},
			wantId:   issue.DispatchFailedId,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			profiles := tt.profiles
			if profiles == nil {
				profiles = resolveTo(compiledProfile(t), nil)
			}
			r := newTestRouter(profiles, tt.readier, tt.engine,
				WithLocalRunner(func(context.Context, Request) (int, error) {
					t.Error("a refused command must never fall back to the host")
					return 0, nil
				}))

			_, err := r.Route(context.Background(), Request{Command: "npm install"})
			if err == nil {
				t.Fatal("expected a refusal")
			}

			var refusal *RefusalError
			if !errors.As(err, &refusal) {
				t.Fatalf("expected *RefusalError, got %T", err)
			}
			if refusal.IssueId != tt.wantId {
				t.Errorf("expected issue id %d, got %d", tt.wantId, refusal.IssueId)
			}
			if refusal.Decision.Rule != policy.RuleDenylist {
				t.Errorf("refusal must name the triggering rule, got %q", refusal.Decision.Rule)
			}
		})
	}
}

func TestRouteDispatchFailureUnwraps(t *testing.T) {
	t.Parallel()

	engine := &execEngine{err: errors.New("engine unreachable")}
	r := newTestRouter(resolveTo(compiledProfile(t), nil), &fakeReadier{}, engine)

	_, err := r.Route(context.Background(), Request{Command: "npm install"})
	if !errors.Is(err, dispatch.ErrDispatchFailed) {
		t.Errorf("expected the dispatch cause to stay reachable, got %v", err)
	}
}

func TestRouteEmptyCommand(t *testing.T) {
	t.Parallel()

	r := newTestRouter(resolverMustNotRun(t), &fakeReadier{}, &execEngine{})

	_, err := r.Route(context.Background(), Request{Command: "   "})
	if !errors.Is(err, policy.ErrEmptyCommand) {
		t.Errorf("expected ErrEmptyCommand, got %v", err)
	}
}

func TestRouteUnknownProgramRunsLocallyWithWarning(t *testing.T) {
	t.Parallel()

	r := newTestRouter(resolverMustNotRun(t), &fakeReadier{}, &execEngine{},
		WithLocalRunner(func(context.Context, Request) (int, error) { return 0, nil }))

	outcome, err := r.Route(context.Background(), Request{Command: "terraform plan"})
	if err != nil {
		t.Fatalf("Route() failed: %v", err)
	}
	if !outcome.Decision.Warning {
		t.Error("expected a warning for an unrecognized program")
	}
	if outcome.Decision.Rule != policy.RuleDefault {
		t.Errorf("expected default rule, got %q", outcome.Decision.Rule)
	}
}

func TestRouteCustomMaxAttempts(t *testing.T) {
	t.Parallel()

	readier := &fakeReadier{}
	r := newTestRouter(resolveTo(compiledProfile(t), nil), readier, &execEngine{},
		WithMaxAttempts(4))

	if _, err := r.Route(context.Background(), Request{Command: "yarn build"}); err != nil {
		t.Fatalf("Route() failed: %v", err)
	}
	if readier.maxAttempts != 4 {
		t.Errorf("expected configured attempt bound 4, got %d", readier.maxAttempts)
	}
}

func TestCheckClassifiesWithoutRunning(t *testing.T) {
	t.Parallel()

	r := newTestRouter(resolverMustNotRun(t), &fakeReadier{}, &execEngine{},
		WithLocalRunner(func(context.Context, Request) (int, error) {
			t.Error("Check must not execute anything")
			return 0, nil
		}))

	decision, err := r.Check("pnpm install")
	if err != nil {
		t.Fatalf("Check() failed: %v", err)
	}
	if decision.Action != policy.ActionRunInContainer {
		t.Errorf("expected container routing, got %q", decision.Action)
	}
}
