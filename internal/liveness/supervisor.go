// SPDX-License-Identifier: MPL-2.0

package liveness

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"corral-cli/internal/container"
	"corral-cli/internal/profile"
)

// DefaultMaxAttempts is the recovery attempt bound used when the caller has
// no reason to choose another one.
const DefaultMaxAttempts = 2

// ErrCannotStart is returned (wrapped) when recovery exhausts its attempt
// bound without reaching the Running state.
var ErrCannotStart = errors.New("container cannot be started")

var errNotRunning = errors.New("container not yet running")

type (
	// Controller is the narrow engine surface the supervisor needs. The
	// production implementation wraps a container.Engine; tests substitute a
	// fake to drive the state machine without a real engine.
	Controller interface {
		Status(ctx context.Context, name container.ContainerName) (container.State, error)
		Start(ctx context.Context, name container.ContainerName) error
		Rebuild(ctx context.Context, compiled profile.CompiledProfile) error
	}

	// ReadyResult reports how a container reached the Running state.
	ReadyResult struct {
		// AlreadyRunning is set when the container was observed Running
		// before any recovery action was taken.
		AlreadyRunning bool
		// AttemptsMade counts the recovery actions consumed; zero when the
		// container was already running.
		AttemptsMade int
		FinalState   container.State
	}

	// LivenessError reports a container that could not be recovered within
	// the attempt bound.
	LivenessError struct {
		ContainerName     container.ContainerName
		LastObservedState container.State
		AttemptsMade      int
	}

	// Supervisor drives containers to the Running state with bounded,
	// observable recovery.
	Supervisor struct {
		ctrl   Controller
		logger *log.Logger

		// settleAttempts and settleBackoff bound the wait for a freshly
		// started container to transition created -> running. They are part
		// of a single recovery attempt, not additional attempts.
		settleAttempts int
		settleBackoff  time.Duration

		mu       sync.Mutex
		inflight map[container.ContainerName]*sync.Mutex
	}

	// SupervisorOption configures a Supervisor.
	SupervisorOption func(*Supervisor)
)

// Error implements the error interface.
func (e *LivenessError) Error() string {
	return fmt.Sprintf("container %q cannot be started: last observed state %q after %d recovery attempt(s)",
		e.ContainerName, e.LastObservedState, e.AttemptsMade)
}

// Unwrap returns ErrCannotStart for errors.Is() compatibility.
func (e *LivenessError) Unwrap() error { return ErrCannotStart }

// WithLogger sets the logger recovery attempts are reported to.
func WithLogger(logger *log.Logger) SupervisorOption {
	return func(s *Supervisor) { s.logger = logger }
}

// WithSettle overrides how long the supervisor waits for a started container
// to settle into the Running state within one recovery attempt.
func WithSettle(attempts int, backoff time.Duration) SupervisorOption {
	return func(s *Supervisor) {
		s.settleAttempts = attempts
		s.settleBackoff = backoff
	}
}

// NewSupervisor creates a Supervisor around the given controller.
func NewSupervisor(ctrl Controller, opts ...SupervisorOption) *Supervisor {
	s := &Supervisor{
		ctrl:           ctrl,
		logger:         log.Default(),
		settleAttempts: 5,
		settleBackoff:  200 * time.Millisecond,
		inflight:       make(map[container.ContainerName]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// recoveryAction is the next recovery step chosen from an observed state.
type recoveryAction string

const (
	actionStart   recoveryAction = "start"
	actionRebuild recoveryAction = "rebuild"
)

// nextAction picks the recovery step for an observed non-running state.
// An Exited container gets exactly one start attempt before escalating; an
// Absent (or Unknown) container goes straight to rebuild since there is
// nothing to start.
func nextAction(state container.State, startAttempted bool) recoveryAction {
	if state == container.StateExited && !startAttempted {
		return actionStart
	}
	return actionRebuild
}

// EnsureReady brings the named container to the Running state, performing at
// most maxAttempts recovery actions. A container observed Running returns
// immediately with zero side effects. On exhaustion it returns a
// *LivenessError; the container is never left half-recovered silently.
//
// Recovery for a given container name is single-flight: a concurrent call
// for the same name blocks until the first finishes, then re-observes.
func (s *Supervisor) EnsureReady(
	ctx context.Context,
	compiled profile.CompiledProfile,
	maxAttempts int,
) (ReadyResult, error) {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}

	name := compiled.ContainerName
	lock := s.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	state, err := s.ctrl.Status(ctx, name)
	if err != nil {
		return ReadyResult{}, fmt.Errorf("failed to query container %q: %w", name, err)
	}
	if state == container.StateRunning {
		return ReadyResult{AlreadyRunning: true, FinalState: state}, nil
	}

	attempts := 0
	startAttempted := false

	for attempts < maxAttempts {
		action := nextAction(state, startAttempted)
		attempts++
		s.logger.Info("container recovery",
			"container", name, "state", state, "action", action,
			"attempt", attempts, "max_attempts", maxAttempts)

		var actionErr error
		switch action {
		case actionStart:
			startAttempted = true
			actionErr = s.ctrl.Start(ctx, name)
		case actionRebuild:
			actionErr = s.ctrl.Rebuild(ctx, compiled)
		}
		if actionErr != nil {
			s.logger.Warn("recovery action failed",
				"container", name, "action", action, "attempt", attempts,
				"error", actionErr)
			if ctx.Err() != nil {
				return ReadyResult{}, fmt.Errorf("recovery aborted: %w", ctx.Err())
			}
			// A failed action falls through to re-observation; the next
			// attempt escalates per nextAction.
		}

		state = s.settle(ctx, name)
		if state == container.StateRunning {
			s.logger.Info("container recovered",
				"container", name, "attempts", attempts)
			return ReadyResult{AttemptsMade: attempts, FinalState: state}, nil
		}
	}

	return ReadyResult{}, &LivenessError{
		ContainerName:     name,
		LastObservedState: state,
		AttemptsMade:      attempts,
	}
}

// settle re-observes the container, waiting briefly for a freshly started
// container to transition from created to running. The wait is bounded and
// counts against the current recovery attempt only.
func (s *Supervisor) settle(ctx context.Context, name container.ContainerName) container.State {
	state := container.StateUnknown
	_ = container.RetryWithBackoff(ctx, s.settleAttempts, s.settleBackoff,
		func(int) (bool, error) {
			observed, err := s.ctrl.Status(ctx, name)
			if err != nil {
				s.logger.Warn("status query failed during settle",
					"container", name, "error", err)
				return false, err
			}
			state = observed
			if observed == container.StateRunning {
				return false, nil
			}
			return true, errNotRunning
		})
	return state
}

// lockFor returns the single-flight mutex for a container name.
func (s *Supervisor) lockFor(name container.ContainerName) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.inflight[name]
	if !ok {
		lock = &sync.Mutex{}
		s.inflight[name] = lock
	}
	return lock
}
