// SPDX-License-Identifier: MPL-2.0

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"corral-cli/internal/container"
)

// ErrDispatchFailed indicates the engine could not run the command at all.
// A command that ran and exited non-zero is not a dispatch failure.
var ErrDispatchFailed = errors.New("dispatch failed")

// DefaultWorkDir is the working directory inside the container when the
// request does not name one.
const DefaultWorkDir = "/workspace"

type (
	// Request describes one command to run inside a container.
	Request struct {
		// Command is the raw command line, executed via sh -lc.
		Command string
		// WorkDir is the working directory inside the container; defaults
		// to DefaultWorkDir when empty.
		WorkDir string
		// Env is extra environment passed to the command.
		Env map[string]string
		// Interactive attaches a PTY and keeps stdin open. It is an
		// explicit caller decision.
		Interactive bool

		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// Result reports a completed dispatch. The exit code is the command's
	// own; the dispatcher never rewrites it.
	Result struct {
		ExitCode int
	}

	// DispatchError reports an infrastructure failure while relaying a
	// command into a container.
	DispatchError struct {
		ContainerName container.ContainerName
		Command       string
		Cause         error
	}

	// Dispatcher relays commands into running containers through an engine.
	Dispatcher struct {
		engine container.Engine
		logger *log.Logger
	}

	// DispatcherOption configures a Dispatcher.
	DispatcherOption func(*Dispatcher)
)

// Error implements the error interface.
func (e *DispatchError) Error() string {
	return fmt.Sprintf("failed to dispatch %q into container %q: %v",
		e.Command, e.ContainerName, e.Cause)
}

// Unwrap returns ErrDispatchFailed so errors.Is() works; the underlying
// cause stays reachable through the message.
func (e *DispatchError) Unwrap() error { return ErrDispatchFailed }

// WithDispatchLogger sets the logger dispatches are reported to.
func WithDispatchLogger(logger *log.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = logger }
}

// NewDispatcher creates a Dispatcher around the given engine.
func NewDispatcher(engine container.Engine, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{engine: engine, logger: log.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// wrapArgv wraps a raw command line for in-container execution.
func wrapArgv(command string) []string {
	return []string{"sh", "-lc", command}
}

// Dispatch runs the request's command inside the named container, which must
// already be running. Stream relaying and exit-code handling differ by mode:
// non-interactive dispatches pipe the engine's exec streams directly, while
// interactive ones attach a PTY where the platform supports it.
func (d *Dispatcher) Dispatch(ctx context.Context, name container.ContainerName, req Request) (Result, error) {
	if req.Command == "" {
		return Result{}, &DispatchError{
			ContainerName: name,
			Command:       req.Command,
			Cause:         errors.New("empty command"),
		}
	}
	if req.WorkDir == "" {
		req.WorkDir = DefaultWorkDir
	}

	d.logger.Debug("dispatching command",
		"container", name, "command", req.Command, "interactive", req.Interactive)

	if req.Interactive {
		return d.dispatchInteractive(ctx, name, req)
	}

	result, err := d.engine.Exec(ctx, name, wrapArgv(req.Command), container.ExecOptions{
		WorkDir: req.WorkDir,
		Env:     req.Env,
		Stdin:   req.Stdin,
		Stdout:  req.Stdout,
		Stderr:  req.Stderr,
	})
	if err != nil {
		return Result{}, &DispatchError{ContainerName: name, Command: req.Command, Cause: err}
	}
	if result.Error != nil {
		return Result{}, &DispatchError{ContainerName: name, Command: req.Command, Cause: result.Error}
	}
	return Result{ExitCode: result.ExitCode}, nil
}

// dispatchPlainInteractive is the PTY-less interactive fallback used when the
// engine exposes no raw command surface or the platform has no PTY support.
// The engine still gets -i and -t so the in-container process sees a TTY.
func (d *Dispatcher) dispatchPlainInteractive(ctx context.Context, name container.ContainerName, req Request) (Result, error) {
	result, err := d.engine.Exec(ctx, name, wrapArgv(req.Command), container.ExecOptions{
		WorkDir:     req.WorkDir,
		Env:         req.Env,
		Interactive: true,
		TTY:         true,
		Stdin:       req.Stdin,
		Stdout:      req.Stdout,
		Stderr:      req.Stderr,
	})
	if err != nil {
		return Result{}, &DispatchError{ContainerName: name, Command: req.Command, Cause: err}
	}
	if result.Error != nil {
		return Result{}, &DispatchError{ContainerName: name, Command: req.Command, Cause: result.Error}
	}
	return Result{ExitCode: result.ExitCode}, nil
}
