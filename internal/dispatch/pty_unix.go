// SPDX-License-Identifier: MPL-2.0

//go:build unix

package dispatch

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/creack/pty"
	"golang.org/x/term"

	"corral-cli/internal/container"
)

// dispatchInteractive attaches a local PTY to the engine's exec process so
// the in-container command gets real terminal semantics: line editing,
// ctrl-c delivery, and window resizes. Engines that do not expose their raw
// command surface fall back to a plain -i/-t exec.
func (d *Dispatcher) dispatchInteractive(ctx context.Context, name container.ContainerName, req Request) (Result, error) {
	provider, ok := d.engine.(container.BaseCLIProvider)
	if !ok {
		return d.dispatchPlainInteractive(ctx, name, req)
	}

	base := provider.BaseCLI()
	args := base.ExecArgs(name, wrapArgv(req.Command), container.ExecOptions{
		Interactive: true,
		TTY:         true,
		WorkDir:     req.WorkDir,
		Env:         req.Env,
	})
	cmd := base.CreateCommand(ctx, args...)

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return Result{}, &DispatchError{ContainerName: name, Command: req.Command, Cause: err}
	}
	defer ptmx.Close()

	stdin := req.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	stdout := req.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	// Track the caller's terminal size, including later resizes.
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		winch := make(chan os.Signal, 1)
		signal.Notify(winch, syscall.SIGWINCH)
		go func() {
			for range winch {
				_ = pty.InheritSize(f, ptmx)
			}
		}()
		winch <- syscall.SIGWINCH
		defer func() {
			signal.Stop(winch)
			close(winch)
		}()

		// Raw mode so keystrokes reach the container unmangled.
		oldState, rawErr := term.MakeRaw(int(f.Fd()))
		if rawErr == nil {
			defer term.Restore(int(f.Fd()), oldState)
		}
	}

	go func() {
		_, _ = io.Copy(ptmx, stdin)
	}()
	// The copy returns with an EIO once the PTY's slave side closes; that is
	// the normal end-of-session signal, not a relay failure.
	_, _ = io.Copy(stdout, ptmx)

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{ExitCode: exitErr.ExitCode()}, nil
		}
		return Result{}, &DispatchError{ContainerName: name, Command: req.Command, Cause: err}
	}
	return Result{ExitCode: 0}, nil
}
