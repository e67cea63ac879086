// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"fmt"
	"os/exec"
	"testing"
)

// fakeExec returns an ExecCommandFunc that records the argument vectors it
// receives and runs a harmless local command whose output and exit status
// emulate the engine CLI.
func fakeExec(t *testing.T, calls *[][]string, script string) ExecCommandFunc {
	t.Helper()
	return func(ctx context.Context, name string, arg ...string) *exec.Cmd {
		*calls = append(*calls, arg)
		return exec.CommandContext(ctx, "sh", "-c", script)
	}
}

func TestParseState(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want State
	}{
		{"running", StateRunning},
		{"running\n", StateRunning},
		{"exited", StateExited},
		{"created", StateExited},
		{"paused", StateExited},
		{"restarting", StateExited},
		{"dead", StateExited},
		{"", StateAbsent},
		{"bogus-status", StateExited},
	}

	for _, tt := range tests {
		if got := parseState(tt.raw); got != tt.want {
			t.Errorf("parseState(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestDockerEngine_StatusRunning(t *testing.T) {
	t.Parallel()

	var calls [][]string
	e := NewDockerEngine(WithExecCommand(fakeExec(t, &calls, "printf running")))

	got, err := e.Status(context.Background(), "myapp-dev")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != StateRunning {
		t.Errorf("Status() = %v, want %v", got, StateRunning)
	}
	if len(calls) != 1 {
		t.Fatalf("expected 1 CLI call, got %d", len(calls))
	}
	wantArgs := fmt.Sprintf("%v", []string{"inspect", "-f", "{{.State.Status}}", "myapp-dev"})
	if fmt.Sprintf("%v", calls[0]) != wantArgs {
		t.Errorf("CLI args = %v, want %v", calls[0], wantArgs)
	}
}

func TestDockerEngine_StatusAbsent(t *testing.T) {
	t.Parallel()

	var calls [][]string
	script := "printf 'Error: No such object: myapp-dev'; exit 1"
	e := NewDockerEngine(WithExecCommand(fakeExec(t, &calls, script)))

	got, err := e.Status(context.Background(), "myapp-dev")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != StateAbsent {
		t.Errorf("Status() = %v, want %v", got, StateAbsent)
	}
}

func TestPodmanEngine_StatusAbsent(t *testing.T) {
	t.Parallel()

	var calls [][]string
	script := "printf 'Error: no such container myapp-dev'; exit 125"
	e := NewPodmanEngine(WithExecCommand(fakeExec(t, &calls, script)))

	got, err := e.Status(context.Background(), "myapp-dev")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != StateAbsent {
		t.Errorf("Status() = %v, want %v", got, StateAbsent)
	}
}

func TestDockerEngine_StatusInfrastructureError(t *testing.T) {
	t.Parallel()

	var calls [][]string
	script := "printf 'Cannot connect to the Docker daemon'; exit 1"
	e := NewDockerEngine(WithExecCommand(fakeExec(t, &calls, script)))

	got, err := e.Status(context.Background(), "myapp-dev")
	if err == nil {
		t.Fatal("expected error")
	}
	if got != StateUnknown {
		t.Errorf("Status() on error = %v, want %v", got, StateUnknown)
	}
}

func TestDockerEngine_ExecNonZeroExit(t *testing.T) {
	t.Parallel()

	var calls [][]string
	e := NewDockerEngine(WithExecCommand(fakeExec(t, &calls, "exit 3")))

	result, err := e.Exec(context.Background(), "myapp-dev", []string{"sh", "-lc", "npm test"}, ExecOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", result.ExitCode)
	}
	if result.Error != nil {
		t.Errorf("non-zero exit should not set Error, got %v", result.Error)
	}
}

func TestDockerEngine_StartBuildsStartArgs(t *testing.T) {
	t.Parallel()

	var calls [][]string
	e := NewDockerEngine(WithExecCommand(fakeExec(t, &calls, "true")))

	if err := e.Start(context.Background(), "myapp-dev"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := fmt.Sprintf("%v", []string{"start", "myapp-dev"})
	if fmt.Sprintf("%v", calls[0]) != want {
		t.Errorf("CLI args = %v, want %v", calls[0], want)
	}
}

func TestNewEngine_UnknownType(t *testing.T) {
	t.Parallel()

	if _, err := NewEngine("containerd"); err == nil {
		t.Fatal("expected error for unknown engine type")
	}
}
