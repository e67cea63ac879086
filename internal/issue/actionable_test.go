// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *ActionableError
		want string
	}{
		{
			name: "operation only",
			err:  &ActionableError{Operation: "classify command"},
			want: "failed to classify command",
		},
		{
			name: "operation and resource",
			err:  &ActionableError{Operation: "load corralfile", Resource: "./corralfile.cue"},
			want: "failed to load corralfile: ./corralfile.cue",
		},
		{
			name: "operation, resource and cause",
			err: &ActionableError{
				Operation: "start container",
				Resource:  "myapp-dev",
				Cause:     errors.New("exit status 125"),
			},
			want: "failed to start container: myapp-dev: exit status 125",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("root cause")
	err := WrapWithOperation(cause, "ensure container ready")

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	err := NewErrorContext().
		WithOperation("compile project profile").
		WithResource("corralfile.cue").
		WithSuggestion("Check the port is between 1 and 65535").
		WithSuggestion("Run 'corral status' to see the resolved profile").
		Wrap(errors.New("port out of range")).
		Build()

	got := err.Format(false)
	if !strings.Contains(got, "failed to compile project profile") {
		t.Errorf("Format() missing operation: %q", got)
	}
	if !strings.Contains(got, "Check the port is between 1 and 65535") {
		t.Errorf("Format() missing suggestion: %q", got)
	}
	if strings.Contains(got, "Error chain") {
		t.Errorf("non-verbose Format() should not include error chain: %q", got)
	}

	verbose := err.Format(true)
	if !strings.Contains(verbose, "Error chain:") {
		t.Errorf("verbose Format() should include error chain: %q", verbose)
	}
}

func TestErrorContext_BuildRequiresOperation(t *testing.T) {
	t.Parallel()

	if got := NewErrorContext().WithResource("x").Build(); got != nil {
		t.Errorf("Build() without operation = %v, want nil", got)
	}
	if got := NewErrorContext().WithResource("x").BuildError(); got != nil {
		t.Errorf("BuildError() without operation = %v, want nil", got)
	}
}

func TestWrapWithOperation_NilError(t *testing.T) {
	t.Parallel()

	if got := WrapWithOperation(nil, "anything"); got != nil {
		t.Errorf("WrapWithOperation(nil) = %v, want nil", got)
	}
	if got := WrapWithContext(nil, "anything", "res"); got != nil {
		t.Errorf("WrapWithContext(nil) = %v, want nil", got)
	}
}

func TestIssueCatalog(t *testing.T) {
	t.Parallel()

	if got := Get(DenylistedCommandId); got == nil || got.Id() != DenylistedCommandId {
		t.Fatalf("Get(DenylistedCommandId) = %v", got)
	}

	values := Values()
	if len(values) != len(issues) {
		t.Fatalf("Values() returned %d issues, want %d", len(values), len(issues))
	}
	for i := 1; i < len(values); i++ {
		if values[i-1].Id() >= values[i].Id() {
			t.Fatal("Values() not sorted by id")
		}
	}
}
