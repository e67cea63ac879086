// SPDX-License-Identifier: MPL-2.0

package policy

import (
	"errors"
	"testing"

	"golang.org/x/exp/slices"
)

func TestClassify_Denylist(t *testing.T) {
	t.Parallel()

	c := NewClassifier(Options{})

	tests := []struct {
		name    string
		command string
		program string
	}{
		{"npm install", "npm install left-pad", "npm"},
		{"npm alone", "npm", "npm"},
		{"npx", "npx create-react-app my-app", "npx"},
		{"yarn add", "yarn add react --dev", "yarn"},
		{"pnpm", "pnpm install", "pnpm"},
		{"bun", "bun run dev", "bun"},
		{"node script", "node server.js --port 3000", "node"},
		{"corepack", "corepack enable", "corepack"},
		{"ts-node", "ts-node src/index.ts", "ts-node"},
		{"env assignment prefix", "NODE_ENV=test npm test", "npm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d, err := c.Classify(tt.command)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.Action != ActionRunInContainer {
				t.Errorf("Action = %v, want %v", d.Action, ActionRunInContainer)
			}
			if d.Rule != RuleDenylist {
				t.Errorf("Rule = %v, want %v", d.Rule, RuleDenylist)
			}
			if d.MatchedProgram != tt.program {
				t.Errorf("MatchedProgram = %q, want %q", d.MatchedProgram, tt.program)
			}
		})
	}
}

func TestClassify_Allowlist(t *testing.T) {
	t.Parallel()

	c := NewClassifier(Options{})

	for _, command := range []string{
		"git status",
		"git commit -m 'update deps'",
		"ls -la",
		"cat package.json",
		"mkdir -p src/components",
		"code .",
	} {
		d, err := c.Classify(command)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", command, err)
		}
		if d.Action != ActionRunLocally {
			t.Errorf("Classify(%q).Action = %v, want %v", command, d.Action, ActionRunLocally)
		}
		if d.Rule != RuleAllowlist {
			t.Errorf("Classify(%q).Rule = %v, want %v", command, d.Rule, RuleAllowlist)
		}
		if d.Warning {
			t.Errorf("Classify(%q) should not warn", command)
		}
	}
}

func TestClassify_UnknownDefaultsToLocalWithWarning(t *testing.T) {
	t.Parallel()

	c := NewClassifier(Options{})

	for _, command := range []string{
		"terraform plan",
		"cargo build --release",
		"some-random-tool --flag",
	} {
		d, err := c.Classify(command)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", command, err)
		}
		if d.Action != ActionRunLocally {
			t.Errorf("Classify(%q).Action = %v, want %v", command, d.Action, ActionRunLocally)
		}
		if d.Rule != RuleDefault {
			t.Errorf("Classify(%q).Rule = %v, want %v", command, d.Rule, RuleDefault)
		}
		if !d.Warning {
			t.Errorf("Classify(%q) should set the warning flag", command)
		}
	}
}

func TestClassify_ExactMatchNotSubstring(t *testing.T) {
	t.Parallel()

	c := NewClassifier(Options{})

	// "npminstall" must not match the "npm" denylist entry.
	d, err := c.Classify("npminstall left-pad")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Action != ActionRunLocally || d.Rule != RuleDefault || !d.Warning {
		t.Errorf("npminstall should be unknown, got %+v", d)
	}
}

func TestClassify_MostRestrictiveSegmentWins(t *testing.T) {
	t.Parallel()

	c := NewClassifier(Options{})

	tests := []struct {
		name    string
		command string
		want    Action
	}{
		{"and chain with denylisted head", "npm install && git commit -m x", ActionRunInContainer},
		{"and chain with denylisted tail", "git pull && npm install", ActionRunInContainer},
		{"pipe into node", "cat data.json | node transform.js", ActionRunInContainer},
		{"semicolon chain", "ls; yarn test; echo done", ActionRunInContainer},
		{"or chain", "which node || node -v", ActionRunInContainer},
		{"command substitution", "echo $(node -e 'console.log(1)')", ActionRunInContainer},
		{"all segments safe", "git add -A && git commit -m x", ActionRunLocally},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d, err := c.Classify(tt.command)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.Action != tt.want {
				t.Errorf("Classify(%q).Action = %v, want %v", tt.command, d.Action, tt.want)
			}
		})
	}
}

func TestClassify_DispatchWrapperNotRewrapped(t *testing.T) {
	t.Parallel()

	c := NewClassifier(Options{})

	for _, command := range []string{
		"docker exec myapp-dev npm install",
		"podman exec myapp-dev sh -lc 'npm test'",
		"corral run -- npm install",
	} {
		d, err := c.Classify(command)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", command, err)
		}
		if d.Action != ActionRunLocally {
			t.Errorf("Classify(%q).Action = %v, want %v", command, d.Action, ActionRunLocally)
		}
		if d.Warning {
			t.Errorf("Classify(%q) should not warn", command)
		}
	}
}

func TestClassify_EmptyCommand(t *testing.T) {
	t.Parallel()

	c := NewClassifier(Options{})

	for _, command := range []string{"", "   ", "\t\n"} {
		if _, err := c.Classify(command); !errors.Is(err, ErrEmptyCommand) {
			t.Errorf("Classify(%q) error = %v, want ErrEmptyCommand", command, err)
		}
	}
}

func TestClassify_Idempotent(t *testing.T) {
	t.Parallel()

	c := NewClassifier(Options{})

	for _, command := range []string{
		"npm install left-pad",
		"git status",
		"mystery-tool run",
	} {
		first, err := c.Classify(command)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := c.Classify(command)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if first != second {
			t.Errorf("Classify(%q) not idempotent: %+v vs %+v", command, first, second)
		}
	}
}

func TestClassify_ExtraTables(t *testing.T) {
	t.Parallel()

	c := NewClassifier(Options{
		ExtraDeny:  []string{"deno"},
		ExtraAllow: []string{"terraform"},
	})

	d, err := c.Classify("deno run main.ts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Action != ActionRunInContainer {
		t.Errorf("extra deny entry not honored: %+v", d)
	}

	d, err = c.Classify("terraform plan")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Action != ActionRunLocally || d.Warning {
		t.Errorf("extra allow entry not honored: %+v", d)
	}
}

func TestClassify_ArgumentsDoNotAffectDenylist(t *testing.T) {
	t.Parallel()

	c := NewClassifier(Options{})

	// Denylisted program stays denylisted regardless of appended arguments.
	for _, command := range []string{
		"npm",
		"npm install",
		"npm install --save-dev typescript @types/node",
		"npm run build -- --watch",
	} {
		d, err := c.Classify(command)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d.Action != ActionRunInContainer {
			t.Errorf("Classify(%q).Action = %v, want %v", command, d.Action, ActionRunInContainer)
		}
	}
}

func TestTableAccessorsSorted(t *testing.T) {
	t.Parallel()

	c := NewClassifier(Options{ExtraDeny: []string{"deno"}})

	deny := c.Denylist()
	if !slices.IsSorted(deny) {
		t.Errorf("Denylist() not sorted: %v", deny)
	}
	if !slices.Contains(deny, "deno") || !slices.Contains(deny, "npm") {
		t.Errorf("Denylist() missing expected entries: %v", deny)
	}

	allow := c.Allowlist()
	if !slices.IsSorted(allow) {
		t.Errorf("Allowlist() not sorted: %v", allow)
	}
	if !slices.Contains(allow, "git") {
		t.Errorf("Allowlist() missing git: %v", allow)
	}

	if !slices.Contains(WrapperPrograms(), "corral") {
		t.Errorf("WrapperPrograms() missing corral: %v", WrapperPrograms())
	}
}
