// SPDX-License-Identifier: MPL-2.0

package policy

import (
	"errors"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"mvdan.cc/sh/v3/syntax"
)

// ErrEmptyCommand is returned when there is no command to classify.
var ErrEmptyCommand = errors.New("empty command")

const (
	// ActionRunLocally permits host execution.
	ActionRunLocally Action = "run-locally"
	// ActionRunInContainer requires dispatch through the project container.
	ActionRunInContainer Action = "run-in-container"
	// ActionRefuse rejects the command outright. The classifier never
	// produces it; the router uses it when dispatch cannot proceed.
	ActionRefuse Action = "refuse"
)

const (
	// RuleDenylist means a denylisted program name matched.
	RuleDenylist Rule = "denylist"
	// RuleAllowlist means every segment matched the host-safe allowlist.
	RuleAllowlist Rule = "allowlist"
	// RuleDispatchWrapper means the line is already a container dispatch.
	RuleDispatchWrapper Rule = "dispatch-wrapper"
	// RuleDefault means no table matched and the fail-open default applied.
	RuleDefault Rule = "default"
)

type (
	// Action is the resolved routing for a command.
	Action string

	// Rule identifies which policy rule produced a decision, so diagnostics
	// can name the rule that triggered.
	Rule string

	// Decision is the classifier's verdict for one command line.
	Decision struct {
		Action Action
		Rule   Rule
		// MatchedProgram is the program name that determined the decision.
		MatchedProgram string
		// Warning is set when the fail-open default applied to an
		// unrecognized program.
		Warning bool
	}

	// Classifier holds the immutable policy tables. Construct once with
	// NewClassifier and reuse; Classify is safe for concurrent use.
	Classifier struct {
		deny  map[string]struct{}
		allow map[string]struct{}
	}

	// Options extends the built-in tables with per-user entries from the
	// global config.
	Options struct {
		ExtraDeny  []string
		ExtraAllow []string
	}
)

// NewClassifier builds a classifier from the built-in tables plus opts.
func NewClassifier(opts Options) *Classifier {
	c := &Classifier{
		deny:  make(map[string]struct{}, len(defaultDenylist)+len(opts.ExtraDeny)),
		allow: make(map[string]struct{}, len(defaultAllowlist)+len(opts.ExtraAllow)),
	}
	for _, p := range defaultDenylist {
		c.deny[p] = struct{}{}
	}
	for _, p := range opts.ExtraDeny {
		c.deny[p] = struct{}{}
	}
	for _, p := range defaultAllowlist {
		c.allow[p] = struct{}{}
	}
	for _, p := range opts.ExtraAllow {
		c.allow[p] = struct{}{}
	}
	return c
}

// Denylist returns the effective container-required program names, sorted.
func (c *Classifier) Denylist() []string {
	return sortedKeys(c.deny)
}

// Allowlist returns the effective host-safe program names, sorted.
func (c *Classifier) Allowlist() []string {
	return sortedKeys(c.allow)
}

// WrapperPrograms returns the dispatch wrapper program names.
func WrapperPrograms() []string {
	return slices.Clone(wrapperPrograms)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := maps.Keys(set)
	slices.Sort(keys)
	return keys
}

// call is one program invocation extracted from the command line.
type call struct {
	program  string
	firstArg string
}

// Classify inspects rawCommand and decides how it must be routed.
//
// The line is parsed as shell syntax; every program invocation in it is
// classified and the most restrictive verdict wins. Classify is pure and
// idempotent: the same input always yields the same Decision.
func (c *Classifier) Classify(rawCommand string) (Decision, error) {
	if strings.TrimSpace(rawCommand) == "" {
		return Decision{}, ErrEmptyCommand
	}

	calls, err := extractCalls(rawCommand)
	if err != nil || len(calls) == 0 {
		// Not parseable as shell. Fall back to classifying the first
		// whitespace token, which covers plain "prog args" lines.
		fields := strings.Fields(rawCommand)
		calls = []call{{program: fields[0]}}
		if len(fields) > 1 {
			calls[0].firstArg = fields[1]
		}
	}

	// Most restrictive segment wins: a single denylisted call makes the
	// whole line container-required.
	var (
		sawUnknown   bool
		firstUnknown string
		firstAllowed string
		sawWrapper   bool
	)
	for _, cl := range calls {
		if _, ok := c.deny[cl.program]; ok {
			return Decision{
				Action:         ActionRunInContainer,
				Rule:           RuleDenylist,
				MatchedProgram: cl.program,
			}, nil
		}
		if isDispatchWrapper(cl) {
			sawWrapper = true
			continue
		}
		if _, ok := c.allow[cl.program]; ok {
			if firstAllowed == "" {
				firstAllowed = cl.program
			}
			continue
		}
		if !sawUnknown {
			sawUnknown = true
			firstUnknown = cl.program
		}
	}

	if sawUnknown {
		return Decision{
			Action:         ActionRunLocally,
			Rule:           RuleDefault,
			MatchedProgram: firstUnknown,
			Warning:        true,
		}, nil
	}

	if sawWrapper && firstAllowed == "" {
		return Decision{
			Action: ActionRunLocally,
			Rule:   RuleDispatchWrapper,
		}, nil
	}

	return Decision{
		Action:         ActionRunLocally,
		Rule:           RuleAllowlist,
		MatchedProgram: firstAllowed,
	}, nil
}

// isDispatchWrapper reports whether a call is the container dispatch
// mechanism itself: "docker exec ...", "podman exec ...", or the corral
// binary. Wrapped lines classify host-safe and are never wrapped again.
func isDispatchWrapper(cl call) bool {
	for _, w := range wrapperPrograms {
		if cl.program != w {
			continue
		}
		if cl.program == "corral" {
			return true
		}
		return cl.firstArg == "exec"
	}
	return false
}

// extractCalls parses rawCommand as shell syntax and returns every program
// invocation found, including those inside pipes, lists, subshells, and
// command substitutions.
func extractCalls(rawCommand string) ([]call, error) {
	prog, err := syntax.NewParser().Parse(strings.NewReader(rawCommand), "command")
	if err != nil {
		return nil, err
	}

	var calls []call
	syntax.Walk(prog, func(node syntax.Node) bool {
		ce, ok := node.(*syntax.CallExpr)
		if !ok || len(ce.Args) == 0 {
			return true
		}
		cl := call{program: ce.Args[0].Lit()}
		if len(ce.Args) > 1 {
			cl.firstArg = ce.Args[1].Lit()
		}
		if cl.program != "" {
			calls = append(calls, cl)
		}
		return true
	})
	return calls, nil
}
