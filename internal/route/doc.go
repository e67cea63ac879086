// SPDX-License-Identifier: MPL-2.0

// Package route connects classification to execution: a command line goes
// through the policy classifier, and depending on the verdict either runs on
// the host or is dispatched into the project container after the liveness
// supervisor brings it up.
//
// The router never overrides a classification. When a container-required
// command cannot be dispatched (no corralfile, no engine, recovery
// exhausted) the command is refused with a diagnostic naming the rule that
// required the container; it does not silently fall back to host execution.
package route
