// SPDX-License-Identifier: MPL-2.0

// Package dispatch executes a classified command inside a project's running
// container and relays its streams and exit code back to the caller.
//
// The wrapped argv is always ["sh", "-lc", command] so shell constructs in
// the user's command line keep their meaning inside the container. Whether a
// dispatch is interactive is an explicit caller decision, never inferred by
// probing the terminal; interactive dispatches attach a local PTY to the
// engine's exec process so line editing and signals behave as if the command
// ran locally.
package dispatch
