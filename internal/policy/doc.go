// SPDX-License-Identifier: MPL-2.0

// Package policy classifies shell invocations as host-safe or
// container-required.
//
// Classification is a pure function over the command text and two static
// tables: a denylist of program names that must never run host-initiated
// (package managers and the Node runtime itself) and an allowlist of known
// host-safe operations (version control, file and editor operations).
// Matching is exact on the program name, never a substring match, so "npm"
// matches but "npminstall" does not.
//
// Commands are parsed with mvdan.cc/sh so that piped and chained lines are
// classified per the most restrictive segment: if any segment is denylisted,
// the whole line requires the container. Unrecognized programs default to
// host execution with a warning flag — a deliberate fail-open choice, since
// the denylist enumerates the known-dangerous set exhaustively while the
// universe of harmless programs is open-ended.
package policy
