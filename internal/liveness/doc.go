// SPDX-License-Identifier: MPL-2.0

// Package liveness brings a project container to the Running state before a
// command is dispatched into it.
//
// The supervisor re-enters a small state machine on every dispatch attempt:
// an observed Running state returns immediately with zero side effects; an
// Exited container gets one start attempt; an Absent container (or a failed
// start) gets one rebuild-and-create attempt using the compiled profile's
// build context. Total recovery is bounded by an explicit maxAttempts
// parameter — never a hidden constant — and every attempt and its outcome is
// logged. Recovery for a given container name is single-flight: concurrent
// callers serialize rather than racing duplicate rebuilds.
package liveness
