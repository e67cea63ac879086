// SPDX-License-Identifier: MPL-2.0

// Package container provides a unified abstraction layer for container engines (Docker/Podman).
//
// The Engine interface defines the operations the policy engine needs: Status,
// Start, Create, Build, Exec, Remove, and ImageExists. Two implementations are
// provided: DockerEngine and PodmanEngine, both embedding BaseCLIEngine for
// shared CLI argument construction and command execution.
//
// Engine selection uses NewEngine(EngineType) with automatic fallback if the
// preferred engine is unavailable, or AutoDetectEngine() for preference-less
// detection (Docker is tried first).
//
// Status queries are never cached: container state can change between checks,
// so every liveness decision re-queries the engine.
package container
