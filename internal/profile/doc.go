// SPDX-License-Identifier: MPL-2.0

// Package profile compiles a declared project profile into the concrete
// container configuration corral uses to build and run the project's dev
// container.
//
// Compilation is a pure function: it validates the declaration, enforces the
// base-image invariants (native modules force the slim family because musl
// breaks node-gyp builds), and attaches the deterministic package bootstrap
// for the chosen image family. The declared ProjectProfile is never mutated;
// silent corrections are surfaced via CompiledProfile.WasOverridden.
package profile
