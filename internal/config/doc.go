// SPDX-License-Identifier: MPL-2.0

// Package config loads Corral's global configuration.
//
// Settings that apply across projects live in a single config.toml under the
// per-user config directory; everything project-specific belongs in the
// project's corralfile instead. Every key has a default, can be overridden
// by the file, and can be overridden again by a CORRAL_-prefixed environment
// variable, in that order of precedence.
package config
