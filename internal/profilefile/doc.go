// SPDX-License-Identifier: MPL-2.0

// Package profilefile loads and validates a project's corralfile.cue, the
// declared environment profile at the project root.
//
// Validation is schema-driven: the embedded CUE schema is the single source
// of truth for field names, types, and value constraints, so an invalid file
// fails with the CUE path of the offending field rather than a generic parse
// error. A validated corralfile converts to a profile.ProjectProfile for
// compilation.
package profilefile
