// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing error presentation for corral.
//
// Two complementary mechanisms are available:
//   - Issue: a catalog of known failure conditions with markdown help text,
//     rendered to the terminal via glamour.
//   - ActionableError: a structured error carrying the failed operation, the
//     resource involved, and suggestions for fixing the problem.
//
// Policy failures must always name the rule that triggered them (denylisted
// program, invalid port, exhausted recovery attempts) so users can correct
// configuration instead of retrying blindly.
package issue
