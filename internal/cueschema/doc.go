// SPDX-License-Identifier: MPL-2.0

// Package cueschema provides shared CUE parsing utilities.
//
// It implements the 3-step CUE parsing pattern used by the corralfile loader
// and any future schema-validated inputs:
//
//  1. Compile the embedded schema
//  2. Compile user data and unify with schema
//  3. Validate and decode to Go struct
//
// # Usage
//
//	//go:embed corralfile_schema.cue
//	var schemaBytes []byte
//
//	result, err := cueschema.ParseAndDecode[Corralfile](
//	    schemaBytes,
//	    userFileBytes,
//	    "#Corralfile",
//	    cueschema.WithFilename("corralfile.cue"),
//	)
package cueschema
