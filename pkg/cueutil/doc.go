// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates JSON and CUE documents against embedded CUE schemas.
//
// Manifests, property documents and the configuration file are all checked the
// same way: the embedded schema is compiled, the user's bytes are compiled and
// unified with a root definition, the result is validated and, when a Go type is
// requested, decoded into it.
//
//	//go:embed manifest_schema.cue
//	var manifestSchema []byte
//
//	res, err := cueutil.ParseAndDecode[manifestFields](
//	    manifestSchema,
//	    data,
//	    "#Manifest",
//	    cueutil.WithFilename("manifest.json"),
//	)
//
// JSON is a subset of CUE, so JSON documents need no conversion step.
package cueutil
