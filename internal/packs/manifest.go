// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package packs builds the Resource Index: a mapping from a logical,
// pack-relative asset path to the absolute replacement file that should be
// served in its place, derived from the host's pack-configuration JSON and
// the resource_packs/ directory tree.
package packs

import (
	"fmt"

	"cuelang.org/go/cue/cuecontext"
)

// cueCtx is shared across all tolerant-JSON decodes in this package; CUE
// contexts are safe for concurrent read-only use once compiled values are
// decoded, and constructing one is not free, so it's built once.
var cueCtx = cuecontext.New()

// ManifestHeader is the subset of a pack's manifest.json this package
// consumes: header.uuid and header.version. Tolerant parsing (comments,
// trailing commas, unknown extra fields) is handled by compiling the raw
// bytes as CUE, whose JSON-superset grammar accepts all three.
type ManifestHeader struct {
	UUID    string `json:"uuid"`
	Version [3]int `json:"version"`
}

type manifestDoc struct {
	Header ManifestHeader `json:"header"`
}

// parseTolerantJSON compiles raw as a CUE value and decodes it into out.
// CUE's grammar is a strict superset of JSON that additionally permits
// line comments and trailing commas, which is exactly the leniency
// manifest.json and global_resource_packs.json require.
func parseTolerantJSON(raw []byte, out interface{}) error {
	value := cueCtx.CompileBytes(raw)
	if err := value.Err(); err != nil {
		return fmt.Errorf("packs: parse: %w", err)
	}
	if err := value.Decode(out); err != nil {
		return fmt.Errorf("packs: decode: %w", err)
	}
	return nil
}

// parseManifestHeader parses a manifest.json's header, rejecting the
// document only when uuid or version is missing (extra fields, comments,
// and trailing commas are all tolerated per spec.md §4.3 step 1).
func parseManifestHeader(raw []byte) (ManifestHeader, error) {
	var doc manifestDoc
	if err := parseTolerantJSON(raw, &doc); err != nil {
		return ManifestHeader{}, err
	}
	if doc.Header.UUID == "" {
		return ManifestHeader{}, fmt.Errorf("packs: manifest missing header.uuid")
	}
	if doc.Header.Version == ([3]int{}) {
		return ManifestHeader{}, fmt.Errorf("packs: manifest missing header.version")
	}
	return doc.Header, nil
}
