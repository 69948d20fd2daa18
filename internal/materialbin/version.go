// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package materialbin parses and re-serializes compiled material
// (".material.bin") assets: a schema-versioned tree of named passes, each
// holding variants, each holding per-stage embedded bgfx shader blobs.
//
// The wire format implemented here is a plausible, internally-consistent
// length-prefixed encoding, not a byte-accurate reproduction of the host's
// real compiled-material format — that format is proprietary and treated
// as an opaque codec by the rest of this payload, per the transcoder's
// documented contract.
package materialbin

import (
	"fmt"
	"strings"
)

// SchemaVersion enumerates the compiled-material binary schema revisions
// this payload knows how to parse and emit, ordered newest-to-oldest
// wherever version-detection needs to try candidates in that order.
type SchemaVersion uint32

const (
	V1_18_30 SchemaVersion = iota
	V1_19_60
	V1_20_80
	V1_21_20
	V1_21_110
)

// AllVersions lists every known schema, newest first, matching the order
// version detection probes them in (spec.md §4.6: "parse under each known
// schema version from newest to oldest").
var AllVersions = []SchemaVersion{
	V1_21_110,
	V1_21_20,
	V1_20_80,
	V1_19_60,
	V1_18_30,
}

func (v SchemaVersion) String() string {
	switch v {
	case V1_18_30:
		return "1.18.30"
	case V1_19_60:
		return "1.19.60"
	case V1_20_80:
		return "1.20.80"
	case V1_21_20:
		return "1.21.20"
	case V1_21_110:
		return "1.21.110"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(v))
	}
}

// AtLeast reports whether v is the same schema as, or newer than, other,
// using the fixed ordering above (not numeric comparison of the host's
// real version numbers, which this package never sees).
func (v SchemaVersion) AtLeast(other SchemaVersion) bool {
	return v >= other
}

// versionStrings maps the enumeration strings the host's Java layer uses
// (spec.md §6's "v1.18.30" | "v1.19.60" | "v1.20.80" | "v1.21.20" |
// "v1.21.110+") to their SchemaVersion. The trailing "+" on the newest
// entry is accepted and ignored: it marks that entry as a catch-all for
// any future point release, which this enumeration already treats V1_21_110
// as.
var versionStrings = map[string]SchemaVersion{
	"v1.18.30":  V1_18_30,
	"v1.19.60":  V1_19_60,
	"v1.20.80":  V1_20_80,
	"v1.21.20":  V1_21_20,
	"v1.21.110": V1_21_110,
}

// ParseVersionString resolves one of the host's version-string enumeration
// members to a SchemaVersion. Unknown strings report ok=false so callers
// can skip them silently, per spec.md §6's "unknown version strings are
// rejected silently".
func ParseVersionString(s string) (version SchemaVersion, ok bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "+")
	version, ok = versionStrings[s]
	return version, ok
}
