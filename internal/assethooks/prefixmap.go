// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package assethooks

import "strings"

// prefixRemap is the known-prefix table from spec.md §4.5 step 2, checked
// in order: the asset-manager path convention and the Resource Index's
// logical-key convention diverge for these four subtrees, so a match must
// be rewritten before it can be looked up.
var prefixRemap = []struct {
	from string
	to   string
}{
	{"gui/dist/hbui/", "hbui/"},
	{"renderer/", "renderer/"},
	{"resource_packs/vanilla/cameras", "vanilla_cameras/"},
	{"skin_packs/persona", "custom_persona/"},
}

// remapPath strips a leading "assets/" (if present) and rewrites a known
// prefix to its Resource Index equivalent. ok is false when no prefix
// matched, meaning the caller should return the host's original handle
// unmodified.
func remapPath(name string) (key string, ok bool) {
	trimmed := strings.TrimPrefix(name, "assets/")

	for _, r := range prefixRemap {
		if rest, found := strings.CutPrefix(trimmed, r.from); found {
			return r.to + rest, true
		}
	}
	return "", false
}
