// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package packs

import "os"

// GlobalEntry is one element of the host's global_resource_packs.json: a
// reference to an active pack (and, optionally, one of its subpacks) by
// uuid and exact version triple.
type GlobalEntry struct {
	PackID  string `json:"pack_id"`
	Subpack string `json:"subpack"`
	Version [3]int `json:"version"`
}

// readGlobalPacks parses the ordered array from path. Entries later in the
// array override earlier ones; callers are expected to iterate the
// returned slice in reverse, per spec.md §4.3 step 3.
func readGlobalPacks(path string) ([]GlobalEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []GlobalEntry
	if err := parseTolerantJSON(raw, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
