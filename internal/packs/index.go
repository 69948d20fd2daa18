// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package packs

import (
	"path/filepath"
	"sync/atomic"
)

// Index is a built Resource Index: a read-only snapshot mapping a logical,
// pack-relative asset path to the absolute replacement file that should
// back it.
type Index struct {
	entries map[string]string
}

// Lookup returns the replacement source for logicalPath, if any pack
// contributes it.
func (idx *Index) Lookup(logicalPath string) (string, bool) {
	if idx == nil {
		return "", false
	}
	path, ok := idx.entries[logicalPath]
	return path, ok
}

// Len reports how many replacement entries this index holds, mainly for
// logging.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

// Entries returns a copy of the full logical-path to replacement-source
// mapping, mainly for the CLI's "index" command to dump as JSON.
func (idx *Index) Entries() map[string]string {
	if idx == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(idx.entries))
	for k, v := range idx.entries {
		out[k] = v
	}
	return out
}

// BuildIndex rebuilds the Resource Index from scratch: it reads
// global_resource_packs.json from mcRoot, discovers packs in the sibling
// resource_packs/ directory, and applies the reverse-iteration,
// insert-if-absent overlay algorithm from spec.md §4.3 step 3.
func BuildIndex(mcRoot string) (*Index, error) {
	entries, err := readGlobalPacks(filepath.Join(mcRoot, "global_resource_packs.json"))
	if err != nil {
		return nil, err
	}

	resourcePacksDir := filepath.Join(filepath.Dir(mcRoot), "resource_packs")
	allPacks, err := discoverPacks(resourcePacksDir)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]string)
	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		pack, ok := findMatchingPack(entry, allPacks)
		if !ok {
			continue
		}

		if entry.Subpack != "" {
			subBase := filepath.Join(pack.Root, "subpacks", entry.Subpack)
			subEntries, err := scanKnownSubtrees(subBase)
			if err == nil {
				insertIfAbsent(merged, subEntries)
			}
		}

		mainEntries, err := scanKnownSubtrees(pack.Root)
		if err == nil {
			insertIfAbsent(merged, mainEntries)
		}
	}

	return &Index{entries: merged}, nil
}

// Store holds the currently active Index behind an atomic pointer, so a
// rebuild (triggered by the watcher) can be swapped in without readers
// ever observing a partially built index.
type Store struct {
	current atomic.Pointer[Index]
}

// Load returns the currently active index. A freshly constructed Store
// returns a non-nil, empty Index rather than nil, so callers never need a
// nil check before calling Lookup.
func (s *Store) Load() *Index {
	idx := s.current.Load()
	if idx == nil {
		return &Index{entries: map[string]string{}}
	}
	return idx
}

// Swap atomically replaces the active index.
func (s *Store) Swap(idx *Index) {
	s.current.Store(idx)
}
