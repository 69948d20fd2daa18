// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package packs

import (
	"os"
	"path/filepath"
	"strings"
)

// Pack is a resource pack located on disk: the directory containing its
// manifest.json, and the identity read out of that manifest's header.
type Pack struct {
	Root    string
	UUID    string
	Version [3]int
}

// knownSubtrees are the only top-level directories whose contents
// contribute to the Resource Index; everything else under a pack root is
// ignored, per spec.md §3's Pack invariant.
var knownSubtrees = []string{"renderer", "vanilla_cameras", "hbui", "custom_persona"}

// discoverPacks enumerates subdirectories of resourcePacksDir, locating
// each one's manifest.json at a shallow depth (directly inside, or one
// level nested) and parsing its header.
func discoverPacks(resourcePacksDir string) ([]Pack, error) {
	dirEntries, err := os.ReadDir(resourcePacksDir)
	if err != nil {
		return nil, err
	}

	var packs []Pack
	for _, de := range dirEntries {
		if !de.IsDir() {
			continue
		}
		packDir := filepath.Join(resourcePacksDir, de.Name())
		manifestPath, ok := findManifest(packDir)
		if !ok {
			continue
		}
		raw, err := os.ReadFile(manifestPath)
		if err != nil {
			continue
		}
		header, err := parseManifestHeader(raw)
		if err != nil {
			continue
		}
		packs = append(packs, Pack{
			Root:    filepath.Dir(manifestPath),
			UUID:    header.UUID,
			Version: header.Version,
		})
	}
	return packs, nil
}

// findManifest looks for manifest.json directly inside dir, then one level
// nested (matching the "typical" and "occasional" layouts from spec.md
// §4.3 step 1).
func findManifest(dir string) (string, bool) {
	direct := filepath.Join(dir, "manifest.json")
	if fileExists(direct) {
		return direct, true
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		nested := filepath.Join(dir, e.Name(), "manifest.json")
		if fileExists(nested) {
			return nested, true
		}
	}
	return "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// findMatchingPack returns the Pack entry references, matched by
// case-insensitive uuid equality and exact version-triple equality.
func findMatchingPack(entry GlobalEntry, packs []Pack) (Pack, bool) {
	for _, p := range packs {
		if strings.EqualFold(p.UUID, entry.PackID) && p.Version == entry.Version {
			return p, true
		}
	}
	return Pack{}, false
}

// scanKnownSubtrees walks each of knownSubtrees under base (recursively,
// to any depth) and returns a map from the forward-slash path relative to
// base to the file's absolute path. Directories, and entries the walk
// cannot read, are skipped; no other filtering is applied.
func scanKnownSubtrees(base string) (map[string]string, error) {
	found := make(map[string]string)
	for _, subtree := range knownSubtrees {
		root := filepath.Join(base, subtree)
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			continue
		}
		err = filepath.Walk(root, func(path string, fi os.FileInfo, err error) error {
			if err != nil {
				return nil //nolint:nilerr // best-effort scan, matching scan_path's fs.read_dir().flatten()
			}
			if fi.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(base, path)
			if err != nil {
				return nil
			}
			found[filepath.ToSlash(rel)] = path
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return found, nil
}

// insertIfAbsent merges src into dst, keeping dst's existing value for any
// key both maps define. Used to implement the "first insertion wins"
// half of the reverse-iteration overlay algorithm.
func insertIfAbsent(dst, src map[string]string) {
	for k, v := range src {
		if _, exists := dst[k]; !exists {
			dst[k] = v
		}
	}
}
