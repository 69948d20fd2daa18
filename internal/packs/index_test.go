// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package packs

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func manifestJSON(uuid string) string {
	return `{
		// tolerant parsing must survive comments and trailing commas
		"header": {
			"uuid": "` + uuid + `",
			"version": [1, 0, 0],
		},
	}`
}

// newTestRoot lays out <root>/mcdata/{options.txt,global_resource_packs.json}
// and a sibling <root>/resource_packs/ directory, mirroring the "sibling
// resource_packs/" build input from spec.md §4.3.
func newTestRoot(t *testing.T) (mcRoot string) {
	t.Helper()
	base := t.TempDir()
	mcRoot = filepath.Join(base, "mcdata")
	if err := os.MkdirAll(mcRoot, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	return mcRoot
}

func writeGlobalPacks(t *testing.T, mcRoot, body string) {
	t.Helper()
	writeFile(t, filepath.Join(mcRoot, "global_resource_packs.json"), body)
}

func resourcePacksDir(mcRoot string) string {
	return filepath.Join(filepath.Dir(mcRoot), "resource_packs")
}

// S2 — Basic replacement.
func TestBuildIndexBasicReplacement(t *testing.T) {
	mcRoot := newTestRoot(t)
	writeGlobalPacks(t, mcRoot, `[{"pack_id": "A", "version": [1,0,0]}]`)

	packDir := filepath.Join(resourcePacksDir(mcRoot), "A")
	writeFile(t, filepath.Join(packDir, "manifest.json"), manifestJSON("A"))
	writeFile(t, filepath.Join(packDir, "renderer", "materials", "Foo.material.bin"), "0123456789")

	idx, err := BuildIndex(mcRoot)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	src, ok := idx.Lookup("renderer/materials/Foo.material.bin")
	if !ok {
		t.Fatal("expected Foo.material.bin to be indexed")
	}
	if filepath.Base(src) != "Foo.material.bin" {
		t.Errorf("Lookup source = %s, want a Foo.material.bin path", src)
	}
}

// S3 — Override: two active packs both provide the same file; the later
// global-pack-list entry (B) wins.
func TestBuildIndexOverrideLaterPackWins(t *testing.T) {
	mcRoot := newTestRoot(t)
	writeGlobalPacks(t, mcRoot, `[{"pack_id":"A","version":[1,0,0]},{"pack_id":"B","version":[1,0,0]}]`)

	dirA := filepath.Join(resourcePacksDir(mcRoot), "A")
	writeFile(t, filepath.Join(dirA, "manifest.json"), manifestJSON("A"))
	writeFile(t, filepath.Join(dirA, "renderer", "materials", "Foo.material.bin"), "aaaaaaaaaa")

	dirB := filepath.Join(resourcePacksDir(mcRoot), "B")
	writeFile(t, filepath.Join(dirB, "manifest.json"), manifestJSON("B"))
	writeFile(t, filepath.Join(dirB, "renderer", "materials", "Foo.material.bin"), "bbbbbbbbbbbbbbbbbbbb")

	idx, err := BuildIndex(mcRoot)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	src, ok := idx.Lookup("renderer/materials/Foo.material.bin")
	if !ok {
		t.Fatal("expected Foo.material.bin to be indexed")
	}
	if filepath.Dir(src) != filepath.Join(dirB, "renderer", "materials") {
		t.Errorf("Lookup source = %s, want pack B's file", src)
	}
}

// S4 — Subpack shadow: the subpack overlay's file shadows the main pack's
// same-keyed file.
func TestBuildIndexSubpackShadowsMain(t *testing.T) {
	mcRoot := newTestRoot(t)
	writeGlobalPacks(t, mcRoot, `[{"pack_id":"A","subpack":"hd","version":[1,0,0]}]`)

	packDir := filepath.Join(resourcePacksDir(mcRoot), "A")
	writeFile(t, filepath.Join(packDir, "manifest.json"), manifestJSON("A"))
	writeFile(t, filepath.Join(packDir, "renderer", "materials", "Foo.material.bin"), "0123456789")
	writeFile(t, filepath.Join(packDir, "subpacks", "hd", "renderer", "materials", "Foo.material.bin"), "01234567890123456789")

	idx, err := BuildIndex(mcRoot)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	src, ok := idx.Lookup("renderer/materials/Foo.material.bin")
	if !ok {
		t.Fatal("expected Foo.material.bin to be indexed")
	}
	data, err := os.ReadFile(src)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) != 20 {
		t.Errorf("Lookup resolved to %d-byte file, want the 20-byte subpack overlay", len(data))
	}
}

func TestBuildIndexVersionMismatchIsSkipped(t *testing.T) {
	mcRoot := newTestRoot(t)
	writeGlobalPacks(t, mcRoot, `[{"pack_id":"A","version":[2,0,0]}]`)

	packDir := filepath.Join(resourcePacksDir(mcRoot), "A")
	writeFile(t, filepath.Join(packDir, "manifest.json"), manifestJSON("A"))
	writeFile(t, filepath.Join(packDir, "renderer", "materials", "Foo.material.bin"), "0123456789")

	idx, err := BuildIndex(mcRoot)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if _, ok := idx.Lookup("renderer/materials/Foo.material.bin"); ok {
		t.Error("expected no match when versions differ")
	}
}

func TestStoreLoadReturnsEmptyIndexBeforeFirstSwap(t *testing.T) {
	var s Store
	idx := s.Load()
	if idx.Len() != 0 {
		t.Errorf("Len() = %d, want 0", idx.Len())
	}
	if _, ok := idx.Lookup("anything"); ok {
		t.Error("Lookup on an empty Store-backed index should miss")
	}
}
