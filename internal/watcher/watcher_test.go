// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/mcbegamerxx954/mcbe-shader-redirector/internal/packs"
)

func testLogger() log.Logger {
	return log.NewStdLogger(os.Stderr)
}

func TestWaitForExistenceReturnsOnceFileAppears(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "global_resource_packs.json")

	var store packs.Store
	l := New(dir, "", filepath.Join(dir, "options.txt"), &store, testLogger())

	done := make(chan error, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	go func() {
		done <- l.waitForExistence(ctx, path)
	}()

	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("waitForExistence: %v", err)
		}
	case <-time.After(6 * time.Second):
		t.Fatal("waitForExistence did not return after the file appeared")
	}
}

func TestWaitForExistenceRespectsCancellation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "global_resource_packs.json")

	var store packs.Store
	l := New(dir, "", filepath.Join(dir, "options.txt"), &store, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := l.waitForExistence(ctx, path); err == nil {
		t.Error("expected waitForExistence to return an error on an already-canceled context")
	}
}

func TestRebuildSwapsStore(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "mcdata")
	write := func(path, body string) {
		t.Helper()
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	write(filepath.Join(dir, "global_resource_packs.json"), `[{"pack_id":"A","version":[1,0,0]}]`)
	write(filepath.Join(base, "resource_packs", "A", "manifest.json"), `{"header":{"uuid":"A","version":[1,0,0]}}`)
	write(filepath.Join(base, "resource_packs", "A", "renderer", "Foo.material.bin"), "x")

	var store packs.Store
	l := New(dir, "", filepath.Join(dir, "options.txt"), &store, testLogger())

	l.rebuild()

	if n := store.Load().Len(); n != 1 {
		t.Fatalf("expected rebuild to swap in an index with 1 entry, got %d", n)
	}
}

func TestConfigPathSwitchesToExternalRootWhenUsable(t *testing.T) {
	internalDir := t.TempDir()
	externalDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(externalDir, "global_resource_packs.json"), []byte("[]"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	optionsPath := filepath.Join(internalDir, "options.txt")
	if err := os.WriteFile(optionsPath, []byte("dvce_filestoragelocation:1\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var store packs.Store
	l := New(internalDir, externalDir, optionsPath, &store, testLogger())

	got := l.configPath()
	want := filepath.Join(externalDir, "global_resource_packs.json")
	if got != want {
		t.Errorf("configPath() = %q, want %q", got, want)
	}
	if l.activeRoot != externalDir {
		t.Errorf("activeRoot = %q, want %q", l.activeRoot, externalDir)
	}
}

func TestConfigPathFallsBackToInternalWhenExternalUnusable(t *testing.T) {
	internalDir := t.TempDir()
	externalDir := t.TempDir() // no global_resource_packs.json here
	optionsPath := filepath.Join(internalDir, "options.txt")
	if err := os.WriteFile(optionsPath, []byte("dvce_filestoragelocation:1\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var store packs.Store
	l := New(internalDir, externalDir, optionsPath, &store, testLogger())

	got := l.configPath()
	want := filepath.Join(internalDir, "global_resource_packs.json")
	if got != want {
		t.Errorf("configPath() = %q, want %q", got, want)
	}
	if l.activeRoot != internalDir {
		t.Errorf("activeRoot = %q, want %q", l.activeRoot, internalDir)
	}
}
