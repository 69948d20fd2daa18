// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package asset

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestTableMissIsNotRegistered(t *testing.T) {
	tbl := NewTable()
	if tbl.IsRegistered(Handle(1)) {
		t.Fatal("empty table reports a handle as registered")
	}
	if _, err := tbl.Read(Handle(1), make([]byte, 4)); err != ErrNotRegistered {
		t.Errorf("Read on unregistered handle = %v, want ErrNotRegistered", err)
	}
}

func TestBufferBackingSeekReadRoundTrip(t *testing.T) {
	tbl := NewTable()
	h := Handle(0x1000)
	tbl.Register(h, NewBufferBacking([]byte("hello world")))

	length, err := tbl.Length(h)
	if err != nil {
		t.Fatalf("Length: %v", err)
	}
	if length != 11 {
		t.Errorf("Length = %d, want 11", length)
	}

	if _, err := tbl.Seek(h, 6, SeekSet); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	rem, err := tbl.Remaining(h)
	if err != nil {
		t.Fatalf("Remaining: %v", err)
	}
	if rem != 5 {
		t.Errorf("Remaining after seeking to 6 = %d, want 5", rem)
	}

	buf := make([]byte, 5)
	n, err := tbl.Read(h, buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 5 || string(buf) != "world" {
		t.Errorf("Read = %q (n=%d), want \"world\" (n=5)", buf, n)
	}
}

func TestGetBufferPreservesPosition(t *testing.T) {
	tbl := NewTable()
	h := Handle(0x2000)
	tbl.Register(h, NewBufferBacking([]byte("0123456789")))

	if _, err := tbl.Seek(h, 4, SeekSet); err != nil {
		t.Fatalf("Seek: %v", err)
	}

	full, err := tbl.GetBuffer(h)
	if err != nil {
		t.Fatalf("GetBuffer: %v", err)
	}
	if string(full) != "0123456789" {
		t.Errorf("GetBuffer = %q, want full contents", full)
	}

	rem, err := tbl.Remaining(h)
	if err != nil {
		t.Fatalf("Remaining: %v", err)
	}
	if rem != 6 {
		t.Errorf("Remaining after GetBuffer = %d, want 6 (position should be restored)", rem)
	}
}

func TestSeekPastEndThenReadYieldsEOFAsZero(t *testing.T) {
	tbl := NewTable()
	h := Handle(0x3000)
	tbl.Register(h, NewBufferBacking([]byte("abc")))

	if _, err := tbl.Seek(h, 3, SeekSet); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	buf := make([]byte, 4)
	n, err := tbl.Read(h, buf)
	if err != nil {
		t.Fatalf("Read at end of buffer returned an error: %v", err)
	}
	if n != 0 {
		t.Errorf("Read at end of buffer = %d bytes, want 0", n)
	}
}

func TestFileBackingLenAndRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "asset.bin")
	if err := os.WriteFile(path, []byte("filebacked"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	fb, err := NewFileBacking(path)
	if err != nil {
		t.Fatalf("NewFileBacking: %v", err)
	}
	defer fb.Close()

	tbl := NewTable()
	h := Handle(0x4000)
	tbl.Register(h, fb)

	length, err := tbl.Length(h)
	if err != nil {
		t.Fatalf("Length: %v", err)
	}
	if length != 10 {
		t.Errorf("Length = %d, want 10", length)
	}

	buf := make([]byte, 10)
	if _, err := io.ReadFull(fbReaderFor(tbl, h), buf); err != nil {
		t.Fatalf("ReadFull: %v", err)
	}
	if string(buf) != "filebacked" {
		t.Errorf("read %q, want \"filebacked\"", buf)
	}
}

// fbReaderFor adapts Table.Read to the io.Reader interface for ReadFull,
// without exposing Backing directly (shims never read Backing themselves).
func fbReaderFor(tbl *Table, h Handle) io.Reader {
	return readerFunc(func(p []byte) (int, error) {
		return tbl.Read(h, p)
	})
}

type readerFunc func([]byte) (int, error)

func (f readerFunc) Read(p []byte) (int, error) { return f(p) }

func TestRemoveUnregisters(t *testing.T) {
	tbl := NewTable()
	h := Handle(0x5000)
	tbl.Register(h, NewBufferBacking([]byte("x")))

	b, ok := tbl.Remove(h)
	if !ok || b == nil {
		t.Fatal("Remove did not find the registered handle")
	}
	if tbl.IsRegistered(h) {
		t.Error("handle still registered after Remove")
	}
}

func TestIsAllocatedAlwaysFalseForVirtualized(t *testing.T) {
	tbl := NewTable()
	h := Handle(0x6000)
	tbl.Register(h, NewBufferBacking([]byte("x")))

	allocated, virtualized := tbl.IsAllocated(h)
	if !virtualized {
		t.Fatal("expected handle to be reported virtualized")
	}
	if allocated {
		t.Error("IsAllocated reported true for a virtualized handle")
	}

	_, virtualized = tbl.IsAllocated(Handle(0xdead))
	if virtualized {
		t.Error("IsAllocated reported an unregistered handle as virtualized")
	}
}
