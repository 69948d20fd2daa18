// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package trampoline

import (
	"bytes"
	"testing"
	"unsafe"

	"golang.org/x/sys/unix"
)

func mapCodePage(t *testing.T) []byte {
	t.Helper()
	data, err := unix.Mmap(-1, 0, pageSize, unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		t.Fatalf("mmap: %v", err)
	}
	t.Cleanup(func() { _ = unix.Munmap(data) })
	return data
}

func TestWriteThenRestoreRoundTrips(t *testing.T) {
	page := mapCodePage(t)
	for i := range page[:32] {
		page[i] = 0x90 // NOP filler, a recognizable "original" function body
	}
	target := uintptr(unsafe.Pointer(&page[0]))
	n := BackupLen(target)
	original := append([]byte(nil), page[:n]...)

	backup, err := Write(target, 0x1122334455)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !bytes.Equal(backup, original) {
		t.Errorf("Write returned backup %x, want %x", backup, original)
	}
	if bytes.Equal(page[:n], original) {
		t.Error("Write did not actually patch the target bytes")
	}

	if err := Restore(target, backup); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if !bytes.Equal(page[:n], original) {
		t.Errorf("after Restore, bytes = %x, want %x", page[:n], original)
	}
}

func TestRestoreRejectsWrongLength(t *testing.T) {
	page := mapCodePage(t)
	target := uintptr(unsafe.Pointer(&page[0]))

	if err := Restore(target, make([]byte, BackupLen(target)-1)); err == nil {
		t.Error("Restore accepted a backup of the wrong length")
	}
}
