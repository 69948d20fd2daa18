// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pltpatch

import (
	"testing"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/mcbegamerxx954/mcbe-shader-redirector/internal/mcelf"
)

// mapTestPage allocates one real, page-aligned anonymous mapping so
// patchSlot's mprotect calls operate on valid memory, the way they would
// against a loaded library's GOT page.
func mapTestPage(t *testing.T) []byte {
	t.Helper()
	data, err := unix.Mmap(-1, 0, pageSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		t.Fatalf("mmap: %v", err)
	}
	t.Cleanup(func() { _ = unix.Munmap(data) })
	return data
}

func TestPatchSlotWritesValue(t *testing.T) {
	page := mapTestPage(t)
	slotAddr := uintptr(unsafe.Pointer(&page[16]))

	mod := &mcelf.Module{Is64: true}
	want := uintptr(0xdeadbeefcafe)

	if err := patchSlot(mod, slotAddr, want); err != nil {
		t.Fatalf("patchSlot: %v", err)
	}

	var got uintptr
	for i := 0; i < 8; i++ {
		got |= uintptr(page[16+i]) << (8 * i)
	}
	if got != want {
		t.Errorf("slot value = %#x, want %#x", got, want)
	}
}

func TestPatchSlot32BitWidth(t *testing.T) {
	page := mapTestPage(t)
	slotAddr := uintptr(unsafe.Pointer(&page[16]))
	// Poison the high 4 bytes so a 64-bit-width write would be detected.
	for i := 20; i < 24; i++ {
		page[i] = 0xff
	}

	mod := &mcelf.Module{Is64: false}
	want := uintptr(0x11223344)

	if err := patchSlot(mod, slotAddr, want); err != nil {
		t.Fatalf("patchSlot: %v", err)
	}

	var got uint32
	for i := 0; i < 4; i++ {
		got |= uint32(page[16+i]) << (8 * i)
	}
	if uintptr(got) != want {
		t.Errorf("slot value = %#x, want %#x", got, want)
	}
	for i := 20; i < 24; i++ {
		if page[i] != 0xff {
			t.Errorf("byte %d outside the 4-byte slot was overwritten", i)
		}
	}
}

func TestReadSlotReturnsCurrentValue(t *testing.T) {
	page := mapTestPage(t)
	slotAddr := uintptr(unsafe.Pointer(&page[8]))

	mod := &mcelf.Module{Is64: true}
	want := uintptr(0x0102030405060708)
	for i := 0; i < 8; i++ {
		page[8+i] = byte(want >> (8 * i))
	}

	got, err := readSlot(mod, slotAddr)
	if err != nil {
		t.Fatalf("readSlot: %v", err)
	}
	if got != want {
		t.Errorf("readSlot = %#x, want %#x", got, want)
	}
}
