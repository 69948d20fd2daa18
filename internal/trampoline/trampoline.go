// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package trampoline overwrites the first instructions of a function with
// an unconditional absolute jump to a replacement implementation, for the
// one exported entry point that is called directly rather than routed
// through the PLT/GOT (and so cannot be hooked by pltpatch alone).
package trampoline

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

var pageSize = unix.Getpagesize()

// BackupLen returns the number of bytes Write(target, ...) will read and
// overwrite. On every architecture but arm this is a fixed per-arch
// constant; on arm it depends on target's own Thumb-mode alignment, so
// callers sizing a backup buffer ahead of time must pass the same target
// they intend to hook.
func BackupLen(target uintptr) int {
	return expectedLen(target)
}

// Write overwrites the BackupLen(target) bytes at patchAddr(target) with an
// absolute jump to dest, returning the original bytes so Restore can undo
// the patch later. patchAddr strips any ISA-mode tag bit target carries
// (a no-op off arm); the jump encoding itself is chosen from target's own
// tag, not dest's, since that bit describes the code AT target, not the
// code dest points to.
func Write(target, dest uintptr) ([]byte, error) {
	addr := patchAddr(target)
	n := expectedLen(target)

	backup, err := readBytes(addr, n)
	if err != nil {
		return nil, fmt.Errorf("trampoline: read original bytes: %w", err)
	}

	code := buildJump(target, dest)
	if err := writeBytes(addr, code); err != nil {
		return nil, fmt.Errorf("trampoline: write jump: %w", err)
	}
	return backup, nil
}

// Restore writes backup (as returned by a prior Write(target, ...)) back
// over target.
func Restore(target uintptr, backup []byte) error {
	n := expectedLen(target)
	if len(backup) != n {
		return fmt.Errorf("trampoline: backup length %d does not match expected length %d", len(backup), n)
	}
	return writeBytes(patchAddr(target), backup)
}

func readBytes(addr uintptr, n int) ([]byte, error) {
	src := unsafe.Slice((*byte)(unsafe.Pointer(addr)), n)
	out := make([]byte, n)
	copy(out, src)
	return out, nil
}

// writeBytes flips the page(s) covering addr..addr+len(code) writable,
// copies code in, and restores read+execute protection.
func writeBytes(addr uintptr, code []byte) error {
	pageStart := addr &^ uintptr(pageSize-1)
	span := int(addr-pageStart) + len(code)
	pages := ((span + pageSize - 1) / pageSize) * pageSize
	region := unsafe.Slice((*byte)(unsafe.Pointer(pageStart)), pages)

	if err := unix.Mprotect(region, unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC); err != nil {
		return fmt.Errorf("mprotect rw: %w", err)
	}

	dst := unsafe.Slice((*byte)(unsafe.Pointer(addr)), len(code))
	copy(dst, code)

	if err := unix.Mprotect(region, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		return fmt.Errorf("mprotect rx: %w", err)
	}
	return nil
}
