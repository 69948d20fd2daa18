// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package pltpatch installs PLT/GOT hooks into a loaded module: it resolves
// each requested symbol to its relocation slot via mcelf, flips the
// enclosing page writable, overwrites the slot with the replacement
// function pointer, and restores the page's original protection.
package pltpatch

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/mcbegamerxx954/mcbe-shader-redirector/internal/mcelf"
)

// ErrorKind distinguishes why a hook installation failed.
type ErrorKind int

const (
	// MissingLib means the target module itself could not be located.
	MissingLib ErrorKind = iota
	// OsError means a syscall (mprotect) failed.
	OsError
)

// HookError reports a failure to install one symbol's hook.
type HookError struct {
	Kind   ErrorKind
	Symbol string
	Err    error
}

func (e *HookError) Error() string {
	if e.Symbol != "" {
		return fmt.Sprintf("pltpatch: %s: %v", e.Symbol, e.Err)
	}
	return fmt.Sprintf("pltpatch: %v", e.Err)
}

func (e *HookError) Unwrap() error { return e.Err }

var pageSize = unix.Getpagesize()

// Install resolves each key in symbols against mod's relocation tables and
// overwrites the matching GOT slot with the corresponding replacement
// address. Symbols not routed through the PLT/GOT (never relocated,
// because the dynamic linker resolved them at load time via a direct call,
// or because they're not exported at all) are returned in missed rather
// than treated as a hard failure, since the caller may fall back to
// trampoline patching for those.
//
// originals holds, for each symbol actually patched, the function pointer
// that occupied the slot before this call. A hook installed over a PLT
// slot can never recover the real implementation's address once its own
// slot value has been overwritten (the original lived only in that one
// memory location), so the caller must capture it here before the real
// implementation becomes unreachable through this module.
func Install(mod *mcelf.Module, symbols map[string]uintptr) (originals map[string]uintptr, missed []string, err error) {
	relocs, err := mod.AllRelocations()
	if err != nil {
		return nil, nil, &HookError{Kind: OsError, Err: err}
	}

	bySymbol := make(map[string]mcelf.Reloc, len(relocs))
	for _, r := range relocs {
		bySymbol[r.Symbol] = r
	}

	originals = make(map[string]uintptr, len(symbols))
	for name, replacement := range symbols {
		reloc, ok := bySymbol[name]
		if !ok {
			missed = append(missed, name)
			continue
		}
		original, err := readSlot(mod, reloc.SlotAddr)
		if err != nil {
			return originals, missed, &HookError{Kind: OsError, Symbol: name, Err: err}
		}
		if err := patchSlot(mod, reloc.SlotAddr, replacement); err != nil {
			return originals, missed, &HookError{Kind: OsError, Symbol: name, Err: err}
		}
		originals[name] = original
	}
	return originals, missed, nil
}

// readSlot returns the pointer-sized value currently stored at slotAddr.
func readSlot(mod *mcelf.Module, slotAddr uintptr) (uintptr, error) {
	width := 8
	if !mod.Is64 {
		width = 4
	}
	slot := unsafe.Slice((*byte)(unsafe.Pointer(slotAddr)), width)
	var value uintptr
	for i := width - 1; i >= 0; i-- {
		value = value<<8 | uintptr(slot[i])
	}
	return value, nil
}

// patchSlot overwrites the pointer-sized value at slotAddr with value,
// temporarily making the enclosing page(s) writable.
func patchSlot(mod *mcelf.Module, slotAddr uintptr, value uintptr) error {
	width := 8
	if !mod.Is64 {
		width = 4
	}

	pageStart := slotAddr &^ uintptr(pageSize-1)
	// The slot may straddle a page boundary; cover both candidate pages.
	span := int(slotAddr-pageStart) + width
	pages := ((span + pageSize - 1) / pageSize) * pageSize

	region := unsafe.Slice((*byte)(unsafe.Pointer(pageStart)), pages)

	if err := unix.Mprotect(region, unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC); err != nil {
		return fmt.Errorf("mprotect rw: %w", err)
	}

	slot := unsafe.Slice((*byte)(unsafe.Pointer(slotAddr)), width)
	for i := 0; i < width; i++ {
		slot[i] = byte(value >> (8 * i))
	}

	if err := unix.Mprotect(region, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		return fmt.Errorf("mprotect rx: %w", err)
	}
	return nil
}
