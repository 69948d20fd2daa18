// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mcelf

import (
	"encoding/binary"
	"errors"
	"runtime"
)

// Errors returned while resolving a module or a symbol within it.
var (
	// ErrOutsideBoundary is returned when a read would fall outside the
	// mapped image, mirroring helper.go's File.ReadUint32 bounds check in
	// the teacher repo.
	ErrOutsideBoundary = errors.New("mcelf: read outside module boundary")

	// ErrNoDynamicSection is returned when a module has no PT_DYNAMIC
	// program header.
	ErrNoDynamicSection = errors.New("mcelf: module has no dynamic section")

	// ErrMissingLib is returned when no loaded module's name ends with the
	// requested suffix.
	ErrMissingLib = errors.New("mcelf: no loaded module matches the requested suffix")
)

// Reloc is one resolved relocation entry: the absolute slot address
// (module base + r_offset) and the symbol name it was resolved against.
type Reloc struct {
	SlotAddr uintptr
	Symbol   string
	Addend   int64
}

// addressReader reads length bytes starting at an absolute memory address
// (for a live module) or an address translated through the program header
// table (for an on-disk module opened via OpenFile). Both acquisition paths
// implement it so the rest of this package never needs to know which one
// produced a Module.
type addressReader interface {
	ReadAt(addr uintptr, length int) ([]byte, error)
}

// Module is a parsed view over one loaded library's dynamic section: its
// string table, dynamic symbol table, and relocation tables (general,
// PLT-specific, addended and non-addended).
//
// It is produced either by OpenFile (an on-disk .so, used by the CLI and
// tests) or by OpenLive (a module mapped into the current process, used by
// the production hook-install path); both converge on this same type so
// pltpatch and trampoline never need to know which path produced it.
type Module struct {
	Name     string
	BaseAddr uintptr
	Is64     bool

	dynsymAddr uintptr
	strtabAddr uintptr

	relaAddr uintptr
	relaSz   uintptr
	relaEnt  uintptr

	relAddr uintptr
	relSz   uintptr
	relEnt  uintptr

	jmprelAddr uintptr
	jmprelSz   uintptr
	pltRela    bool // true if DT_PLTREL == DT_RELA

	reader addressReader
}

// jumpSlotType/globDatType are fixed once at init since a Go binary only
// ever hooks modules matching its own architecture.
var jumpSlotType, globDatType = func() (uint32, uint32) {
	return jumpSlotTypes(runtime.GOARCH)
}()

const (
	sym64Size = 24
	sym32Size = 16
)

// ResolveSymbol scans this module's relocation tables (preferring the
// addended table on 64-bit targets, falling back to the PLT-specific table
// when the general table lacks the symbol, per spec.md §4.1 step 2) and
// returns the absolute GOT/PLT slot address for name.
//
// A miss returns (Reloc{}, false, nil); a genuine parse error returns a
// non-nil error.
func (m *Module) ResolveSymbol(name string) (Reloc, bool, error) {
	if m.Is64 {
		return m.resolveSymbol64(name)
	}
	return m.resolveSymbol32(name)
}

// AllRelocations returns every JUMP_SLOT/GLOB_DAT relocation this module
// carries, across the general and PLT-specific tables. pltpatch.Install
// uses this to resolve several symbols in a single dynamic-section walk
// instead of rescanning per symbol.
func (m *Module) AllRelocations() ([]Reloc, error) {
	if m.Is64 {
		return m.allRelocations64()
	}
	return m.allRelocations32()
}

func (m *Module) resolveSymbol64(name string) (Reloc, bool, error) {
	relocs, err := m.allRelocations64()
	if err != nil {
		return Reloc{}, false, err
	}
	for _, r := range relocs {
		if r.Symbol == name {
			return r, true, nil
		}
	}
	return Reloc{}, false, nil
}

func (m *Module) resolveSymbol32(name string) (Reloc, bool, error) {
	relocs, err := m.allRelocations32()
	if err != nil {
		return Reloc{}, false, err
	}
	for _, r := range relocs {
		if r.Symbol == name {
			return r, true, nil
		}
	}
	return Reloc{}, false, nil
}

func (m *Module) allRelocations64() ([]Reloc, error) {
	var out []Reloc

	collect := func(tableAddr uintptr, tableSz uintptr, entSz uintptr, isRela bool) error {
		if tableAddr == 0 || tableSz == 0 {
			return nil
		}
		if entSz == 0 {
			entSz = 24 // sizeof(Elf64_Rela); Elf64_Rel is 16 but DT_RELENT is always emitted when present
		}
		count := tableSz / entSz
		for i := uintptr(0); i < count; i++ {
			raw, err := m.reader.ReadAt(tableAddr+i*entSz, int(entSz))
			if err != nil {
				return err
			}
			offset := binary.LittleEndian.Uint64(raw[0:8])
			info := binary.LittleEndian.Uint64(raw[8:16])
			var addend int64
			if isRela {
				addend = int64(binary.LittleEndian.Uint64(raw[16:24]))
			}
			typ := uint32(info & 0xffffffff)
			if typ != jumpSlotType && typ != globDatType {
				continue
			}
			symIdx := uint32(info >> 32)
			name, err := m.symbolName64(symIdx)
			if err != nil {
				return err
			}
			if name == "" {
				continue
			}
			out = append(out, Reloc{
				SlotAddr: m.BaseAddr + uintptr(offset),
				Symbol:   name,
				Addend:   addend,
			})
		}
		return nil
	}

	if err := collect(m.relaAddr, m.relaSz, m.relaEnt, true); err != nil {
		return nil, err
	}
	if err := collect(m.relAddr, m.relSz, m.relEnt, false); err != nil {
		return nil, err
	}
	if err := collect(m.jmprelAddr, m.jmprelSz, 0, m.pltRela); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *Module) allRelocations32() ([]Reloc, error) {
	var out []Reloc

	collect := func(tableAddr uintptr, tableSz uintptr, entSz uintptr, isRela bool) error {
		if tableAddr == 0 || tableSz == 0 {
			return nil
		}
		if entSz == 0 {
			entSz = 8 // sizeof(Elf32_Rel); Elf32_Rela adds a 4-byte addend
			if isRela {
				entSz = 12
			}
		}
		count := tableSz / entSz
		for i := uintptr(0); i < count; i++ {
			raw, err := m.reader.ReadAt(tableAddr+i*entSz, int(entSz))
			if err != nil {
				return err
			}
			offset := binary.LittleEndian.Uint32(raw[0:4])
			info := binary.LittleEndian.Uint32(raw[4:8])
			var addend int64
			if isRela {
				addend = int64(int32(binary.LittleEndian.Uint32(raw[8:12])))
			}
			typ := info & 0xff
			if typ != jumpSlotType && typ != globDatType {
				continue
			}
			symIdx := info >> 8
			name, err := m.symbolName32(symIdx)
			if err != nil {
				return err
			}
			if name == "" {
				continue
			}
			out = append(out, Reloc{
				SlotAddr: m.BaseAddr + uintptr(offset),
				Symbol:   name,
				Addend:   addend,
			})
		}
		return nil
	}

	if err := collect(m.relaAddr, m.relaSz, m.relaEnt, true); err != nil {
		return nil, err
	}
	if err := collect(m.relAddr, m.relSz, m.relEnt, false); err != nil {
		return nil, err
	}
	if err := collect(m.jmprelAddr, m.jmprelSz, 0, m.pltRela); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *Module) symbolName64(index uint32) (string, error) {
	raw, err := m.reader.ReadAt(m.dynsymAddr+uintptr(index)*sym64Size, sym64Size)
	if err != nil {
		return "", err
	}
	nameOff := binary.LittleEndian.Uint32(raw[0:4])
	return m.readCString(m.strtabAddr + uintptr(nameOff))
}

func (m *Module) symbolName32(index uint32) (string, error) {
	raw, err := m.reader.ReadAt(m.dynsymAddr+uintptr(index)*sym32Size, sym32Size)
	if err != nil {
		return "", err
	}
	nameOff := binary.LittleEndian.Uint32(raw[0:4])
	return m.readCString(m.strtabAddr + uintptr(nameOff))
}

// readCString reads a NUL-terminated string starting at addr, growing the
// read window geometrically until the terminator is found or a read fails.
func (m *Module) readCString(addr uintptr) (string, error) {
	const chunk = 64
	for size := chunk; ; size *= 2 {
		raw, err := m.reader.ReadAt(addr, size)
		if err != nil {
			return "", err
		}
		if i := indexByte(raw, 0); i >= 0 {
			return string(raw[:i]), nil
		}
		if size > 4096 {
			return "", ErrOutsideBoundary
		}
	}
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}
