// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package mcelf walks the ELF dynamic section of a loaded module (either a
// live module mapped into the current process, or an on-disk shared object
// opened for offline inspection) and exposes its string table, dynamic
// symbol table, and relocation tables.
//
// The struct layouts below mirror the Elf32_* / Elf64_* dynamic-linking
// structures one-for-one (field order matters: these are read directly out
// of mapped memory with encoding/binary, never through cgo structs).
package mcelf

// DynTag values consumed by this package. Only the tags needed to locate
// the string table, symbol table, and the three relocation table shapes are
// listed; unrelated tags are skipped during the dynamic-section walk.
const (
	dtNull    = 0
	dtPltRelSz = 2
	dtPltGot  = 3
	dtHash    = 4
	dtStrTab  = 5
	dtSymTab  = 6
	dtRela    = 7
	dtRelaSz  = 8
	dtRelaEnt = 9
	dtStrSz   = 10
	dtSymEnt  = 11
	dtRel     = 17
	dtRelSz   = 18
	dtRelEnt  = 19
	dtPltRel  = 20
	dtJmpRel  = 23
)

// Relocation type constants used to recognize PLT/GOT slots, per
// architecture. Only the jump-slot and glob-dat relocation types are
// relevant to PLT hooking.
const (
	rX86JumpSlot     = 7
	rX86GlobDat      = 6
	rArmJumpSlot     = 22
	rArmGlobDat      = 21
	rAArch64JumpSlot = 1026
	rAArch64GlobDat  = 1025
)

// Dyn64 is Elf64_Dyn.
type Dyn64 struct {
	Tag int64
	Val uint64
}

// Dyn32 is Elf32_Dyn.
type Dyn32 struct {
	Tag int32
	Val uint32
}

// Sym64 is Elf64_Sym.
type Sym64 struct {
	Name  uint32
	Info  uint8
	Other uint8
	Shndx uint16
	Value uint64
	Size  uint64
}

// Sym32 is Elf32_Sym.
type Sym32 struct {
	Name  uint32
	Value uint32
	Size  uint32
	Info  uint8
	Other uint8
	Shndx uint16
}

// Rela64 is Elf64_Rela: a relocation entry carrying an explicit addend.
type Rela64 struct {
	Offset uint64
	Info   uint64
	Addend int64
}

// SymbolIndex returns the symbol-table index this relocation refers to.
func (r Rela64) SymbolIndex() uint32 { return uint32(r.Info >> 32) }

// Type returns the relocation type (R_*_JUMP_SLOT, etc).
func (r Rela64) Type() uint32 { return uint32(r.Info & 0xffffffff) }

// Rel64 is Elf64_Rel: a relocation entry with an implicit (in-place) addend.
type Rel64 struct {
	Offset uint64
	Info   uint64
}

// SymbolIndex returns the symbol-table index this relocation refers to.
func (r Rel64) SymbolIndex() uint32 { return uint32(r.Info >> 32) }

// Type returns the relocation type.
func (r Rel64) Type() uint32 { return uint32(r.Info & 0xffffffff) }

// Rela32 is Elf32_Rela.
type Rela32 struct {
	Offset uint32
	Info   uint32
	Addend int32
}

// SymbolIndex returns the symbol-table index this relocation refers to.
func (r Rela32) SymbolIndex() uint32 { return r.Info >> 8 }

// Type returns the relocation type.
func (r Rela32) Type() uint32 { return r.Info & 0xff }

// Rel32 is Elf32_Rel.
type Rel32 struct {
	Offset uint32
	Info   uint32
}

// SymbolIndex returns the symbol-table index this relocation refers to.
func (r Rel32) SymbolIndex() uint32 { return r.Info >> 8 }

// Type returns the relocation type.
func (r Rel32) Type() uint32 { return r.Info & 0xff }

// jumpSlotTypes returns the JUMP_SLOT and GLOB_DAT relocation type
// constants for the given machine architecture name, as reported by GOARCH.
func jumpSlotTypes(goarch string) (jumpSlot, globDat uint32) {
	switch goarch {
	case "arm64":
		return rAArch64JumpSlot, rAArch64GlobDat
	case "arm":
		return rArmJumpSlot, rArmGlobDat
	default: // amd64, 386
		return rX86JumpSlot, rX86GlobDat
	}
}
