// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mcelf

import "encoding/binary"

const (
	dyn64Size = 16
	dyn32Size = 8
)

// parseDynamic64 walks a PT_DYNAMIC table of Elf64_Dyn entries starting at
// dynAddr (already translated to this reader's address space) and fills in
// the relocation-table and symbol-table locations m needs. It stops at the
// first DT_NULL entry, matching the dynamic linker's own termination rule.
func parseDynamic64(m *Module, dynAddr uintptr) error {
	for i := 0; ; i++ {
		raw, err := m.reader.ReadAt(dynAddr+uintptr(i)*dyn64Size, dyn64Size)
		if err != nil {
			return err
		}
		tag := int64(binary.LittleEndian.Uint64(raw[0:8]))
		val := binary.LittleEndian.Uint64(raw[8:16])
		if tag == dtNull {
			return nil
		}
		switch tag {
		case dtSymTab:
			m.dynsymAddr = m.BaseAddr + uintptr(val)
		case dtStrTab:
			m.strtabAddr = m.BaseAddr + uintptr(val)
		case dtRela:
			m.relaAddr = m.BaseAddr + uintptr(val)
		case dtRelaSz:
			m.relaSz = uintptr(val)
		case dtRelaEnt:
			m.relaEnt = uintptr(val)
		case dtRel:
			m.relAddr = m.BaseAddr + uintptr(val)
		case dtRelSz:
			m.relSz = uintptr(val)
		case dtRelEnt:
			m.relEnt = uintptr(val)
		case dtJmpRel:
			m.jmprelAddr = m.BaseAddr + uintptr(val)
		case dtPltRelSz:
			m.jmprelSz = uintptr(val)
		case dtPltRel:
			m.pltRela = val == dtRela
		}
	}
}

// parseDynamic32 is the Elf32_Dyn equivalent of parseDynamic64.
func parseDynamic32(m *Module, dynAddr uintptr) error {
	for i := 0; ; i++ {
		raw, err := m.reader.ReadAt(dynAddr+uintptr(i)*dyn32Size, dyn32Size)
		if err != nil {
			return err
		}
		tag := int32(binary.LittleEndian.Uint32(raw[0:4]))
		val := binary.LittleEndian.Uint32(raw[4:8])
		if tag == dtNull {
			return nil
		}
		switch int64(tag) {
		case dtSymTab:
			m.dynsymAddr = m.BaseAddr + uintptr(val)
		case dtStrTab:
			m.strtabAddr = m.BaseAddr + uintptr(val)
		case dtRela:
			m.relaAddr = m.BaseAddr + uintptr(val)
		case dtRelaSz:
			m.relaSz = uintptr(val)
		case dtRelaEnt:
			m.relaEnt = uintptr(val)
		case dtRel:
			m.relAddr = m.BaseAddr + uintptr(val)
		case dtRelSz:
			m.relSz = uintptr(val)
		case dtRelEnt:
			m.relEnt = uintptr(val)
		case dtJmpRel:
			m.jmprelAddr = m.BaseAddr + uintptr(val)
		case dtPltRelSz:
			m.jmprelSz = uintptr(val)
		case dtPltRel:
			m.pltRela = int64(val) == dtRela
		}
	}
}
