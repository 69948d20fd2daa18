// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mcelf

import (
	"debug/elf"
	"fmt"
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// fileReader serves ReadAt requests against an mmap'd on-disk ELF image,
// translating the requested virtual address through the PT_LOAD segment
// table (mirroring what the dynamic linker's own mapper does, just without
// actually mapping at the link-time virtual addresses).
type fileReader struct {
	data  mmap.MMap
	loads []elf.ProgHeader
}

func (r *fileReader) ReadAt(addr uintptr, length int) ([]byte, error) {
	for _, ph := range r.loads {
		if uint64(addr) < ph.Vaddr || uint64(addr) >= ph.Vaddr+ph.Filesz {
			continue
		}
		off := ph.Off + (uint64(addr) - ph.Vaddr)
		end := off + uint64(length)
		if end > uint64(len(r.data)) {
			return nil, ErrOutsideBoundary
		}
		return r.data[off:end], nil
	}
	return nil, ErrOutsideBoundary
}

// OpenFile parses an on-disk shared object: it mmaps the file, locates the
// PT_DYNAMIC segment via debug/elf, and walks its dynamic section. This is
// the path used by the CLI's "hooks" subcommand, since it needs no
// injected process to run against. (This package's tests and fuzz target
// build Modules over an in-memory slice instead.)
func OpenFile(path string) (*Module, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ef, err := elf.NewFile(f)
	if err != nil {
		return nil, fmt.Errorf("mcelf: %s: %w", path, err)
	}
	defer ef.Close()

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mcelf: mmap %s: %w", path, err)
	}

	var dynOff uint64
	var dynFound bool
	var loads []elf.ProgHeader
	for _, prog := range ef.Progs {
		switch prog.Type {
		case elf.PT_LOAD:
			loads = append(loads, prog.ProgHeader)
		case elf.PT_DYNAMIC:
			dynOff = prog.Vaddr
			dynFound = true
		}
	}
	if !dynFound {
		data.Unmap()
		return nil, ErrNoDynamicSection
	}

	is64 := ef.Class == elf.ELFCLASS64
	m := &Module{
		Name:     path,
		BaseAddr: 0,
		Is64:     is64,
		reader:   &fileReader{data: data, loads: loads},
	}

	if is64 {
		err = parseDynamic64(m, uintptr(dynOff))
	} else {
		err = parseDynamic32(m, uintptr(dynOff))
	}
	if err != nil {
		data.Unmap()
		return nil, err
	}
	return m, nil
}
