// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

//go:build linux

package mcelf

/*
#include <link.h>
#include <string.h>
#include <stdlib.h>

typedef struct {
	char *want_suffix;
	unsigned long base;
	char *name;
	int found;
} mc_find_ctx;

static int mc_phdr_cb(struct dl_phdr_info *info, size_t size, void *data) {
	mc_find_ctx *ctx = (mc_find_ctx *)data;
	if (info->dlpi_name == NULL || info->dlpi_name[0] == '\0') {
		return 0;
	}
	size_t name_len = strlen(info->dlpi_name);
	size_t suf_len = strlen(ctx->want_suffix);
	if (suf_len > name_len) {
		return 0;
	}
	if (strcmp(info->dlpi_name + (name_len - suf_len), ctx->want_suffix) != 0) {
		return 0;
	}
	ctx->base = (unsigned long)info->dlpi_addr;
	ctx->name = strdup(info->dlpi_name);
	ctx->found = 1;
	return 1;
}

static int mc_find_module(const char *suffix, unsigned long *base_out, char **name_out) {
	mc_find_ctx ctx;
	ctx.want_suffix = (char *)suffix;
	ctx.base = 0;
	ctx.name = NULL;
	ctx.found = 0;
	dl_iterate_phdr(mc_phdr_cb, &ctx);
	if (!ctx.found) {
		return 0;
	}
	*base_out = ctx.base;
	*name_out = ctx.name;
	return 1;
}

static void mc_copy_mem(void *dst, unsigned long addr, size_t len) {
	memcpy(dst, (void *)addr, len);
}
*/
import "C"

import (
	"debug/elf"
	"os"
	"unsafe"
)

// liveReader reads directly out of this process's own address space. It is
// only ever safe to use with addresses that fall inside a module actually
// mapped by the loader (OpenLive verifies this via the PT_DYNAMIC lookup
// before constructing one), since it performs a raw memcpy with no bounds
// checking of its own beyond what the OS page tables enforce.
type liveReader struct{}

func (liveReader) ReadAt(addr uintptr, length int) ([]byte, error) {
	if addr == 0 {
		return nil, ErrOutsideBoundary
	}
	buf := make([]byte, length)
	C.mc_copy_mem(unsafe.Pointer(&buf[0]), C.ulong(addr), C.size_t(length))
	return buf, nil
}

// OpenLive locates the first loaded module whose path ends with suffix
// (e.g. "libminecraftpe.so") via dl_iterate_phdr, re-opens its on-disk
// image just to read the program header table (the loaded segments
// themselves are mapped read-only/executable and may not contain a
// faithfully-copied ELF header once relocated), and walks its dynamic
// section directly out of live memory.
//
// This is the path the production hook installer uses: it is what lets
// pltpatch patch GOT slots inside the host's own loaded library.
func OpenLive(suffix string) (*Module, error) {
	cSuffix := C.CString(suffix)
	defer C.free(unsafe.Pointer(cSuffix))

	var base C.ulong
	var cName *C.char
	if C.mc_find_module(cSuffix, &base, &cName) == 0 {
		return nil, ErrMissingLib
	}
	defer C.free(unsafe.Pointer(cName))
	name := C.GoString(cName)

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ef, err := elf.NewFile(f)
	if err != nil {
		return nil, err
	}
	defer ef.Close()

	var dynVaddr uint64
	var dynFound bool
	for _, prog := range ef.Progs {
		if prog.Type == elf.PT_DYNAMIC {
			dynVaddr = prog.Vaddr
			dynFound = true
			break
		}
	}
	if !dynFound {
		return nil, ErrNoDynamicSection
	}

	is64 := ef.Class == elf.ELFCLASS64
	m := &Module{
		Name:     name,
		BaseAddr: uintptr(base),
		Is64:     is64,
		reader:   liveReader{},
	}

	dynAddr := m.BaseAddr + uintptr(dynVaddr)
	if is64 {
		err = parseDynamic64(m, dynAddr)
	} else {
		err = parseDynamic32(m, dynAddr)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}
