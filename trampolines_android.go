// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

//go:build android

package redirector

/*
#include <dlfcn.h>
#include <stdlib.h>
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/mcbegamerxx954/mcbe-shader-redirector/internal/trampoline"
)

// eduModeSymbol is the host's exported entry point jnibridge.IsEduMode
// replaces. It can't be routed through pltpatch.Install: the JVM resolves
// and calls it directly by its exported address (JNI's RegisterNatives/
// dynamic lookup), never through this library's own PLT, so there's no
// GOT slot anywhere in the process pointing at it to overwrite.
const eduModeSymbol = "isEduMode"

// installEduModeTrampoline writes an inline jump from the host's real
// isEduMode entry point to our jnibridge.IsEduMode replacement. Both
// addresses are resolved the same way: RTLD_DEFAULT search order finds
// the first loaded module exporting each name, which for the host's own
// symbol is the host library and for ours is this library, since both
// are mapped into the same process.
//
// Failure to resolve either symbol, or to write the jump, is logged and
// otherwise ignored: isEduMode is a best-effort convenience hook, not
// load-bearing for the rest of this package's operation.
func installEduModeTrampoline(helper *log.Helper) {
	target, err := dlsymAddr(eduModeSymbol)
	if err != nil {
		helper.Debugw("msg", "host does not export isEduMode, trampoline skipped", "err", err)
		return
	}
	dest, err := dlsymAddr("IsEduMode")
	if err != nil {
		helper.Warnw("msg", "could not resolve our own IsEduMode replacement", "err", err)
		return
	}
	if _, err := trampoline.Write(target, dest); err != nil {
		helper.Warnw("msg", "installing isEduMode trampoline failed", "err", err)
	}
}

// dlsymAddr resolves name against every module currently loaded in this
// process, in load order, the same way the dynamic linker itself would.
func dlsymAddr(name string) (uintptr, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	addr := C.dlsym(C.RTLD_DEFAULT, cname)
	if addr == nil {
		return 0, fmt.Errorf("dlsym: symbol %q not found", name)
	}
	return uintptr(addr), nil
}
