// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

//go:build android

// Package nativehooks provides the replacement functions installed over
// the host's AAsset PLT/GOT slots: one per intercepted import, each with
// the same C calling convention as the function it shadows so that a
// patched GOT slot can call it exactly as it would have called the
// original. Every function delegates
// to a package-level assethooks.Shims, forwarding to the real
// implementation it was installed over via the address pltpatch.Install
// captured before patching.
package nativehooks

/*
#include <android/asset_manager.h>
#include <stdint.h>
#include <stdlib.h>
#include <sys/types.h>

typedef AAsset *(*open_fn)(AAssetManager *, const char *, int);
typedef int (*read_fn)(AAsset *, void *, size_t);
typedef off_t (*seek_fn)(AAsset *, off_t, int);
typedef off64_t (*seek64_fn)(AAsset *, off64_t, int);
typedef off_t (*length_fn)(AAsset *);
typedef off64_t (*length64_fn)(AAsset *);
typedef void (*close_fn)(AAsset *);
typedef const void *(*getbuffer_fn)(AAsset *);
typedef int (*openfd_fn)(AAsset *, off_t *, off_t *);
typedef int (*openfd64_fn)(AAsset *, off64_t *, off64_t *);
typedef int (*isalloc_fn)(AAsset *);

static AAsset *mc_call_open(void *fn, AAssetManager *mgr, const char *fname, int mode) {
	return ((open_fn)fn)(mgr, fname, mode);
}
static int mc_call_read(void *fn, AAsset *a, void *buf, size_t count) {
	return ((read_fn)fn)(a, buf, count);
}
static off_t mc_call_seek(void *fn, AAsset *a, off_t off, int whence) {
	return ((seek_fn)fn)(a, off, whence);
}
static off64_t mc_call_seek64(void *fn, AAsset *a, off64_t off, int whence) {
	return ((seek64_fn)fn)(a, off, whence);
}
static off_t mc_call_length(void *fn, AAsset *a) {
	return ((length_fn)fn)(a);
}
static off64_t mc_call_length64(void *fn, AAsset *a) {
	return ((length64_fn)fn)(a);
}
static void mc_call_close(void *fn, AAsset *a) {
	((close_fn)fn)(a);
}
static const void *mc_call_getbuffer(void *fn, AAsset *a) {
	return ((getbuffer_fn)fn)(a);
}
static int mc_call_openfd(void *fn, AAsset *a, off_t *start, off_t *len) {
	return ((openfd_fn)fn)(a, start, len);
}
static int mc_call_openfd64(void *fn, AAsset *a, off64_t *start, off64_t *len) {
	return ((openfd64_fn)fn)(a, start, len);
}
static int mc_call_isalloc(void *fn, AAsset *a) {
	return ((isalloc_fn)fn)(a);
}

// _cgo_export.h declares the //export functions below as ordinary C
// functions; these wrappers hand back their addresses as plain pointers so
// Go can build the symbol table pltpatch.Install expects.
#include "_cgo_export.h"

static void *mc_addr_open(void)      { return (void *)AssetOpen; }
static void *mc_addr_read(void)      { return (void *)AssetRead; }
static void *mc_addr_seek(void)      { return (void *)AssetSeek; }
static void *mc_addr_seek64(void)    { return (void *)AssetSeek64; }
static void *mc_addr_length(void)    { return (void *)AssetGetLength; }
static void *mc_addr_length64(void)  { return (void *)AssetGetLength64; }
static void *mc_addr_remaining(void) { return (void *)AssetGetRemainingLength; }
static void *mc_addr_remaining64(void) { return (void *)AssetGetRemainingLength64; }
static void *mc_addr_close(void)     { return (void *)AssetClose; }
static void *mc_addr_getbuffer(void) { return (void *)AssetGetBuffer; }
static void *mc_addr_openfd(void)    { return (void *)AssetOpenFileDescriptor; }
static void *mc_addr_isalloc(void)   { return (void *)AssetIsAllocated; }
*/
import "C"

import (
	"errors"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/mcbegamerxx954/mcbe-shader-redirector/internal/asset"
	"github.com/mcbegamerxx954/mcbe-shader-redirector/internal/assethooks"
	"github.com/mcbegamerxx954/mcbe-shader-redirector/internal/transcoder"
)

// errRealCallFailed marks a negative/NULL result from the real AAsset
// function the realXxx closures forward to, so Shims can tell failure
// apart from a legitimate zero-length result.
var errRealCallFailed = errors.New("nativehooks: real asset call failed")

var activeShims atomic.Pointer[assethooks.Shims]

var (
	originalsMu sync.RWMutex
	originals   map[string]uintptr
)

// SetShims installs the Shims instance every hook below delegates to. Must
// be called before the hooked module's GOT slots are patched, so the very
// first intercepted call already has somewhere to forward.
func SetShims(s *assethooks.Shims) {
	activeShims.Store(s)
}

var activeTranscoder atomic.Pointer[transcoder.Transcoder]

// SetTranscoder installs the Transcoder whose host-version detection is
// triggered from the first AssetOpen call, once a real AAssetManager is
// available to read RenderChunk.material.bin through.
func SetTranscoder(t *transcoder.Transcoder) {
	activeTranscoder.Store(t)
}

// SetOriginals records the pre-patch GOT slot values pltpatch.Install
// returned, keyed by symbol name, so each hook below can still reach the
// real implementation it shadowed.
func SetOriginals(addrs map[string]uintptr) {
	originalsMu.Lock()
	defer originalsMu.Unlock()
	originals = addrs
}

func original(name string) unsafe.Pointer {
	originalsMu.RLock()
	defer originalsMu.RUnlock()
	return unsafe.Pointer(originals[name])
}

func toHandle(a *C.AAsset) asset.Handle {
	return asset.Handle(uintptr(unsafe.Pointer(a)))
}

func toAsset(h asset.Handle) *C.AAsset {
	return (*C.AAsset)(unsafe.Pointer(uintptr(h)))
}

// lastManager remembers the most recent AAssetManager the host has opened
// an asset through, so RealAssetReader has something to issue its own
// detection-only opens against.
var lastManager atomic.Uintptr

//export AssetOpen
func AssetOpen(mgr *C.AAssetManager, fname *C.char, mode C.int) *C.AAsset {
	lastManager.Store(uintptr(unsafe.Pointer(mgr)))
	if t := activeTranscoder.Load(); t != nil {
		t.DetectHostVersion(RealAssetReader())
	}
	realOpen := func() (asset.Handle, error) {
		a := C.mc_call_open(original("AAssetManager_open"), mgr, fname, mode)
		return toHandle(a), nil
	}
	s := activeShims.Load()
	if s == nil {
		h, _ := realOpen()
		return toAsset(h)
	}
	h, _ := s.Open(C.GoString(fname), realOpen)
	return toAsset(h)
}

//export AssetRead
func AssetRead(a *C.AAsset, buf unsafe.Pointer, count C.size_t) C.int {
	h := toHandle(a)
	realRead := func() (int, error) {
		n := int(C.mc_call_read(original("AAsset_read"), a, buf, count))
		if n < 0 {
			return n, errRealCallFailed
		}
		return n, nil
	}
	s := activeShims.Load()
	if s == nil {
		n, _ := realRead()
		return C.int(n)
	}
	out := unsafe.Slice((*byte)(buf), int(count))
	n, err := s.Read(h, out, realRead)
	if err != nil {
		return -1
	}
	return C.int(n)
}

//export AssetSeek
func AssetSeek(a *C.AAsset, off C.off_t, whence C.int) C.off_t {
	h := toHandle(a)
	realSeek := func() (int64, error) {
		pos := int64(C.mc_call_seek(original("AAsset_seek"), a, off, whence))
		if pos < 0 {
			return pos, errRealCallFailed
		}
		return pos, nil
	}
	s := activeShims.Load()
	if s == nil {
		pos, _ := realSeek()
		return C.off_t(pos)
	}
	pos, _ := s.Seek(h, int64(off), int(whence), realSeek)
	return C.off_t(pos)
}

//export AssetSeek64
func AssetSeek64(a *C.AAsset, off C.off64_t, whence C.int) C.off64_t {
	h := toHandle(a)
	realSeek := func() (int64, error) {
		pos := int64(C.mc_call_seek64(original("AAsset_seek64"), a, off, whence))
		if pos < 0 {
			return pos, errRealCallFailed
		}
		return pos, nil
	}
	s := activeShims.Load()
	if s == nil {
		pos, _ := realSeek()
		return C.off64_t(pos)
	}
	pos, _ := s.Seek(h, int64(off), int(whence), realSeek)
	return C.off64_t(pos)
}

//export AssetGetLength
func AssetGetLength(a *C.AAsset) C.off_t {
	h := toHandle(a)
	realLength := func() (int64, error) {
		return int64(C.mc_call_length(original("AAsset_getLength"), a)), nil
	}
	s := activeShims.Load()
	if s == nil {
		n, _ := realLength()
		return C.off_t(n)
	}
	n, _ := s.Length(h, realLength)
	return C.off_t(n)
}

//export AssetGetLength64
func AssetGetLength64(a *C.AAsset) C.off64_t {
	h := toHandle(a)
	realLength := func() (int64, error) {
		return int64(C.mc_call_length64(original("AAsset_getLength64"), a)), nil
	}
	s := activeShims.Load()
	if s == nil {
		n, _ := realLength()
		return C.off64_t(n)
	}
	n, _ := s.Length(h, realLength)
	return C.off64_t(n)
}

//export AssetGetRemainingLength
func AssetGetRemainingLength(a *C.AAsset) C.off_t {
	h := toHandle(a)
	realRemaining := func() (int64, error) {
		return int64(C.mc_call_length(original("AAsset_getRemainingLength"), a)), nil
	}
	s := activeShims.Load()
	if s == nil {
		n, _ := realRemaining()
		return C.off_t(n)
	}
	n, _ := s.Remaining(h, realRemaining)
	return C.off_t(n)
}

//export AssetGetRemainingLength64
func AssetGetRemainingLength64(a *C.AAsset) C.off64_t {
	h := toHandle(a)
	realRemaining := func() (int64, error) {
		return int64(C.mc_call_length64(original("AAsset_getRemainingLength64"), a)), nil
	}
	s := activeShims.Load()
	if s == nil {
		n, _ := realRemaining()
		return C.off64_t(n)
	}
	n, _ := s.Remaining(h, realRemaining)
	return C.off64_t(n)
}

//export AssetClose
func AssetClose(a *C.AAsset) {
	h := toHandle(a)
	realClose := func() {
		C.mc_call_close(original("AAsset_close"), a)
	}
	s := activeShims.Load()
	if s == nil {
		realClose()
		return
	}
	s.Close(h, realClose)
}

//export AssetGetBuffer
func AssetGetBuffer(a *C.AAsset) unsafe.Pointer {
	h := toHandle(a)
	realGetBuffer := func() ([]byte, error) {
		p := C.mc_call_getbuffer(original("AAsset_getBuffer"), a)
		if p == nil {
			return nil, errRealCallFailed
		}
		n := int(C.mc_call_length(original("AAsset_getLength"), a))
		return unsafe.Slice((*byte)(unsafe.Pointer(p)), n), nil
	}
	s := activeShims.Load()
	if s == nil {
		return unsafe.Pointer(C.mc_call_getbuffer(original("AAsset_getBuffer"), a))
	}
	buf, err := s.GetBuffer(h, realGetBuffer)
	if err != nil || len(buf) == 0 {
		return nil
	}
	return unsafe.Pointer(&buf[0])
}

//export AssetOpenFileDescriptor
func AssetOpenFileDescriptor(a *C.AAsset, outStart, outLen *C.off_t) C.int {
	h := toHandle(a)
	realOpenFD := func() (bool, error) {
		fd := C.mc_call_openfd(original("AAsset_openFileDescriptor"), a, outStart, outLen)
		return fd >= 0, nil
	}
	s := activeShims.Load()
	if s == nil {
		ok, _ := realOpenFD()
		if ok {
			return 0
		}
		return -1
	}
	ok, _ := s.OpenFileDescriptor(h, realOpenFD)
	if ok {
		return 0
	}
	return -1
}

//export AssetIsAllocated
func AssetIsAllocated(a *C.AAsset) C.int {
	h := toHandle(a)
	realIsAllocated := func() bool {
		return C.mc_call_isalloc(original("AAsset_isAllocated"), a) != 0
	}
	s := activeShims.Load()
	if s == nil {
		if realIsAllocated() {
			return 1
		}
		return 0
	}
	if s.IsAllocated(h, realIsAllocated) {
		return 1
	}
	return 0
}

// RealAssetReader returns a transcoder.AssetReader that opens, fully reads,
// and closes an asset through the real (un-hooked) AAssetManager chain,
// against whichever AAssetManager the host has most recently used. The
// transcoder calls this exactly once, to read RenderChunk.material.bin for
// host-version detection; it must not go through Shims.Open, since that
// asset is never itself a replacement candidate.
func RealAssetReader() func(path string) ([]byte, error) {
	return func(path string) ([]byte, error) {
		mgr := (*C.AAssetManager)(unsafe.Pointer(lastManager.Load()))
		if mgr == nil {
			return nil, errRealCallFailed
		}
		cpath := C.CString(path)
		defer C.free(unsafe.Pointer(cpath))

		a := C.mc_call_open(original("AAssetManager_open"), mgr, cpath, 0)
		if a == nil {
			return nil, errRealCallFailed
		}
		defer C.mc_call_close(original("AAsset_close"), a)

		n := int(C.mc_call_length(original("AAsset_getLength"), a))
		if n <= 0 {
			return nil, errRealCallFailed
		}
		buf := make([]byte, n)
		got := int(C.mc_call_read(original("AAsset_read"), a, unsafe.Pointer(&buf[0]), C.size_t(n)))
		if got != n {
			return nil, errRealCallFailed
		}
		return buf, nil
	}
}

// Symbols lists the exported functions above keyed by the AAsset import
// name they replace, in the exact shape pltpatch.Install expects.
func Symbols() map[string]uintptr {
	return map[string]uintptr{
		"AAssetManager_open":          uintptr(C.mc_addr_open()),
		"AAsset_read":                 uintptr(C.mc_addr_read()),
		"AAsset_seek":                 uintptr(C.mc_addr_seek()),
		"AAsset_seek64":               uintptr(C.mc_addr_seek64()),
		"AAsset_getLength":            uintptr(C.mc_addr_length()),
		"AAsset_getLength64":          uintptr(C.mc_addr_length64()),
		"AAsset_getRemainingLength":   uintptr(C.mc_addr_remaining()),
		"AAsset_getRemainingLength64": uintptr(C.mc_addr_remaining64()),
		"AAsset_close":                uintptr(C.mc_addr_close()),
		"AAsset_getBuffer":            uintptr(C.mc_addr_getbuffer()),
		"AAsset_openFileDescriptor":   uintptr(C.mc_addr_openfd()),
		"AAsset_isAllocated":          uintptr(C.mc_addr_isalloc()),
	}
}
