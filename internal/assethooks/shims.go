// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package assethooks implements the native asset-API shims described in
// spec.md §4.5: thin wrappers the PLT hooks (installed by pltpatch) or the
// non-PLT trampoline (installed by trampoline) dispatch into instead of the
// host's real AAssetManager/AAsset functions.
//
// Open calls the real implementation first, unconditionally, then decides
// whether to register a virtual backing over the handle it returned; the
// real open is never skipped, even on a Resource Index hit, so the host's
// own handle bookkeeping is exactly as it would be without this payload
// present. The per-handle shims (read, seek, length, buffer, descriptor)
// consult the Virtual Asset Table first and call the real function only
// for handles with no registered backing. Close removes any backing and
// then always calls the real close.
package assethooks

import (
	"os"
	"strings"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/mcbegamerxx954/mcbe-shader-redirector/internal/asset"
	"github.com/mcbegamerxx954/mcbe-shader-redirector/internal/packs"
)

// Transcoder produces the bytes a material.bin replacement should actually
// serve, given its raw on-disk contents. The production implementation is
// internal/transcoder.Transcoder; tests can substitute a stub.
type Transcoder interface {
	Transcode(raw []byte) ([]byte, error)
}

// Shims holds the state every asset shim needs: the current Resource
// Index, the Virtual Asset Table, and the shader transcoder.
type Shims struct {
	Store      *packs.Store
	Table      *asset.Table
	Transcoder Transcoder
	Logger     *log.Helper
}

// New constructs a Shims. logger may be nil, in which case
// log.DefaultLogger is used.
func New(store *packs.Store, table *asset.Table, transcoder Transcoder, logger log.Logger) *Shims {
	if logger == nil {
		logger = log.DefaultLogger
	}
	return &Shims{Store: store, Table: table, Transcoder: transcoder, Logger: log.NewHelper(logger)}
}

// Open always invokes openReal first. If name resolves (after prefix
// remapping) to a Resource Index entry, it registers a virtual backing
// over the handle openReal produced: a transcoded in-memory buffer for
// ".material.bin" assets, or a plain file backing otherwise.
func (s *Shims) Open(name string, openReal func() (asset.Handle, error)) (asset.Handle, error) {
	handle, err := openReal()
	if err != nil {
		return handle, err
	}

	key, matched := remapPath(name)
	if !matched {
		return handle, nil
	}

	src, ok := s.Store.Load().Lookup(key)
	if !ok {
		return handle, nil
	}

	if strings.HasSuffix(name, ".material.bin") {
		raw, err := os.ReadFile(src)
		if err != nil {
			s.Logger.Warnw("msg", "cannot read replacement shader", "path", src, "err", err)
			return handle, nil
		}
		out := raw
		if s.Transcoder != nil {
			if transcoded, err := s.Transcoder.Transcode(raw); err == nil {
				out = transcoded
			} else {
				s.Logger.Warnw("msg", "transcode failed, serving original bytes", "path", src, "err", err)
			}
		}
		s.Table.Register(handle, asset.NewBufferBacking(out))
		return handle, nil
	}

	fb, err := asset.NewFileBacking(src)
	if err != nil {
		s.Logger.Warnw("msg", "cannot open replacement asset", "path", src, "err", err)
		return handle, nil
	}
	s.Table.Register(handle, fb)
	return handle, nil
}

// Seek virtualizes an asset's seek call. If handle has no virtual
// backing, realSeek is invoked instead.
func (s *Shims) Seek(handle asset.Handle, offset int64, whence int, realSeek func() (int64, error)) (int64, error) {
	if !s.Table.IsRegistered(handle) {
		return realSeek()
	}
	return s.Table.Seek(handle, offset, whence)
}

// Read virtualizes an asset's read call.
func (s *Shims) Read(handle asset.Handle, buf []byte, realRead func() (int, error)) (int, error) {
	if !s.Table.IsRegistered(handle) {
		return realRead()
	}
	return s.Table.Read(handle, buf)
}

// Length virtualizes an asset's total-length query.
func (s *Shims) Length(handle asset.Handle, realLength func() (int64, error)) (int64, error) {
	if !s.Table.IsRegistered(handle) {
		return realLength()
	}
	return s.Table.Length(handle)
}

// Remaining virtualizes an asset's remaining-bytes query.
func (s *Shims) Remaining(handle asset.Handle, realRemaining func() (int64, error)) (int64, error) {
	if !s.Table.IsRegistered(handle) {
		return realRemaining()
	}
	return s.Table.Remaining(handle)
}

// GetBuffer virtualizes the host's "direct pointer to the whole asset"
// call.
func (s *Shims) GetBuffer(handle asset.Handle, realGetBuffer func() ([]byte, error)) ([]byte, error) {
	if !s.Table.IsRegistered(handle) {
		return realGetBuffer()
	}
	return s.Table.GetBuffer(handle)
}

// OpenFileDescriptor virtualizes the host's file-descriptor handout call.
// A virtualized handle always refuses (ok=false), matching the original
// implementation's behavior, since a transcoded asset has no backing
// descriptor to hand out.
func (s *Shims) OpenFileDescriptor(handle asset.Handle, realOpenFD func() (ok bool, err error)) (bool, error) {
	if ok, virtualized := s.Table.OpenFileDescriptor(handle); virtualized {
		return ok, nil
	}
	return realOpenFD()
}

// IsAllocated virtualizes the host's is-allocated query. Every virtual
// backing answers false.
func (s *Shims) IsAllocated(handle asset.Handle, realIsAllocated func() bool) bool {
	if allocated, virtualized := s.Table.IsAllocated(handle); virtualized {
		return allocated
	}
	return realIsAllocated()
}

// Close virtualizes the host's close call. If handle was virtualized, its
// backing is removed and (if it holds an open file descriptor) closed. The
// real close is always called too: the handle's underlying resource was
// created by the real open in Open, and the host owns its lifecycle
// regardless of whether a replacement was substituted on top of it.
func (s *Shims) Close(handle asset.Handle, realClose func()) {
	if backing, ok := s.Table.Remove(handle); ok {
		if closer, ok := backing.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				s.Logger.Warnw("msg", "error closing virtual asset backing", "err", err)
			}
		}
	}
	realClose()
}
