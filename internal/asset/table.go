// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package asset

import (
	"errors"
	"io"
	"sync"
)

// Handle identifies one virtualized asset. It is always the host's own
// native asset pointer reinterpreted as an integer — this package never
// allocates handles itself, it only tags handles the host already created.
type Handle uintptr

// ErrNotRegistered is returned by table operations against a handle that
// was never registered (the normal case: the asset didn't match the
// Resource Index, and every shim falls through to the real implementation
// instead).
var ErrNotRegistered = errors.New("asset: handle not registered")

// Table is the Virtual Asset Table: a map from Handle to the Backing that
// should serve it, guarded by a single mutex. Per spec.md §7, this mutex
// only needs to protect cross-handle aliasing (map mutation); the host's
// own usage pattern already serializes operations against any one handle.
type Table struct {
	mu      sync.Mutex
	entries map[Handle]*entry
}

// entry pairs a handle's backing with the last buffer GetBuffer read for
// it. The cached buffer is owned by the entry, not by any one call: the
// host's AAsset_getBuffer contract hands out a pointer that stays valid
// for the asset's remaining lifetime, so the Go slice it points into must
// stay reachable from something that outlives the call stack that
// produced it. Keeping it here, rather than only in a local variable
// handed to cgo, is what keeps the garbage collector from reclaiming it
// out from under the native side the moment GetBuffer returns.
type entry struct {
	backing Backing
	buf     []byte
}

// NewTable constructs an empty Virtual Asset Table.
func NewTable() *Table {
	return &Table{entries: make(map[Handle]*entry)}
}

// Register associates handle with backing. If handle is already
// registered, the old backing is silently replaced (callers are expected
// to have closed it first).
func (t *Table) Register(handle Handle, backing Backing) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[handle] = &entry{backing: backing}
}

// IsRegistered reports whether handle has a virtual backing.
func (t *Table) IsRegistered(handle Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.entries[handle]
	return ok
}

// Remove unregisters handle, returning its backing so the caller can close
// it, and whether it was registered at all. The entry's cached GetBuffer
// result, if any, is dropped along with it: once a handle is removed the
// native side is no longer entitled to dereference a pointer into it.
func (t *Table) Remove(handle Handle) (Backing, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[handle]
	if !ok {
		return nil, false
	}
	delete(t.entries, handle)
	return e.backing, true
}

func (t *Table) get(handle Handle) (Backing, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[handle]
	if !ok {
		return nil, false
	}
	return e.backing, true
}

func (t *Table) getEntry(handle Handle) (*entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[handle]
	return e, ok
}

// Seek whence values, matching POSIX SEEK_SET/SEEK_CUR/SEEK_END (and the
// host's own asset-seek API, which reuses the same constants).
const (
	SeekSet = io.SeekStart
	SeekCur = io.SeekCurrent
	SeekEnd = io.SeekEnd
)

// Seek repositions handle's backing. Returns ErrNotRegistered if handle has
// no virtual backing, so the shim knows to fall through to the real
// implementation.
func (t *Table) Seek(handle Handle, offset int64, whence int) (int64, error) {
	b, ok := t.get(handle)
	if !ok {
		return 0, ErrNotRegistered
	}
	return b.Seek(offset, whence)
}

// Read fills buf from handle's current position, advancing it. Returns
// ErrNotRegistered if handle has no virtual backing.
func (t *Table) Read(handle Handle, buf []byte) (int, error) {
	b, ok := t.get(handle)
	if !ok {
		return 0, ErrNotRegistered
	}
	n, err := b.Read(buf)
	if errors.Is(err, io.EOF) {
		err = nil
	}
	return n, err
}

// Length returns handle's total backing size.
func (t *Table) Length(handle Handle) (int64, error) {
	b, ok := t.get(handle)
	if !ok {
		return 0, ErrNotRegistered
	}
	return b.Len()
}

// Remaining returns the number of bytes left to read from handle's current
// position to the end of its backing.
func (t *Table) Remaining(handle Handle) (int64, error) {
	b, ok := t.get(handle)
	if !ok {
		return 0, ErrNotRegistered
	}
	total, err := b.Len()
	if err != nil {
		return 0, err
	}
	pos, err := b.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	return total - pos, nil
}

// GetBuffer reads the entirety of handle's backing into memory and returns
// it, mirroring the real asset API's "return a direct pointer to the whole
// asset" contract. The backing's position is left at its original value.
//
// The returned slice is cached on handle's table entry rather than
// allocated fresh on every call: the native side receives a raw pointer
// into it (&buf[0]), and that pointer has to stay valid for as long as
// AAsset_getBuffer's contract promises, not just until this call returns.
// Caching it on the entry keeps a live Go reference for exactly as long as
// the entry itself is registered; Remove drops both together.
func (t *Table) GetBuffer(handle Handle) ([]byte, error) {
	e, ok := t.getEntry(handle)
	if !ok {
		return nil, ErrNotRegistered
	}
	if e.buf != nil {
		return e.buf, nil
	}
	b := e.backing
	pos, err := b.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	if _, err := b.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(b)
	if err != nil {
		return nil, err
	}
	if _, err := b.Seek(pos, io.SeekStart); err != nil {
		return nil, err
	}

	t.mu.Lock()
	if cur, ok := t.entries[handle]; ok && cur == e {
		cur.buf = data
	}
	t.mu.Unlock()

	return data, nil
}

// OpenFileDescriptor always fails for a virtualized handle: a replacement
// asset may be a transcoded in-memory buffer with no backing file
// descriptor to hand out, so this path is refused uniformly rather than
// handled per-backing-type, matching the original implementation's choice
// to just return failure for any virtualized handle.
func (t *Table) OpenFileDescriptor(handle Handle) (ok bool, virtualized bool) {
	_, virtualized = t.get(handle)
	return false, virtualized
}

// IsAllocated reports whether handle is backed by an in-memory buffer
// (AAsset_isAllocated's question), and whether handle is virtualized at
// all. A virtualized handle always answers false here: spec.md's shim
// table and the original implementation both treat every virtual backing,
// file or buffer, as "not a direct memory allocation".
func (t *Table) IsAllocated(handle Handle) (allocated bool, virtualized bool) {
	_, virtualized = t.get(handle)
	return false, virtualized
}
