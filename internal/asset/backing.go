// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package asset virtualizes the host's native asset-handle API: once a
// handle has been registered against a replacement source, every
// subsequent read/seek/length/close call against that handle is served
// from the registered Backing instead of falling through to the host's
// own implementation.
package asset

import (
	"bytes"
	"io"
	"os"
)

// Backing is either a real file or an in-memory buffer standing in for an
// asset's bytes, addressed the same way the host's own seek/read API
// addresses assets.
type Backing interface {
	io.ReadSeeker
	// Len returns the backing's total size in bytes.
	Len() (int64, error)
}

// FileBacking serves bytes from an on-disk file, used for replacement
// assets that are not transcoded (anything that isn't a .material.bin).
type FileBacking struct {
	f *os.File
}

// NewFileBacking opens path for reading and wraps it as a Backing.
func NewFileBacking(path string) (*FileBacking, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &FileBacking{f: f}, nil
}

func (b *FileBacking) Read(p []byte) (int, error)                 { return b.f.Read(p) }
func (b *FileBacking) Seek(offset int64, whence int) (int64, error) { return b.f.Seek(offset, whence) }

func (b *FileBacking) Len() (int64, error) {
	info, err := b.f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Close releases the underlying file descriptor.
func (b *FileBacking) Close() error { return b.f.Close() }

// BufferBacking serves bytes from an in-memory buffer, used for replacement
// material.bin assets (transcoded or not).
type BufferBacking struct {
	r *bytes.Reader
}

// NewBufferBacking wraps data as a Backing.
func NewBufferBacking(data []byte) *BufferBacking {
	return &BufferBacking{r: bytes.NewReader(data)}
}

func (b *BufferBacking) Read(p []byte) (int, error)                 { return b.r.Read(p) }
func (b *BufferBacking) Seek(offset int64, whence int) (int64, error) { return b.r.Seek(offset, whence) }
func (b *BufferBacking) Len() (int64, error) { return b.r.Size(), nil }
