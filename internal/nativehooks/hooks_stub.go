// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

//go:build !android

// Package nativehooks bridges the AAsset PLT/GOT hook functions installed
// by pltpatch.Install to assethooks.Shims. Off Android there are no real
// AAsset C functions to shadow, so this file only keeps the package
// importable (and its Install-time wiring testable) from the host
// development machine.
package nativehooks

import (
	"errors"

	"github.com/mcbegamerxx954/mcbe-shader-redirector/internal/assethooks"
	"github.com/mcbegamerxx954/mcbe-shader-redirector/internal/transcoder"
)

// SetShims is a no-op off Android.
func SetShims(*assethooks.Shims) {}

// SetOriginals is a no-op off Android.
func SetOriginals(map[string]uintptr) {}

// SetTranscoder is a no-op off Android.
func SetTranscoder(*transcoder.Transcoder) {}

// Symbols returns an empty symbol table off Android: there is nothing to
// hook without a live AAsset import table to patch.
func Symbols() map[string]uintptr {
	return nil
}

// errNoAssetManager is returned by RealAssetReader off Android, where there
// is no AAssetManager to read through outside the host process.
var errNoAssetManager = errors.New("nativehooks: no AAssetManager available outside an android build")

// RealAssetReader always fails off Android.
func RealAssetReader() func(path string) ([]byte, error) {
	return func(string) ([]byte, error) {
		return nil, errNoAssetManager
	}
}
