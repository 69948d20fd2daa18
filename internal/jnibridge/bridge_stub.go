// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

//go:build !android

package jnibridge

import "github.com/mcbegamerxx954/mcbe-shader-redirector/internal/transcoder"

// StoragePath is unavailable off Android: there is no JNIEnv to harvest it
// from. Host-independent tooling (the CLI, tests) should pass a storage
// root explicitly instead of calling this.
func StoragePath() string {
	return ""
}

// ExternalStoragePath is unavailable off Android, for the same reason as
// StoragePath.
func ExternalStoragePath() string {
	return ""
}

// SetTranscoder is a no-op off Android: there are no JVM entry points to
// wire it to.
func SetTranscoder(*transcoder.Transcoder) {}
