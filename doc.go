// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package redirector is the entry point of the injected shared library: it
// wires together the ELF module reader, the PLT hook installer, the
// Resource Index and its filesystem watcher, the Virtual Asset Table, and
// the shader transcoder, then installs the asset-API hooks into the host
// process.
//
// Install is the Go analogue of the original implementation's
// process-attach constructor: call it once, as early as possible after the
// library is loaded (from a cgo JNI_OnLoad), and it takes care of the rest.
package redirector
