// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package redirector

import (
	"path/filepath"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/mcbegamerxx954/mcbe-shader-redirector/internal/jnibridge"
	"github.com/mcbegamerxx954/mcbe-shader-redirector/internal/materialbin"
)

// defaultModuleSuffix is the host library Install hooks into, matching
// src/platform/android/mod.rs's LIBNAME.
const defaultModuleSuffix = "libminecraftpe.so"

// mojangSubpath is appended to the harvested app-storage path to reach the
// minecraft-root directory spec.md §4.3 builds the Resource Index from.
const mojangSubpath = "games/com.mojang"

// Config controls one Install call. The zero value is usable: every field
// left unset is filled in with a production default, the way
// pe.Options/pe.New let a caller override only what matters to them.
type Config struct {
	// ModuleSuffix selects the loaded library Install patches PLT slots
	// in. Defaults to "libminecraftpe.so".
	ModuleSuffix string

	// MCRoot is the internal-storage minecraft-root directory containing
	// options.txt, global_resource_packs.json, and resource_packs/. Left
	// empty, it is derived from jnibridge.StoragePath (Android only;
	// blocks until the host's first isEduMode call harvests it). Off
	// Android, or for offline tooling, callers should set this
	// explicitly.
	MCRoot string

	// ExternalMCRoot is the external-storage counterpart of MCRoot, used
	// by the Watcher Loop when options.txt's dvce_filestoragelocation
	// names external storage and a global_resource_packs.json actually
	// exists there. Left empty, it is derived from
	// jnibridge.ExternalStoragePath (Android only); a host with no
	// external storage mounted leaves this empty and the watcher stays
	// on MCRoot.
	ExternalMCRoot string

	// OptionsPath overrides the options.txt location the Watcher Loop
	// reads dvce_filestoragelocation from. Defaults to "options.txt"
	// under MCRoot.
	OptionsPath string

	// EnabledVersions bounds which compiled-material schema versions the
	// transcoder will attempt to parse input under. A nil slice defaults
	// to materialbin.AllVersions.
	EnabledVersions []materialbin.SchemaVersion

	// Logger receives every diagnostic this package and the subsystems it
	// wires emit. A nil Logger defaults to log.DefaultLogger.
	Logger log.Logger
}

// withDefaults returns a copy of c with every unset field filled in.
func (c Config) withDefaults() Config {
	if c.ModuleSuffix == "" {
		c.ModuleSuffix = defaultModuleSuffix
	}
	if c.Logger == nil {
		c.Logger = log.DefaultLogger
	}
	if c.MCRoot == "" {
		if storagePath := jnibridge.StoragePath(); storagePath != "" {
			c.MCRoot = filepath.Join(storagePath, mojangSubpath)
		}
	}
	if c.ExternalMCRoot == "" {
		if externalPath := jnibridge.ExternalStoragePath(); externalPath != "" {
			c.ExternalMCRoot = filepath.Join(externalPath, mojangSubpath)
		}
	}
	if c.OptionsPath == "" {
		c.OptionsPath = filepath.Join(c.MCRoot, "options.txt")
	}
	return c
}
