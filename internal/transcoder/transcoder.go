// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package transcoder rewrites a compiled material.bin asset from whatever
// schema version it was authored under to the version the host actually
// expects, applying a small set of known source-level patches along the
// way when the gap between the two versions requires them.
package transcoder

import (
	"bytes"
	"sync"

	"github.com/mcbegamerxx954/mcbe-shader-redirector/internal/materialbin"
)

// ditheringMarker is scanned for during host-version detection to flag the
// sub-variant that needs the lightmap patch (spec.md §4.6).
const ditheringMarker = "v_dithering"

// AssetReader opens and fully reads a real (host-backed) asset by path, used
// once during host-version detection to read RenderChunk.material.bin.
type AssetReader func(path string) ([]byte, error)

// Transcoder holds the write-once host-version cache and the set of schema
// versions it is willing to try parsing input under.
type Transcoder struct {
	mu              sync.Mutex
	enabledVersions []materialbin.SchemaVersion
	detected        bool
	disabled        bool
	hostVersion     materialbin.SchemaVersion
	dithering       bool

	// lightmapOverride/lodOverride let the host's JVM entry points force
	// the corresponding patch on or off, bypassing the heuristic Transcode
	// otherwise derives from dithering/version-gap detection. *Set is
	// false until the corresponding native setter is ever called.
	lightmapOverrideSet bool
	lightmapOverride    bool
	lodOverrideSet      bool
	lodOverride         bool
}

// New constructs a Transcoder that will try the given versions, in the
// order given, on every call. A nil or empty slice defaults to
// materialbin.AllVersions (newest first).
func New(enabledVersions []materialbin.SchemaVersion) *Transcoder {
	if len(enabledVersions) == 0 {
		enabledVersions = materialbin.AllVersions
	}
	return &Transcoder{enabledVersions: enabledVersions}
}

// candidateRenderChunkPaths are tried in order during host-version
// detection, matching spec.md §4.6's "assets/renderer/materials/... then
// renderer/materials/...".
var candidateRenderChunkPaths = []string{
	"assets/renderer/materials/RenderChunk.material.bin",
	"renderer/materials/RenderChunk.material.bin",
}

// DetectHostVersion performs the one-time host-version probe: it reads
// RenderChunk.material.bin via read, tries every known schema newest to
// oldest, and records the first one that parses along with whether the
// bytes contain the dithering marker. If nothing parses, the transcoder is
// marked permanently disabled.
//
// Safe to call more than once; only the first call has any effect.
func (t *Transcoder) DetectHostVersion(read AssetReader) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.detected {
		return
	}
	t.detected = true

	var raw []byte
	var err error
	for _, path := range candidateRenderChunkPaths {
		raw, err = read(path)
		if err == nil {
			break
		}
	}
	if err != nil {
		t.disabled = true
		return
	}

	for _, v := range materialbin.AllVersions {
		if _, parseErr := materialbin.Parse(raw, v); parseErr == nil {
			t.hostVersion = v
			t.dithering = bytes.Contains(raw, []byte(ditheringMarker))
			return
		}
	}
	t.disabled = true
}

// newestKnownVersion is "the newest" referenced by the lightmap patch
// condition, independent of whichever version the host turns out to be.
var newestKnownVersion = materialbin.AllVersions[0]

// Transcode implements the assethooks.Transcoder contract: it returns the
// bytes that should be served for raw, which on a "use original" outcome
// (disabled transcoder, no version parses, input already matches the host
// with no applicable patches, or a serialization failure) are exactly raw
// unchanged.
func (t *Transcoder) Transcode(raw []byte) ([]byte, error) {
	t.mu.Lock()
	disabled := t.disabled
	hostVersion := t.hostVersion
	dithering := t.dithering
	enabledVersions := t.enabledVersions
	lightmapOverrideSet, lightmapOverride := t.lightmapOverrideSet, t.lightmapOverride
	lodOverrideSet, lodOverride := t.lodOverrideSet, t.lodOverride
	t.mu.Unlock()

	if disabled {
		return raw, nil
	}

	var def *materialbin.CompiledMaterialDefinition
	var inputVersion materialbin.SchemaVersion
	var found bool
	for _, v := range enabledVersions {
		parsed, err := materialbin.Parse(raw, v)
		if err != nil {
			continue
		}
		def, inputVersion, found = parsed, v, true
		break
	}
	if !found {
		return raw, nil
	}

	// Both patches only ever apply to specific named compiled materials:
	// the lightmap patch touches RenderChunk/RenderChunkPrepass passes,
	// and the texture-LOD patch only RenderChunk's. A material with a
	// different name never qualifies, override or not — handle_lightmaps
	// and handle_texturelods gate *whether* a qualifying material gets
	// patched, not *which* materials qualify.
	isLightmapMaterial := def.Name == "RenderChunk" || def.Name == "RenderChunkPrepass"
	isLODMaterial := def.Name == "RenderChunk"

	lightmapApplies := isLightmapMaterial && dithering && inputVersion != newestKnownVersion
	if lightmapOverrideSet {
		lightmapApplies = isLightmapMaterial && lightmapOverride
	}
	lodApplies := isLODMaterial && hostVersion.AtLeast(materialbin.V1_20_80) && inputVersion <= materialbin.V1_19_60
	if lodOverrideSet {
		lodApplies = isLODMaterial && lodOverride
	}

	if inputVersion == hostVersion && !lightmapApplies && !lodApplies {
		return raw, nil
	}

	if lightmapApplies {
		applyLightmapPatch(def)
	}
	if lodApplies {
		applyTextureLODPatch(def)
	}

	var buf bytes.Buffer
	if err := def.Write(&buf, hostVersion); err != nil {
		return raw, nil
	}
	return buf.Bytes(), nil
}

// HostVersion returns the detected host schema version and whether
// detection has run at all. Mainly useful for logging and the CLI.
func (t *Transcoder) HostVersion() (version materialbin.SchemaVersion, known bool, disabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.detected {
		return 0, false, false
	}
	return t.hostVersion, true, t.disabled
}

// SetEnabledVersions replaces the set of schema versions Transcode will
// try parsing input under. Installed behind the host's
// nativeSetEnabledVersions JVM entry point. An empty slice resets to
// materialbin.AllVersions rather than disabling parsing outright.
func (t *Transcoder) SetEnabledVersions(versions []materialbin.SchemaVersion) {
	if len(versions) == 0 {
		versions = materialbin.AllVersions
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabledVersions = versions
}

// SetHandleLightmaps forces the lightmap patch on or off for every future
// Transcode call, overriding the dithering-marker heuristic. Installed
// behind the host's nativeSetHandleLightmaps JVM entry point.
func (t *Transcoder) SetHandleLightmaps(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lightmapOverrideSet = true
	t.lightmapOverride = enabled
}

// SetHandleTextureLODs forces the texture-LOD patch on or off for every
// future Transcode call, overriding the version-gap heuristic. Installed
// behind the host's nativeSetHandleTextureLods JVM entry point.
func (t *Transcoder) SetHandleTextureLODs(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lodOverrideSet = true
	t.lodOverride = enabled
}
