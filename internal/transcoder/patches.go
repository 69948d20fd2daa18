// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package transcoder

import (
	"bytes"

	"github.com/mcbegamerxx954/mcbe-shader-redirector/internal/materialbin"
)

// lightmapAnchor/lightmapReplacement and the LOD equivalents are the
// well-known textual anchors patched inside a bgfx shader blob's embedded
// source, per spec.md §4.6 step 4. Matching is byte-literal, the same way
// a memmem finder would be used against a raw buffer.
var (
	lightmapAnchor      = []byte("#define USE_BASE_LIGHTMAP 1")
	lightmapReplacement = []byte("#define USE_BASE_LIGHTMAP 0")

	lodAnchor      = []byte("#define USE_TEXEL_AA 0")
	lodReplacement = []byte("#define USE_TEXEL_AA 1")
)

// patchedPassNames are the only passes either patch ever targets.
var patchedPassNames = map[string]bool{
	"RenderChunk":        true,
	"RenderChunkPrepass": true,
}

// spliceReplace returns data with the first occurrence of anchor replaced
// by replacement, and whether a replacement was made.
func spliceReplace(data, anchor, replacement []byte) ([]byte, bool) {
	idx := bytes.Index(data, anchor)
	if idx < 0 {
		return data, false
	}
	out := make([]byte, 0, len(data)-len(anchor)+len(replacement))
	out = append(out, data[:idx]...)
	out = append(out, replacement...)
	out = append(out, data[idx+len(anchor):]...)
	return out, true
}

// applyLightmapPatch rewrites the lightmap anchor in every stage of every
// variant belonging to a RenderChunk/RenderChunkPrepass pass.
func applyLightmapPatch(def *materialbin.CompiledMaterialDefinition) {
	def.VisitShaderCodes(func(passName string, code *materialbin.StageCode) {
		if !patchedPassNames[passName] {
			return
		}
		if patched, ok := spliceReplace(code.BgfxShaderData, lightmapAnchor, lightmapReplacement); ok {
			code.BgfxShaderData = patched
		}
	})
}

// applyTextureLODPatch rewrites the texture-LOD anchor in every stage of
// every variant belonging to the RenderChunk pass.
func applyTextureLODPatch(def *materialbin.CompiledMaterialDefinition) {
	def.VisitShaderCodes(func(passName string, code *materialbin.StageCode) {
		if passName != "RenderChunk" {
			return
		}
		if patched, ok := spliceReplace(code.BgfxShaderData, lodAnchor, lodReplacement); ok {
			code.BgfxShaderData = patched
		}
	})
}
