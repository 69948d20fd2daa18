// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package transcoder

import (
	"bytes"
	"errors"
	"testing"

	"github.com/mcbegamerxx954/mcbe-shader-redirector/internal/materialbin"
)

func encode(t *testing.T, def *materialbin.CompiledMaterialDefinition, v materialbin.SchemaVersion) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := def.Write(&buf, v); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return buf.Bytes()
}

func renderChunkDef(blob []byte) *materialbin.CompiledMaterialDefinition {
	return &materialbin.CompiledMaterialDefinition{
		Name: "RenderChunk",
		Passes: map[string]Pass{
			"RenderChunk": {
				Variants: []materialbin.Variant{
					{ShaderCodes: []materialbin.StageCode{
						{Stage: materialbin.StageFragment, PlatformName: "essl300", BgfxShaderData: blob},
					}},
				},
			},
		},
	}
}

type Pass = materialbin.Pass

func readerFor(data []byte) AssetReader {
	return func(path string) ([]byte, error) {
		return data, nil
	}
}

func failingReader() AssetReader {
	return func(path string) ([]byte, error) {
		return nil, errors.New("not found")
	}
}

// S6 — Transcoder skip: input already matches the host's detected version
// and no patch applies, so Transcode must return the raw bytes unchanged.
func TestTranscodeUseOriginalWhenVersionsMatchAndNoPatch(t *testing.T) {
	def := renderChunkDef([]byte("plain shader source, nothing to patch"))
	raw := encode(t, def, materialbin.V1_21_110)

	tr := New(nil)
	tr.DetectHostVersion(readerFor(raw))

	got, err := tr.Transcode(raw)
	if err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Error("Transcode modified bytes when no patch should have applied")
	}
}

func TestTranscodeDisabledWhenNoVersionParses(t *testing.T) {
	tr := New(nil)
	tr.DetectHostVersion(failingReader())

	raw := []byte("not a material file at all")
	got, err := tr.Transcode(raw)
	if err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Error("disabled transcoder must return input bytes unchanged")
	}
	_, known, disabled := tr.HostVersion()
	if !known || !disabled {
		t.Error("expected HostVersion to report detected+disabled")
	}
}

func TestTranscodeAppliesTextureLODPatchAcrossVersionGap(t *testing.T) {
	blob := []byte("prefix #define USE_TEXEL_AA 0 suffix")
	def := renderChunkDef(blob)
	raw := encode(t, def, materialbin.V1_19_60)

	hostDef := renderChunkDef([]byte("host probe bytes"))
	hostRaw := encode(t, hostDef, materialbin.V1_21_110)

	tr := New(nil)
	tr.DetectHostVersion(readerFor(hostRaw))

	got, err := tr.Transcode(raw)
	if err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	if bytes.Equal(got, raw) {
		t.Fatal("expected Transcode to rewrite bytes across the version gap")
	}

	reparsed, err := materialbin.Parse(got, materialbin.V1_21_110)
	if err != nil {
		t.Fatalf("Parse of transcoded output: %v", err)
	}
	patchedBlob := reparsed.Passes["RenderChunk"].Variants[0].ShaderCodes[0].BgfxShaderData
	if !bytes.Contains(patchedBlob, []byte("USE_TEXEL_AA 1")) {
		t.Errorf("patched blob = %q, want USE_TEXEL_AA flipped to 1", patchedBlob)
	}
}

// TestSetHandleTextureLODsOverridesHeuristic verifies that forcing the
// texture-LOD patch off via SetHandleTextureLODs suppresses it even when
// the version-gap heuristic would otherwise apply it.
func TestSetHandleTextureLODsOverridesHeuristic(t *testing.T) {
	blob := []byte("prefix #define USE_TEXEL_AA 0 suffix")
	raw := encode(t, renderChunkDef(blob), materialbin.V1_19_60)

	hostRaw := encode(t, renderChunkDef([]byte("host probe bytes")), materialbin.V1_21_110)

	tr := New(nil)
	tr.DetectHostVersion(readerFor(hostRaw))
	tr.SetHandleTextureLODs(false)

	// The input is still re-serialized under the host's version (the versions
	// differ), so the check is on the embedded blob, not the whole output.
	got, err := tr.Transcode(raw)
	if err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	reparsed, err := materialbin.Parse(got, materialbin.V1_21_110)
	if err != nil {
		t.Fatalf("Parse of transcoded output: %v", err)
	}
	outBlob := reparsed.Passes["RenderChunk"].Variants[0].ShaderCodes[0].BgfxShaderData
	if !bytes.Equal(outBlob, blob) {
		t.Error("SetHandleTextureLODs(false) should have suppressed the LOD patch")
	}
}

// TestTranscodeSkipsNonRenderChunkMaterial verifies the texture-LOD patch
// never applies to a material whose name isn't RenderChunk, even though
// the version-gap heuristic alone would otherwise trigger it.
func TestTranscodeSkipsNonRenderChunkMaterial(t *testing.T) {
	blob := []byte("prefix #define USE_TEXEL_AA 0 suffix")
	def := renderChunkDef(blob)
	def.Name = "RenderChunkWater"
	raw := encode(t, def, materialbin.V1_19_60)

	hostDef := renderChunkDef([]byte("host probe bytes"))
	hostDef.Name = "RenderChunkWater"
	hostRaw := encode(t, hostDef, materialbin.V1_21_110)

	tr := New(nil)
	tr.DetectHostVersion(readerFor(hostRaw))

	// The input is still re-serialized under the host's version (the versions
	// differ), so the check is on the embedded blob, not the whole output.
	got, err := tr.Transcode(raw)
	if err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	reparsed, err := materialbin.Parse(got, materialbin.V1_21_110)
	if err != nil {
		t.Fatalf("Parse of transcoded output: %v", err)
	}
	outBlob := reparsed.Passes["RenderChunk"].Variants[0].ShaderCodes[0].BgfxShaderData
	if !bytes.Equal(outBlob, blob) {
		t.Error("texture-LOD patch must not apply to a non-RenderChunk material")
	}
}

func TestSetEnabledVersionsRestrictsParsing(t *testing.T) {
	raw := encode(t, renderChunkDef([]byte("x")), materialbin.V1_18_30)
	hostRaw := encode(t, renderChunkDef([]byte("host probe bytes")), materialbin.V1_21_110)

	tr := New(nil)
	tr.SetEnabledVersions([]materialbin.SchemaVersion{materialbin.V1_21_110})
	tr.DetectHostVersion(readerFor(hostRaw))

	got, err := tr.Transcode(raw)
	if err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Error("restricting enabled versions to exclude the input's actual version should leave it untranscoded")
	}
}
