// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package materialbin

// ShaderStage identifies which stage of the graphics pipeline a bgfx blob
// targets.
type ShaderStage uint8

const (
	StageVertex ShaderStage = iota
	StageFragment
	StageCompute
)

func (s ShaderStage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	default:
		return "unknown"
	}
}

// StageCode is one compiled shader stage: the platform it was compiled
// for, and its raw embedded bgfx shader blob.
type StageCode struct {
	Stage          ShaderStage
	PlatformName   string
	BgfxShaderData []byte
}

// Variant is one permutation of a pass (e.g. a combination of preprocessor
// flags), holding one StageCode per stage it defines.
type Variant struct {
	ShaderCodes []StageCode
}

// Pass is a named rendering pass (e.g. "RenderChunk") made up of one or
// more variants.
type Pass struct {
	Variants []Variant
}

// CompiledMaterialDefinition is the full parsed tree of one .material.bin
// asset.
type CompiledMaterialDefinition struct {
	Name   string
	Passes map[string]Pass
}

// VisitShaderCodes calls fn for every StageCode in every variant of every
// pass, in map-then-slice order, letting the transcoder apply patches
// without duplicating the pass/variant traversal in every caller. fn may
// mutate the StageCode in place via the pointer it receives.
func (d *CompiledMaterialDefinition) VisitShaderCodes(fn func(passName string, code *StageCode)) {
	for passName, pass := range d.Passes {
		for vi := range pass.Variants {
			variant := &pass.Variants[vi]
			for ci := range variant.ShaderCodes {
				fn(passName, &variant.ShaderCodes[ci])
			}
		}
		d.Passes[passName] = pass
	}
}
