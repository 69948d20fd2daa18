// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package materialbin

import (
	"bytes"
	"reflect"
	"testing"
)

func sampleDefinition() *CompiledMaterialDefinition {
	return &CompiledMaterialDefinition{
		Name: "RenderChunk",
		Passes: map[string]Pass{
			"Default": {
				Variants: []Variant{
					{
						ShaderCodes: []StageCode{
							{Stage: StageVertex, PlatformName: "essl300", BgfxShaderData: []byte{1, 2, 3, 4}},
							{Stage: StageFragment, PlatformName: "essl300", BgfxShaderData: []byte{5, 6, 7}},
						},
					},
				},
			},
		},
	}
}

func TestParseWriteRoundTrip(t *testing.T) {
	original := sampleDefinition()

	var buf bytes.Buffer
	if err := original.Write(&buf, V1_21_110); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Parse(buf.Bytes(), V1_21_110)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !reflect.DeepEqual(got, original) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, original)
	}
}

func TestParseRejectsWrongVersion(t *testing.T) {
	original := sampleDefinition()
	var buf bytes.Buffer
	if err := original.Write(&buf, V1_20_80); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if _, err := Parse(buf.Bytes(), V1_19_60); err != ErrVersionMismatch {
		t.Errorf("Parse with wrong version = %v, want ErrVersionMismatch", err)
	}
}

func TestParseRejectsBadMagic(t *testing.T) {
	if _, err := Parse([]byte("not a material"), V1_21_110); err != ErrBadMagic {
		t.Errorf("Parse of garbage = %v, want ErrBadMagic", err)
	}
}

func TestParseTruncatedInputErrors(t *testing.T) {
	original := sampleDefinition()
	var buf bytes.Buffer
	if err := original.Write(&buf, V1_21_110); err != nil {
		t.Fatalf("Write: %v", err)
	}
	truncated := buf.Bytes()[:len(buf.Bytes())-3]

	if _, err := Parse(truncated, V1_21_110); err == nil {
		t.Error("Parse of truncated input succeeded, want an error")
	}
}

func TestVisitShaderCodesCanMutateInPlace(t *testing.T) {
	def := sampleDefinition()
	def.VisitShaderCodes(func(passName string, code *StageCode) {
		code.BgfxShaderData = append([]byte(nil), code.BgfxShaderData...)
		code.BgfxShaderData = append(code.BgfxShaderData, 0xff)
	})
	for _, code := range def.Passes["Default"].Variants[0].ShaderCodes {
		if code.BgfxShaderData[len(code.BgfxShaderData)-1] != 0xff {
			t.Error("VisitShaderCodes mutation did not persist")
		}
	}
}

func TestSchemaVersionAtLeast(t *testing.T) {
	if !V1_20_80.AtLeast(V1_19_60) {
		t.Error("V1_20_80 should be AtLeast V1_19_60")
	}
	if V1_19_60.AtLeast(V1_20_80) {
		t.Error("V1_19_60 should not be AtLeast V1_20_80")
	}
}
