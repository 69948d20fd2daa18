// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package materialbin

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// magic tags the start of every encoded material, the way most ad hoc
// binary codecs do, so a completely unrelated file is rejected quickly
// rather than partially parsed.
var magic = [4]byte{'M', 'C', 'M', 'B'}

// ErrBadMagic is returned when data does not begin with the expected
// magic bytes.
var ErrBadMagic = errors.New("materialbin: bad magic")

// ErrVersionMismatch is returned when data parses structurally but was
// encoded under a different schema version than requested; this is the
// expected, non-fatal outcome of probing schema versions newest-to-oldest
// during host-version detection.
var ErrVersionMismatch = errors.New("materialbin: version mismatch")

// cursor is a bounds-checked little-endian reader over an in-memory byte
// slice, in the same spirit as the teacher's helper.go reader: every read
// is checked against the remaining length before it is performed, and a
// short buffer produces an error instead of a panic.
type cursor struct {
	data []byte
	pos  int
}

func (c *cursor) need(n int) error {
	if c.pos+n > len(c.data) {
		return io.ErrUnexpectedEOF
	}
	return nil
}

func (c *cursor) readUint8() (uint8, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	v := c.data[c.pos]
	c.pos++
	return v, nil
}

func (c *cursor) readUint32() (uint32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(c.data[c.pos:])
	c.pos += 4
	return v, nil
}

func (c *cursor) readBytes(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	v := c.data[c.pos : c.pos+n]
	c.pos += n
	return v, nil
}

func (c *cursor) readString() (string, error) {
	n, err := c.readUint32()
	if err != nil {
		return "", err
	}
	b, err := c.readBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Parse decodes raw as a CompiledMaterialDefinition, requiring it to have
// been encoded under exactly v. A structurally valid document encoded
// under a different version returns ErrVersionMismatch rather than
// ErrBadMagic, so callers probing multiple versions can tell "not this
// format at all" apart from "this format, wrong version".
func Parse(raw []byte, v SchemaVersion) (*CompiledMaterialDefinition, error) {
	c := &cursor{data: raw}

	tag, err := c.readBytes(4)
	if err != nil {
		return nil, fmt.Errorf("materialbin: %w", err)
	}
	if tag[0] != magic[0] || tag[1] != magic[1] || tag[2] != magic[2] || tag[3] != magic[3] {
		return nil, ErrBadMagic
	}

	encodedVersion, err := c.readUint32()
	if err != nil {
		return nil, fmt.Errorf("materialbin: %w", err)
	}
	if SchemaVersion(encodedVersion) != v {
		return nil, ErrVersionMismatch
	}

	name, err := c.readString()
	if err != nil {
		return nil, fmt.Errorf("materialbin: name: %w", err)
	}

	numPasses, err := c.readUint32()
	if err != nil {
		return nil, fmt.Errorf("materialbin: passes: %w", err)
	}

	def := &CompiledMaterialDefinition{Name: name, Passes: make(map[string]Pass, numPasses)}
	for i := uint32(0); i < numPasses; i++ {
		passName, err := c.readString()
		if err != nil {
			return nil, fmt.Errorf("materialbin: pass %d name: %w", i, err)
		}
		numVariants, err := c.readUint32()
		if err != nil {
			return nil, fmt.Errorf("materialbin: pass %q variants: %w", passName, err)
		}
		pass := Pass{Variants: make([]Variant, numVariants)}
		for vi := uint32(0); vi < numVariants; vi++ {
			numCodes, err := c.readUint32()
			if err != nil {
				return nil, fmt.Errorf("materialbin: pass %q variant %d codes: %w", passName, vi, err)
			}
			variant := Variant{ShaderCodes: make([]StageCode, numCodes)}
			for ci := uint32(0); ci < numCodes; ci++ {
				stageVal, err := c.readUint8()
				if err != nil {
					return nil, fmt.Errorf("materialbin: stage: %w", err)
				}
				platform, err := c.readString()
				if err != nil {
					return nil, fmt.Errorf("materialbin: platform: %w", err)
				}
				blobLen, err := c.readUint32()
				if err != nil {
					return nil, fmt.Errorf("materialbin: blob length: %w", err)
				}
				blobRaw, err := c.readBytes(int(blobLen))
				if err != nil {
					return nil, fmt.Errorf("materialbin: blob: %w", err)
				}
				blob := append([]byte(nil), blobRaw...)
				variant.ShaderCodes[ci] = StageCode{
					Stage:          ShaderStage(stageVal),
					PlatformName:   platform,
					BgfxShaderData: blob,
				}
			}
			pass.Variants[vi] = variant
		}
		def.Passes[passName] = pass
	}
	return def, nil
}

// Write serializes d under schema version v.
func (d *CompiledMaterialDefinition) Write(w io.Writer, v SchemaVersion) error {
	buf := make([]byte, 0, 256)
	buf = append(buf, magic[:]...)
	buf = appendUint32(buf, uint32(v))
	buf = appendString(buf, d.Name)
	buf = appendUint32(buf, uint32(len(d.Passes)))

	for passName, pass := range d.Passes {
		buf = appendString(buf, passName)
		buf = appendUint32(buf, uint32(len(pass.Variants)))
		for _, variant := range pass.Variants {
			buf = appendUint32(buf, uint32(len(variant.ShaderCodes)))
			for _, code := range variant.ShaderCodes {
				buf = append(buf, byte(code.Stage))
				buf = appendString(buf, code.PlatformName)
				buf = appendUint32(buf, uint32(len(code.BgfxShaderData)))
				buf = append(buf, code.BgfxShaderData...)
			}
		}
	}

	_, err := w.Write(buf)
	return err
}

func appendUint32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendString(buf []byte, s string) []byte {
	buf = appendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}
