// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package mcelf

import "testing"

// FuzzParseDynamic64 feeds arbitrary bytes through the dynamic-section
// walker as if they were a live module's PT_DYNAMIC table. It only asserts
// that parsing never panics and always terminates; malformed input is
// expected to surface as an error or an (unused) zero-valued Module.
func FuzzParseDynamic64(f *testing.F) {
	seed, _, _, _ := buildFixture()
	f.Add(seed)
	f.Add([]byte{})
	f.Add(make([]byte, 16)) // a single DT_NULL entry

	f.Fuzz(func(t *testing.T, data []byte) {
		m := &Module{reader: sliceReader(data)}
		_ = parseDynamic64(m, 0) // error return is fine; panic is not
	})
}
