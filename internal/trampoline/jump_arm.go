// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

//go:build arm

package trampoline

import "encoding/binary"

// backupLen: LDR PC, [PC, #-4] (4 bytes) + 4-byte address literal (4 bytes)
// + 1 alignment byte, matching spec.md's arm BACKUP_LEN of 9. This covers
// every ARM-mode target and every 4-byte-aligned Thumb target. A Thumb
// target that is not itself 4-byte aligned needs one more halfword to
// shift the literal back onto a 4-byte boundary; expectedLen reports that
// wider window for that one case instead of silently truncating.
const backupLen = 9

// thumbBit reports whether addr is a Thumb-mode code address (bit 0 set),
// the convention ARM uses to distinguish ARM-mode call targets from
// Thumb-mode ones in a plain function pointer value.
func thumbBit(addr uintptr) bool {
	return addr&1 != 0
}

// patchAddr clears the Thumb bit from target, the address actually
// patched: a Thumb function pointer's bit 0 is a calling-convention tag,
// not part of the instruction's real byte address.
func patchAddr(target uintptr) uintptr {
	return target &^ 1
}

// expectedLen reports how many bytes buildJump emits for target. Aligned
// Thumb targets and ARM-mode targets both fit the documented 9-byte
// window; an unaligned Thumb target needs a leading 2-byte nop to bring
// the literal pool back onto a 4-byte boundary, one byte more than
// backupLen.
func expectedLen(target uintptr) int {
	if thumbBit(target) && patchAddr(target)%4 != 0 {
		return backupLen + 1
	}
	return backupLen
}

// buildJump returns the bytes to write at patchAddr(target) to redirect
// execution to dest. The encoding — ARM "ldr pc,[pc,-4]" vs Thumb
// "ldr.w pc,[pc]" — is chosen by target's own Thumb bit, not dest's: a
// function pointer's bit 0 reflects the ISA mode the code AT that address
// was compiled in, which has nothing to do with which mode the jump
// destination runs in. dest's own Thumb bit is left untouched in the
// embedded literal: loading an odd address into pc via ldr is exactly how
// ARM/Thumb interworking switches the processor into Thumb state, so
// clearing it here would make the jump land in the wrong instruction set.
func buildJump(target, dest uintptr) []byte {
	addr := patchAddr(target)
	lit := make([]byte, 4)
	binary.LittleEndian.PutUint32(lit, uint32(dest))

	if !thumbBit(target) {
		code := make([]byte, backupLen)
		binary.LittleEndian.PutUint32(code[0:4], 0xe51ff004) // ldr pc, [pc, #-4]
		copy(code[4:8], lit)
		code[8] = 0x00 // alignment byte, never reached: pc is already redirected
		return code
	}

	code := make([]byte, 0, backupLen+1)
	if addr%4 != 0 {
		code = append(code, 0x00, 0xbf) // nop (thumb halfword 0xbf00, little-endian)
	}
	code = append(code, 0xdf, 0xf8, 0x00, 0xf0) // ldr.w pc, [pc]
	code = append(code, lit...)
	return code
}
