// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

//go:build arm64

package trampoline

import "encoding/binary"

// backupLen: LDR X16, #8 (4 bytes) + BR X16 (4 bytes) + 8-byte address
// literal = 16 bytes, matching spec.md's aarch64 BACKUP_LEN.
const backupLen = 16

// patchAddr is the identity off ARM32: aarch64 function pointers carry no
// ISA-mode tag bit to strip.
func patchAddr(target uintptr) uintptr { return target }

// expectedLen is always backupLen off ARM32.
func expectedLen(target uintptr) int { return backupLen }

func buildJump(target, dest uintptr) []byte {
	code := make([]byte, backupLen)
	// ldr x16, #8 — PC-relative literal load, offset encoded in units of 4
	// bytes (imm19 field), value 2 (8 bytes / 4).
	binary.LittleEndian.PutUint32(code[0:4], 0x58000050)
	// br x16
	binary.LittleEndian.PutUint32(code[4:8], 0xd61f0200)
	binary.LittleEndian.PutUint64(code[8:16], uint64(dest))
	return code
}
