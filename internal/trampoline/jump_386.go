// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

//go:build 386

package trampoline

// backupLen: mov eax, imm32 (5 bytes) + jmp eax (2 bytes) = 7 bytes,
// matching spec.md's x86 BACKUP_LEN.
const backupLen = 7

// patchAddr is the identity off ARM32: x86 function pointers carry no
// ISA-mode tag bit to strip.
func patchAddr(target uintptr) uintptr { return target }

// expectedLen is always backupLen off ARM32.
func expectedLen(target uintptr) int { return backupLen }

func buildJump(target, dest uintptr) []byte {
	code := make([]byte, backupLen)
	code[0] = 0xb8 // mov eax, imm32
	d := uint32(dest)
	for i := 0; i < 4; i++ {
		code[1+i] = byte(d >> (8 * i))
	}
	code[5] = 0xff // jmp eax
	code[6] = 0xe0
	return code
}
