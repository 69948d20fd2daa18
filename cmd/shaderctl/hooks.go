// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcbegamerxx954/mcbe-shader-redirector/internal/mcelf"
)

// newHooksCmd builds "shaderctl hooks <lib-path> <symbol>...": a dry-run
// of the PLT Hook Installer's relocation lookup (spec.md §4.1) against an
// on-disk shared object, without ever writing to any memory. Useful for
// checking which of the asset symbols a given build of the host library
// actually routes through its PLT before attempting a live install.
func newHooksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hooks <lib-path> <symbol>...",
		Short: "Dry-run relocation lookup against an on-disk shared object",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mod, err := mcelf.OpenFile(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}

			for _, symbol := range args[1:] {
				reloc, ok, err := mod.ResolveSymbol(symbol)
				if err != nil {
					fmt.Printf("%-40s error: %v\n", symbol, err)
					continue
				}
				if !ok {
					fmt.Printf("%-40s not found in the PLT/GOT\n", symbol)
					continue
				}
				fmt.Printf("%-40s slot=0x%x\n", symbol, reloc.SlotAddr)
			}
			return nil
		},
	}
}
