// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcbegamerxx954/mcbe-shader-redirector/internal/packs"
)

// newIndexCmd builds "shaderctl index <mc-root>": a one-shot rebuild of
// the Resource Index against an on-disk minecraft-root directory, dumped
// as JSON {logical path: replacement source}. The offline analogue of
// what the Watcher Loop does on every global_resource_packs.json change.
func newIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index <mc-root>",
		Short: "Rebuild the Resource Index and dump it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := packs.BuildIndex(args[0])
			if err != nil {
				return fmt.Errorf("building resource index: %w", err)
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "\t")
			return enc.Encode(idx.Entries())
		},
	}
}
