// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Command shaderctl is the offline companion to the redirector payload: it
// exercises the Resource Index builder, the PLT relocation lookup, and the
// shader transcoder from the command line, without needing to be injected
// into a running host process.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "shaderctl",
		Short: "Offline tooling for the shader-redirector payload",
		Long:  "shaderctl drives the Resource Index builder, PLT relocation lookup, and shader transcoder from the command line.",
	}

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newIndexCmd())
	rootCmd.AddCommand(newHooksCmd())
	rootCmd.AddCommand(newTranscodeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the shaderctl version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("shaderctl 0.1.0")
		},
	}
}
