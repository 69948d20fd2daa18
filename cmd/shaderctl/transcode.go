// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcbegamerxx954/mcbe-shader-redirector/internal/materialbin"
	"github.com/mcbegamerxx954/mcbe-shader-redirector/internal/transcoder"
)

// newTranscodeCmd builds "shaderctl transcode <in> <out> --version <vN>":
// it drives a fresh Transcoder over a single file, pinning the "detected
// host version" to the target the caller asked for rather than probing a
// live RenderChunk.material.bin, since there is no running host to probe
// from the command line.
func newTranscodeCmd() *cobra.Command {
	var versionFlag string

	cmd := &cobra.Command{
		Use:   "transcode <in> <out>",
		Short: "Transcode a compiled material binary to a target schema version",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, ok := materialbin.ParseVersionString(versionFlag)
			if !ok {
				return fmt.Errorf("unknown schema version %q", versionFlag)
			}

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			tr := transcoder.New(nil)
			tr.DetectHostVersion(probeReaderFor(target))

			out, err := tr.Transcode(raw)
			if err != nil {
				return fmt.Errorf("transcoding: %w", err)
			}
			if err := os.WriteFile(args[1], out, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", args[1], err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&versionFlag, "version", "", `target schema version (e.g. "v1.21.110")`)
	cmd.MarkFlagRequired("version")

	return cmd
}

// probeReaderFor stands in for a real RenderChunk.material.bin read: it
// hands DetectHostVersion a minimal, freshly-encoded definition under
// target, so detection settles on exactly that version without needing a
// live host asset to probe.
func probeReaderFor(target materialbin.SchemaVersion) transcoder.AssetReader {
	def := &materialbin.CompiledMaterialDefinition{Name: "RenderChunk", Passes: map[string]materialbin.Pass{}}
	var buf bytes.Buffer
	// Encoding a definition with no passes always succeeds; DetectHostVersion
	// only needs something that parses under target.
	_ = def.Write(&buf, target)
	probe := buf.Bytes()

	return func(string) ([]byte, error) {
		return probe, nil
	}
}
