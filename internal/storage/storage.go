// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package storage resolves where the host keeps its pack configuration:
// either app-internal storage or external (shared) storage, as recorded in
// the host's options.txt.
package storage

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Location is the enumeration {Internal, External} from spec.md §3.
type Location int

const (
	// Internal is the host's app-private storage area.
	Internal Location = iota
	// External is shared/external storage.
	External
)

func (l Location) String() string {
	if l == External {
		return "external"
	}
	return "internal"
}

// ErrOptionNotFound is returned when options.txt has no
// dvce_filestoragelocation line.
var ErrOptionNotFound = errors.New("storage: dvce_filestoragelocation not found")

const optionKey = "dvce_filestoragelocation"

// FromOptionsFile scans path (a host options.txt) for the
// dvce_filestoragelocation line and returns the Location it names.
//
// Per spec.md §6: values 1 -> External, 2 -> Internal, any other value
// defaults to Internal.
func FromOptionsFile(path string) (Location, error) {
	f, err := os.Open(path)
	if err != nil {
		return Internal, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		key, value, ok := strings.Cut(line, ":")
		if !ok || key != optionKey {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return Internal, nil
		}
		return fromInt(n), nil
	}
	if err := scanner.Err(); err != nil {
		return Internal, err
	}
	return Internal, ErrOptionNotFound
}

// ResolveRoot picks which minecraft-root directory to read from, given the
// storage location currently named by options.txt. Internal always uses
// internalRoot. External prefers externalRoot, but falls back to
// internalRoot if externalRoot is unset or its global_resource_packs.json
// doesn't actually exist there yet — the same "default to internal and
// hope for the best" fallback the original implementation's JSON watcher
// setup applies when the external active-packs file hasn't appeared.
func ResolveRoot(loc Location, internalRoot, externalRoot string) string {
	if loc != External || externalRoot == "" {
		return internalRoot
	}
	if _, err := os.Stat(filepath.Join(externalRoot, "global_resource_packs.json")); err != nil {
		return internalRoot
	}
	return externalRoot
}

func fromInt(n int) Location {
	switch n {
	case 1:
		return External
	case 2:
		return Internal
	default:
		return Internal
	}
}
