// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package watcher drives incremental rebuilds of the Resource Index: it
// waits for the host's global_resource_packs.json to exist, watches it for
// modifications, and rebuilds and atomically swaps in a fresh index on
// every change.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/mcbegamerxx954/mcbe-shader-redirector/internal/packs"
	"github.com/mcbegamerxx954/mcbe-shader-redirector/internal/storage"
)

// existencePollInterval is how often the loop checks for
// global_resource_packs.json before it exists, per spec.md §4.4.
const existencePollInterval = 5 * time.Second

// Loop owns the lifetime of one watch-and-rebuild worker. Zero value is
// not usable; construct with New.
type Loop struct {
	internalRoot string
	externalRoot string
	optionsPath  string
	store        *packs.Store
	logger       *log.Helper

	// activeRoot is the minecraft-root configPath most recently resolved
	// against, and therefore the root rebuild must read from: it can
	// differ from internalRoot whenever options.txt names external
	// storage and that storage actually has a global_resource_packs.json.
	activeRoot string

	stopping atomic.Bool
}

// New builds a Loop that maintains store from the pack configuration
// rooted at internalRoot or externalRoot (the directories containing
// options.txt and global_resource_packs.json), using optionsPath's
// dvce_filestoragelocation setting to notice when the host switches
// between internal and external storage. externalRoot may be empty, in
// which case the loop always stays on internalRoot.
func New(internalRoot, externalRoot, optionsPath string, store *packs.Store, logger log.Logger) *Loop {
	return &Loop{
		internalRoot: internalRoot,
		externalRoot: externalRoot,
		activeRoot:   internalRoot,
		optionsPath:  optionsPath,
		store:        store,
		logger:       log.NewHelper(logger),
	}
}

// Stop requests that Run return at its next opportunity. Safe to call from
// any goroutine, any number of times.
func (l *Loop) Stop() {
	l.stopping.Store(true)
}

// Run blocks, rebuilding and swapping the Resource Index on every
// modification of global_resource_packs.json, until ctx is canceled or
// Stop is called. It performs one synchronous rebuild before entering the
// watch loop so the index is populated immediately rather than only after
// the first filesystem event.
func (l *Loop) Run(ctx context.Context) error {
	configPath := l.configPath()

	if err := l.waitForExistence(ctx, configPath); err != nil {
		return err
	}
	l.rebuild()

	watch, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watch.Close()

	if err := watch.Add(configPath); err != nil {
		return err
	}

	for {
		if l.stopping.Load() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watch.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			l.onConfigChanged(watch, &configPath)
		case err, ok := <-watch.Errors:
			if !ok {
				return nil
			}
			l.logger.Errorw("msg", "watcher error", "err", err)
		}
	}
}

// onConfigChanged re-derives the config path (in case the storage location
// option flipped between internal and external) and rebuilds the index,
// re-pointing the fsnotify watch if the path moved.
func (l *Loop) onConfigChanged(watch *fsnotify.Watcher, configPath *string) {
	newPath := l.configPath()
	if newPath != *configPath {
		_ = watch.Remove(*configPath)
		if err := watch.Add(newPath); err != nil {
			l.logger.Errorw("msg", "failed to re-watch config after storage location change", "err", err)
		}
		*configPath = newPath
	}
	l.rebuild()
}

// configPath re-derives the minecraft-root directory from the current
// storage location option, falling back to the Loop's internalRoot if the
// option can't be read or external storage isn't actually usable yet. The
// resolved root is cached on activeRoot so rebuild rebuilds against the
// same root this path was computed from.
func (l *Loop) configPath() string {
	loc := storage.Internal
	if resolved, err := storage.FromOptionsFile(l.optionsPath); err == nil {
		loc = resolved
	}
	root := storage.ResolveRoot(loc, l.internalRoot, l.externalRoot)
	if root != l.activeRoot {
		l.logger.Infow("msg", "storage root changed", "location", loc.String(), "root", root)
	}
	l.activeRoot = root
	return filepath.Join(root, "global_resource_packs.json")
}

func (l *Loop) rebuild() {
	idx, err := packs.BuildIndex(l.activeRoot)
	if err != nil {
		l.logger.Errorw("msg", "failed to rebuild resource index", "err", err)
		return
	}
	l.store.Swap(idx)
	l.logger.Infow("msg", "resource index rebuilt", "entries", idx.Len())
}

func (l *Loop) waitForExistence(ctx context.Context, path string) error {
	ticker := time.NewTicker(existencePollInterval)
	defer ticker.Stop()

	for {
		if _, err := os.Stat(path); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
