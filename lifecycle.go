// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package redirector

import (
	"context"
	"runtime"

	"github.com/go-kratos/kratos/v2/log"
	"golang.org/x/sys/unix"

	"github.com/mcbegamerxx954/mcbe-shader-redirector/internal/asset"
	"github.com/mcbegamerxx954/mcbe-shader-redirector/internal/assethooks"
	"github.com/mcbegamerxx954/mcbe-shader-redirector/internal/jnibridge"
	"github.com/mcbegamerxx954/mcbe-shader-redirector/internal/mcelf"
	"github.com/mcbegamerxx954/mcbe-shader-redirector/internal/nativehooks"
	"github.com/mcbegamerxx954/mcbe-shader-redirector/internal/packs"
	"github.com/mcbegamerxx954/mcbe-shader-redirector/internal/pltpatch"
	"github.com/mcbegamerxx954/mcbe-shader-redirector/internal/transcoder"
	"github.com/mcbegamerxx954/mcbe-shader-redirector/internal/watcher"
)

// watcherThreadNiceness is the niceness applied to the watcher goroutine's
// OS thread, matching the "dedicated low-priority worker" contract of
// spec.md §4.4. Best-effort: failing to lower priority is logged and
// otherwise ignored, never fatal.
const watcherThreadNiceness = 10

// Install wires every subsystem together and installs the asset-API
// hooks, the Go analogue of the original implementation's process-attach
// constructor (ctor/safe_setup/startup). Call it once, as early as
// possible after this library is loaded.
//
// Hook installation failure (the target module can't be located, or its
// relocation tables can't be walked) is logged and swallowed: Install
// still returns nil, and the library becomes an inert no-op rather than
// bringing down the host process, per spec.md §7 kind 4.
func Install(cfg Config) error {
	cfg = cfg.withDefaults()
	helper := log.NewHelper(cfg.Logger)

	store := &packs.Store{}
	if idx, err := packs.BuildIndex(cfg.MCRoot); err != nil {
		helper.Warnw("msg", "initial resource index build failed", "mc_root", cfg.MCRoot, "err", err)
	} else {
		store.Swap(idx)
	}

	table := asset.NewTable()
	tc := transcoder.New(cfg.EnabledVersions)
	shims := assethooks.New(store, table, tc, cfg.Logger)

	nativehooks.SetShims(shims)
	nativehooks.SetTranscoder(tc)
	jnibridge.SetTranscoder(tc)

	mod, err := mcelf.OpenLive(cfg.ModuleSuffix)
	if err != nil {
		helper.Warnw("msg", "target module not found, hooks not installed", "suffix", cfg.ModuleSuffix, "err", err)
		return nil
	}

	originals, missed, err := pltpatch.Install(mod, nativehooks.Symbols())
	if err != nil {
		helper.Warnw("msg", "hook installation failed", "err", err)
		return nil
	}
	if len(missed) > 0 {
		helper.Warnw("msg", "some asset symbols were not found in the PLT", "missed", missed)
	}
	nativehooks.SetOriginals(originals)

	installEduModeTrampoline(helper)

	go runWatcher(cfg, store, helper)

	return nil
}

// runWatcher hosts the Watcher Loop for the remaining lifetime of the
// process. It is always run in its own goroutine, wrapped in the same
// recover-and-log barrier every spawned goroutine in this package uses:
// Go has no process-wide panic hook, so each entry point that can run
// concurrently with the rest of the program defends itself individually.
func runWatcher(cfg Config, store *packs.Store, helper *log.Helper) {
	defer func() {
		if r := recover(); r != nil {
			helper.Errorw("msg", "watcher goroutine panicked", "recover", r)
		}
	}()

	lowerThreadPriority(helper)

	loop := watcher.New(cfg.MCRoot, cfg.ExternalMCRoot, cfg.OptionsPath, store, cfg.Logger)
	if err := loop.Run(context.Background()); err != nil {
		helper.Warnw("msg", "watcher loop exited", "err", err)
	}
}

// lowerThreadPriority locks the calling goroutine to its current OS
// thread and lowers that thread's scheduling niceness, matching spec.md
// §4.4's "dedicated low-priority worker". Unsupported platforms (anywhere
// unix.Setpriority fails) just keep the default priority.
func lowerThreadPriority(helper *log.Helper) {
	runtime.LockOSThread()
	if err := unix.Setpriority(unix.PRIO_PROCESS, unix.Gettid(), watcherThreadNiceness); err != nil {
		helper.Debugw("msg", "could not lower watcher thread priority", "err", err)
	}
}
