// Package fsinfo is the process-wide aggregate the C source calls
// ngnfs_fs_info: shutdown flag plus latched global error, threaded by
// reference to every subsystem entry point.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package fsinfo

import (
	"context"
	"sync"
)

// FSInfo is shared by every subsystem of one mount/mapd/debugfs process.
// Shutdown is idempotent and safe to call from any goroutine. The source
// allows single-writer, unsynchronized-read visibility for this state;
// here the write is synchronized with a mutex and Err/shut are read under
// the same mutex, which is strictly stronger and costs nothing on this
// core's read paths since they are not on the hot lookup path.
type FSInfo struct {
	mu       sync.Mutex
	shutdown bool
	err      error

	ctx    context.Context
	cancel context.CancelFunc
}

// New returns an FSInfo ready for subsystem setup. Ctx is cancelled the
// moment Shutdown is first called; pass it (or a child of it) to every
// blocking wait in the subsystems this FSInfo owns.
func New() *FSInfo {
	fi := &FSInfo{}
	fi.ctx, fi.cancel = context.WithCancel(context.Background())
	return fi
}

// Ctx returns the context that is cancelled on Shutdown.
func (fi *FSInfo) Ctx() context.Context { return fi.ctx }

// Shutdown latches err into the global error (first non-zero writer wins),
// flips the shutdown flag, and cancels Ctx so every
// waiter phrased as wait-until(progress OR shutdown) wakes up. err may be
// nil: Shutdown(nil) still flips the flag (used by orderly unmount).
func (fi *FSInfo) Shutdown(err error) {
	fi.mu.Lock()
	if err != nil && fi.err == nil {
		fi.err = err
	}
	already := fi.shutdown
	fi.shutdown = true
	fi.mu.Unlock()

	if !already {
		fi.cancel()
	}
}

// ShouldShutdown is the poll predicate consulted inside wait conditions.
func (fi *FSInfo) ShouldShutdown() bool {
	fi.mu.Lock()
	defer fi.mu.Unlock()
	return fi.shutdown
}

// Err returns the latched global error, or nil if none was ever recorded.
func (fi *FSInfo) Err() error {
	fi.mu.Lock()
	defer fi.mu.Unlock()
	return fi.err
}
