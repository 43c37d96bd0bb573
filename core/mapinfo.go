// Package core holds MapInfo: the publish/subscribe cell that makes map
// lookups wait-free for readers.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package core

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/valversity/ngnfs-go/cmn/cos"
	"github.com/valversity/ngnfs-go/cmn/debug"
	"github.com/valversity/ngnfs-go/core/meta"
	"github.com/valversity/ngnfs-go/stats"
)

// MapInfo is an RCU-equivalent publication discipline: a single atomic
// pointer to an immutable *Map, replaced wholesale by Publish. A reader
// that Loads the pointer holds a live reference for as long as it keeps
// it — Go's garbage collector is the deferred-reclamation mechanism a
// portable implementation needs: the superseded Map is only freed once
// every reader that loaded it has dropped its reference, exactly the
// epoch discipline the C source builds by hand with
// rcu_read_lock/kfree_rcu.
type MapInfo struct {
	cell atomic.Pointer[meta.Map]

	mu      sync.Mutex
	updated chan struct{} // closed and replaced on every Publish; see waitCh
}

// NewMapInfo returns an empty MapInfo: no map has ever been published.
func NewMapInfo() *MapInfo {
	return &MapInfo{updated: make(chan struct{})}
}

// Lookup translates a block number into a host endpoint: address
// bnr mod n, where n is the size of the currently published map. Fails
// with cos.ErrNotReady if no map has ever been published. Acquires no
// lock a writer holds: the only read-side cost is the atomic pointer
// load.
func (mi *MapInfo) Lookup(bnr uint64) (meta.Endpoint, error) {
	m := mi.cell.Load()
	if m == nil {
		stats.LookupTotal.WithLabelValues("not_ready").Inc()
		return meta.Endpoint{}, cos.NewErrf("lookup", cos.KindNotReady)
	}

	n := uint64(len(m.Devd.Addrs))
	if n == 0 {
		stats.LookupTotal.WithLabelValues("not_ready").Inc()
		return meta.Endpoint{}, cos.NewErrf("lookup", cos.KindNotReady)
	}

	idx := bnr % n
	debug.Assertf(idx < uint64(len(m.Devd.Addrs)), "lookup index %d out of range for %d addresses", idx, len(m.Devd.Addrs))

	stats.LookupTotal.WithLabelValues("hit").Inc()
	return m.Devd.Addrs[idx], nil
}

// Publish atomically replaces the current Map with newMap and wakes every
// waiter blocked in WaitUntilNonEmpty. Readers already in flight continue
// to observe the Map they loaded; it is reclaimed only once they release
// their reference.
func (mi *MapInfo) Publish(newMap *meta.Map) {
	mi.cell.Store(newMap)
	stats.PublishTotal.Inc()

	mi.mu.Lock()
	close(mi.updated)
	mi.updated = make(chan struct{})
	mi.mu.Unlock()
}

// waitCh returns the channel that closes on the next Publish, sampled
// under the same lock Publish uses to swap it — this is what makes "wake
// every waiter on every empty→non-empty transition" race-free.
func (mi *MapInfo) waitCh() chan struct{} {
	mi.mu.Lock()
	ch := mi.updated
	mi.mu.Unlock()
	return ch
}

// WaitUntilNonEmpty blocks until at least one map has been published, or
// until ctx is done (the caller's subsystem shutdown signal): every wait
// is guarded by a predicate that also checks should_shutdown.
func (mi *MapInfo) WaitUntilNonEmpty(ctx context.Context) error {
	for {
		// ch must be captured before the cell check: if we checked the
		// cell first, a Publish landing between that check and waitCh()
		// would close the channel we never see and install a fresh one,
		// leaving us blocked on it despite the cell already being non-empty.
		ch := mi.waitCh()
		if mi.cell.Load() != nil {
			return nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return cos.NewErrf("wait_until_nonempty", cos.KindShutdown)
		}
	}
}

// CurrentSnapshot copies the current map out under no lock at all (an
// atomic load plus a value copy): used by the map server to build response
// buffers without holding any guard during send.
func (mi *MapInfo) CurrentSnapshot() (*meta.Map, error) {
	m := mi.cell.Load()
	if m == nil {
		return nil, cos.NewErrf("current_snapshot", cos.KindNotReady)
	}
	return m.Clone(), nil
}
