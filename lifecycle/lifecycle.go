// Package lifecycle implements a three-tier thread model: a signal
// supervisor (outermost) starts a subsystem monitor, which does
// non-blocking setup and then starts a blocking worker. Grounded on the
// threading comment and code in cli/map.c and cli/debugfs.c, re-expressed
// with Go's structured-concurrency primitives — an errgroup.Group for the
// monitor/worker pair, as aistore itself does in ext/dsort/dsort.go — in
// place of hand-rolled wait_event/thread_stop_indicate plumbing.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package lifecycle

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/valversity/ngnfs-go/cmn/nlog"
	"github.com/valversity/ngnfs-go/fsinfo"
)

// Worker is the inner layer's one blocking operation: "request maps",
// "execute one shell command", "service requests until done". It must
// return promptly once ctx is done.
type Worker func(ctx context.Context) error

// Monitor is the middle layer: it accumulates
// subsystems via Use (non-blocking setup, each paired with its teardown),
// runs a Worker, and on completion or shutdown tears every subsystem down
// in reverse setup order — the generalization of the repeated manual
// teardown sequences in shared/mount.c and the three CLI tools into one
// reusable LIFO stack.
type Monitor struct {
	fi        *fsinfo.FSInfo
	teardowns []func()
}

// NewMonitor returns a Monitor whose subsystems share fi's shutdown
// signal.
func NewMonitor(fi *fsinfo.FSInfo) *Monitor {
	return &Monitor{fi: fi}
}

// Use runs setup; on success it registers teardown to run, in LIFO order,
// when the Monitor tears down. On failure it tears down everything
// registered so far (in reverse order) before returning setup's error,
// mirroring the "if ret < 0 goto out" unwind chains in shared/mount.c.
func (m *Monitor) Use(setup func() error, teardown func()) error {
	if err := setup(); err != nil {
		m.Teardown()
		return err
	}
	m.teardowns = append(m.teardowns, teardown)
	return nil
}

// Teardown runs every registered teardown function in reverse
// registration order. Idempotent: a second call is a no-op.
func (m *Monitor) Teardown() {
	for i := len(m.teardowns) - 1; i >= 0; i-- {
		m.teardowns[i]()
	}
	m.teardowns = nil
}

// Run starts worker on its own goroutine via an errgroup, blocks until it
// completes or the Monitor's FSInfo is shut down (whichever comes first),
// then tears every subsystem down. If the worker was cancelled before
// completing, Run returns the FSInfo's latched global error instead of the
// worker's own (likely just "context cancelled") return value: the
// worker's result, or the filesystem's recorded global error if the
// worker was cancelled before completion.
func (m *Monitor) Run(worker Worker) error {
	g, ctx := errgroup.WithContext(m.fi.Ctx())
	g.Go(func() error { return worker(ctx) })

	err := g.Wait()
	shutdownBeforeDone := m.fi.ShouldShutdown()
	m.Teardown()

	if shutdownBeforeDone {
		if latched := m.fi.Err(); latched != nil {
			return latched
		}
	}
	return err
}

// RunSupervisor is the outer layer: it runs with
// termination signals unblocked (ordinary process signal handling),
// performs no subsystem calls itself, starts monitor, and waits for
// either monitor to finish or a termination signal. On signal it requests
// shutdown and joins monitor before returning.
func RunSupervisor(fi *fsinfo.FSInfo, monitor func(ctx context.Context) error) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	done := make(chan error, 1)
	go func() { done <- monitor(fi.Ctx()) }()

	select {
	case err := <-done:
		return err
	case sig := <-sigCh:
		nlog.Infof("received %s, shutting down", sig)
		fi.Shutdown(nil)
		return <-done
	}
}
