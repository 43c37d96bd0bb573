// Command mount sets up tracing, the map store, transport, and the map
// client; waits for the initial map; then stays in the mounted state
// until a termination signal or a paired `unmount` asks it to stop, at
// which point it tears every subsystem down in reverse setup order.
// Grounded on shared/mount.c's ngnfs_mount/ngnfs_unmount pair and on
// tests/mount_unmount.c, which runs both back to back in one process
// lifetime — the same shape this binary gives a standing mount its
// "mounted" interval between the two.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/valversity/ngnfs-go/cmn/nlog"
	"github.com/valversity/ngnfs-go/core"
	"github.com/valversity/ngnfs-go/core/meta"
	"github.com/valversity/ngnfs-go/fsinfo"
	"github.com/valversity/ngnfs-go/lifecycle"
	"github.com/valversity/ngnfs-go/mapsvc"
	"github.com/valversity/ngnfs-go/transport"
)

func main() {
	addr := flag.String("addr", "", "IPv4 address and port of mapd server (required)")
	traceFile := flag.String("trace_file", "", "append debugging traces to this file")
	pidFile := flag.String("pid_file", "", "write this process's pid here so `unmount` can signal it")
	flag.Parse()

	if *addr == "" {
		fmt.Fprintln(os.Stderr, "mount: -addr is required")
		os.Exit(1)
	}

	if err := run(*addr, *traceFile, *pidFile); err != nil {
		nlog.Errorf("mount: %v", err)
		os.Exit(1)
	}
}

func run(addr, traceFile, pidFile string) error {
	serverEP, err := meta.ParseEndpoint(addr)
	if err != nil {
		return err
	}

	fi := fsinfo.New()
	return lifecycle.RunSupervisor(fi, func(ctx context.Context) error {
		return monitorRun(ctx, fi, serverEP, traceFile, pidFile)
	})
}

func monitorRun(ctx context.Context, fi *fsinfo.FSInfo, serverEP meta.Endpoint, traceFile, pidFile string) error {
	m := lifecycle.NewMonitor(fi)

	if traceFile != "" {
		var f *os.File
		if err := m.Use(
			func() error {
				var err error
				f, err = os.OpenFile(traceFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
				if err == nil {
					nlog.SetOutput(f)
				}
				return err
			},
			func() { nlog.SetOutput(os.Stderr); f.Close() },
		); err != nil {
			return err
		}
	}

	if pidFile != "" {
		if err := m.Use(
			func() error { return os.WriteFile(pidFile, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0o644) },
			func() { os.Remove(pidFile) },
		); err != nil {
			return err
		}
	}

	mi := core.NewMapInfo()
	selfEP, err := meta.ParseEndpoint("127.0.0.1:0")
	if err != nil {
		return err
	}
	xp := transport.NewLocal(selfEP)
	client := mapsvc.NewClient(mi, xp, fi, selfEP)

	if err := m.Use(
		func() error { return transport.Dial(xp, serverEP) },
		func() {},
	); err != nil {
		return err
	}
	if err := m.Use(
		func() error { return client.Setup(ctx, serverEP, mapsvc.DefaultRequestTimeout) },
		client.Destroy,
	); err != nil {
		return err
	}

	nlog.Infof("mounted against %s", serverEP)

	// "mounted state": block until shutdown is requested, either by a
	// termination signal (caught by RunSupervisor) or by `unmount`
	// signalling this same process.
	return m.Run(func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})
}
