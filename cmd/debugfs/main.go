// Command debugfs is an interactive shell over the cluster map core: the
// prompt shows the working block number, each line is whitespace
// tokenised, and the first token is dispatched through the sorted
// command table in commands.go — cli/debugfs.c's behaviour, minus the
// pfs/txn layer that binary also drove (out of scope for this core).
// Grounded on cli/debugfs.c's debugfs_func/debugfs_thread structure,
// rebuilt on lifecycle.RunSupervisor/Monitor.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/valversity/ngnfs-go/cmn/nlog"
	"github.com/valversity/ngnfs-go/core"
	"github.com/valversity/ngnfs-go/core/meta"
	"github.com/valversity/ngnfs-go/fsinfo"
	"github.com/valversity/ngnfs-go/lifecycle"
	"github.com/valversity/ngnfs-go/mapsvc"
	"github.com/valversity/ngnfs-go/transport"
)

func main() {
	addr := flag.String("addr", "", "IPv4 address and port of the mapd server to query (required)")
	traceFile := flag.String("trace_file", "", "append debugging traces to this file")
	flag.Parse()

	if *addr == "" {
		fmt.Fprintln(os.Stderr, "debugfs: -addr is required")
		os.Exit(1)
	}

	if err := run(*addr, *traceFile); err != nil {
		nlog.Errorf("debugfs: %v", err)
		os.Exit(1)
	}
}

func run(addr, traceFile string) error {
	serverEP, err := meta.ParseEndpoint(addr)
	if err != nil {
		return err
	}

	fi := fsinfo.New()
	return lifecycle.RunSupervisor(fi, func(ctx context.Context) error {
		return monitorRun(ctx, fi, serverEP, traceFile)
	})
}

func monitorRun(ctx context.Context, fi *fsinfo.FSInfo, serverEP meta.Endpoint, traceFile string) error {
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

	return m.Run(func(ctx context.Context) error {
		return replLoop(ctx, mi)
	})
}

func replLoop(ctx context.Context, mi *core.MapInfo) error {
	dctx := &debugfsContext{mi: mi, cwdIno: rootBlockNumber}
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("<%d> $ ", dctx.cwdIno)
		if !scanner.Scan() {
			return nil
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		cmd := lookupCommand(fields[0])
		if cmd == nil {
			fmt.Printf("unknown command: %q\n", fields[0])
			continue
		}

		quit, err := runCommand(ctx, cmd, dctx, fields)
		if err != nil {
			nlog.Warningf("debugfs: %s: %v", fields[0], err)
		}
		if quit {
			return nil
		}
	}
}

// runCommand executes cmd on its own goroutine and returns as soon as it
// finishes or ctx is cancelled, mirroring start_command_thread's
// wait_event(cmd_done || should_shutdown).
func runCommand(ctx context.Context, cmd *command, dctx *debugfsContext, args []string) (bool, error) {
	type result struct {
		quit bool
		err  error
	}
	done := make(chan result, 1)
	go func() {
		quit, err := cmd.fn(dctx, args)
		done <- result{quit, err}
	}()

	select {
	case r := <-done:
		return r.quit, r.err
	case <-ctx.Done():
		return true, ctx.Err()
	}
}
