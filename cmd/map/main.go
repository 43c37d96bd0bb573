// Command map is a one-shot client: request the initial cluster map from
// a mapd server, print success or the decoded error, exit non-zero on
// any failure. Grounded on cli/map.c's map_func/map_thread/
// map_request_thread three-tier structure, rebuilt on
// lifecycle.RunSupervisor/Monitor and mapsvc.Client.
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
	addr := flag.String("addr", "", "IPv4 address and port of mapd server to query (required)")
	traceFile := flag.String("trace_file", "", "append debugging traces to this file")
	flag.Parse()

	if *addr == "" {
		fmt.Fprintln(os.Stderr, "map: -addr is required")
		os.Exit(1)
	}

	if err := run(*addr, *traceFile); err != nil {
		nlog.Errorf("error requesting map: %v", err)
		os.Exit(1)
	}
	nlog.Infof("map received")
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
	defer client.Destroy()

	return m.Run(func(ctx context.Context) error {
		return client.Setup(ctx, serverEP, mapsvc.DefaultRequestTimeout)
	})
}
