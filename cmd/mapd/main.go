// Command mapd is the map server daemon: it daemonizes itself (unless
// -foreground), listens at its config file's map_server address, and
// serves GET_MAPS requests from the address list given by its -devd
// flags until it receives a termination signal. Grounded on
// mapd/recv.c's mapd_setup/mapd_destroy and shared/daemon.c's
// daemonize()/daemon_report() pipe protocol.
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
	"github.com/valversity/ngnfs-go/config"
	"github.com/valversity/ngnfs-go/core"
	"github.com/valversity/ngnfs-go/core/meta"
	"github.com/valversity/ngnfs-go/daemonutil"
	"github.com/valversity/ngnfs-go/fsinfo"
	"github.com/valversity/ngnfs-go/lifecycle"
	"github.com/valversity/ngnfs-go/mapsvc"
	"github.com/valversity/ngnfs-go/transport"
)

func main() {
	configPath := flag.String("c", "", "path to the daemon's JSON config file (required)")
	devd := flagStringSlice("devd", "address of a device daemon to include in the served map (repeatable)")
	foreground := flag.Bool("foreground", false, "do not daemonize; run attached to the terminal")
	flag.Parse()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "mapd: -c is required")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mapd: %v\n", err)
		os.Exit(1)
	}

	if !*foreground {
		// Daemonize never returns in the foreground parent (it blocks on
		// the child's status and calls os.Exit); reaching here always
		// means this is the re-exec'd background child.
		_, report, err := daemonutil.Daemonize()
		if err != nil {
			fmt.Fprintf(os.Stderr, "mapd: %v\n", err)
			os.Exit(1)
		}
		err = run(cfg, *devd)
		report(err)
		if err != nil {
			nlog.Errorf("mapd: %v", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg, *devd); err != nil {
		nlog.Errorf("mapd: %v", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, devdAddrs []string) error {
	if cfg.TraceFile != "" {
		f, err := os.OpenFile(cfg.TraceFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		nlog.SetOutput(f)
	}

	selfEP, err := meta.ParseEndpoint(cfg.MapServer)
	if err != nil {
		return err
	}

	var list meta.AddrList
	for _, a := range devdAddrs {
		if err := list.Append(a); err != nil {
			return err
		}
	}

	fi := fsinfo.New()
	return lifecycle.RunSupervisor(fi, func(ctx context.Context) error {
		return monitorRun(ctx, fi, selfEP, &list)
	})
}

func monitorRun(ctx context.Context, fi *fsinfo.FSInfo, selfEP meta.Endpoint, list *meta.AddrList) error {
	m := lifecycle.NewMonitor(fi)

	xp := transport.NewLocal(selfEP)
	if err := m.Use(
		func() error { transport.Register(xp); return nil },
		func() { transport.Deregister(xp) },
	); err != nil {
		return err
	}

	srv := mapsvc.NewServer(core.NewMapInfo(), xp)
	if err := m.Use(
		func() error { return srv.Setup(list) },
		srv.Destroy,
	); err != nil {
		return err
	}

	nlog.Infof("mapd: listening at %s with %d device daemons", selfEP, list.Len())

	return m.Run(func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})
}

// flagStringSlice registers a repeatable -name flag and returns a pointer
// to the accumulated values.
func flagStringSlice(name, usage string) *[]string {
	var vals []string
	flag.Var((*stringSliceValue)(&vals), name, usage)
	return &vals
}

type stringSliceValue []string

func (v *stringSliceValue) String() string {
	if v == nil {
		return ""
	}
	return fmt.Sprint([]string(*v))
}

func (v *stringSliceValue) Set(s string) error {
	*v = append(*v, s)
	return nil
}
