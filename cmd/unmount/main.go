// Command unmount is the symmetric counterpart to `mount`: it reads the
// pid `mount -pid_file` recorded at startup and sends it SIGTERM, which
// `mount`'s signal supervisor catches and turns into the same ordered,
// reverse-of-setup teardown shared/mount.c's ngnfs_unmount performs
// in-process. Out-of-process graceful shutdown via signal is the
// ordinary Unix idiom for this (the same shape as `kill -TERM $(cat
// pidfile)`); no RPC layer is invented for it.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/pkg/errors"
)

func main() {
	pidFile := flag.String("pid_file", "", "pid file written by the running `mount` process (required)")
	flag.Parse()

	if *pidFile == "" {
		fmt.Fprintln(os.Stderr, "unmount: -pid_file is required")
		os.Exit(1)
	}

	if err := run(*pidFile); err != nil {
		fmt.Fprintf(os.Stderr, "unmount: %v\n", err)
		os.Exit(1)
	}
}

func run(pidFile string) error {
	data, err := os.ReadFile(pidFile)
	if err != nil {
		return errors.Wrapf(err, "read %s", pidFile)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return errors.Wrapf(err, "parse pid in %s", pidFile)
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return errors.Wrapf(err, "find process %d", pid)
	}

	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return errors.Wrapf(err, "signal process %d", pid)
	}

	fmt.Printf("unmount: requested shutdown of pid %d\n", pid)
	return nil
}
