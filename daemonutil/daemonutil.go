// Package daemonutil detaches a long-running server from its invoking
// terminal, the job shared/daemon.c's daemonize()/daemon_report() do for
// mapd. Go has no fork(2); the idiomatic replacement — re-exec the same
// binary with a marker environment variable and a status pipe passed
// through ExtraFiles, then setsid the child — is the technique
// telepresence's cliutil.launchDaemon uses to detach its root daemon
// (os/exec plus syscall.SysProcAttr), adapted here to also carry the
// child's initialization status back to the parent the way the C
// version's pipe does.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package daemonutil

import (
	"encoding/binary"
	"os"
	"os/exec"
	"syscall"

	"github.com/pkg/errors"
)

const (
	childEnvVar = "NGNFS_DAEMON_CHILD"
	statusFD    = 3
)

// Daemonize is shared/daemon.c's daemonize(). Called from the foreground
// invocation, it re-execs the current binary detached (new session, no
// controlling terminal, stdin and stdout wired to /dev/null, stderr
// inherited) and blocks until the child reports its initialization
// status; it then calls os.Exit and never returns. Called again inside
// the re-exec'd child (which runs the same main with the same arguments
// and so reaches the same Daemonize call), it returns immediately
// with background=true and a report func the child must invoke exactly
// once, with its setup error (nil on success), before starting its
// blocking work.
func Daemonize() (background bool, report func(error), err error) {
	if os.Getenv(childEnvVar) == "1" {
		f := os.NewFile(uintptr(statusFD), "daemon-status")
		return true, func(initErr error) { reportStatus(f, initErr) }, nil
	}

	r, w, err := os.Pipe()
	if err != nil {
		return false, nil, errors.Wrap(err, "daemonize: pipe")
	}

	cmd := exec.Command(os.Args[0], os.Args[1:]...)
	cmd.Env = append(os.Environ(), childEnvVar+"=1")
	cmd.ExtraFiles = []*os.File{w}
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		w.Close()
		return false, nil, errors.Wrap(err, "daemonize: start child")
	}
	w.Close()

	// parent reads initialization status from child and exits, mirroring
	// daemonize()'s "count = read(pipefd[0], &status, sizeof(status))".
	var status int32
	readErr := binary.Read(r, binary.LittleEndian, &status)
	r.Close()

	switch {
	case readErr != nil:
		os.Stderr.WriteString("child exited before reporting status\n")
		os.Exit(1)
	case status != 0:
		os.Stderr.WriteString("error starting server\n")
		os.Exit(int(status))
	}
	os.Exit(0)
	panic("unreachable")
}

// reportStatus is daemon_report(): write the outcome and close the pipe.
func reportStatus(f *os.File, initErr error) {
	var status int32 = 0
	if initErr != nil {
		status = 1
	}
	binary.Write(f, binary.LittleEndian, status)
	f.Close()
}
