// commands.go is cli/debugfs.c's sorted command table and bsearch
// dispatch, reworked onto sort.Search. Persisted filesystem state (pfs,
// inodes, transactions) is out of scope here — this core only ever owns
// a cluster map — so mkfs/stat are adapted to operate on the one piece
// of state this binary actually has: mkfs resets the shell's working
// "inode" (here, a block number) back to root, and stat reports which
// host that block number currently maps to.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"fmt"
	"sort"

	"github.com/valversity/ngnfs-go/core"
)

const rootBlockNumber = 0

type debugfsContext struct {
	mi     *core.MapInfo
	cwdIno uint64
}

type command struct {
	name string
	fn   func(ctx *debugfsContext, args []string) (quit bool, err error)
}

// commands must stay sorted by name: lookupCommand relies on it.
var commands = []command{
	{"mkfs", cmdMkfs},
	{"quit", cmdQuit},
	{"stat", cmdStat},
}

func lookupCommand(name string) *command {
	i := sort.Search(len(commands), func(i int) bool { return commands[i].name >= name })
	if i < len(commands) && commands[i].name == name {
		return &commands[i]
	}
	return nil
}

func cmdMkfs(ctx *debugfsContext, _ []string) (bool, error) {
	ctx.cwdIno = rootBlockNumber
	fmt.Println("mkfs: no persisted filesystem state in this core; working block reset to root")
	return false, nil
}

func cmdStat(ctx *debugfsContext, _ []string) (bool, error) {
	ep, err := ctx.mi.Lookup(ctx.cwdIno)
	if err != nil {
		fmt.Printf("stat error: %v\n", err)
		return false, err
	}
	fmt.Printf("ino: %d\nowner: %s\n", ctx.cwdIno, ep)
	return false, nil
}

func cmdQuit(_ *debugfsContext, _ []string) (bool, error) {
	return true, nil
}
