package lifecycle_test

import (
	"context"
	"testing"

	"github.com/valversity/ngnfs-go/core"
	"github.com/valversity/ngnfs-go/core/meta"
	"github.com/valversity/ngnfs-go/fsinfo"
	"github.com/valversity/ngnfs-go/lifecycle"
	"github.com/valversity/ngnfs-go/mapsvc"
	"github.com/valversity/ngnfs-go/transport"
)

// TestMountThenUnmount reproduces tests/mount_unmount.c end to end: mount
// (setup every subsystem, request the initial map) immediately followed
// by unmount (tear everything down in reverse order), all within one
// Monitor.Run/Teardown cycle.
func TestMountThenUnmount(t *testing.T) {
	serverEP, err := meta.ParseEndpoint("127.0.0.1:7300")
	if err != nil {
		t.Fatalf("ParseEndpoint: %v", err)
	}
	clientEP, err := meta.ParseEndpoint("127.0.0.1:7301")
	if err != nil {
		t.Fatalf("ParseEndpoint: %v", err)
	}

	serverXp := transport.NewLocal(serverEP)
	clientXp := transport.NewLocal(clientEP)
	serverXp.Connect(clientXp)

	var list meta.AddrList
	for _, a := range []string{"10.0.0.1:5000", "10.0.0.2:5000", "10.0.0.3:5000"} {
		if err := list.Append(a); err != nil {
			t.Fatalf("Append(%q): %v", a, err)
		}
	}
	srv := mapsvc.NewServer(core.NewMapInfo(), serverXp)
	if err := srv.Setup(&list); err != nil {
		t.Fatalf("Server.Setup: %v", err)
	}
	defer srv.Destroy()

	fi := fsinfo.New()
	m := lifecycle.NewMonitor(fi)

	mi := core.NewMapInfo()
	client := mapsvc.NewClient(mi, clientXp, fi, clientEP)

	var torndown []string
	if err := m.Use(
		func() error { torndown = append(torndown, "setup:trace"); return nil },
		func() { torndown = append(torndown, "teardown:trace") },
	); err != nil {
		t.Fatalf("Use(trace): %v", err)
	}
	if err := m.Use(
		func() error { return client.Setup(fi.Ctx(), serverEP, mapsvc.DefaultRequestTimeout) },
		func() { torndown = append(torndown, "teardown:client"); client.Destroy() },
	); err != nil {
		t.Fatalf("Use(client): %v", err)
	}

	err = m.Run(func(ctx context.Context) error {
		// "mounted": the map is already available by the time Use's
		// client.Setup returned, so ngnfs_map_request_maps's equivalent
		// work is already done — this worker just confirms it and exits,
		// the way mount_unmount_thread falls straight through to
		// ngnfs_unmount without waiting for anything further.
		_, lerr := mi.Lookup(5)
		return lerr
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{"teardown:client", "teardown:trace"}
	if len(torndown) != len(want) || torndown[0] != want[0] || torndown[1] != want[1] {
		t.Fatalf("teardown order = %v, want %v", torndown, want)
	}

	ep, lerr := mi.Lookup(5)
	if lerr != nil {
		t.Fatalf("Lookup after unmount: %v", lerr)
	}
	if ep.Port != 5000 || ep.Addr[3] != 3 {
		t.Fatalf("Lookup(5) = %s, want host 3", ep)
	}
}
