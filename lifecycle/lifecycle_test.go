package lifecycle_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/valversity/ngnfs-go/fsinfo"
	"github.com/valversity/ngnfs-go/lifecycle"
)

func TestMonitorTearsDownInReverseOrder(t *testing.T) {
	fi := fsinfo.New()
	m := lifecycle.NewMonitor(fi)

	var order []int
	use := func(n int) error {
		return m.Use(
			func() error { return nil },
			func() { order = append(order, n) },
		)
	}
	for _, n := range []int{1, 2, 3} {
		if err := use(n); err != nil {
			t.Fatalf("Use(%d): %v", n, err)
		}
	}

	err := m.Run(func(ctx context.Context) error { return nil })
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []int{3, 2, 1}
	if len(order) != len(want) {
		t.Fatalf("teardown order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("teardown order = %v, want %v", order, want)
		}
	}
}

func TestMonitorUnwindsOnSetupFailure(t *testing.T) {
	fi := fsinfo.New()
	m := lifecycle.NewMonitor(fi)

	var torn bool
	if err := m.Use(func() error { return nil }, func() { torn = true }); err != nil {
		t.Fatalf("first Use: %v", err)
	}

	boom := errors.New("setup boom")
	err := m.Use(func() error { return boom }, func() { t.Fatal("second teardown must not register") })
	if !errors.Is(err, boom) {
		t.Fatalf("Use error = %v, want %v", err, boom)
	}
	if !torn {
		t.Fatal("first subsystem's teardown should have run on the later failure")
	}
}

func TestMonitorRunReturnsWorkerResult(t *testing.T) {
	fi := fsinfo.New()
	m := lifecycle.NewMonitor(fi)

	want := errors.New("worker failed")
	err := m.Run(func(ctx context.Context) error { return want })
	if !errors.Is(err, want) {
		t.Fatalf("Run = %v, want %v", err, want)
	}
}

func TestMonitorRunPrefersLatchedErrorOnShutdown(t *testing.T) {
	fi := fsinfo.New()
	m := lifecycle.NewMonitor(fi)

	latched := errors.New("latched cause")
	go func() {
		<-time.After(10 * time.Millisecond)
		fi.Shutdown(latched)
	}()

	err := m.Run(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, latched) {
		t.Fatalf("Run after shutdown = %v, want %v", err, latched)
	}
}
