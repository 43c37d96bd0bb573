package transport

import (
	"sync"

	"github.com/valversity/ngnfs-go/cmn/cos"
	"github.com/valversity/ngnfs-go/core/meta"
)

// registry is a process-wide directory of Local transports, keyed by the
// endpoint each was constructed with. It lets independently-created Local
// instances find and connect to each other by address rather than by
// holding a reference to one another's *Local, the closest in-process
// analogue to "listen" and "dial". The registry is an in-memory map, so
// it only spans one process: a Local registered by a cmd/mapd process is
// not visible to a separate cmd/map process, whose Dial then fails.
var (
	registryMu sync.Mutex
	registry   = make(map[meta.Endpoint]*Local)
)

// Register publishes l at its own endpoint so Dial can reach it.
func Register(l *Local) {
	registryMu.Lock()
	registry[l.self] = l
	registryMu.Unlock()
}

// Deregister removes l from the registry if it is still the entry
// published there. Safe to call more than once.
func Deregister(l *Local) {
	registryMu.Lock()
	if registry[l.self] == l {
		delete(registry, l.self)
	}
	registryMu.Unlock()
}

// Dial connects l to whatever Local is currently registered at peer.
func Dial(l *Local, peer meta.Endpoint) error {
	registryMu.Lock()
	target, ok := registry[peer]
	registryMu.Unlock()
	if !ok {
		return cos.NewErr("dial", cos.KindIO, "no listener registered at %s", peer)
	}
	l.Connect(target)
	return nil
}
