// Package transport is the thin façade the map core consumes from its
// message transport; the real network transport is an external
// collaborator out of scope here. This package only pins down the
// contract and supplies an in-process implementation used by tests and
// the CLI tools. Local transports only reach each other inside one
// process.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package transport

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/valversity/ngnfs-go/cmn/cos"
	"github.com/valversity/ngnfs-go/core/meta"
)

// Desc is the message descriptor: the transport boundary type owned by the
// caller of Send.
type Desc struct {
	Type    uint32
	Peer    meta.Endpoint
	CtlBuf  []byte
	DataBuf []byte // optional data page; nil when there is none
}

// Recv is the signature every registered receive handler has. Handlers
// MUST be non-blocking with respect to the transport: implementations
// post long work elsewhere rather than doing it inline.
type Recv func(from meta.Endpoint, desc *Desc) error

// Transport is the minimal surface the map core consumes.
type Transport interface {
	// RegisterRecv installs the handler for a message type. Exactly one
	// handler per type; re-registration is an error.
	RegisterRecv(msgType uint32, fn Recv) error

	// UnregisterRecv removes the handler previously installed for msgType.
	UnregisterRecv(msgType uint32, fn Recv) error

	// Send is synchronous with respect to local queueing and asynchronous
	// with respect to delivery: it returns once the message is accepted,
	// not once the peer has processed it.
	Send(desc *Desc) error
}

// Local is an in-process Transport: Send on one Local delivers directly
// into the Recv handler registered on the target Local reachable at the
// destination endpoint. It exists for tests and for single-process CLI
// tools; a real deployment supplies a network-backed Transport instead.
type Local struct {
	self meta.Endpoint

	mu       sync.Mutex
	handlers map[uint32]Recv
	peers    map[meta.Endpoint]*Local
}

// NewLocal returns a Local transport bound to self. Peers must be wired
// together with Connect before Send can reach them.
func NewLocal(self meta.Endpoint) *Local {
	return &Local{
		self:     self,
		handlers: make(map[uint32]Recv),
		peers:    make(map[meta.Endpoint]*Local),
	}
}

// Connect makes peer reachable at its own endpoint from l, and l reachable
// from peer — Send is symmetric so either side can initiate.
func (l *Local) Connect(peer *Local) {
	l.mu.Lock()
	l.peers[peer.self] = peer
	l.mu.Unlock()

	peer.mu.Lock()
	peer.peers[l.self] = l
	peer.mu.Unlock()
}

func (l *Local) RegisterRecv(msgType uint32, fn Recv) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.handlers[msgType]; ok {
		return cos.NewErr("register_recv", cos.KindInvalidArg, "handler already registered for type %d", msgType)
	}
	l.handlers[msgType] = fn
	return nil
}

func (l *Local) UnregisterRecv(msgType uint32, _ Recv) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.handlers[msgType]; !ok {
		return cos.NewErr("unregister_recv", cos.KindInvalidArg, "no handler registered for type %d", msgType)
	}
	delete(l.handlers, msgType)
	return nil
}

// Send looks up the peer at desc.Peer and invokes its registered handler
// for desc.Type synchronously on the caller's goroutine. Real transports
// dispatch on a transport-owned thread; Local keeps this synchronous for
// test determinism. Because of that, Local's Send also returns the
// handler's error (wrapped) to the sender.
func (l *Local) Send(desc *Desc) error {
	l.mu.Lock()
	peer, ok := l.peers[desc.Peer]
	l.mu.Unlock()
	if !ok {
		return cos.NewErr("send", cos.KindIO, "no route to peer %s", desc.Peer)
	}

	peer.mu.Lock()
	fn, ok := peer.handlers[desc.Type]
	peer.mu.Unlock()
	if !ok {
		return cos.NewErr("send", cos.KindIO, "peer %s has no handler for type %d", desc.Peer, desc.Type)
	}

	if err := fn(l.self, desc); err != nil {
		return errors.Wrapf(err, "transport: recv handler for type %d", desc.Type)
	}
	return nil
}
