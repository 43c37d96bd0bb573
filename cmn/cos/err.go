// Package cos provides the map core's shared error taxonomy.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import "fmt"

// Kind is the abstract error taxonomy the map core reports errors in. It
// is deliberately small and closed: the map core never invents a new
// kind at a call site, it picks one of these.
type Kind int

const (
	KindInvalidArg Kind = iota
	KindNoMemory
	KindNotReady
	KindProtocol
	KindTimedOut
	KindShutdown
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArg:
		return "invalid argument"
	case KindNoMemory:
		return "out of memory"
	case KindNotReady:
		return "not ready"
	case KindProtocol:
		return "protocol error"
	case KindTimedOut:
		return "timed out"
	case KindShutdown:
		return "shutdown"
	case KindIO:
		return "I/O error"
	default:
		return "unknown error"
	}
}

// Error is the map core's concrete error type: a Kind plus an optional
// operation-specific message. Callers compare against Kind via Is, not
// string matching.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s error: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s error: %s: %s", e.Op, e.Kind, e.Msg)
}

// Is makes *Error comparable against a bare Kind sentinel via errors.Is,
// e.g. errors.Is(err, cos.ErrNotReady).
func (e *Error) Is(target error) bool {
	k, ok := target.(interface{ errKind() Kind })
	if !ok {
		return false
	}
	return e.Kind == k.errKind()
}

func NewErr(op string, kind Kind, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func NewErrf(op string, kind Kind) *Error {
	return &Error{Op: op, Kind: kind}
}

// sentinel lets callers write errors.Is(err, cos.ErrNotReady) without
// constructing a throwaway *Error.
type sentinel Kind

func (s sentinel) Error() string  { return Kind(s).String() }
func (s sentinel) errKind() Kind  { return Kind(s) }

var (
	ErrInvalidArg = sentinel(KindInvalidArg)
	ErrNoMemory   = sentinel(KindNoMemory)
	ErrNotReady   = sentinel(KindNotReady)
	ErrProtocol   = sentinel(KindProtocol)
	ErrTimedOut   = sentinel(KindTimedOut)
	ErrShutdown   = sentinel(KindShutdown)
	ErrIO         = sentinel(KindIO)
)
