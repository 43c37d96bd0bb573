package meta

import "github.com/valversity/ngnfs-go/cmn/cos"

// MaxAddrs is the cap on a DevdMap's length: the largest count a single
// unsigned byte holds. The wire codec carries nr_addrs in a 64-bit field
// but refuses counts above this; the in-memory representation is an
// ordinary slice, bounded by Append and by the wire encode and decode.
const MaxAddrs = 255

// DevdMap is an ordered sequence of endpoints: the input to the
// block→host lookup. Order is significant; duplicates are permitted.
type DevdMap struct {
	Addrs []Endpoint
}

// Map currently wraps a single DevdMap. The wrapper exists so a future
// family of maps can be published atomically as a unit; the core today
// only ever populates Devd.
type Map struct {
	Devd DevdMap
}

// Clone returns a deep, independent copy: used when handing a map out of
// the publish cell (core.MapInfo.CurrentSnapshot) so that the caller's copy
// can never be mutated by a concurrent publish.
func (m *Map) Clone() *Map {
	out := &Map{Devd: DevdMap{Addrs: make([]Endpoint, len(m.Devd.Addrs))}}
	copy(out.Devd.Addrs, m.Devd.Addrs)
	return out
}

// AddrList accumulates parsed endpoints at construction time (mapd startup
// from its -devd flags). Single-owner, never shared across threads;
// Free only drops the entries, since the garbage collector owns
// reclamation.
type AddrList struct {
	entries []Endpoint
}

// Append parses "addr:port" and appends it. Fails with cos.ErrInvalidArg if
// the text is malformed or the list already holds MaxAddrs entries.
func (l *AddrList) Append(s string) error {
	if len(l.entries) >= MaxAddrs {
		return cos.NewErr("addr_list_append", cos.KindInvalidArg,
			"too many addresses specified, exceeded limit of %d", MaxAddrs)
	}

	ep, err := ParseEndpoint(s)
	if err != nil {
		return err
	}

	l.entries = append(l.entries, ep)
	return nil
}

// Len reports the number of entries, maintained exactly equal to the
// number of successful Append calls.
func (l *AddrList) Len() int { return len(l.entries) }

// Free releases the list. Idempotent, safe on an empty list.
func (l *AddrList) Free() { l.entries = nil }

// ToMap assembles the accumulated entries into a Map
// (ngnfs_map_addrs_to_maps / addr_list_to_maps in shared/map.c). Fails
// with cos.ErrInvalidArg if the list is empty.
func (l *AddrList) ToMap() (*Map, error) {
	if len(l.entries) == 0 {
		return nil, cos.NewErr("addr_list_to_map", cos.KindInvalidArg, "address list is empty")
	}

	m := &Map{Devd: DevdMap{Addrs: make([]Endpoint, len(l.entries))}}
	copy(m.Devd.Addrs, l.entries)
	return m, nil
}
