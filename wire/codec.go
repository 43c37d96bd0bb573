// Package wire implements the two little-endian messages the map core
// exchanges over the transport façade: GET_MAPS and GET_MAPS_RESULT.
// Encode and decode are pure: no allocation beyond the output buffer,
// no shared mutable state.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package wire

import (
	"encoding/binary"

	"github.com/valversity/ngnfs-go/cmn/cos"
	"github.com/valversity/ngnfs-go/cmn/debug"
	"github.com/valversity/ngnfs-go/core/meta"
)

// Message type tags, used by transport.Transport.RegisterRecv and by the
// descriptor's Type field.
const (
	MsgGetMaps uint32 = iota
	MsgGetMapsResult
)

// endpointWireSize is sizeof(struct ngnfs_ipv4_addr): a 32-bit address
// followed by a 16-bit port, no padding.
const endpointWireSize = 4 + 2

// GetMaps is the client's request. map_id is reserved for a future
// multi-map world; this core always emits zero and accepts any value.
type GetMaps struct {
	MapID uint64
}

// getMapsResultHeaderSize is offsetof(devd_map.addrs): err (i32) + nr_addrs
// (u64; encode and decode still cap it at meta.MaxAddrs).
const getMapsResultHeaderSize = 4 + 8

// GetMapsResult is the server's response. Err carries a negative
// errno-family code when the server could not produce a map; when Err < 0,
// Devd must be empty and no address bytes follow.
type GetMapsResult struct {
	Err  int32
	Devd meta.DevdMap
}

// EncodeGetMaps serializes a GetMaps request. Always emits MapID as zero:
// implementations must accept any value on decode but must emit zero.
func EncodeGetMaps(_ *GetMaps) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, 0)
	return buf
}

// DecodeGetMaps parses a GET_MAPS control buffer.
func DecodeGetMaps(buf []byte) (*GetMaps, error) {
	if len(buf) != 8 {
		return nil, cos.NewErr("decode_get_maps", cos.KindProtocol,
			"control buffer size %d, expected 8", len(buf))
	}
	return &GetMaps{MapID: binary.LittleEndian.Uint64(buf)}, nil
}

// EncodedSize reports the serialized size of res, letting the caller size
// a send buffer from a result value alone.
func EncodedSize(res *GetMapsResult) int {
	if res.Err < 0 {
		return getMapsResultHeaderSize
	}
	return getMapsResultHeaderSize + len(res.Devd.Addrs)*endpointWireSize
}

// EncodeGetMapsResult serializes a GET_MAPS_RESULT response. Fails with
// cos.ErrInvalidArg if the in-memory map exceeds the wire's address cap.
func EncodeGetMapsResult(res *GetMapsResult) ([]byte, error) {
	nr := len(res.Devd.Addrs)
	if res.Err < 0 {
		nr = 0
	} else if nr > meta.MaxAddrs {
		return nil, cos.NewErr("encode_get_maps_result", cos.KindInvalidArg,
			"devd map has %d addresses, exceeds wire limit of %d", nr, meta.MaxAddrs)
	}

	debug.Assertf(nr <= meta.MaxAddrs, "nr_addrs %d exceeds wire limit of %d after validation", nr, meta.MaxAddrs)

	buf := make([]byte, getMapsResultHeaderSize+nr*endpointWireSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(res.Err))
	binary.LittleEndian.PutUint64(buf[4:12], uint64(nr))

	off := getMapsResultHeaderSize
	if res.Err >= 0 {
		for _, ep := range res.Devd.Addrs {
			copy(buf[off:off+4], ep.Addr[:])
			binary.LittleEndian.PutUint16(buf[off+4:off+6], ep.Port)
			off += endpointWireSize
		}
	}

	return buf, nil
}

// DecodeGetMapsResult parses a GET_MAPS_RESULT control buffer, rejecting
// any mismatch between the declared nr_addrs and the received buffer size.
func DecodeGetMapsResult(buf []byte) (*GetMapsResult, error) {
	if len(buf) < getMapsResultHeaderSize {
		return nil, cos.NewErr("decode_get_maps_result", cos.KindProtocol,
			"control buffer size %d smaller than header %d", len(buf), getMapsResultHeaderSize)
	}

	res := &GetMapsResult{
		Err: int32(binary.LittleEndian.Uint32(buf[0:4])),
	}

	nr64 := binary.LittleEndian.Uint64(buf[4:12])

	if res.Err < 0 {
		if nr64 != 0 || len(buf) != getMapsResultHeaderSize {
			return nil, cos.NewErr("decode_get_maps_result", cos.KindProtocol,
				"error result %d carries a non-empty map", res.Err)
		}
		return res, nil
	}

	if nr64 > meta.MaxAddrs {
		return nil, cos.NewErr("decode_get_maps_result", cos.KindProtocol,
			"nr_addrs %d exceeds wire limit of %d", nr64, meta.MaxAddrs)
	}
	nr := int(nr64)

	want := getMapsResultHeaderSize + nr*endpointWireSize
	if len(buf) != want {
		return nil, cos.NewErr("decode_get_maps_result", cos.KindProtocol,
			"control buffer size %d, expected %d for nr_addrs=%d", len(buf), want, nr)
	}

	res.Devd.Addrs = make([]meta.Endpoint, nr)
	off := getMapsResultHeaderSize
	for i := 0; i < nr; i++ {
		var ep meta.Endpoint
		copy(ep.Addr[:], buf[off:off+4])
		ep.Port = binary.LittleEndian.Uint16(buf[off+4 : off+6])
		res.Devd.Addrs[i] = ep
		off += endpointWireSize
	}

	return res, nil
}
