package mapsvc

import (
	"github.com/pkg/errors"
	"github.com/teris-io/shortid"

	"github.com/valversity/ngnfs-go/cmn/cos"
	"github.com/valversity/ngnfs-go/cmn/nlog"
	"github.com/valversity/ngnfs-go/core"
	"github.com/valversity/ngnfs-go/core/meta"
	"github.com/valversity/ngnfs-go/stats"
	"github.com/valversity/ngnfs-go/transport"
	"github.com/valversity/ngnfs-go/wire"
)

// Server is the map-daemon side of the protocol: it answers GET_MAPS with
// a serialized snapshot of its own published map (mapd/recv.c).
type Server struct {
	mi *core.MapInfo
	xp transport.Transport

	recv transport.Recv
}

// NewServer wires a Server to the MapInfo it serves snapshots from and the
// transport it answers requests on.
func NewServer(mi *core.MapInfo, xp transport.Transport) *Server {
	return &Server{mi: mi, xp: xp}
}

// Setup assembles list into a Map, publishes it into the server's own
// store, and registers the GET_MAPS handler (mapd_setup).
func (s *Server) Setup(list *meta.AddrList) error {
	m, err := list.ToMap()
	if err != nil {
		return errors.Wrap(err, "map server setup: assemble address list")
	}
	s.mi.Publish(m)

	s.recv = s.handleGetMaps
	if err := s.xp.RegisterRecv(wire.MsgGetMaps, s.recv); err != nil {
		return errors.Wrap(err, "map server setup: register_recv")
	}
	return nil
}

// handleGetMaps builds a snapshot of the current map and responds with a
// GET_MAPS_RESULT. On snapshot or encode failure it responds with an
// error result carrying -ENOMEM and an empty map instead of dropping the
// request.
func (s *Server) handleGetMaps(from meta.Endpoint, desc *transport.Desc) error {
	reqID, _ := shortid.Generate()
	stats.GetMapsRequestsTotal.Inc()

	if _, err := wire.DecodeGetMaps(desc.CtlBuf); err != nil {
		nlog.Warningf("mapd req=%s from=%s: malformed GET_MAPS: %v", reqID, from, err)
		return err
	}

	res := &wire.GetMapsResult{}
	snap, err := s.mi.CurrentSnapshot()
	if err != nil {
		nlog.Warningf("mapd req=%s from=%s: snapshot failed: %v", reqID, from, err)
		res.Err = kindToErrno(cos.KindNoMemory)
	} else {
		res.Devd = snap.Devd
	}

	buf, err := wire.EncodeGetMapsResult(res)
	if err != nil {
		// the only way EncodeGetMapsResult fails is an oversized map,
		// which AddrList.Append already makes unreachable; fall back to
		// an empty error result rather than silently dropping the reply.
		res = &wire.GetMapsResult{Err: kindToErrno(cos.KindNoMemory)}
		buf, _ = wire.EncodeGetMapsResult(res)
	}

	nlog.Infof("mapd req=%s from=%s: responding with %d addresses, err=%d", reqID, from, len(res.Devd.Addrs), res.Err)

	if err := s.xp.Send(&transport.Desc{Type: wire.MsgGetMapsResult, Peer: from, CtlBuf: buf}); err != nil {
		return errors.Wrapf(err, "mapd req=%s: send GET_MAPS_RESULT", reqID)
	}
	return nil
}

// Destroy unregisters the GET_MAPS handler.
func (s *Server) Destroy() {
	if s.recv == nil {
		return
	}
	if err := s.xp.UnregisterRecv(wire.MsgGetMaps, s.recv); err != nil {
		nlog.Warningf("map server destroy: unregister_recv: %v", err)
	}
	s.recv = nil
}
