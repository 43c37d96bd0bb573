// Package mapsvc implements the client and server halves of the map
// request protocol: ngnfs_map_client_setup/destroy and mapd_setup/destroy
// from shared/map.c and mapd/recv.c respectively.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package mapsvc

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/valversity/ngnfs-go/cmn/cos"
	"github.com/valversity/ngnfs-go/cmn/nlog"
	"github.com/valversity/ngnfs-go/core"
	"github.com/valversity/ngnfs-go/core/meta"
	"github.com/valversity/ngnfs-go/fsinfo"
	"github.com/valversity/ngnfs-go/stats"
	"github.com/valversity/ngnfs-go/transport"
	"github.com/valversity/ngnfs-go/wire"
)

// DefaultRequestTimeout is the bounded wait a well-behaved client needs
// on its initial map request; the source leaves this unbounded, so this
// is a deliberately chosen default rather than a derived constant.
const DefaultRequestTimeout = 10 * time.Second

// Client is the map-requesting side of the protocol: it registers a
// GET_MAPS_RESULT receiver, sends GET_MAPS, and blocks until its MapInfo
// becomes non-empty.
type Client struct {
	mi   *core.MapInfo
	xp   transport.Transport
	fi   *fsinfo.FSInfo
	self meta.Endpoint

	recv transport.Recv
}

// NewClient wires a Client to the MapInfo it will publish into, the
// transport it will speak over, and the FSInfo whose shutdown it latches
// protocol failures and server-side errors into. A timeout is returned
// by Setup, not latched.
func NewClient(mi *core.MapInfo, xp transport.Transport, fi *fsinfo.FSInfo, self meta.Endpoint) *Client {
	return &Client{mi: mi, xp: xp, fi: fi, self: self}
}

// Setup registers the result handler, sends GET_MAPS to server, and blocks
// until a map is published, shutdown is signalled, or timeout elapses
// (whichever comes first). On any failure it unregisters the handler and
// propagates.
func (c *Client) Setup(ctx context.Context, server meta.Endpoint, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	c.recv = c.handleGetMapsResult
	if err := c.xp.RegisterRecv(wire.MsgGetMapsResult, c.recv); err != nil {
		return errors.Wrap(err, "map client setup: register_recv")
	}

	buf := wire.EncodeGetMaps(&wire.GetMaps{MapID: 0})
	if err := c.xp.Send(&transport.Desc{Type: wire.MsgGetMaps, Peer: server, CtlBuf: buf}); err != nil {
		c.Destroy()
		return errors.Wrap(err, "map client setup: send GET_MAPS")
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := c.mi.WaitUntilNonEmpty(waitCtx)
	if err != nil {
		switch {
		case c.fi.Err() != nil:
			// a registered handler already latched a more specific cause
			// (protocol error, server-side errno) — prefer it over the
			// generic shutdown WaitUntilNonEmpty reports.
			err = c.fi.Err()
		case waitCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil:
			err = cos.NewErr("map client setup", cos.KindTimedOut,
				"no map received from %s within %s", server, timeout)
		}
		c.Destroy()
		return err
	}

	return nil
}

// handleGetMapsResult is the GET_MAPS_RESULT receiver: decode, and either
// publish the map or latch and propagate a shutdown-triggering error.
func (c *Client) handleGetMapsResult(_ meta.Endpoint, desc *transport.Desc) error {
	gmr, err := wire.DecodeGetMapsResult(desc.CtlBuf)
	if err != nil {
		c.fi.Shutdown(err)
		return err
	}

	if gmr.Err < 0 {
		stats.GetMapsResultErrorsTotal.Inc()
		kind := errnoToKind(gmr.Err)
		err := cos.NewErr("get_maps_result", kind, "map daemon returned errno %d", gmr.Err)
		c.fi.Shutdown(err)
		return err
	}

	m := &meta.Map{Devd: gmr.Devd}
	c.mi.Publish(m)
	nlog.Infof("map client: published map with %d addresses", len(m.Devd.Addrs))
	return nil
}

// Destroy unregisters the result handler. Safe to call more than once.
func (c *Client) Destroy() {
	if c.recv == nil {
		return
	}
	if err := c.xp.UnregisterRecv(wire.MsgGetMapsResult, c.recv); err != nil {
		nlog.Warningf("map client destroy: unregister_recv: %v", err)
	}
	c.recv = nil
}
