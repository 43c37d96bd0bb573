// Package meta holds the map core's data model: Endpoint, DevdMap, Map and
// the construction-time AddrList.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package meta

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/valversity/ngnfs-go/cmn/cos"
)

// Endpoint is a value object: an IPv4 address and port, stored in host
// order in memory (the wire codec is the only place that cares about
// byte order). No identity beyond its bytes.
type Endpoint struct {
	Addr [4]byte
	Port uint16
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%d.%d.%d.%d:%d", e.Addr[0], e.Addr[1], e.Addr[2], e.Addr[3], e.Port)
}

// ParseEndpoint parses "addr:port" into an Endpoint. Fails with
// cos.ErrInvalidArg if the text is malformed, matches ngnfs_map_append_addr's
// parse_ipv4_addr_port call in shared/map.c.
func ParseEndpoint(s string) (Endpoint, error) {
	host, portStr, found := strings.Cut(s, ":")
	if !found {
		return Endpoint{}, cos.NewErr("parse_endpoint", cos.KindInvalidArg, "missing port in %q", s)
	}

	ip := net.ParseIP(host).To4()
	if ip == nil {
		return Endpoint{}, cos.NewErr("parse_endpoint", cos.KindInvalidArg, "invalid IPv4 address %q", host)
	}

	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return Endpoint{}, cos.NewErr("parse_endpoint", cos.KindInvalidArg, "invalid port %q", portStr)
	}

	var e Endpoint
	copy(e.Addr[:], ip)
	e.Port = uint16(port)
	return e, nil
}
