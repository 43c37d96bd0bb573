// Package config loads the small JSON document cmd/mapd reads at
// startup: the map server's address, a client-side wait bound for
// GET_MAPS_RESULT, and where trace output goes. Grounded on
// shared/config.c's ngnfs_config_parse and, for the JSON technique, on
// aistore's cmn/jsp (which wraps jsoniter as an encoding/json drop-in
// around its on-disk metadata) — this wrapper is simpler since there is
// no versioned metadata format to round-trip here, just one flat struct.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package config

import (
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/valversity/ngnfs-go/cmn/cos"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config is the on-disk shape of the JSON document passed to cmd/mapd
// via -c. The client binaries (cmd/map, cmd/mount, cmd/debugfs) take no
// config file.
type Config struct {
	// MapServer is the "host:port" cmd/mapd listens on.
	MapServer string `json:"map_server"`

	// RequestTimeoutMS is a bound on how long a client waits for a map
	// response; zero means mapsvc.DefaultRequestTimeout. No binary passes
	// it to mapsvc.Client.Setup: the client binaries always wait
	// mapsvc.DefaultRequestTimeout.
	RequestTimeoutMS int64 `json:"request_timeout_ms"`

	// TraceFile, if non-empty, is opened and passed to nlog.SetOutput
	// instead of the default stderr (shared/debug.c's trace file).
	TraceFile string `json:"trace_file,omitempty"`
}

// RequestTimeout returns RequestTimeoutMS as a time.Duration, or zero if
// unset (letting the caller apply its own default).
func (c *Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutMS <= 0 {
		return 0
	}
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// Load reads and parses the JSON document at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config: read %s", path)
	}

	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, cos.NewErr("config: parse", cos.KindInvalidArg, "%s: %v", path, err)
	}

	if c.MapServer == "" {
		return nil, cos.NewErr("config: validate", cos.KindInvalidArg, "%s: map_server is required", path)
	}

	return &c, nil
}
