// Package stats exposes the map core's Prometheus counters: lookups,
// publications, and GET_MAPS traffic — ambient observability, the way
// every long-lived aistore subsystem carries its own counters.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package stats

import "github.com/prometheus/client_golang/prometheus"

var (
	LookupTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ngnfs",
		Subsystem: "map",
		Name:      "lookup_total",
		Help:      "Number of block->endpoint lookups, by outcome.",
	}, []string{"outcome"})

	PublishTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ngnfs",
		Subsystem: "map",
		Name:      "publish_total",
		Help:      "Number of times a new map was published.",
	})

	GetMapsRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ngnfs",
		Subsystem: "mapd",
		Name:      "get_maps_requests_total",
		Help:      "Number of GET_MAPS requests served by the map daemon.",
	})

	GetMapsResultErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ngnfs",
		Subsystem: "mapclient",
		Name:      "get_maps_result_errors_total",
		Help:      "Number of GET_MAPS_RESULT messages received carrying a server-side error.",
	})
)

// Registry is a private registry rather than the global default one, so
// that repeated test-process calls to Register don't panic on duplicate
// collectors and multiple mounted clients in one process don't collide.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(LookupTotal, PublishTotal, GetMapsRequestsTotal, GetMapsResultErrorsTotal)
}
