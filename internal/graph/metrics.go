package graph

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	graphBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "roadnav_graph_build_duration_seconds",
		Help:    "Time spent linking segments into a road graph",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12), // 0.1ms to ~400ms
	})

	graphLinksBuilt = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roadnav_graph_links_built_total",
		Help: "Undirected segment links created by the graph builder",
	})
)
