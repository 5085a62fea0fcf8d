package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roadnav_http_requests_total",
		Help: "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "roadnav_sessions_active",
		Help: "Navigation sessions currently held in memory",
	})

	activeAgents = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "roadnav_agents_active",
		Help: "Agents across all live sessions",
	})
)
