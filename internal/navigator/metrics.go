package navigator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roadnav_navigator_ticks_total",
		Help: "Navigator ticks processed",
	})

	transitionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roadnav_navigator_transitions_total",
		Help: "Segment transitions taken through endpoint links",
	})

	deadEndsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roadnav_navigator_dead_ends_total",
		Help: "Ticks that stopped at an endpoint with no neighbour",
	})

	overflowCapTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roadnav_navigator_overflow_cap_total",
		Help: "Ticks whose overflow residual was discarded at the hop limit",
	})

	laneSwitchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roadnav_navigator_lane_switches_total",
		Help: "Lane switch attempts by result",
	}, []string{"result"}) // switched, rejected, no_lane

	haltedTicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roadnav_navigator_halted_ticks_total",
		Help: "Ticks requested on a halted navigator",
	})
)
