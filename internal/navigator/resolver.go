package navigator

import (
	"math"

	"github.com/cxd309/roadnav/internal/curve"
	"github.com/cxd309/roadnav/internal/graph"
)

// travel moves distance linear units along the current segment, carrying any
// overflow into neighbouring segments. Each crossing is one hop. Entry into a
// new segment starts exactly at the linked endpoint and the remaining
// overflow is applied from there; whenever a tick changed segment the final
// parameter is clamped to [ε, 1-ε] so the agent never rests on a boundary.
//
// With no neighbour at the exit the agent stops at the bound and its
// longitudinal velocity is zeroed. After MaxOverflowHopsPerTick hops the
// remaining overflow is dropped.
func (n *Navigator) travel(distance float64) {
	if distance == 0 {
		return
	}
	remaining := distance
	hops := 0
	for {
		from := n.state.T
		newT, overflow := curve.Advance(n.seg.Curve, from, remaining, n.cfg.SamplerSteps)
		n.state.Distance += math.Abs(remaining - overflow)
		n.state.T = newT
		if overflow == 0 {
			break
		}

		exit := graph.End
		if overflow < 0 {
			exit = graph.Start
		}
		link, ok := n.chooseLink(n.seg.ID, exit)
		if !ok {
			n.state.T = exit.Bound()
			n.state.LongitudinalVelocity = 0
			deadEndsTotal.Inc()
			n.emit(Event{Kind: EventDeadEnd, Segment: n.seg.ID, Neighbor: graph.NoSegment, Value: overflow})
			n.log.Debug("dead end", "segment", n.seg.ID, "endpoint", exit, "residual", overflow)
			return
		}
		if hops >= n.cfg.MaxOverflowHopsPerTick {
			overflowCapTotal.Inc()
			n.emit(Event{Kind: EventOverflowCap, Segment: n.seg.ID, Neighbor: link.Neighbor, Value: overflow})
			n.log.Warn("overflow hop limit reached, discarding residual",
				"segment", n.seg.ID, "hops", hops, "residual", overflow)
			break
		}

		next, err := n.graph.Segment(link.Neighbor)
		if err != nil {
			// Links only ever name built segments.
			n.halt(err)
			return
		}
		n.enter(next, link, overflow)
		remaining = n.entryDistance(link, overflow)
		hops++
	}
	if hops > 0 {
		eps := n.cfg.EntryEpsilon
		n.state.T = clamp(n.state.T, eps, 1-eps)
	}
}

// entryDistance is the signed distance to travel on a segment entered
// through link: away from the entered endpoint.
func (n *Navigator) entryDistance(link graph.Link, overflow float64) float64 {
	if link.Endpoint == graph.Start {
		return math.Abs(overflow)
	}
	return -math.Abs(overflow)
}

// enter moves the agent onto next at the linked endpoint. Crossing a
// reversed link (end to end or start to start) flips the direction of travel
// relative to the curve parameter, so the longitudinal velocity changes sign
// and the lateral frame mirrors.
func (n *Navigator) enter(next *graph.Segment, link graph.Link, overflow float64) {
	prev := n.seg.ID
	reversed := (overflow > 0) != (link.Endpoint == graph.Start)
	if reversed {
		n.state.LongitudinalVelocity = -n.state.LongitudinalVelocity
		n.state.LateralOffset = -n.state.LateralOffset
		n.state.LateralVelocity = -n.state.LateralVelocity
		n.state.Lane = n.state.Lane.mirror()
	}
	n.seg = next
	n.state.Segment = next.ID
	n.state.T = link.Endpoint.Bound()

	transitionsTotal.Inc()
	n.emit(Event{Kind: EventTransition, Segment: prev, Neighbor: next.ID, Value: overflow})
	n.log.Debug("segment transition", "from", prev, "to", next.ID,
		"entry", link.Endpoint, "overflow", overflow, "reversed", reversed)
}

// chooseLink picks the neighbour to enter when leaving id through exit.
// Every mode falls back to the first listed neighbour.
func (n *Navigator) chooseLink(id graph.SegmentID, exit graph.Endpoint) (graph.Link, bool) {
	links := n.graph.Links(id, exit)
	if len(links) == 0 {
		return graph.Link{}, false
	}
	switch n.cfg.BranchMode {
	case BranchTable:
		if l, ok := n.graph.Branch(id, exit, n.state.LateralOffset); ok {
			return l, true
		}
	case BranchRoute:
		if n.dest != graph.NoSegment {
			l, err := n.graph.NextToward(id, exit, n.dest)
			if err == nil {
				return l, true
			}
			n.log.Debug("no route to destination, taking first neighbour",
				"segment", id, "destination", n.dest, "err", err)
		}
	}
	return links[0], true
}
