package navigator

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/cxd309/roadnav/internal/curve"
	"github.com/cxd309/roadnav/internal/graph"
)

// evaluateLane runs the hysteresis latch. From Center, an offset at or past
// the switch threshold latches that side and attempts one switch. A latched
// side releases back to Center once the offset falls below the hysteresis
// threshold on that side, so a wobble around the switch threshold cannot
// switch twice. An offset that crosses straight to the far side releases the
// latch and is evaluated from Center in the same call.
func (n *Navigator) evaluateLane() {
	off := n.state.LateralOffset
	hyst := n.cfg.LaneSwitchHysteresis
	switch n.state.Lane {
	case LaneRight:
		if off >= hyst {
			return
		}
		n.state.Lane = LaneCenter
	case LaneLeft:
		if off <= -hyst {
			return
		}
		n.state.Lane = LaneCenter
	}

	side := 0
	switch {
	case off >= n.cfg.LaneSwitchThreshold:
		side, n.state.Lane = 1, LaneRight
	case off <= -n.cfg.LaneSwitchThreshold:
		side, n.state.Lane = -1, LaneLeft
	default:
		return
	}
	n.switchLane(side)
}

// switchLane moves the agent to the parallel lane on side, re-projecting its
// world position onto the lane by nearest-parameter search. The switch is
// refused when the lane's matched point lies further across the track than
// MaxLateralCrossTrackOffset.
func (n *Navigator) switchLane(side int) {
	cur := n.seg
	targetID := n.graph.Lane(cur.ID, side)
	if targetID == graph.NoSegment {
		laneSwitchesTotal.WithLabelValues("no_lane").Inc()
		return
	}
	target, err := n.graph.Segment(targetID)
	if err != nil {
		laneSwitchesTotal.WithLabelValues("no_lane").Inc()
		return
	}

	world, _, _ := PoseAt(cur.Curve, n.state.T, n.state.LateralOffset, n.heading)
	u, _ := curve.Nearest(target.Curve, world, n.cfg.NearestSamples)

	if limit := n.cfg.MaxLateralCrossTrackOffset; limit > 0 {
		cross := crossTrack(cur.Curve, n.state.T, target.Curve.Position(u))
		if cross > limit {
			laneSwitchesTotal.WithLabelValues("rejected").Inc()
			n.emit(Event{Kind: EventLaneRejected, Segment: cur.ID, Neighbor: targetID, Value: cross})
			n.log.Debug("lane switch rejected", "from", cur.ID, "to", targetID,
				"cross_track", cross, "limit", limit)
			if n.cfg.CrossTrackReject == RejectClamp {
				thr := n.cfg.LaneSwitchThreshold
				n.state.LateralOffset = clamp(n.state.LateralOffset, -thr, thr)
			}
			return
		}
	}

	eps := n.cfg.EntryEpsilon
	n.seg = target
	n.state.Segment = targetID
	n.state.T = clamp(u, eps, 1-eps)
	n.state.LateralOffset = 0
	n.state.LateralVelocity = 0

	laneSwitchesTotal.WithLabelValues("switched").Inc()
	n.emit(Event{Kind: EventLaneSwitch, Segment: cur.ID, Neighbor: targetID, Value: u})
	n.log.Debug("lane switch", "from", cur.ID, "to", targetID, "t", n.state.T)
}

// crossTrack measures how far p lies across the track from the centreline of
// c at t: the component of the displacement along the right vector. Where the
// right vector is undefined the full distance is used.
func crossTrack(c curve.Curve, t float64, p r3.Vector) float64 {
	centre := c.Position(t)
	delta := p.Sub(centre)
	right := rightOf(c.Tangent(t))
	if right == (r3.Vector{}) {
		return delta.Norm()
	}
	return math.Abs(delta.Dot(right))
}
