// Package navigator moves a single agent over a road graph. Each Tick turns
// user input into longitudinal travel along the current segment and lateral
// displacement across it, resolves overflow into neighbouring segments,
// evaluates lane changes and emits a world pose.
package navigator

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/cxd309/roadnav/internal/curve"
	"github.com/cxd309/roadnav/internal/graph"
	"github.com/cxd309/roadnav/internal/kinematics"
)

// Navigator owns the state of one agent. It is not safe for concurrent use;
// callers serialise ticks per agent.
type Navigator struct {
	graph   *graph.Graph
	cfg     Config
	inertia kinematics.InertiaModel
	log     *slog.Logger

	state   State
	seg     *graph.Segment
	dest    graph.SegmentID
	heading Heading
	chain   graph.Chain // forward run from the start segment, used by Seek
	events  []Event
}

// Option customises a Navigator.
type Option func(*Navigator)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(n *Navigator) { n.log = l }
}

// WithInertia overrides the inertia model built from the config.
func WithInertia(m kinematics.InertiaModel) Option {
	return func(n *Navigator) { n.inertia = m }
}

// WithDestination sets the target segment used by BranchRoute.
func WithDestination(id graph.SegmentID) Option {
	return func(n *Navigator) { n.dest = id }
}

// New creates a navigator positioned at start. An invalid config or a
// non-finite start is an error. An empty graph or unknown start segment is
// not: the navigator is returned halted and reports the reason on every tick.
//
// When start.Fraction is set the navigator is placed that far along the chain
// of segments leading forward from start.Segment, and start.T is ignored.
func New(g *graph.Graph, cfg Config, start Start, opts ...Option) (*Navigator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("navigator config: %w", err)
	}
	if err := start.Validate(); err != nil {
		return nil, err
	}
	n := &Navigator{
		graph:   g,
		cfg:     cfg,
		log:     slog.Default(),
		dest:    graph.NoSegment,
		heading: defaultHeading,
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.inertia == nil {
		m, err := cfg.Inertia()
		if err != nil {
			return nil, err
		}
		n.inertia = m
	}

	n.state = State{
		Segment:       start.Segment,
		T:             clamp(start.T, 0, 1),
		LateralOffset: clamp(start.LateralOffset, -1, 1),
	}
	switch {
	case g == nil || g.Len() == 0:
		n.halt(ErrEmptyGraph)
	default:
		seg, err := g.Segment(start.Segment)
		if err != nil {
			n.halt(err)
			break
		}
		n.seg = seg
		n.chain, _ = g.ChainFrom(seg.ID)
		if start.Fraction != nil {
			if err := n.Seek(*start.Fraction); err != nil {
				return nil, err
			}
		}
		n.updateForward()
	}
	return n, nil
}

func (n *Navigator) halt(err error) {
	n.state.Halted = true
	n.state.Fault = err
	n.log.Error("navigator halted", "segment", n.state.Segment, "err", err)
}

// State returns a copy of the current state.
func (n *Navigator) State() State { return n.state }

// Destination returns the route destination, or graph.NoSegment.
func (n *Navigator) Destination() graph.SegmentID { return n.dest }

// SetDestination changes the route destination.
func (n *Navigator) SetDestination(id graph.SegmentID) { n.dest = id }

// Pose returns the current world pose without advancing.
func (n *Navigator) Pose() Pose {
	if n.seg == nil {
		return Pose{Forward: curve.PointOf(n.heading.Forward)}
	}
	pos, _, _ := PoseAt(n.seg.Curve, n.state.T, n.state.LateralOffset, n.heading)
	return Pose{Position: curve.PointOf(pos), Forward: curve.PointOf(n.heading.Forward)}
}

// Tick advances the navigator by one step of duration dt seconds.
func (n *Navigator) Tick(in Input, dt float64) Frame {
	ticksTotal.Inc()
	n.events = nil
	if n.state.Halted {
		haltedTicksTotal.Inc()
		n.emit(Event{Kind: EventHalted, Segment: n.state.Segment, Neighbor: graph.NoSegment})
		return n.frame()
	}

	lon, lat := n.integrate(in, dt)
	n.travel(lon)
	n.shiftLateral(lat)
	if n.cfg.LaneChangeWhen == LaneChangeAlways || !in.Active {
		n.evaluateLane()
	}
	n.updateForward()
	return n.frame()
}

func (n *Navigator) frame() Frame {
	return Frame{
		Pose:       n.Pose(),
		State:      n.state,
		Events:     n.events,
		Diagnostic: n.state.Diagnostic(),
		Chain:      n.ChainProgress(),
	}
}

func (n *Navigator) emit(e Event) { n.events = append(n.events, e) }

func (n *Navigator) updateForward() {
	_, h, degenerate := PoseAt(n.seg.Curve, n.state.T, 0, n.heading)
	if degenerate {
		n.log.Debug("degenerate tangent, keeping previous heading", "segment", n.state.Segment, "t", n.state.T)
	}
	n.heading = h
}

// integrate converts input into this tick's longitudinal distance and
// lateral offset change, updating velocities.
//
// A live axis takes its displacement straight from the input and sets its
// velocity to displacement/dt. An axis with no input coasts: it moves by
// velocity·dt and then decays. In cone mode a held input freezes the axis it
// was not classified onto.
func (n *Navigator) integrate(in Input, dt float64) (lon, lat float64) {
	lonLive, latLive := false, false
	lonFrozen, latFrozen := false, false
	var lonIn, latIn float64

	if in.Active {
		switch n.cfg.InputMode {
		case InputAxes:
			lonIn, latIn = in.Longitudinal, in.Lateral
			lonLive, latLive = lonIn != 0, latIn != 0
		default:
			s := kinematics.Classify(in.Lateral, in.Longitudinal)
			switch s.Axis {
			case kinematics.AxisLongitudinal:
				lonIn, lonLive = s.Magnitude, true
			case kinematics.AxisLateral:
				latIn, latLive = s.Magnitude, true
			}
			lonFrozen, latFrozen = !lonLive, !latLive
		}
	}

	switch {
	case lonLive:
		lon = lonIn * n.cfg.MoveSpeed
		if dt > 0 {
			n.state.LongitudinalVelocity = lon / dt
		}
	case !lonFrozen:
		lon = n.state.LongitudinalVelocity * dt
		n.state.LongitudinalVelocity = n.inertia.Decay(n.state.LongitudinalVelocity, dt)
	}

	switch {
	case latLive:
		lat = latIn * n.cfg.LateralSpeed
		if dt > 0 {
			n.state.LateralVelocity = lat / dt
		}
	case !latFrozen:
		lat = n.state.LateralVelocity * dt
		n.state.LateralVelocity = n.inertia.Decay(n.state.LateralVelocity, dt)
	}
	return lon, lat
}

func (n *Navigator) shiftLateral(delta float64) {
	if delta == 0 {
		return
	}
	off := n.state.LateralOffset + delta
	if off > 1 || off < -1 {
		off = clamp(off, -1, 1)
		n.state.LateralVelocity = 0
	}
	n.state.LateralOffset = off
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
