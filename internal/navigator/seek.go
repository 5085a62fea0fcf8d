package navigator

import (
	"fmt"
	"math"

	"github.com/cxd309/roadnav/internal/curve"
	"github.com/cxd309/roadnav/internal/graph"
)

// Chain returns the forward chain of segments from the start segment.
func (n *Navigator) Chain() graph.Chain { return n.chain }

// Seek places the agent at fraction (clamped to [0,1]) of its chain's length.
func (n *Navigator) Seek(fraction float64) error {
	if math.IsNaN(fraction) || math.IsInf(fraction, 0) {
		return fmt.Errorf("seek fraction %g: %w", fraction, ErrNotFinite)
	}
	return n.SeekDistance(clamp(fraction, 0, 1) * n.chain.Length)
}

// SeekDistance places the agent distance units along its chain, clamped to
// the chain. The lateral offset is kept and both velocities are zeroed. A
// halted navigator cannot seek and returns its fault.
func (n *Navigator) SeekDistance(distance float64) error {
	if n.state.Halted {
		return n.state.Fault
	}
	if math.IsNaN(distance) || math.IsInf(distance, 0) {
		return fmt.Errorf("seek distance %g: %w", distance, ErrNotFinite)
	}
	id, along := n.chain.Locate(distance)
	seg, err := n.graph.Segment(id)
	if err != nil {
		return err
	}
	t, _ := curve.Advance(seg.Curve, 0, along, n.cfg.SamplerSteps)

	n.seg = seg
	n.state.Segment = id
	n.state.T = t
	n.state.LongitudinalVelocity = 0
	n.state.LateralVelocity = 0
	n.updateForward()
	n.log.Debug("seek", "distance", distance, "segment", id, "t", t)
	return nil
}

// ChainProgress reports how far along its chain the agent is, or nil when it
// is halted or has left the chain.
func (n *Navigator) ChainProgress() *ChainProgress {
	if n.seg == nil || n.state.Halted {
		return nil
	}
	d, ok := n.chain.DistanceAt(n.seg.ID, n.seg.Curve.Length(0, n.state.T))
	if !ok {
		return nil
	}
	p := &ChainProgress{Distance: d, Length: n.chain.Length}
	if n.chain.Length > 0 {
		p.Fraction = d / n.chain.Length
	}
	return p
}
