package navigator

import (
	"errors"
	"fmt"
	"math"

	"github.com/cxd309/roadnav/internal/curve"
	"github.com/cxd309/roadnav/internal/graph"
)

// Conditions that halt a navigator. They are stored on the state rather than
// returned from Tick.
var (
	ErrEmptyGraph     = errors.New("road graph has no segments")
	ErrUnknownSegment = graph.ErrUnknownSegment
)

// ErrNotFinite rejects NaN or infinite placement values.
var ErrNotFinite = errors.New("value must be finite")

// LaneState is the hysteresis latch for lane changes. It leaves Center only
// when the lateral offset reaches the switch threshold and returns to Center
// only once the offset falls below the hysteresis threshold.
type LaneState uint8

const (
	LaneCenter LaneState = iota
	LaneLeft
	LaneRight
)

func (l LaneState) String() string {
	switch l {
	case LaneLeft:
		return "left"
	case LaneRight:
		return "right"
	default:
		return "center"
	}
}

func (l LaneState) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

func (l *LaneState) UnmarshalText(b []byte) error {
	switch string(b) {
	case "center", "":
		*l = LaneCenter
	case "left":
		*l = LaneLeft
	case "right":
		*l = LaneRight
	default:
		return fmt.Errorf("invalid lane state %q", b)
	}
	return nil
}

// mirror swaps left and right, used when travel direction flips.
func (l LaneState) mirror() LaneState {
	switch l {
	case LaneLeft:
		return LaneRight
	case LaneRight:
		return LaneLeft
	}
	return l
}

// Start is where an agent begins navigating. Fraction, when set, places the
// agent that far (0 to 1) along the forward chain from Segment instead of at T.
type Start struct {
	Segment       graph.SegmentID `json:"segment"`
	T             float64         `json:"t"`
	LateralOffset float64         `json:"lateral_offset"`
	Fraction      *float64        `json:"fraction,omitempty"`
}

// Validate rejects non-finite values. Finite values out of range are clamped
// when the navigator is placed.
func (s Start) Validate() error {
	check := func(name string, v float64) error {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("start %s %g: %w", name, v, ErrNotFinite)
		}
		return nil
	}
	if err := check("t", s.T); err != nil {
		return err
	}
	if err := check("lateral_offset", s.LateralOffset); err != nil {
		return err
	}
	if s.Fraction != nil {
		return check("fraction", *s.Fraction)
	}
	return nil
}

// State is the per-agent navigation state.
type State struct {
	Segment              graph.SegmentID `json:"segment"`
	T                    float64         `json:"t"`
	LateralOffset        float64         `json:"lateral_offset"`
	LongitudinalVelocity float64         `json:"longitudinal_velocity"`
	LateralVelocity      float64         `json:"lateral_velocity"`
	Lane                 LaneState       `json:"lane"`
	Distance             float64         `json:"distance"` // cumulative distance travelled
	Halted               bool            `json:"halted"`
	Fault                error           `json:"-"`
}

// Pose is what the output collaborator consumes each tick.
type Pose struct {
	Position curve.Point `json:"position"`
	Forward  curve.Point `json:"forward"`
}

// EventKind classifies something notable that happened during a tick.
type EventKind string

const (
	EventTransition   EventKind = "transition"
	EventDeadEnd      EventKind = "dead_end"
	EventOverflowCap  EventKind = "overflow_cap"
	EventLaneSwitch   EventKind = "lane_switch"
	EventLaneRejected EventKind = "lane_rejected"
	EventHalted       EventKind = "halted"
)

// Event records a transition or condition observed during a tick.
type Event struct {
	Kind     EventKind       `json:"kind"`
	Segment  graph.SegmentID `json:"segment"`
	Neighbor graph.SegmentID `json:"neighbor"`
	Value    float64         `json:"value,omitempty"`
}

// ChainProgress locates the agent on its forward chain.
type ChainProgress struct {
	Distance float64 `json:"distance"`
	Fraction float64 `json:"fraction"`
	Length   float64 `json:"length"`
}

// Frame is the result of one tick. Chain is nil while the agent is off the
// chain it started on.
type Frame struct {
	Pose       Pose           `json:"pose"`
	State      State          `json:"state"`
	Events     []Event        `json:"events,omitempty"`
	Diagnostic string         `json:"diagnostic"`
	Chain      *ChainProgress `json:"chain,omitempty"`
}

// Diagnostic renders a one-line status for display.
func (s State) Diagnostic() string {
	if s.Halted {
		return fmt.Sprintf("halted: %v", s.Fault)
	}
	return fmt.Sprintf("segment=%d t=%.3f lateral=%.2f lane=%s distance=%.2f",
		s.Segment, s.T, s.LateralOffset, s.Lane, s.Distance)
}
