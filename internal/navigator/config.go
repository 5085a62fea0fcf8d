package navigator

import (
	"fmt"

	"github.com/cxd309/roadnav/internal/curve"
	"github.com/cxd309/roadnav/internal/kinematics"
)

// BranchMode selects how a neighbour is picked when a segment ends at a fork.
type BranchMode string

const (
	BranchChain BranchMode = "chain" // always the first listed neighbour
	BranchTable BranchMode = "table" // branch table keyed on lateral offset
	BranchRoute BranchMode = "route" // shortest path to the agent's destination
)

// InputMode selects how the two input components are interpreted.
type InputMode string

const (
	// InputCone classifies every sample onto a single axis with the 60°/30°
	// decision cone. The other axis holds its velocity for that tick.
	InputCone InputMode = "cone"
	// InputAxes treats both components as independent simultaneous axes.
	// An axis reading zero coasts.
	InputAxes InputMode = "axes"
)

// LaneChangeWhen restricts when lane switches may fire.
type LaneChangeWhen string

const (
	LaneChangeAlways LaneChangeWhen = "always"
	LaneChangeIdle   LaneChangeWhen = "idle" // only on ticks without active input
)

// CrossTrackReject selects what happens to the lateral offset when a lane
// switch is refused for exceeding the cross-track limit.
type CrossTrackReject string

const (
	RejectClamp  CrossTrackReject = "clamp"  // clamp the offset back to ±threshold
	RejectIgnore CrossTrackReject = "ignore" // leave the offset as it is
)

// Config holds the tunables of a navigator. The zero value is not usable;
// start from DefaultConfig.
type Config struct {
	MoveSpeed    float64 `json:"move_speed"`    // longitudinal distance per unit of input
	LateralSpeed float64 `json:"lateral_speed"` // lateral offset per unit of input

	InertiaModel         string  `json:"inertia_model"`
	InertiaDamping       float64 `json:"inertia_damping"`
	InertiaThreshold     float64 `json:"inertia_threshold"`
	InertiaReferenceTick float64 `json:"inertia_reference_tick"` // seconds, time_scaled model only

	LaneSwitchThreshold        float64          `json:"lane_switch_threshold"`
	LaneSwitchHysteresis       float64          `json:"lane_switch_hysteresis"`
	MaxLateralCrossTrackOffset float64          `json:"max_lateral_cross_track_offset"` // 0 disables the check
	LaneChangeWhen             LaneChangeWhen   `json:"lane_change_when"`
	CrossTrackReject           CrossTrackReject `json:"cross_track_reject"`

	MaxOverflowHopsPerTick int     `json:"max_overflow_hops_per_tick"`
	EntryEpsilon           float64 `json:"entry_epsilon"`
	SamplerSteps           int     `json:"sampler_steps"`
	NearestSamples         int     `json:"nearest_samples"`

	BranchMode BranchMode `json:"branch_mode"`
	InputMode  InputMode  `json:"input_mode"`
}

// Upper bounds on the per-tick work a config may ask for.
const (
	maxSamples      = 100_000
	maxOverflowHops = 1024
)

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		MoveSpeed:                  1,
		LateralSpeed:               1,
		InertiaModel:               kinematics.GeometricModelName,
		InertiaDamping:             kinematics.DefaultDamping,
		InertiaThreshold:           kinematics.DefaultThreshold,
		InertiaReferenceTick:       kinematics.DefaultReferenceTick,
		LaneSwitchThreshold:        0.6,
		LaneSwitchHysteresis:       0.3,
		MaxLateralCrossTrackOffset: 2.0,
		LaneChangeWhen:             LaneChangeAlways,
		CrossTrackReject:           RejectClamp,
		MaxOverflowHopsPerTick:     8,
		EntryEpsilon:               0.01,
		SamplerSteps:               curve.DefaultSamplerSteps,
		NearestSamples:             curve.DefaultNearestSamples,
		BranchMode:                 BranchChain,
		InputMode:                  InputCone,
	}
}

// Inertia builds the configured inertia model.
func (c Config) Inertia() (kinematics.InertiaModel, error) {
	return kinematics.New(c.InertiaModel, c.InertiaDamping, c.InertiaThreshold, c.InertiaReferenceTick)
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, err := c.Inertia(); err != nil {
		return err
	}
	if c.LaneSwitchThreshold <= 0 || c.LaneSwitchThreshold > 1 {
		return fmt.Errorf("lane_switch_threshold %g: must be in (0, 1]", c.LaneSwitchThreshold)
	}
	if c.LaneSwitchHysteresis <= 0 || c.LaneSwitchHysteresis >= c.LaneSwitchThreshold {
		return fmt.Errorf("lane_switch_hysteresis %g: must be in (0, lane_switch_threshold)", c.LaneSwitchHysteresis)
	}
	if c.MaxLateralCrossTrackOffset < 0 {
		return fmt.Errorf("max_lateral_cross_track_offset %g: must not be negative", c.MaxLateralCrossTrackOffset)
	}
	if c.MaxOverflowHopsPerTick < 1 || c.MaxOverflowHopsPerTick > maxOverflowHops {
		return fmt.Errorf("max_overflow_hops_per_tick %d: must be in [1, %d]", c.MaxOverflowHopsPerTick, maxOverflowHops)
	}
	if c.EntryEpsilon <= 0 || c.EntryEpsilon >= 0.5 {
		return fmt.Errorf("entry_epsilon %g: must be in (0, 0.5)", c.EntryEpsilon)
	}
	if c.SamplerSteps < 1 || c.SamplerSteps > maxSamples {
		return fmt.Errorf("sampler_steps %d: must be in [1, %d]", c.SamplerSteps, maxSamples)
	}
	if c.NearestSamples < 1 || c.NearestSamples > maxSamples {
		return fmt.Errorf("nearest_samples %d: must be in [1, %d]", c.NearestSamples, maxSamples)
	}
	switch c.BranchMode {
	case BranchChain, BranchTable, BranchRoute:
	default:
		return fmt.Errorf("unknown branch_mode %q", c.BranchMode)
	}
	switch c.InputMode {
	case InputCone, InputAxes:
	default:
		return fmt.Errorf("unknown input_mode %q", c.InputMode)
	}
	switch c.LaneChangeWhen {
	case LaneChangeAlways, LaneChangeIdle:
	default:
		return fmt.Errorf("unknown lane_change_when %q", c.LaneChangeWhen)
	}
	switch c.CrossTrackReject {
	case RejectClamp, RejectIgnore:
	default:
		return fmt.Errorf("unknown cross_track_reject %q", c.CrossTrackReject)
	}
	return nil
}
