package kinematics

import "math"

// TimeScaledModelName is the JSON discriminator string for the time-scaled model.
const TimeScaledModelName = "time_scaled"

// DefaultReferenceTick is the tick length at which a time-scaled model decays
// by exactly its damping factor (60 Hz).
const DefaultReferenceTick = 1.0 / 60.0

// TimeScaledDamping applies Damping once per ReferenceTick of elapsed time,
// so coasting distance does not depend on the caller's frame rate.
//
// JSON discriminator: "model": "time_scaled"
type TimeScaledDamping struct {
	Damping       float64 `json:"damping"`
	ThresholdVal  float64 `json:"threshold"`
	ReferenceTick float64 `json:"reference_tick"` // seconds
}

func (m TimeScaledDamping) Threshold() float64 { return m.ThresholdVal }

func (m TimeScaledDamping) Decay(v, dt float64) float64 {
	if dt <= 0 || m.ReferenceTick <= 0 {
		return snap(v, m.ThresholdVal)
	}
	return snap(v*math.Pow(m.Damping, dt/m.ReferenceTick), m.ThresholdVal)
}
