package kinematics

// GeometricModelName is the JSON discriminator string for the geometric model.
const GeometricModelName = "geometric"

// GeometricDamping multiplies velocity by a fixed factor every idle tick,
// independent of how long the tick lasted. This is the default model.
//
// JSON discriminator: "model": "geometric"
type GeometricDamping struct {
	Damping      float64 `json:"damping"`   // per-tick factor in (0,1]
	ThresholdVal float64 `json:"threshold"` // stop threshold
}

// NewGeometricDamping returns the default geometric model.
func NewGeometricDamping() GeometricDamping {
	return GeometricDamping{Damping: DefaultDamping, ThresholdVal: DefaultThreshold}
}

func (g GeometricDamping) Threshold() float64 { return g.ThresholdVal }

func (g GeometricDamping) Decay(v, _ float64) float64 {
	return snap(v*g.Damping, g.ThresholdVal)
}
