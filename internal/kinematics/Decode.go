package kinematics

import (
	"encoding/json"
	"fmt"
)

// modelJSON is the raw JSON shape of an inertia model. Missing fields keep
// their defaults.
type modelJSON struct {
	Model         string  `json:"model"`
	Damping       float64 `json:"damping"`
	Threshold     float64 `json:"threshold"`
	ReferenceTick float64 `json:"reference_tick"`
}

// Decode resolves an inertia model from JSON. The "model" discriminator key
// selects the concrete implementation; the remaining keys are its parameters.
// An empty or null message yields the default geometric model.
//
// Supported models:
//   - "geometric": fixed per-tick damping.
//   - "time_scaled": damping per reference tick of elapsed time.
func Decode(raw json.RawMessage) (InertiaModel, error) {
	aux := modelJSON{
		Model:         GeometricModelName,
		Damping:       DefaultDamping,
		Threshold:     DefaultThreshold,
		ReferenceTick: DefaultReferenceTick,
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &aux); err != nil {
			return nil, fmt.Errorf("parsing inertia model: %w", err)
		}
	}
	return New(aux.Model, aux.Damping, aux.Threshold, aux.ReferenceTick)
}

// New builds the named model. referenceTick is only used by the time-scaled model.
func New(model string, damping, threshold, referenceTick float64) (InertiaModel, error) {
	if damping <= 0 || damping > 1 {
		return nil, fmt.Errorf("inertia damping %g: must be in (0, 1]", damping)
	}
	if threshold <= 0 {
		return nil, fmt.Errorf("inertia threshold %g: must be positive", threshold)
	}

	switch model {
	case GeometricModelName, "":
		return GeometricDamping{Damping: damping, ThresholdVal: threshold}, nil
	case TimeScaledModelName:
		if referenceTick <= 0 {
			return nil, fmt.Errorf("time-scaled inertia: reference tick %g must be positive", referenceTick)
		}
		return TimeScaledDamping{Damping: damping, ThresholdVal: threshold, ReferenceTick: referenceTick}, nil
	default:
		return nil, fmt.Errorf("unknown inertia model %q", model)
	}
}
