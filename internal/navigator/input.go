package navigator

import "github.com/cxd309/roadnav/internal/kinematics"

// Input is one tick's worth of user intent, already converted into segment
// space. Longitudinal is positive toward u=1 and Lateral positive to the
// right. Magnitudes are in input units and are scaled by the configured
// speeds.
type Input struct {
	Active       bool    `json:"active"`
	Longitudinal float64 `json:"longitudinal"`
	Lateral      float64 `json:"lateral"`
}

// NoInput is a tick with nothing held, so both axes coast.
func NoInput() Input { return Input{} }

// Drag is a raw two-component drag delta: dx to the right, dy forward.
func Drag(dx, dy float64) Input {
	return Input{Active: true, Longitudinal: dy, Lateral: dx}
}

// Axes is a pair of simultaneous axis readings.
func Axes(longitudinal, lateral float64) Input {
	return Input{Active: true, Longitudinal: longitudinal, Lateral: lateral}
}

// AxisInput turns an already classified sample into an Input.
func AxisInput(s kinematics.Sample) Input {
	switch s.Axis {
	case kinematics.AxisLongitudinal:
		return Input{Active: true, Longitudinal: s.Magnitude}
	case kinematics.AxisLateral:
		return Input{Active: true, Lateral: s.Magnitude}
	}
	return Input{Active: true}
}
