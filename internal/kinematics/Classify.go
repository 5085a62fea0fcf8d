package kinematics

import (
	"fmt"
	"math"
)

// Axis names the direction an input sample acts along.
type Axis uint8

const (
	AxisNone Axis = iota
	AxisLongitudinal
	AxisLateral
)

func (a Axis) String() string {
	switch a {
	case AxisLongitudinal:
		return "longitudinal"
	case AxisLateral:
		return "lateral"
	default:
		return "none"
	}
}

func (a Axis) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Axis) UnmarshalText(b []byte) error {
	switch string(b) {
	case "longitudinal":
		*a = AxisLongitudinal
	case "lateral":
		*a = AxisLateral
	case "none", "":
		*a = AxisNone
	default:
		return fmt.Errorf("invalid axis %q (want \"longitudinal\" or \"lateral\")", b)
	}
	return nil
}

// Sample is one classified input delta.
type Sample struct {
	Axis      Axis
	Magnitude float64
}

var sqrt3 = math.Sqrt(3)

// Classify splits a drag vector into a single-axis sample using a 60°/30°
// cone: a drag counts as longitudinal when |dy| > √3·|dx| (within 30° of
// vertical) and lateral otherwise. Positive dy moves forward along the
// curve; positive dx moves right. A zero drag yields AxisNone.
func Classify(dx, dy float64) Sample {
	if dx == 0 && dy == 0 {
		return Sample{}
	}
	if math.Abs(dy) > sqrt3*math.Abs(dx) {
		return Sample{Axis: AxisLongitudinal, Magnitude: dy}
	}
	return Sample{Axis: AxisLateral, Magnitude: dx}
}
