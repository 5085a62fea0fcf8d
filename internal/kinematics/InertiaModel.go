// Package kinematics defines the InertiaModel interface that decides how
// residual velocity fades once input stops, along with built-in
// implementations and the classifier that splits a 2D drag into an
// along-curve or cross-curve sample.
//
// Adding a new decay model requires only implementing InertiaModel and
// registering it in Decode; the navigator never needs to change.
package kinematics

// Defaults for the built-in models.
const (
	DefaultDamping   = 0.95
	DefaultThreshold = 0.001
)

// InertiaModel is the decay contract every inertia implementation must satisfy.
// Velocities are in caller units per second and dt is in seconds.
type InertiaModel interface {
	// Decay returns the velocity after one idle tick lasting dt.
	// The result never changes sign, and once its magnitude falls below the
	// model's threshold it is exactly zero.
	Decay(v, dt float64) float64

	// Threshold returns the magnitude under which velocity counts as stopped.
	Threshold() float64
}

// snap zeroes v when its magnitude is below threshold.
func snap(v, threshold float64) float64 {
	if v < threshold && v > -threshold {
		return 0
	}
	return v
}
