package curve

import (
	"math"

	"github.com/golang/geo/r3"
)

// Sampling defaults.
const (
	DefaultSamplerSteps   = 200 // parameter steps per unit u when walking a distance
	DefaultNearestSamples = 100 // parameter samples for nearest-position search
)

// Advance moves distance linear units along c starting at parameter t.
// Positive distances move toward u=1, negative toward u=0.
//
// The walk steps through the parameter range in increments of 1/steps,
// accumulating chord lengths until the requested distance is covered, so it
// stays correct on curves whose parameterisation is not uniform. When the
// distance is covered inside the curve the returned overflow is zero. When
// the walk hits a bound first, newT is that bound and overflow is the
// distance still to travel, carrying the sign of the request.
func Advance(c Curve, t, distance float64, steps int) (newT, overflow float64) {
	t = clamp01(t)
	if distance == 0 {
		return t, 0
	}
	if steps <= 0 {
		steps = DefaultSamplerSteps
	}

	dir, bound := 1.0, 1.0
	if distance < 0 {
		dir, bound = -1.0, 0.0
	}
	target := math.Abs(distance)
	du := 1 / float64(steps)

	consumed := 0.0
	u := t
	prev := c.Position(u)
	for u != bound {
		next := u + dir*du
		if (dir > 0 && next > 1) || (dir < 0 && next < 0) {
			next = bound
		}
		p := c.Position(next)
		d := prev.Distance(p)
		if consumed+d >= target {
			if d == 0 {
				return next, 0
			}
			frac := (target - consumed) / d
			return u + (next-u)*frac, 0
		}
		consumed += d
		u, prev = next, p
	}
	return bound, dir * (target - consumed)
}

// Nearest returns the parameter on c whose position is closest to p, found by
// sampling c at samples+1 evenly spaced parameters. Ties keep the lowest u.
func Nearest(c Curve, p r3.Vector, samples int) (u, dist float64) {
	if samples <= 0 {
		samples = DefaultNearestSamples
	}
	dist = math.MaxFloat64
	for i := 0; i <= samples; i++ {
		su := float64(i) / float64(samples)
		if d := c.Position(su).Distance(p); d < dist {
			u, dist = su, d
		}
	}
	return u, dist
}
