package navigator

import (
	"github.com/golang/geo/r3"

	"github.com/cxd309/roadnav/internal/curve"
)

var worldUp = r3.Vector{Y: 1}

// Heading is a unit forward vector and the unit vector to its right.
type Heading struct {
	Forward r3.Vector
	Right   r3.Vector
}

var defaultHeading = Heading{Forward: r3.Vector{Z: 1}, Right: r3.Vector{X: 1}}

// rightOf returns the unit vector to the right of a curve heading along
// tangent, or the zero vector when tangent is degenerate or vertical.
func rightOf(tangent r3.Vector) r3.Vector {
	return worldUp.Cross(tangent).Normalize()
}

// PoseAt computes the world pose for parameter t on c, displaced by lateral
// along the curve's right vector. Where the tangent is degenerate the
// previous heading is kept and degenerate is reported. Where only the right
// vector is undefined (a vertical tangent) the previous right vector is kept.
func PoseAt(c curve.Curve, t, lateral float64, previous Heading) (position r3.Vector, h Heading, degenerate bool) {
	position = c.Position(t)
	h = previous
	if fwd := c.Tangent(t).Normalize(); fwd == (r3.Vector{}) {
		degenerate = true
	} else {
		h.Forward = fwd
		if right := rightOf(fwd); right != (r3.Vector{}) {
			h.Right = right
		}
	}
	if lateral != 0 {
		position = position.Add(h.Right.Mul(lateral))
	}
	return position, h, degenerate
}
