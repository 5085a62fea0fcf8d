package curve

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

// DefaultTension gives the centripetal-looking standard Catmull-Rom shape.
const DefaultTension = 0.5

// Line is a straight segment from From to To.
type Line struct {
	From, To r3.Vector
}

// NewLine returns a straight line curve.
func NewLine(from, to r3.Vector) Line { return Line{From: from, To: to} }

func (l Line) Position(u float64) r3.Vector {
	return l.From.Add(l.To.Sub(l.From).Mul(u))
}

func (l Line) Tangent(float64) r3.Vector { return l.To.Sub(l.From) }

func (l Line) Length(u0, u1 float64) float64 {
	return l.From.Distance(l.To) * math.Abs(clamp01(u1)-clamp01(u0))
}

// Polyline joins its points with straight pieces. Each piece covers an equal
// share of the parameter range regardless of its length, so the curve is
// deliberately non-uniform in arc length when pieces differ in size.
type Polyline struct {
	Points []r3.Vector
}

// NewPolyline returns a polyline through pts; at least two points are required.
func NewPolyline(pts ...r3.Vector) (Polyline, error) {
	if len(pts) < 2 {
		return Polyline{}, fmt.Errorf("polyline needs at least 2 points, got %d", len(pts))
	}
	return Polyline{Points: pts}, nil
}

// piece maps u to the index of the piece containing it and the local parameter.
func (p Polyline) piece(u float64) (int, float64) {
	n := len(p.Points) - 1
	x := clamp01(u) * float64(n)
	i := int(math.Floor(x))
	if i >= n {
		i = n - 1
	}
	return i, x - float64(i)
}

func (p Polyline) Position(u float64) r3.Vector {
	i, f := p.piece(u)
	a, b := p.Points[i], p.Points[i+1]
	return a.Add(b.Sub(a).Mul(f))
}

func (p Polyline) Tangent(u float64) r3.Vector {
	i, _ := p.piece(u)
	return p.Points[i+1].Sub(p.Points[i]).Mul(float64(len(p.Points) - 1))
}

func (p Polyline) Length(u0, u1 float64) float64 {
	u0, u1 = clamp01(u0), clamp01(u1)
	if u0 > u1 {
		u0, u1 = u1, u0
	}
	i0, _ := p.piece(u0)
	i1, _ := p.piece(u1)
	if i0 == i1 {
		return p.Position(u0).Distance(p.Position(u1))
	}
	total := p.Position(u0).Distance(p.Points[i0+1])
	for i := i0 + 1; i < i1; i++ {
		total += p.Points[i].Distance(p.Points[i+1])
	}
	return total + p.Points[i1].Distance(p.Position(u1))
}

// CatmullRom is a cardinal spline passing through every control point.
// Phantom end points are reflected from the first and last pieces.
type CatmullRom struct {
	Points  []r3.Vector
	Tension float64
	ext     []r3.Vector
}

// NewCatmullRom returns a spline through pts with the given tension.
func NewCatmullRom(tension float64, pts ...r3.Vector) (*CatmullRom, error) {
	if len(pts) < 2 {
		return nil, fmt.Errorf("catmull-rom spline needs at least 2 points, got %d", len(pts))
	}
	n := len(pts)
	ext := make([]r3.Vector, n+2)
	ext[0] = pts[0].Add(pts[0].Sub(pts[1]))
	copy(ext[1:], pts)
	ext[n+1] = pts[n-1].Add(pts[n-1].Sub(pts[n-2]))
	return &CatmullRom{Points: pts, Tension: tension, ext: ext}, nil
}

// coeffs returns the cubic coefficients (a t³ + b t² + c t + d) for the piece
// containing u, plus the local parameter and the number of pieces.
func (c *CatmullRom) coeffs(u float64) (a, b, cc, d r3.Vector, t float64, n int) {
	n = len(c.Points) - 1
	x := clamp01(u) * float64(n)
	i := int(math.Floor(x))
	if i >= n {
		i = n - 1
	}
	t = x - float64(i)
	p0, p1, p2, p3 := c.ext[i], c.ext[i+1], c.ext[i+2], c.ext[i+3]
	s := c.Tension
	a = p0.Mul(-s).Add(p1.Mul(2 - s)).Add(p2.Mul(s - 2)).Add(p3.Mul(s))
	b = p0.Mul(2 * s).Add(p1.Mul(s - 3)).Add(p2.Mul(3 - 2*s)).Sub(p3.Mul(s))
	cc = p2.Sub(p0).Mul(s)
	d = p1
	return a, b, cc, d, t, n
}

func (c *CatmullRom) Position(u float64) r3.Vector {
	a, b, cc, d, t, _ := c.coeffs(u)
	return a.Mul(t * t * t).Add(b.Mul(t * t)).Add(cc.Mul(t)).Add(d)
}

func (c *CatmullRom) Tangent(u float64) r3.Vector {
	a, b, cc, _, t, n := c.coeffs(u)
	return a.Mul(3 * t * t).Add(b.Mul(2 * t)).Add(cc).Mul(float64(n))
}

func (c *CatmullRom) Length(u0, u1 float64) float64 { return chordLength(c, u0, u1) }

// Bezier is a cubic Bézier curve.
type Bezier struct {
	P0, P1, P2, P3 r3.Vector
}

// NewBezier returns a cubic Bézier from exactly four control points.
func NewBezier(pts ...r3.Vector) (Bezier, error) {
	if len(pts) != 4 {
		return Bezier{}, fmt.Errorf("cubic bezier needs 4 points, got %d", len(pts))
	}
	return Bezier{P0: pts[0], P1: pts[1], P2: pts[2], P3: pts[3]}, nil
}

func (b Bezier) Position(u float64) r3.Vector {
	t := clamp01(u)
	mt := 1 - t
	return b.P0.Mul(mt * mt * mt).
		Add(b.P1.Mul(3 * mt * mt * t)).
		Add(b.P2.Mul(3 * mt * t * t)).
		Add(b.P3.Mul(t * t * t))
}

func (b Bezier) Tangent(u float64) r3.Vector {
	t := clamp01(u)
	mt := 1 - t
	return b.P1.Sub(b.P0).Mul(3 * mt * mt).
		Add(b.P2.Sub(b.P1).Mul(6 * mt * t)).
		Add(b.P3.Sub(b.P2).Mul(3 * t * t))
}

func (b Bezier) Length(u0, u1 float64) float64 { return chordLength(b, u0, u1) }
