// Package curve provides the parametric curves a road network is made of,
// along with the arc-length sampler and nearest-parameter search the
// navigator uses to move over them.
//
// Every curve is parameterised over u ∈ [0,1]. The parameterisation is not
// assumed to be uniform in arc length; code that needs to move a physical
// distance goes through Advance instead of scaling u directly.
package curve

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

// Curve is the evaluation contract the navigator needs from a road segment.
// Implementations must be safe for concurrent reads; curves are treated as
// immutable once a graph has been built from them.
type Curve interface {
	// Position returns the world position at parameter u.
	Position(u float64) r3.Vector

	// Tangent returns the (unnormalised) derivative at parameter u.
	// A zero vector marks a degenerate point.
	Tangent(u float64) r3.Vector

	// Length returns the arc length between u0 and u1 (order-independent).
	Length(u0, u1 float64) float64
}

// Point is the wire form of a position: [x, y, z].
type Point [3]float64

// Vec converts p to an r3.Vector.
func (p Point) Vec() r3.Vector { return r3.Vector{X: p[0], Y: p[1], Z: p[2]} }

// PointOf converts v to its wire form.
func PointOf(v r3.Vector) Point { return Point{v.X, v.Y, v.Z} }

// Curve kind discriminators used in scene files.
const (
	KindLine       = "line"
	KindPolyline   = "polyline"
	KindCatmullRom = "catmull_rom"
	KindBezier     = "bezier"
)

// kindDisc is the minimum JSON structure needed to read the curve discriminator.
type kindDisc struct {
	Type string `json:"type"`
}

type lineJSON struct {
	From Point `json:"from"`
	To   Point `json:"to"`
}

type pointsJSON struct {
	Points  []Point  `json:"points"`
	Tension *float64 `json:"tension,omitempty"`
}

// Decode builds a Curve from its JSON description. The object must carry a
// "type" discriminator; the remaining fields depend on the kind:
//
//   - "line": from, to
//   - "polyline": points (at least 2)
//   - "catmull_rom": points (at least 2), optional tension
//   - "bezier": points (exactly 4)
func Decode(raw json.RawMessage) (Curve, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("missing curve definition")
	}
	var disc kindDisc
	if err := json.Unmarshal(raw, &disc); err != nil {
		return nil, fmt.Errorf("reading curve type: %w", err)
	}

	switch disc.Type {
	case KindLine:
		var l lineJSON
		if err := json.Unmarshal(raw, &l); err != nil {
			return nil, fmt.Errorf("parsing line: %w", err)
		}
		return NewLine(l.From.Vec(), l.To.Vec()), nil
	case KindPolyline, KindCatmullRom, KindBezier:
		var p pointsJSON
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", disc.Type, err)
		}
		pts := make([]r3.Vector, len(p.Points))
		for i, pt := range p.Points {
			pts[i] = pt.Vec()
		}
		switch disc.Type {
		case KindPolyline:
			return NewPolyline(pts...)
		case KindCatmullRom:
			tension := DefaultTension
			if p.Tension != nil {
				tension = *p.Tension
			}
			return NewCatmullRom(tension, pts...)
		default:
			return NewBezier(pts...)
		}
	case "":
		return nil, fmt.Errorf("curve has no \"type\" field")
	default:
		return nil, fmt.Errorf("unknown curve type %q", disc.Type)
	}
}

// lengthSamplesPerUnit is the chord count per unit parameter used by curves
// without a closed-form length.
const lengthSamplesPerUnit = 64

// chordLength estimates the arc length of c between u0 and u1 by summing
// chords over evenly spaced parameter samples.
func chordLength(c Curve, u0, u1 float64) float64 {
	u0, u1 = clamp01(u0), clamp01(u1)
	if u0 > u1 {
		u0, u1 = u1, u0
	}
	n := int(math.Ceil((u1 - u0) * lengthSamplesPerUnit))
	if n < 1 {
		n = 1
	}
	total := 0.0
	prev := c.Position(u0)
	for i := 1; i <= n; i++ {
		u := u0 + (u1-u0)*float64(i)/float64(n)
		p := c.Position(u)
		total += prev.Distance(p)
		prev = p
	}
	return total
}

func clamp01(u float64) float64 {
	switch {
	case u < 0:
		return 0
	case u > 1:
		return 1
	}
	return u
}
