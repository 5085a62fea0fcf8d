// Package graph provides the road graph: curve segments as nodes, with
// adjacency inferred from endpoint proximity, plus the lane and branch data
// the navigator consults when a segment ends.
//
// A Graph is built once per session and is read-only afterwards, so it can be
// shared by any number of navigators without locking.
package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/golang/geo/r3"

	"github.com/cxd309/roadnav/internal/curve"
)

// SegmentID identifies a curve segment. IDs are small non-negative integers.
type SegmentID = int

// NoSegment marks an absent lane neighbour.
const NoSegment SegmentID = -1

var (
	ErrUnknownSegment   = errors.New("unknown segment")
	ErrDuplicateSegment = errors.New("duplicate segment")
	ErrNoRoute          = errors.New("no route")
)

// Endpoint names one end of a segment.
type Endpoint uint8

const (
	Start Endpoint = 0
	End   Endpoint = 1
)

// Opposite returns the other end of the segment.
func (e Endpoint) Opposite() Endpoint {
	if e == Start {
		return End
	}
	return Start
}

// Bound returns the parameter value of the endpoint (0 or 1).
func (e Endpoint) Bound() float64 {
	if e == End {
		return 1
	}
	return 0
}

func (e Endpoint) String() string {
	if e == End {
		return "end"
	}
	return "start"
}

func (e Endpoint) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

func (e *Endpoint) UnmarshalText(b []byte) error {
	switch string(b) {
	case "start", "0":
		*e = Start
	case "end", "1":
		*e = End
	default:
		return fmt.Errorf("invalid endpoint %q (want \"start\" or \"end\")", b)
	}
	return nil
}

// Link is one adjacency edge: the neighbouring segment and which of its
// endpoints touches ours.
type Link struct {
	Neighbor SegmentID `json:"neighbor"`
	Endpoint Endpoint  `json:"endpoint"`
}

// Segment is a graph node wrapping a borrowed curve. Its length is computed
// once at construction; curves are immutable for a session.
type Segment struct {
	ID     SegmentID
	Curve  curve.Curve
	length float64
}

// NewSegment wraps c as segment id.
func NewSegment(id SegmentID, c curve.Curve) (*Segment, error) {
	if id < 0 {
		return nil, fmt.Errorf("segment id %d: must be non-negative", id)
	}
	if c == nil {
		return nil, fmt.Errorf("segment %d: nil curve", id)
	}
	return &Segment{ID: id, Curve: c, length: c.Length(0, 1)}, nil
}

// Length returns the cached arc length of the segment.
func (s *Segment) Length() float64 { return s.length }

// Point returns the world position of endpoint e.
func (s *Segment) Point(e Endpoint) r3.Vector { return s.Curve.Position(e.Bound()) }

// Adjacency is the per-segment adjacency record.
type Adjacency struct {
	SuccessorsAtEnd     []Link
	PredecessorsAtStart []Link
	Left, Right         SegmentID
}

// At returns the links attached to endpoint e.
func (a *Adjacency) At(e Endpoint) []Link {
	if e == End {
		return a.SuccessorsAtEnd
	}
	return a.PredecessorsAtStart
}

func (a *Adjacency) add(e Endpoint, l Link) {
	for _, existing := range a.At(e) {
		if existing == l {
			return
		}
	}
	if e == End {
		a.SuccessorsAtEnd = append(a.SuccessorsAtEnd, l)
	} else {
		a.PredecessorsAtStart = append(a.PredecessorsAtStart, l)
	}
}

// SegmentData is the serialisable form of a segment: an id and a curve
// description understood by curve.Decode.
type SegmentData struct {
	ID    SegmentID       `json:"id"`
	Curve json.RawMessage `json:"curve"`
}

// SceneData is the serialisable input representation of a road network.
type SceneData struct {
	Segments []SegmentData `json:"segments"`
	Lanes    []LaneGroup   `json:"lanes,omitempty"`
	Branches []BranchRule  `json:"branches,omitempty"`
}

// Graph is the read-only road graph.
type Graph struct {
	segments   []*Segment
	segmentMap map[SegmentID]*Segment
	adj        map[SegmentID]*Adjacency
	branches   map[branchKey][]BranchRule
	links      int

	// Floyd-Warshall tables over travel states, filled on first route query.
	routeOnce sync.Once
	dist      map[travelState]map[travelState]float64
	nextState map[travelState]map[travelState]travelState
}

// NewGraph decodes every segment in data, links them with Build, and then
// registers the scene's lane groups and branch rules.
func NewGraph(data SceneData, opts Options) (*Graph, error) {
	segs := make([]*Segment, 0, len(data.Segments))
	for _, sd := range data.Segments {
		c, err := curve.Decode(sd.Curve)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", sd.ID, err)
		}
		s, err := NewSegment(sd.ID, c)
		if err != nil {
			return nil, err
		}
		segs = append(segs, s)
	}

	g, err := Build(segs, opts)
	if err != nil {
		return nil, err
	}
	for _, lg := range data.Lanes {
		if err := g.addLanes(lg); err != nil {
			return nil, err
		}
	}
	for _, r := range data.Branches {
		if err := g.addBranch(r); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Len returns the number of segments.
func (g *Graph) Len() int { return len(g.segments) }

// LinkCount returns the number of undirected links created by the builder.
func (g *Graph) LinkCount() int { return g.links }

// Segments returns the segments in scene order.
func (g *Graph) Segments() []*Segment { return g.segments }

// Segment looks up a segment by id.
func (g *Graph) Segment(id SegmentID) (*Segment, error) {
	s, ok := g.segmentMap[id]
	if !ok {
		return nil, fmt.Errorf("segment %d: %w", id, ErrUnknownSegment)
	}
	return s, nil
}

// Adjacency returns the adjacency record for id.
func (g *Graph) Adjacency(id SegmentID) (*Adjacency, error) {
	a, ok := g.adj[id]
	if !ok {
		return nil, fmt.Errorf("segment %d: %w", id, ErrUnknownSegment)
	}
	return a, nil
}

// Links returns the neighbours attached to endpoint e of segment id.
func (g *Graph) Links(id SegmentID, e Endpoint) []Link {
	if a, ok := g.adj[id]; ok {
		return a.At(e)
	}
	return nil
}

// Lane returns the parallel lane to the left (side < 0) or right (side > 0)
// of id, or NoSegment.
func (g *Graph) Lane(id SegmentID, side int) SegmentID {
	a, ok := g.adj[id]
	if !ok || side == 0 {
		return NoSegment
	}
	if side < 0 {
		return a.Left
	}
	return a.Right
}
