package graph

import (
	"fmt"
	"log/slog"
	"time"
)

// DefaultLinkTolerance is the endpoint distance under which two segments are
// considered connected.
const DefaultLinkTolerance = 2.0

// Options configures the graph builder.
type Options struct {
	// LinkTolerance is the maximum endpoint distance that still links two segments.
	LinkTolerance float64
	// LinkReversed also links end-to-end and start-to-start pairs. Travelling
	// over such a link reverses the direction of travel on the new segment.
	LinkReversed bool
	Logger       *slog.Logger
}

// DefaultOptions returns the builder defaults.
func DefaultOptions() Options {
	return Options{LinkTolerance: DefaultLinkTolerance}
}

// Build links segs into a Graph by comparing endpoints. For every pair of
// distinct segments A and B, A's end within tolerance of B's start becomes a
// link recorded in A's successors and B's predecessors, and the same test is
// made for A's start against B's end. Each unordered pair is visited once so
// every link appears exactly once on each side.
//
// Construction is O(n²) in the number of segments; it runs once per session.
// An empty segment list yields an empty graph, which is not an error here;
// navigators refuse to move on it.
func Build(segs []*Segment, opts Options) (*Graph, error) {
	if opts.LinkTolerance < 0 {
		return nil, fmt.Errorf("link tolerance %g: must not be negative", opts.LinkTolerance)
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	began := time.Now()

	g := &Graph{
		segmentMap: make(map[SegmentID]*Segment, len(segs)),
		adj:        make(map[SegmentID]*Adjacency, len(segs)),
		branches:   make(map[branchKey][]BranchRule),
	}
	for _, s := range segs {
		if s == nil {
			return nil, fmt.Errorf("nil segment in build input")
		}
		if _, exists := g.segmentMap[s.ID]; exists {
			return nil, fmt.Errorf("segment %d: %w", s.ID, ErrDuplicateSegment)
		}
		g.segments = append(g.segments, s)
		g.segmentMap[s.ID] = s
		g.adj[s.ID] = &Adjacency{Left: NoSegment, Right: NoSegment}
	}

	type pairing struct{ a, b Endpoint }
	pairings := []pairing{{End, Start}, {Start, End}}
	if opts.LinkReversed {
		pairings = append(pairings, pairing{End, End}, pairing{Start, Start})
	}

	for i, a := range g.segments {
		for _, b := range g.segments[i+1:] {
			for _, p := range pairings {
				d := a.Point(p.a).Distance(b.Point(p.b))
				if d > opts.LinkTolerance {
					continue
				}
				g.link(a.ID, p.a, b.ID, p.b)
				log.Debug("linked segments",
					slog.Int("from", a.ID),
					slog.String("from_endpoint", p.a.String()),
					slog.Int("to", b.ID),
					slog.String("to_endpoint", p.b.String()),
					slog.Float64("distance", d))
			}
		}
	}

	graphBuildDuration.Observe(time.Since(began).Seconds())
	graphLinksBuilt.Add(float64(g.links))
	log.Info("road graph built",
		slog.Int("segments", len(g.segments)),
		slog.Int("links", g.links),
		slog.Float64("total_length", g.TotalLength()),
		slog.Float64("tolerance", opts.LinkTolerance))
	return g, nil
}

// link records a symmetric edge between endpoint ae of a and endpoint be of b.
func (g *Graph) link(a SegmentID, ae Endpoint, b SegmentID, be Endpoint) {
	g.adj[a].add(ae, Link{Neighbor: b, Endpoint: be})
	g.adj[b].add(be, Link{Neighbor: a, Endpoint: ae})
	g.links++
}
