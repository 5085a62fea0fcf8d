package graph

import "sort"

// Chain is a run of segments joined end to start, in travel order. Distances
// along a chain are measured from the start of its first segment.
type Chain struct {
	Segments []SegmentID `json:"segments"`
	Length   float64     `json:"length"`

	lengths []float64
	starts  []float64 // chain distance at which each segment begins
}

// TotalLength returns the summed arc length of every segment in the graph.
func (g *Graph) TotalLength() float64 {
	total := 0.0
	for _, s := range g.segments {
		total += s.Length()
	}
	return total
}

// ChainFrom follows the first forward successor from id, entering each
// segment at its start, until a dead end or a segment already on the chain.
func (g *Graph) ChainFrom(id SegmentID) (Chain, error) {
	seg, err := g.Segment(id)
	if err != nil {
		return Chain{}, err
	}
	var c Chain
	seen := make(map[SegmentID]bool)
	for {
		c.Segments = append(c.Segments, seg.ID)
		c.lengths = append(c.lengths, seg.Length())
		c.starts = append(c.starts, c.Length)
		c.Length += seg.Length()
		seen[seg.ID] = true

		next, ok := forwardLink(g.Links(seg.ID, End))
		if !ok || seen[next.Neighbor] {
			return c, nil
		}
		seg = g.segmentMap[next.Neighbor]
	}
}

// forwardLink returns the first link entering its neighbour at the start.
func forwardLink(links []Link) (Link, bool) {
	for _, l := range links {
		if l.Endpoint == Start {
			return l, true
		}
	}
	return Link{}, false
}

// Locate maps a chain distance, clamped to [0, Length], to a segment and the
// distance into it. A distance on a join resolves to the earlier segment.
func (c Chain) Locate(distance float64) (SegmentID, float64) {
	if len(c.Segments) == 0 {
		return NoSegment, 0
	}
	if distance < 0 {
		distance = 0
	}
	i := sort.Search(len(c.Segments), func(i int) bool {
		return distance <= c.starts[i]+c.lengths[i]
	})
	if i == len(c.Segments) {
		i = len(c.Segments) - 1
		return c.Segments[i], c.lengths[i]
	}
	return c.Segments[i], distance - c.starts[i]
}

// DistanceAt returns the chain distance of the point along units into
// segment id. It reports false when id is not on the chain.
func (c Chain) DistanceAt(id SegmentID, along float64) (float64, bool) {
	for i, s := range c.Segments {
		if s == id {
			return c.starts[i] + along, true
		}
	}
	return 0, false
}
