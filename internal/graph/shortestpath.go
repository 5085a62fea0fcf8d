package graph

import (
	"fmt"
	"math"
)

// travelState is a segment being travelled toward one of its endpoints.
// Direction matters for routing: a segment entered at its start can only be
// left through its end.
type travelState struct {
	segment SegmentID
	exit    Endpoint
}

// Route is a shortest travel path between two segments.
type Route struct {
	Segments []SegmentID `json:"segments"` // ordered segment IDs, first is the origin
	Length   float64     `json:"length"`   // arc length of every segment after the origin
}

// computeShortestPaths runs Floyd-Warshall over all travel states. Moving from
// one state to the next costs the full length of the segment entered.
func (g *Graph) computeShortestPaths() {
	states := make([]travelState, 0, 2*len(g.segments))
	for _, s := range g.segments {
		states = append(states, travelState{s.ID, Start}, travelState{s.ID, End})
	}

	dist := make(map[travelState]map[travelState]float64, len(states))
	next := make(map[travelState]map[travelState]travelState, len(states))
	for _, i := range states {
		dist[i] = make(map[travelState]float64, len(states))
		next[i] = make(map[travelState]travelState, len(states))
		for _, j := range states {
			dist[i][j] = math.Inf(1)
		}
		dist[i][i] = 0
	}
	for _, from := range states {
		for _, l := range g.Links(from.segment, from.exit) {
			to := travelState{l.Neighbor, l.Endpoint.Opposite()}
			if w := g.segmentMap[l.Neighbor].Length(); w < dist[from][to] {
				dist[from][to] = w
				next[from][to] = to
			}
		}
	}
	for _, k := range states {
		for _, i := range states {
			for _, j := range states {
				if d := dist[i][k] + dist[k][j]; d < dist[i][j] {
					dist[i][j] = d
					next[i][j] = next[i][k]
				}
			}
		}
	}

	g.dist = dist
	g.nextState = next
}

// ensureShortestPaths fills the tables once; safe for concurrent callers.
func (g *Graph) ensureShortestPaths() {
	g.routeOnce.Do(g.computeShortestPaths)
}

// bestExitToward returns the state of dest (either direction) closest to from.
func (g *Graph) bestExitToward(from travelState, dest SegmentID) (travelState, float64) {
	best, bestDist := travelState{}, math.Inf(1)
	for _, e := range []Endpoint{Start, End} {
		to := travelState{dest, e}
		if d := g.dist[from][to]; d < bestDist {
			best, bestDist = to, d
		}
	}
	return best, bestDist
}

// NextToward returns the neighbour at endpoint exit of from that lies on the
// shortest path to dest.
func (g *Graph) NextToward(from SegmentID, exit Endpoint, dest SegmentID) (Link, error) {
	if _, err := g.Segment(from); err != nil {
		return Link{}, err
	}
	if _, err := g.Segment(dest); err != nil {
		return Link{}, err
	}
	g.ensureShortestPaths()

	var (
		best     Link
		bestDist = math.Inf(1)
	)
	for _, l := range g.Links(from, exit) {
		if l.Neighbor == dest {
			return l, nil
		}
		_, d := g.bestExitToward(travelState{l.Neighbor, l.Endpoint.Opposite()}, dest)
		if d < bestDist {
			best, bestDist = l, d
		}
	}
	if math.IsInf(bestDist, 1) {
		return Link{}, fmt.Errorf("from segment %d %s to %d: %w", from, exit, dest, ErrNoRoute)
	}
	return best, nil
}

// ShortestRoute returns the shortest path from segment from, leaving through
// exit, to segment dest.
func (g *Graph) ShortestRoute(from SegmentID, exit Endpoint, dest SegmentID) (Route, error) {
	if _, err := g.Segment(from); err != nil {
		return Route{}, err
	}
	if _, err := g.Segment(dest); err != nil {
		return Route{}, err
	}
	if from == dest {
		return Route{Segments: []SegmentID{from}}, nil
	}
	g.ensureShortestPaths()

	start := travelState{from, exit}
	goal, d := g.bestExitToward(start, dest)
	if math.IsInf(d, 1) {
		return Route{}, fmt.Errorf("from segment %d %s to %d: %w", from, exit, dest, ErrNoRoute)
	}
	route := []SegmentID{from}
	for cur := start; cur != goal; {
		n, ok := g.nextState[cur][goal]
		if !ok {
			return Route{}, fmt.Errorf("from segment %d to %d: %w", from, dest, ErrNoRoute)
		}
		cur = n
		route = append(route, cur.segment)
	}
	return Route{Segments: route, Length: d}, nil
}
