package graph

import "fmt"

// BranchRule maps a lateral-offset range at one end of a segment to the
// neighbour taken there. At defaults to the segment's end.
type BranchRule struct {
	Segment  SegmentID `json:"segment"`
	At       *Endpoint `json:"at,omitempty"`
	Min      float64   `json:"min"`
	Max      float64   `json:"max"`
	Neighbor SegmentID `json:"neighbor"`
}

// Endpoint returns the endpoint the rule applies to.
func (r BranchRule) Endpoint() Endpoint {
	if r.At == nil {
		return End
	}
	return *r.At
}

// Matches reports whether offset falls in the rule's inclusive range.
func (r BranchRule) Matches(offset float64) bool {
	return offset >= r.Min && offset <= r.Max
}

type branchKey struct {
	segment SegmentID
	at      Endpoint
}

func (g *Graph) addBranch(r BranchRule) error {
	if _, err := g.Segment(r.Segment); err != nil {
		return fmt.Errorf("branch rule: %w", err)
	}
	if r.Min > r.Max {
		return fmt.Errorf("branch rule on segment %d: min %g > max %g", r.Segment, r.Min, r.Max)
	}
	at := r.Endpoint()
	if _, ok := findLink(g.Links(r.Segment, at), r.Neighbor); !ok {
		return fmt.Errorf("branch rule on segment %d: %d is not linked at its %s", r.Segment, r.Neighbor, at)
	}
	k := branchKey{r.Segment, at}
	g.branches[k] = append(g.branches[k], r)
	return nil
}

// Branch returns the link selected by the first branch rule at endpoint at of
// id whose range contains offset.
func (g *Graph) Branch(id SegmentID, at Endpoint, offset float64) (Link, bool) {
	for _, r := range g.branches[branchKey{id, at}] {
		if r.Matches(offset) {
			return findLink(g.Links(id, at), r.Neighbor)
		}
	}
	return Link{}, false
}

// BranchRules returns the rules registered for endpoint at of id.
func (g *Graph) BranchRules(id SegmentID, at Endpoint) []BranchRule {
	return g.branches[branchKey{id, at}]
}

func findLink(links []Link, neighbor SegmentID) (Link, bool) {
	for _, l := range links {
		if l.Neighbor == neighbor {
			return l, true
		}
	}
	return Link{}, false
}
