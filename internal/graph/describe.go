package graph

import (
	"fmt"
	"io"
	"sort"

	"github.com/cxd309/roadnav/internal/curve"
)

// SegmentInfo is a serialisable snapshot of one segment and its adjacency.
type SegmentInfo struct {
	ID                  SegmentID    `json:"id"`
	Length              float64      `json:"length"`
	Start               curve.Point  `json:"start"`
	End                 curve.Point  `json:"end"`
	SuccessorsAtEnd     []Link       `json:"successors_at_end"`
	PredecessorsAtStart []Link       `json:"predecessors_at_start"`
	Left                *SegmentID   `json:"left,omitempty"`
	Right               *SegmentID   `json:"right,omitempty"`
	Branches            []BranchRule `json:"branches,omitempty"`
}

// Describe returns a snapshot of every segment ordered by id.
func (g *Graph) Describe() []SegmentInfo {
	out := make([]SegmentInfo, 0, len(g.segments))
	for _, s := range g.segments {
		a := g.adj[s.ID]
		info := SegmentInfo{
			ID:                  s.ID,
			Length:              s.Length(),
			Start:               curve.PointOf(s.Point(Start)),
			End:                 curve.PointOf(s.Point(End)),
			SuccessorsAtEnd:     append([]Link{}, a.SuccessorsAtEnd...),
			PredecessorsAtStart: append([]Link{}, a.PredecessorsAtStart...),
		}
		if a.Left != NoSegment {
			left := a.Left
			info.Left = &left
		}
		if a.Right != NoSegment {
			right := a.Right
			info.Right = &right
		}
		info.Branches = append(info.Branches, g.BranchRules(s.ID, Start)...)
		info.Branches = append(info.Branches, g.BranchRules(s.ID, End)...)
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// WriteTable prints a human-readable adjacency listing.
func (g *Graph) WriteTable(w io.Writer) error {
	for _, info := range g.Describe() {
		if _, err := fmt.Fprintf(w, "segment %d  length=%.3f  start=%v  end=%v\n",
			info.ID, info.Length, info.Start, info.End); err != nil {
			return err
		}
		for _, l := range info.PredecessorsAtStart {
			fmt.Fprintf(w, "  start <- %d (%s)\n", l.Neighbor, l.Endpoint)
		}
		for _, l := range info.SuccessorsAtEnd {
			fmt.Fprintf(w, "  end   -> %d (%s)\n", l.Neighbor, l.Endpoint)
		}
		if info.Left != nil {
			fmt.Fprintf(w, "  left lane  %d\n", *info.Left)
		}
		if info.Right != nil {
			fmt.Fprintf(w, "  right lane %d\n", *info.Right)
		}
	}
	_, err := fmt.Fprintf(w, "%d segments, %d links, total length %.3f\n", g.Len(), g.LinkCount(), g.TotalLength())
	return err
}
