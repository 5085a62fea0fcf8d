package graph

import "fmt"

// LaneGroup declares parallel lanes of one logical road. Left and Right are
// optional. Registration is symmetric: the left lane's right neighbour is the
// centre, and the right lane's left neighbour is the centre.
type LaneGroup struct {
	Center SegmentID  `json:"center"`
	Left   *SegmentID `json:"left,omitempty"`
	Right  *SegmentID `json:"right,omitempty"`
}

func (g *Graph) addLanes(lg LaneGroup) error {
	if _, err := g.Segment(lg.Center); err != nil {
		return fmt.Errorf("lane group: %w", err)
	}
	if lg.Left != nil {
		if err := g.setLane(lg.Center, *lg.Left, -1); err != nil {
			return err
		}
	}
	if lg.Right != nil {
		if err := g.setLane(lg.Center, *lg.Right, 1); err != nil {
			return err
		}
	}
	return nil
}

// setLane makes other the neighbour of id on side (<0 left, >0 right) and id
// the neighbour of other on the opposite side.
func (g *Graph) setLane(id, other SegmentID, side int) error {
	if id == other {
		return fmt.Errorf("segment %d cannot be its own lane neighbour", id)
	}
	if _, err := g.Segment(other); err != nil {
		return fmt.Errorf("lane group for %d: %w", id, err)
	}
	a, b := g.adj[id], g.adj[other]
	near, far := &a.Right, &b.Left
	if side < 0 {
		near, far = &a.Left, &b.Right
	}
	if *near != NoSegment && *near != other {
		return fmt.Errorf("segment %d already has lane neighbour %d on that side", id, *near)
	}
	if *far != NoSegment && *far != id {
		return fmt.Errorf("segment %d already has lane neighbour %d on that side", other, *far)
	}
	*near, *far = other, id
	return nil
}
