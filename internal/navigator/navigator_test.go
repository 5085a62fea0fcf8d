package navigator

import (
	"encoding/json"
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxd309/roadnav/internal/curve"
	"github.com/cxd309/roadnav/internal/graph"
)

const tick = 1.0 / 60

func z(v float64) r3.Vector { return r3.Vector{Z: v} }

// unitChain returns n one-unit segments end to end along +Z, linked with a
// tolerance tight enough that only touching endpoints connect.
func unitChain(t *testing.T, n int) *graph.Graph {
	t.Helper()
	var ends [][2]r3.Vector
	for i := 0; i < n; i++ {
		ends = append(ends, [2]r3.Vector{z(float64(i)), z(float64(i + 1))})
	}
	return lines(t, graph.Options{LinkTolerance: 0.1}, ends...)
}

func lines(t *testing.T, opts graph.Options, ends ...[2]r3.Vector) *graph.Graph {
	t.Helper()
	segs := make([]*graph.Segment, len(ends))
	for i, e := range ends {
		s, err := graph.NewSegment(i, curve.NewLine(e[0], e[1]))
		require.NoError(t, err)
		segs[i] = s
	}
	g, err := graph.Build(segs, opts)
	require.NoError(t, err)
	return g
}

func scene(t *testing.T, src string) *graph.Graph {
	t.Helper()
	var data graph.SceneData
	require.NoError(t, json.Unmarshal([]byte(src), &data))
	g, err := graph.NewGraph(data, graph.DefaultOptions())
	require.NoError(t, err)
	return g
}

func newNav(t *testing.T, g *graph.Graph, cfg Config, start Start, opts ...Option) *Navigator {
	t.Helper()
	n, err := New(g, cfg, start, opts...)
	require.NoError(t, err)
	return n
}

func eventsOf(f Frame, kind EventKind) []Event {
	var out []Event
	for _, e := range f.Events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func assertPoint(t *testing.T, want r3.Vector, got curve.Point) {
	t.Helper()
	assert.InDelta(t, want.X, got[0], 1e-6, "x")
	assert.InDelta(t, want.Y, got[1], 1e-6, "y")
	assert.InDelta(t, want.Z, got[2], 1e-6, "z")
}

func TestOverflowIntoNextSegment(t *testing.T) {
	g := lines(t, graph.DefaultOptions(), [2]r3.Vector{z(0), z(5)}, [2]r3.Vector{z(5), z(10)})
	n := newNav(t, g, DefaultConfig(), Start{Segment: 0, T: 0.9})

	f := n.Tick(Drag(0, 1.0), tick)

	assert.Equal(t, 1, f.State.Segment)
	assert.InDelta(t, 0.1, f.State.T, 1e-6)
	assertPoint(t, z(5.5), f.Pose.Position)
	assertPoint(t, z(1), f.Pose.Forward)
	assert.InDelta(t, 1.0, f.State.Distance, 1e-6)
	require.Len(t, eventsOf(f, EventTransition), 1)
	assert.Equal(t, Event{Kind: EventTransition, Segment: 0, Neighbor: 1, Value: f.Events[0].Value}, f.Events[0])
	assert.InDelta(t, 0.5, f.Events[0].Value, 1e-6)
}

func TestOverflowIntoPreviousSegment(t *testing.T) {
	g := lines(t, graph.DefaultOptions(), [2]r3.Vector{z(0), z(5)}, [2]r3.Vector{z(5), z(10)})
	n := newNav(t, g, DefaultConfig(), Start{Segment: 1, T: 0.1})

	f := n.Tick(Drag(0, -1.0), tick)

	assert.Equal(t, 0, f.State.Segment)
	assert.InDelta(t, 0.9, f.State.T, 1e-6)
	assertPoint(t, z(4.5), f.Pose.Position)
	assertPoint(t, z(1), f.Pose.Forward)
	assert.InDelta(t, -60.0, f.State.LongitudinalVelocity, 1e-9)
	assert.InDelta(t, 1.0, f.State.Distance, 1e-6)
	transitions := eventsOf(f, EventTransition)
	require.Len(t, transitions, 1)
	assert.Equal(t, 1, transitions[0].Segment)
	assert.Equal(t, 0, transitions[0].Neighbor)
	assert.InDelta(t, -0.5, transitions[0].Value, 1e-6)

	// Coasting keeps backing down the earlier segment.
	f = n.Tick(NoInput(), tick)
	assert.Equal(t, 0, f.State.Segment)
	assert.Less(t, f.State.T, 0.9)
}

func TestEntryIsClampedInsideSegment(t *testing.T) {
	g := lines(t, graph.DefaultOptions(), [2]r3.Vector{z(0), z(5)}, [2]r3.Vector{z(5), z(10)})
	n := newNav(t, g, DefaultConfig(), Start{Segment: 0, T: 0.9})

	// Lands a hair past the boundary; the entry epsilon keeps t off it.
	f := n.Tick(Drag(0, 0.5001), tick)
	assert.Equal(t, 1, f.State.Segment)
	assert.Equal(t, 0.01, f.State.T)
}

func TestDeadEnd(t *testing.T) {
	g := lines(t, graph.DefaultOptions(), [2]r3.Vector{z(0), z(5)})
	n := newNav(t, g, DefaultConfig(), Start{Segment: 0, T: 0.9})

	f := n.Tick(Drag(0, 1.0), tick)
	assert.Equal(t, 0, f.State.Segment)
	assert.Equal(t, 1.0, f.State.T)
	assert.Zero(t, f.State.LongitudinalVelocity)
	assert.InDelta(t, 0.5, f.State.Distance, 1e-6)
	require.Len(t, eventsOf(f, EventDeadEnd), 1)

	// Coasting afterwards goes nowhere.
	f = n.Tick(NoInput(), tick)
	assert.Equal(t, 1.0, f.State.T)
	assert.Empty(t, f.Events)

	// Backing off works.
	f = n.Tick(Drag(0, -2.5), tick)
	assert.InDelta(t, 0.5, f.State.T, 1e-6)
}

func TestDeadEndAtStart(t *testing.T) {
	g := lines(t, graph.DefaultOptions(), [2]r3.Vector{z(0), z(5)})
	n := newNav(t, g, DefaultConfig(), Start{Segment: 0, T: 0.1})

	f := n.Tick(Drag(0, -3), tick)
	assert.Equal(t, 0.0, f.State.T)
	require.Len(t, eventsOf(f, EventDeadEnd), 1)
	assert.InDelta(t, -2.5, eventsOf(f, EventDeadEnd)[0].Value, 1e-6)
}

func TestOverflowHopCap(t *testing.T) {
	g := unitChain(t, 20)
	n := newNav(t, g, DefaultConfig(), Start{Segment: 0, T: 0})

	f := n.Tick(Drag(0, 15), tick)

	assert.Equal(t, 8, f.State.Segment)
	assert.Equal(t, 0.99, f.State.T)
	assert.Len(t, eventsOf(f, EventTransition), 8)
	capped := eventsOf(f, EventOverflowCap)
	require.Len(t, capped, 1)
	assert.InDelta(t, 6.0, capped[0].Value, 1e-6)
	assert.InDelta(t, 9.0, f.State.Distance, 1e-6)
}

func TestHopCapIsConfigurable(t *testing.T) {
	g := unitChain(t, 6)
	cfg := DefaultConfig()
	cfg.MaxOverflowHopsPerTick = 2
	n := newNav(t, g, cfg, Start{Segment: 0, T: 0.5})

	f := n.Tick(Drag(0, 4), tick)
	assert.Equal(t, 2, f.State.Segment)
	assert.Len(t, eventsOf(f, EventOverflowCap), 1)
}

func TestInertiaCoastsToRest(t *testing.T) {
	g := lines(t, graph.DefaultOptions(), [2]r3.Vector{z(0), z(1000)})
	n := newNav(t, g, DefaultConfig(), Start{Segment: 0, T: 0})

	f := n.Tick(Drag(0, tick), tick)
	require.InDelta(t, 1.0, f.State.LongitudinalVelocity, 1e-9)

	limit := int(math.Ceil(math.Log(0.001/1.0) / math.Log(0.95)))
	v := f.State.LongitudinalVelocity
	ticks := 0
	for v != 0 {
		f = n.Tick(NoInput(), 0)
		require.GreaterOrEqual(t, f.State.LongitudinalVelocity, 0.0)
		require.LessOrEqual(t, f.State.LongitudinalVelocity, v)
		v = f.State.LongitudinalVelocity
		ticks++
		require.LessOrEqual(t, ticks, limit)
	}
	assert.Equal(t, limit, ticks)
}

func TestCoastingKeepsMoving(t *testing.T) {
	g := lines(t, graph.DefaultOptions(), [2]r3.Vector{z(0), z(100)})
	n := newNav(t, g, DefaultConfig(), Start{Segment: 0, T: 0})

	n.Tick(Drag(0, 0.5), tick)
	before := n.State().T
	f := n.Tick(NoInput(), tick)
	// Coasting moves by the pre-decay velocity, then damps it.
	assert.InDelta(t, before+0.5/100, f.State.T, 1e-6)
	assert.InDelta(t, 0.5/tick*0.95, f.State.LongitudinalVelocity, 1e-9)
}

func TestConeFreezesOtherAxis(t *testing.T) {
	g := lines(t, graph.DefaultOptions(), [2]r3.Vector{z(0), z(100)})
	n := newNav(t, g, DefaultConfig(), Start{Segment: 0, T: 0})

	n.Tick(Drag(0, 1), tick)
	f := n.Tick(Drag(0.2, 0), tick)
	assert.InDelta(t, 60.0, f.State.LongitudinalVelocity, 1e-9, "longitudinal held while dragging sideways")
	assert.InDelta(t, 0.2, f.State.LateralOffset, 1e-9)
	assert.InDelta(t, 0.01, f.State.T, 1e-6)
}

func TestAxesModeAppliesBoth(t *testing.T) {
	g := lines(t, graph.DefaultOptions(), [2]r3.Vector{z(0), z(100)})
	cfg := DefaultConfig()
	cfg.InputMode = InputAxes
	n := newNav(t, g, cfg, Start{Segment: 0, T: 0})

	f := n.Tick(Axes(1, 0.2), tick)
	assert.InDelta(t, 0.01, f.State.T, 1e-6)
	assert.InDelta(t, 0.2, f.State.LateralOffset, 1e-9)

	// Lateral released: it coasts while longitudinal stays live.
	f = n.Tick(Axes(1, 0), tick)
	assert.InDelta(t, 0.4, f.State.LateralOffset, 1e-9)
	assert.InDelta(t, 0.2/tick*0.95, f.State.LateralVelocity, 1e-9)
}

func TestLateralOffsetClamped(t *testing.T) {
	g := lines(t, graph.DefaultOptions(), [2]r3.Vector{z(0), z(100)})
	n := newNav(t, g, DefaultConfig(), Start{Segment: 0, T: 0.5})

	f := n.Tick(Drag(1.5, 0), tick)
	assert.Equal(t, 1.0, f.State.LateralOffset)
	assert.Zero(t, f.State.LateralVelocity)
	assertPoint(t, r3.Vector{X: 1, Z: 50}, f.Pose.Position)
}

const laneScene = `{
	"segments": [
		{"id": 0, "curve": {"type": "line", "from": [0,0,0], "to": [0,0,10]}},
		{"id": 1, "curve": {"type": "line", "from": [1.5,0,0], "to": [1.5,0,10]}},
		{"id": 2, "curve": {"type": "line", "from": [-3,0,0], "to": [-3,0,10]}}
	],
	"lanes": [{"center": 0, "right": 1, "left": 2}]
}`

func TestLaneSwitchHysteresis(t *testing.T) {
	g := scene(t, laneScene)
	n := newNav(t, g, DefaultConfig(), Start{Segment: 0, T: 0.5})

	switches := 0
	for _, dx := range []float64{0.65, 0.4, 0.25} {
		f := n.Tick(Drag(dx, 0), tick)
		switches += len(eventsOf(f, EventLaneSwitch))
	}
	assert.Equal(t, 1, switches)

	st := n.State()
	assert.Equal(t, 1, st.Segment)
	assert.InDelta(t, 0.5, st.T, 1e-9)
	assert.InDelta(t, 0.65, st.LateralOffset, 1e-9)
	assert.Equal(t, LaneRight, st.Lane)

	// Dropping below the hysteresis threshold releases the latch.
	f := n.Tick(Drag(-0.5, 0), tick)
	assert.Equal(t, LaneCenter, f.State.Lane)
}

func TestLaneLatchCrossesToFarSide(t *testing.T) {
	g := scene(t, laneScene)
	n := newNav(t, g, DefaultConfig(), Start{Segment: 0, T: 0.5})

	f := n.Tick(Drag(0.65, 0), tick)
	require.Equal(t, 1, f.State.Segment)
	require.Equal(t, LaneRight, f.State.Lane)

	// One drag from the right latch straight past the left threshold: the
	// latch releases and the left switch is taken in the same tick.
	f = n.Tick(Drag(-0.7, 0), tick)
	switched := eventsOf(f, EventLaneSwitch)
	require.Len(t, switched, 1)
	assert.Equal(t, Event{Kind: EventLaneSwitch, Segment: 1, Neighbor: 0, Value: switched[0].Value}, switched[0])
	assert.Equal(t, 0, f.State.Segment)
	assert.Equal(t, LaneLeft, f.State.Lane)
	assert.Zero(t, f.State.LateralOffset)
	assertPoint(t, z(5), f.Pose.Position)

	f = n.Tick(NoInput(), tick)
	assert.Equal(t, LaneCenter, f.State.Lane)
	assert.Empty(t, eventsOf(f, EventLaneSwitch))
}

func TestLaneSwitchPosition(t *testing.T) {
	g := scene(t, laneScene)
	n := newNav(t, g, DefaultConfig(), Start{Segment: 0, T: 0.25})

	f := n.Tick(Drag(0.7, 0), tick)
	require.Len(t, eventsOf(f, EventLaneSwitch), 1)
	assert.Equal(t, 1, f.State.Segment)
	assert.Zero(t, f.State.LateralOffset)
	assert.Zero(t, f.State.LateralVelocity)
	assertPoint(t, r3.Vector{X: 1.5, Z: 2.5}, f.Pose.Position)
}

func TestLaneSwitchRejectedByCrossTrack(t *testing.T) {
	g := scene(t, laneScene)
	n := newNav(t, g, DefaultConfig(), Start{Segment: 0, T: 0.5})

	f := n.Tick(Drag(-0.65, 0), tick)
	rejected := eventsOf(f, EventLaneRejected)
	require.Len(t, rejected, 1)
	assert.InDelta(t, 3.0, rejected[0].Value, 1e-9)
	assert.Equal(t, 0, f.State.Segment)
	assert.InDelta(t, -0.6, f.State.LateralOffset, 1e-9)
	assert.Equal(t, LaneLeft, f.State.Lane)
}

func TestLaneRejectIgnoreOnlyTriesOnce(t *testing.T) {
	g := scene(t, laneScene)
	cfg := DefaultConfig()
	cfg.CrossTrackReject = RejectIgnore
	n := newNav(t, g, cfg, Start{Segment: 0, T: 0.5})

	rejections := 0
	for _, dx := range []float64{-0.65, 0.25, -0.25} {
		f := n.Tick(Drag(dx, 0), tick)
		rejections += len(eventsOf(f, EventLaneRejected))
	}
	assert.Equal(t, 1, rejections)
	assert.InDelta(t, -0.65, n.State().LateralOffset, 1e-9)
}

func TestLaneCheckDisabled(t *testing.T) {
	g := scene(t, laneScene)
	cfg := DefaultConfig()
	cfg.MaxLateralCrossTrackOffset = 0
	n := newNav(t, g, cfg, Start{Segment: 0, T: 0.5})

	f := n.Tick(Drag(-0.65, 0), tick)
	assert.Equal(t, 2, f.State.Segment)
}

func TestLaneChangeOnlyWhenIdle(t *testing.T) {
	g := scene(t, laneScene)
	cfg := DefaultConfig()
	cfg.LaneChangeWhen = LaneChangeIdle
	n := newNav(t, g, cfg, Start{Segment: 0, T: 0.5})

	f := n.Tick(Drag(0.65, 0), tick)
	assert.Equal(t, 0, f.State.Segment)
	f = n.Tick(NoInput(), 0)
	assert.Equal(t, 1, f.State.Segment)
}

const forkScene = `{
	"segments": [
		{"id": 0, "curve": {"type": "line", "from": [0,0,0], "to": [0,0,10]}},
		{"id": 1, "curve": {"type": "line", "from": [0,0,10], "to": [0,0,20]}},
		{"id": 2, "curve": {"type": "line", "from": [0,0,10], "to": [10,0,20]}},
		{"id": 3, "curve": {"type": "line", "from": [10,0,20], "to": [20,0,30]}}
	],
	"branches": [{"segment": 0, "min": 0.2, "max": 1, "neighbor": 2}]
}`

func TestBranchModes(t *testing.T) {
	tests := []struct {
		name   string
		mode   BranchMode
		offset float64
		dest   graph.SegmentID
		want   graph.SegmentID
	}{
		{"chain takes first", BranchChain, 0.5, graph.NoSegment, 1},
		{"table matches offset", BranchTable, 0.5, graph.NoSegment, 2},
		{"table falls back", BranchTable, 0, graph.NoSegment, 1},
		{"route follows shortest path", BranchRoute, 0, 3, 2},
		{"route without destination", BranchRoute, 0, graph.NoSegment, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := scene(t, forkScene)
			cfg := DefaultConfig()
			cfg.BranchMode = tt.mode
			n := newNav(t, g, cfg, Start{Segment: 0, T: 0.95, LateralOffset: tt.offset}, WithDestination(tt.dest))

			f := n.Tick(Drag(0, 1), tick)
			assert.Equal(t, tt.want, f.State.Segment)
		})
	}
}

func TestReversedLinkFlipsDirection(t *testing.T) {
	opts := graph.DefaultOptions()
	opts.LinkReversed = true
	g := lines(t, opts, [2]r3.Vector{z(0), z(5)}, [2]r3.Vector{z(10), z(5)})
	n := newNav(t, g, DefaultConfig(), Start{Segment: 0, T: 0.9, LateralOffset: 0.2})

	f := n.Tick(Drag(0, 1), tick)
	assert.Equal(t, 1, f.State.Segment)
	assert.InDelta(t, 0.9, f.State.T, 1e-6)
	assert.InDelta(t, -60.0, f.State.LongitudinalVelocity, 1e-9)
	assert.InDelta(t, -0.2, f.State.LateralOffset, 1e-9)
	// Same side of the road in world space.
	assertPoint(t, r3.Vector{X: 0.2, Z: 5.5}, f.Pose.Position)

	// Coasting keeps heading away from the join.
	f = n.Tick(NoInput(), tick)
	assert.Less(t, f.State.T, 0.9)
}

func TestDegenerateTangentKeepsHeading(t *testing.T) {
	g := lines(t, graph.DefaultOptions(), [2]r3.Vector{z(3), z(3)})
	n := newNav(t, g, DefaultConfig(), Start{Segment: 0, T: 0.5})

	f := n.Tick(NoInput(), tick)
	assertPoint(t, z(3), f.Pose.Position)
	assertPoint(t, z(1), f.Pose.Forward)
}

func TestDegenerateTangentKeepsLateralOffset(t *testing.T) {
	g := lines(t, graph.DefaultOptions(), [2]r3.Vector{z(3), z(3)})
	n := newNav(t, g, DefaultConfig(), Start{Segment: 0, T: 0.5, LateralOffset: 0.5})

	assertPoint(t, r3.Vector{X: 0.5, Z: 3}, n.Pose().Position)
	f := n.Tick(NoInput(), tick)
	assertPoint(t, r3.Vector{X: 0.5, Z: 3}, f.Pose.Position)
}

func TestVerticalTangentKeepsRightVector(t *testing.T) {
	g := lines(t, graph.DefaultOptions(), [2]r3.Vector{{}, {Y: 5}})
	n := newNav(t, g, DefaultConfig(), Start{Segment: 0, T: 0.5, LateralOffset: 0.5})

	f := n.Tick(NoInput(), tick)
	assertPoint(t, r3.Vector{Y: 1}, f.Pose.Forward)
	assertPoint(t, r3.Vector{X: 0.5, Y: 2.5}, f.Pose.Position)
}

func TestPoseAtHeading(t *testing.T) {
	prev := Heading{Forward: r3.Vector{X: 1}, Right: r3.Vector{Z: -1}}

	pos, h, degenerate := PoseAt(curve.NewLine(z(0), z(10)), 0.5, 1, prev)
	assert.False(t, degenerate)
	assertPoint(t, r3.Vector{Z: 1}, curve.PointOf(h.Forward))
	assertPoint(t, r3.Vector{X: 1}, curve.PointOf(h.Right))
	assertPoint(t, r3.Vector{X: 1, Z: 5}, curve.PointOf(pos))

	pos, h, degenerate = PoseAt(curve.NewLine(z(2), z(2)), 0.5, 1, prev)
	assert.True(t, degenerate)
	assert.Equal(t, prev, h)
	assertPoint(t, r3.Vector{Z: 1}, curve.PointOf(pos))

	pos, h, degenerate = PoseAt(curve.NewLine(r3.Vector{}, r3.Vector{Y: -4}), 0.25, 2, prev)
	assert.False(t, degenerate)
	assertPoint(t, r3.Vector{Y: -1}, curve.PointOf(h.Forward))
	assert.Equal(t, prev.Right, h.Right)
	assertPoint(t, r3.Vector{Y: -1, Z: -2}, curve.PointOf(pos))
}

func TestNewRejectsNonFiniteStart(t *testing.T) {
	g := lines(t, graph.DefaultOptions(), [2]r3.Vector{z(0), z(5)})
	nan := math.NaN()

	tests := []struct {
		name  string
		start Start
	}{
		{"t", Start{T: nan}},
		{"lateral offset", Start{T: 0.5, LateralOffset: math.Inf(1)}},
		{"fraction", Start{Fraction: &nan}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(g, DefaultConfig(), tt.start)
			assert.ErrorIs(t, err, ErrNotFinite)
		})
	}

	// Finite values out of range are clamped.
	n := newNav(t, g, DefaultConfig(), Start{T: 4, LateralOffset: -3})
	assert.Equal(t, 1.0, n.State().T)
	assert.Equal(t, -1.0, n.State().LateralOffset)
}

func TestStartFractionAndSeek(t *testing.T) {
	g := lines(t, graph.DefaultOptions(), [2]r3.Vector{z(0), z(5)}, [2]r3.Vector{z(5), z(10)})
	frac := 0.75
	n := newNav(t, g, DefaultConfig(), Start{Segment: 0, T: 0.2, Fraction: &frac})

	st := n.State()
	assert.Equal(t, 1, st.Segment)
	assert.InDelta(t, 0.5, st.T, 1e-6)
	assertPoint(t, z(7.5), n.Pose().Position)
	assert.Equal(t, []graph.SegmentID{0, 1}, n.Chain().Segments)

	f := n.Tick(NoInput(), tick)
	require.NotNil(t, f.Chain)
	assert.InDelta(t, 7.5, f.Chain.Distance, 1e-6)
	assert.InDelta(t, 0.75, f.Chain.Fraction, 1e-6)
	assert.InDelta(t, 10.0, f.Chain.Length, 1e-9)

	n.Tick(Drag(0, 1), tick)
	require.NoError(t, n.Seek(0.2))
	st = n.State()
	assert.Equal(t, 0, st.Segment)
	assert.InDelta(t, 0.4, st.T, 1e-6)
	assert.Zero(t, st.LongitudinalVelocity)

	require.NoError(t, n.SeekDistance(25))
	assert.Equal(t, 1, n.State().Segment)
	assert.InDelta(t, 1.0, n.State().T, 1e-9)

	assert.ErrorIs(t, n.Seek(math.NaN()), ErrNotFinite)
	assert.ErrorIs(t, n.SeekDistance(math.Inf(-1)), ErrNotFinite)
}

func TestChainProgressOffChain(t *testing.T) {
	g := scene(t, laneScene)
	n := newNav(t, g, DefaultConfig(), Start{Segment: 0, T: 0.5})
	require.NotNil(t, n.ChainProgress())

	f := n.Tick(Drag(0.65, 0), tick)
	require.Equal(t, 1, f.State.Segment)
	assert.Nil(t, f.Chain)

	// Seeking returns the agent to its chain.
	require.NoError(t, n.Seek(0.5))
	assert.Equal(t, 0, n.State().Segment)
	assert.NotNil(t, n.ChainProgress())
}

func TestHaltedNavigatorCannotSeek(t *testing.T) {
	n := newNav(t, nil, DefaultConfig(), Start{})
	assert.ErrorIs(t, n.Seek(0.5), ErrEmptyGraph)
	assert.Nil(t, n.ChainProgress())
}

func TestHaltedNavigator(t *testing.T) {
	empty, err := graph.Build(nil, graph.DefaultOptions())
	require.NoError(t, err)
	g := lines(t, graph.DefaultOptions(), [2]r3.Vector{z(0), z(5)})

	tests := []struct {
		name  string
		g     *graph.Graph
		start Start
		want  error
	}{
		{"nil graph", nil, Start{}, ErrEmptyGraph},
		{"empty graph", empty, Start{}, ErrEmptyGraph},
		{"unknown segment", g, Start{Segment: 7}, ErrUnknownSegment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := newNav(t, tt.g, DefaultConfig(), tt.start)
			f := n.Tick(Drag(0, 1), tick)
			assert.True(t, f.State.Halted)
			assert.ErrorIs(t, f.State.Fault, tt.want)
			require.Len(t, f.Events, 1)
			assert.Equal(t, EventHalted, f.Events[0].Kind)
			assert.Contains(t, f.Diagnostic, "halted")
		})
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	g := lines(t, graph.DefaultOptions(), [2]r3.Vector{z(0), z(5)})
	cfg := DefaultConfig()
	cfg.LaneSwitchHysteresis = 0.7
	_, err := New(g, cfg, Start{})
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*Config)
	}{
		{"damping", func(c *Config) { c.InertiaDamping = 0 }},
		{"threshold", func(c *Config) { c.LaneSwitchThreshold = 1.5 }},
		{"hysteresis", func(c *Config) { c.LaneSwitchHysteresis = 0 }},
		{"cross track", func(c *Config) { c.MaxLateralCrossTrackOffset = -1 }},
		{"hops", func(c *Config) { c.MaxOverflowHopsPerTick = 0 }},
		{"epsilon", func(c *Config) { c.EntryEpsilon = 0.5 }},
		{"steps", func(c *Config) { c.SamplerSteps = 0 }},
		{"too many steps", func(c *Config) { c.SamplerSteps = maxSamples + 1 }},
		{"too many samples", func(c *Config) { c.NearestSamples = maxSamples + 1 }},
		{"too many hops", func(c *Config) { c.MaxOverflowHopsPerTick = maxOverflowHops + 1 }},
		{"branch mode", func(c *Config) { c.BranchMode = "random" }},
		{"input mode", func(c *Config) { c.InputMode = "tilt" }},
		{"lane change", func(c *Config) { c.LaneChangeWhen = "never" }},
		{"reject", func(c *Config) { c.CrossTrackReject = "bounce" }},
	}
	require.NoError(t, DefaultConfig().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mut(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

// Whatever the input, t stays in [0,1] and the lateral offset in [-1,1].
func TestStateStaysInBounds(t *testing.T) {
	g := scene(t, `{
		"segments": [
			{"id": 0, "curve": {"type": "catmull_rom", "points": [[0,0,0],[2,0,5],[0,0,10]]}},
			{"id": 1, "curve": {"type": "bezier", "points": [[0,0,10],[0,0,12],[4,0,14],[4,0,18]]}},
			{"id": 2, "curve": {"type": "polyline", "points": [[4,0,18],[4,0,19],[6,0,19]]}},
			{"id": 3, "curve": {"type": "line", "from": [6,0,19], "to": [0,0,0]}}
		]
	}`)
	rng := rand.New(rand.NewSource(7))
	n := newNav(t, g, DefaultConfig(), Start{Segment: 0, T: 0.3})

	for i := 0; i < 2000; i++ {
		var in Input
		if rng.Intn(3) > 0 {
			in = Drag(rng.NormFloat64()*0.5, rng.NormFloat64()*3)
		}
		f := n.Tick(in, tick)
		require.False(t, f.State.Halted)
		require.GreaterOrEqual(t, f.State.T, 0.0, "tick %d", i)
		require.LessOrEqual(t, f.State.T, 1.0, "tick %d", i)
		require.GreaterOrEqual(t, f.State.LateralOffset, -1.0, "tick %d", i)
		require.LessOrEqual(t, f.State.LateralOffset, 1.0, "tick %d", i)
		for _, c := range f.Pose.Position {
			require.False(t, math.IsNaN(c), "tick %d", i)
		}
	}
}

func TestLaneStateText(t *testing.T) {
	b, err := json.Marshal(State{Lane: LaneRight})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"lane":"right"`)
}
