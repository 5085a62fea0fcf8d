// Package agent defines scripted navigation agents used by the scenario
// engine and the HTTP server, along with the per-tick log snapshot.
package agent

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	"github.com/cxd309/roadnav/internal/curve"
	"github.com/cxd309/roadnav/internal/graph"
	"github.com/cxd309/roadnav/internal/kinematics"
	"github.com/cxd309/roadnav/internal/navigator"
)

// AgentID is a unique string identifier for an agent.
type AgentID = string

// ScriptedInput holds an input for one or more consecutive ticks. Either
// Axis and Magnitude name an already classified sample, or DX and DY give a
// raw drag that the navigator classifies itself.
type ScriptedInput struct {
	Tick      int             `json:"tick"`
	Repeat    int             `json:"repeat,omitempty"` // ticks held; 0 means 1
	Axis      kinematics.Axis `json:"axis,omitempty"`
	Magnitude float64         `json:"magnitude,omitempty"`
	DX        float64         `json:"dx,omitempty"`
	DY        float64         `json:"dy,omitempty"`
}

// Input converts the scripted entry into a navigator input.
func (s ScriptedInput) Input() navigator.Input {
	if s.Axis != kinematics.AxisNone {
		return navigator.AxisInput(kinematics.Sample{Axis: s.Axis, Magnitude: s.Magnitude})
	}
	return navigator.Drag(s.DX, s.DY)
}

func (s ScriptedInput) span() int {
	if s.Repeat < 1 {
		return 1
	}
	return s.Repeat
}

// Agent is the static definition of a navigating agent.
// Inertia overrides the navigator's configured model when set.
type Agent struct {
	AgentID     AgentID                 `json:"agent_id"`
	Start       navigator.Start         `json:"start"`
	Inputs      []ScriptedInput         `json:"inputs,omitempty"`
	Destination *graph.SegmentID        `json:"destination,omitempty"`
	Inertia     kinematics.InertiaModel `json:"-"` // set by UnmarshalJSON
}

// agentJSON is the raw JSON shape of an Agent, before the inertia model is resolved.
type agentJSON struct {
	AgentID     AgentID          `json:"agent_id"`
	Start       navigator.Start  `json:"start"`
	Inputs      []ScriptedInput  `json:"inputs"`
	Destination *graph.SegmentID `json:"destination"`
	Inertia     json.RawMessage  `json:"inertia"`
}

// UnmarshalJSON implements json.Unmarshaler for Agent. An "inertia" object,
// when present, is resolved through kinematics.Decode by its "model"
// discriminator.
func (a *Agent) UnmarshalJSON(data []byte) error {
	var aux agentJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	a.AgentID = aux.AgentID
	a.Start = aux.Start
	a.Inputs = aux.Inputs
	a.Destination = aux.Destination
	a.Inertia = nil

	if len(aux.Inertia) > 0 && string(aux.Inertia) != "null" {
		m, err := kinematics.Decode(aux.Inertia)
		if err != nil {
			return fmt.Errorf("agent %q: %w", a.AgentID, err)
		}
		a.Inertia = m
	}
	return nil
}

// MaxScriptedTicks bounds both the last tick a script may reach and the
// number of ticks all of its inputs cover together.
const MaxScriptedTicks = 1_000_000

// Validate checks the static definition.
func (a Agent) Validate() error {
	if a.AgentID == "" {
		return fmt.Errorf("agent has no agent_id")
	}
	if err := a.Start.Validate(); err != nil {
		return fmt.Errorf("agent %q: %w", a.AgentID, err)
	}
	covered := 0
	for i, in := range a.Inputs {
		if in.Tick < 0 || in.Repeat < 0 {
			return fmt.Errorf("agent %q input %d: tick and repeat must not be negative", a.AgentID, i)
		}
		if in.Tick > MaxScriptedTicks-in.span() {
			return fmt.Errorf("agent %q input %d: runs past tick %d", a.AgentID, i, MaxScriptedTicks)
		}
		if covered += in.span(); covered > MaxScriptedTicks {
			return fmt.Errorf("agent %q: inputs cover more than %d ticks", a.AgentID, MaxScriptedTicks)
		}
		for _, v := range []float64{in.Magnitude, in.DX, in.DY} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("agent %q input %d: non-finite value", a.AgentID, i)
			}
		}
	}
	return nil
}

// SimAgent is an Agent bound to a live navigator.
type SimAgent struct {
	Agent
	nav    *navigator.Navigator
	script map[int]navigator.Input
	last   navigator.Frame
}

// NewSimAgent places a onto g. Later scripted inputs override earlier ones
// on overlapping ticks.
func NewSimAgent(a Agent, g *graph.Graph, cfg navigator.Config, logger *slog.Logger) (*SimAgent, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	opts := []navigator.Option{navigator.WithLogger(logger.With("agent", a.AgentID))}
	if a.Inertia != nil {
		opts = append(opts, navigator.WithInertia(a.Inertia))
	}
	if a.Destination != nil {
		opts = append(opts, navigator.WithDestination(*a.Destination))
	}
	nav, err := navigator.New(g, cfg, a.Start, opts...)
	if err != nil {
		return nil, fmt.Errorf("agent %q: %w", a.AgentID, err)
	}

	script := make(map[int]navigator.Input)
	for _, in := range a.Inputs {
		for k := 0; k < in.span(); k++ {
			script[in.Tick+k] = in.Input()
		}
	}
	s := &SimAgent{Agent: a, nav: nav, script: script}
	s.refresh()
	return s, nil
}

// refresh rebuilds the last frame from the navigator without ticking it.
func (s *SimAgent) refresh() {
	st := s.nav.State()
	s.last = navigator.Frame{Pose: s.nav.Pose(), State: st, Diagnostic: st.Diagnostic(), Chain: s.nav.ChainProgress()}
}

// InputAt returns the scripted input for tick, or no input.
func (s *SimAgent) InputAt(tick int) navigator.Input {
	if in, ok := s.script[tick]; ok {
		return in
	}
	return navigator.NoInput()
}

// Step runs the scripted input for tick.
func (s *SimAgent) Step(tick int, dt float64) navigator.Frame {
	return s.Apply(s.InputAt(tick), dt)
}

// Apply ticks the navigator with an explicit input.
func (s *SimAgent) Apply(in navigator.Input, dt float64) navigator.Frame {
	s.last = s.nav.Tick(in, dt)
	return s.last
}

// Frame returns the most recent frame.
func (s *SimAgent) Frame() navigator.Frame { return s.last }

// Chain returns the forward chain the agent started on.
func (s *SimAgent) Chain() graph.Chain { return s.nav.Chain() }

// Seek places the agent at fraction of its chain's length.
func (s *SimAgent) Seek(fraction float64) error {
	if err := s.nav.Seek(fraction); err != nil {
		return err
	}
	s.refresh()
	return nil
}

// SeekDistance places the agent distance units along its chain.
func (s *SimAgent) SeekDistance(distance float64) error {
	if err := s.nav.SeekDistance(distance); err != nil {
		return err
	}
	s.refresh()
	return nil
}

// AgentLog is a point-in-time snapshot of an agent.
type AgentLog struct {
	AgentID              AgentID           `json:"agent_id"`
	Position             curve.Point       `json:"position"`
	Forward              curve.Point       `json:"forward"`
	Segment              graph.SegmentID   `json:"segment"`
	T                    float64           `json:"t"`
	LateralOffset        float64           `json:"lateral_offset"`
	LongitudinalVelocity float64           `json:"longitudinal_velocity"`
	LateralVelocity      float64           `json:"lateral_velocity"`
	Lane                 string            `json:"lane"`
	Distance             float64           `json:"distance"`
	Halted               bool              `json:"halted"`
	Diagnostic           string            `json:"diagnostic"`
	Events               []navigator.Event `json:"events,omitempty"`

	Chain *navigator.ChainProgress `json:"chain,omitempty"`
}

// GetLog returns a snapshot of the most recent frame.
func (s *SimAgent) GetLog() AgentLog {
	f := s.last
	return AgentLog{
		AgentID:              s.AgentID,
		Position:             f.Pose.Position,
		Forward:              f.Pose.Forward,
		Segment:              f.State.Segment,
		T:                    f.State.T,
		LateralOffset:        f.State.LateralOffset,
		LongitudinalVelocity: f.State.LongitudinalVelocity,
		LateralVelocity:      f.State.LateralVelocity,
		Lane:                 f.State.Lane.String(),
		Distance:             f.State.Distance,
		Halted:               f.State.Halted,
		Diagnostic:           f.Diagnostic,
		Events:               f.Events,
		Chain:                f.Chain,
	}
}
