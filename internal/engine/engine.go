// Package engine runs deterministic multi-agent navigation scenarios.
//
// A scenario is a scene, optional settings and a set of agents with scripted
// inputs. The simulation advances in fixed timesteps. Each step ticks every
// agent in declaration order with its scripted input for that tick (or no
// input, so it coasts) and records a log row. Agents share the read-only
// road graph and never interact.
package engine

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	"github.com/cxd309/roadnav/internal/agent"
	"github.com/cxd309/roadnav/internal/config"
	"github.com/cxd309/roadnav/internal/graph"
)

// NewSimulation builds the road graph from the input scene and places every
// agent at its start.
func NewSimulation(input SimulationInput, logger *slog.Logger) (*Simulation, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if ts := input.Meta.TimeStep; ts < 0 || math.IsNaN(ts) || math.IsInf(ts, 0) {
		return nil, fmt.Errorf("time_step %g: must be finite and not negative", ts)
	}
	if input.Meta.Ticks < 0 || input.Meta.Ticks > MaxTicks {
		return nil, fmt.Errorf("ticks %d: must be in [0, %d]", input.Meta.Ticks, MaxTicks)
	}

	cfg := config.Default()
	if len(input.Config) > 0 {
		if err := json.Unmarshal(input.Config, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	g, err := graph.NewGraph(input.Scene, cfg.Graph.Options(logger))
	if err != nil {
		return nil, fmt.Errorf("building graph: %w", err)
	}

	agents := make([]*agent.SimAgent, 0, len(input.Agents))
	seen := make(map[agent.AgentID]bool, len(input.Agents))
	for _, a := range input.Agents {
		if seen[a.AgentID] {
			return nil, fmt.Errorf("duplicate agent_id %q", a.AgentID)
		}
		seen[a.AgentID] = true
		sa, err := agent.NewSimAgent(a, g, cfg.Navigator, logger)
		if err != nil {
			return nil, fmt.Errorf("creating agent: %w", err)
		}
		agents = append(agents, sa)
	}

	return &Simulation{
		meta:   input.Meta,
		graph:  g,
		agents: agents,
		log:    logger.With("simulation", input.Meta.SimulationID),
	}, nil
}

// Graph returns the simulation's road graph.
func (s *Simulation) Graph() *graph.Graph { return s.graph }

// Run executes every remaining tick and returns the log.
func (s *Simulation) Run() SimulationLog {
	out := SimulationLog{
		Meta:        s.meta,
		TotalLength: s.graph.TotalLength(),
		Output:      make([]SimulationLogRow, 0, s.meta.Ticks-s.curTick),
	}
	for s.curTick < s.meta.Ticks {
		out.Output = append(out.Output, s.step())
	}
	s.log.Info("simulation complete", "ticks", s.meta.Ticks, "agents", len(s.agents))
	return out
}

// step advances every agent by one timestep and returns the resulting log row.
func (s *Simulation) step() SimulationLogRow {
	dt := s.meta.TimeStep
	logs := make([]agent.AgentLog, len(s.agents))
	for i, a := range s.agents {
		a.Step(s.curTick, dt)
		logs[i] = a.GetLog()
	}
	row := SimulationLogRow{
		Tick:      s.curTick,
		Timestamp: float64(s.curTick+1) * dt,
		AgentLogs: logs,
	}
	s.curTick++
	return row
}

// Run decodes input, runs the simulation and returns its log.
func Run(input SimulationInput, logger *slog.Logger) (SimulationLog, error) {
	sim, err := NewSimulation(input, logger)
	if err != nil {
		return SimulationLog{}, err
	}
	return sim.Run(), nil
}

// RunJSON is the entry point shared by the CLI, the WASM build and the HTTP
// server. It accepts a JSON-encoded SimulationInput, runs the simulation, and
// returns a JSON-encoded SimulationLog.
func RunJSON(jsonInput string) (string, error) {
	var input SimulationInput
	if err := json.Unmarshal([]byte(jsonInput), &input); err != nil {
		return "", fmt.Errorf("invalid input JSON: %w", err)
	}

	simLog, err := Run(input, nil)
	if err != nil {
		return "", err
	}

	out, err := json.Marshal(simLog)
	if err != nil {
		return "", fmt.Errorf("marshaling output: %w", err)
	}
	return string(out), nil
}
