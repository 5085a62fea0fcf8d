package engine

import (
	"encoding/json"
	"log/slog"

	"github.com/cxd309/roadnav/internal/agent"
	"github.com/cxd309/roadnav/internal/graph"
)

// MaxTicks bounds the ticks a single simulation may run.
const MaxTicks = 1_000_000

// SimulationMeta holds the identity and timing parameters for a simulation run.
type SimulationMeta struct {
	SimulationID string  `json:"simulation_id"`
	TimeStep     float64 `json:"time_step"` // seconds
	Ticks        int     `json:"ticks"`
}

// SimulationInput is the JSON-serialisable input to the engine.
type SimulationInput struct {
	Meta   SimulationMeta  `json:"simulation_meta"`
	Scene  graph.SceneData `json:"scene"`
	Config json.RawMessage `json:"config,omitempty"` // settings over the defaults
	Agents []agent.Agent   `json:"agents"`
}

// SimulationLogRow is the state of all agents after a single tick.
type SimulationLogRow struct {
	Tick      int              `json:"tick"`
	Timestamp float64          `json:"timestamp"` // seconds
	AgentLogs []agent.AgentLog `json:"agent_logs"`
}

// SimulationLog is the complete output of a simulation run.
type SimulationLog struct {
	Meta        SimulationMeta     `json:"simulation_meta"`
	TotalLength float64            `json:"total_length"` // summed arc length of the scene
	Output      []SimulationLogRow `json:"output"`
}

// Simulation is the scenario engine state.
type Simulation struct {
	meta    SimulationMeta
	graph   *graph.Graph
	agents  []*agent.SimAgent
	curTick int
	log     *slog.Logger
}
