package server

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cxd309/roadnav/internal/agent"
	"github.com/cxd309/roadnav/internal/engine"
	"github.com/cxd309/roadnav/internal/graph"
	"github.com/cxd309/roadnav/internal/navigator"
)

type createSessionRequest struct {
	Scene  graph.SceneData `json:"scene"`
	Config json.RawMessage `json:"config,omitempty"`
}

type createSessionResponse struct {
	SessionID   string  `json:"session_id"`
	Segments    int     `json:"segments"`
	Links       int     `json:"links"`
	TotalLength float64 `json:"total_length"`
}

type graphResponse struct {
	SessionID   string              `json:"session_id"`
	Links       int                 `json:"links"`
	TotalLength float64             `json:"total_length"`
	Segments    []graph.SegmentInfo `json:"segments"`
}

type agentResponse struct {
	AgentID agent.AgentID   `json:"agent_id"`
	Frame   navigator.Frame `json:"frame"`
}

// seekRequest names exactly one of a chain fraction or a chain distance.
type seekRequest struct {
	Fraction *float64 `json:"fraction,omitempty"`
	Distance *float64 `json:"distance,omitempty"`
}

type tickRequest struct {
	DT    float64              `json:"dt" binding:"gte=0"`
	Input *agent.ScriptedInput `json:"input,omitempty"`
}

func abort(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func (s *Server) handleSimulation(c *gin.Context) {
	var input engine.SimulationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	out, err := engine.Run(input, s.log)
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleCreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	cfg, err := s.sessionConfig(req.Config)
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	g, err := graph.NewGraph(req.Scene, cfg.Graph.Options(s.log))
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	sess := &session{
		id:     uuid.NewString(),
		graph:  g,
		nav:    cfg.Navigator,
		agents: make(map[agent.AgentID]*agentHandle),
	}
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	activeSessions.Inc()
	s.log.Info("session created", "session", sess.id, "segments", g.Len(), "links", g.LinkCount())

	c.JSON(http.StatusCreated, createSessionResponse{
		SessionID:   sess.id,
		Segments:    g.Len(),
		Links:       g.LinkCount(),
		TotalLength: g.TotalLength(),
	})
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	id := c.Param("session")
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		abort(c, http.StatusNotFound, errSessionNotFound)
		return
	}

	sess.mu.RLock()
	activeAgents.Sub(float64(len(sess.agents)))
	sess.mu.RUnlock()
	activeSessions.Dec()
	s.log.Info("session deleted", "session", id)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleGraph(c *gin.Context) {
	sess, ok := s.session(c.Param("session"))
	if !ok {
		abort(c, http.StatusNotFound, errSessionNotFound)
		return
	}
	c.JSON(http.StatusOK, graphResponse{
		SessionID:   sess.id,
		Links:       sess.graph.LinkCount(),
		TotalLength: sess.graph.TotalLength(),
		Segments:    sess.graph.Describe(),
	})
}

func (s *Server) handleChain(c *gin.Context) {
	sess, ok := s.session(c.Param("session"))
	if !ok {
		abort(c, http.StatusNotFound, errSessionNotFound)
		return
	}
	id, err := strconv.Atoi(c.Param("segment"))
	if err != nil {
		abort(c, http.StatusBadRequest, errors.New("segment must be a segment id"))
		return
	}
	chain, err := sess.graph.ChainFrom(id)
	if err != nil {
		abort(c, http.StatusNotFound, err)
		return
	}
	c.JSON(http.StatusOK, chain)
}

// handleRoute answers ?from=<id>&to=<id>[&exit=start|end].
func (s *Server) handleRoute(c *gin.Context) {
	sess, ok := s.session(c.Param("session"))
	if !ok {
		abort(c, http.StatusNotFound, errSessionNotFound)
		return
	}
	from, err := strconv.Atoi(c.Query("from"))
	if err != nil {
		abort(c, http.StatusBadRequest, errors.New("query parameter from must be a segment id"))
		return
	}
	to, err := strconv.Atoi(c.Query("to"))
	if err != nil {
		abort(c, http.StatusBadRequest, errors.New("query parameter to must be a segment id"))
		return
	}
	var exit graph.Endpoint = graph.End
	if e := c.Query("exit"); e != "" {
		if err := exit.UnmarshalText([]byte(e)); err != nil {
			abort(c, http.StatusBadRequest, err)
			return
		}
	}

	route, err := sess.graph.ShortestRoute(from, exit, to)
	switch {
	case errors.Is(err, graph.ErrUnknownSegment), errors.Is(err, graph.ErrNoRoute):
		abort(c, http.StatusNotFound, err)
	case err != nil:
		abort(c, http.StatusInternalServerError, err)
	default:
		c.JSON(http.StatusOK, route)
	}
}

func (s *Server) handleCreateAgent(c *gin.Context) {
	sess, ok := s.session(c.Param("session"))
	if !ok {
		abort(c, http.StatusNotFound, errSessionNotFound)
		return
	}
	var a agent.Agent
	if err := c.ShouldBindJSON(&a); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	if a.AgentID == "" {
		a.AgentID = uuid.NewString()
	}
	sim, err := agent.NewSimAgent(a, sess.graph, sess.nav, s.log.With("session", sess.id))
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	sess.mu.Lock()
	if _, exists := sess.agents[a.AgentID]; exists {
		sess.mu.Unlock()
		abort(c, http.StatusConflict, errAgentExists)
		return
	}
	sess.agents[a.AgentID] = &agentHandle{sim: sim}
	sess.mu.Unlock()
	activeAgents.Inc()

	c.JSON(http.StatusCreated, agentResponse{AgentID: a.AgentID, Frame: sim.Frame()})
}

func (s *Server) handleGetAgent(c *gin.Context) {
	h, ok := s.lookupAgent(c)
	if !ok {
		return
	}
	h.mu.Lock()
	frame := h.sim.Frame()
	h.mu.Unlock()
	c.JSON(http.StatusOK, agentResponse{AgentID: h.sim.AgentID, Frame: frame})
}

func (s *Server) handleTick(c *gin.Context) {
	h, ok := s.lookupAgent(c)
	if !ok {
		return
	}
	var req tickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	in := navigator.NoInput()
	if req.Input != nil {
		for _, v := range []float64{req.Input.Magnitude, req.Input.DX, req.Input.DY} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				abort(c, http.StatusBadRequest, errors.New("input values must be finite"))
				return
			}
		}
		in = req.Input.Input()
	}

	h.mu.Lock()
	frame := h.sim.Apply(in, req.DT)
	h.mu.Unlock()
	c.JSON(http.StatusOK, agentResponse{AgentID: h.sim.AgentID, Frame: frame})
}

func (s *Server) handleSeek(c *gin.Context) {
	h, ok := s.lookupAgent(c)
	if !ok {
		return
	}
	var req seekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	if (req.Fraction == nil) == (req.Distance == nil) {
		abort(c, http.StatusBadRequest, errors.New("give exactly one of fraction or distance"))
		return
	}

	h.mu.Lock()
	var err error
	if req.Fraction != nil {
		err = h.sim.Seek(*req.Fraction)
	} else {
		err = h.sim.SeekDistance(*req.Distance)
	}
	frame := h.sim.Frame()
	h.mu.Unlock()
	switch {
	case errors.Is(err, navigator.ErrNotFinite):
		abort(c, http.StatusBadRequest, err)
	case err != nil:
		abort(c, http.StatusConflict, err)
	default:
		c.JSON(http.StatusOK, agentResponse{AgentID: h.sim.AgentID, Frame: frame})
	}
}

func (s *Server) lookupAgent(c *gin.Context) (*agentHandle, bool) {
	sess, ok := s.session(c.Param("session"))
	if !ok {
		abort(c, http.StatusNotFound, errSessionNotFound)
		return nil, false
	}
	h, ok := sess.agent(c.Param("agent"))
	if !ok {
		abort(c, http.StatusNotFound, errAgentNotFound)
		return nil, false
	}
	return h, true
}

var (
	errSessionNotFound = errors.New("session not found")
	errAgentNotFound   = errors.New("agent not found")
	errAgentExists     = errors.New("agent already exists")
)
