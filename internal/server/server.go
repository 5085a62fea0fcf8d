// Package server exposes navigation over HTTP. A session owns one road graph,
// shared read-only by its agents. Each agent is ticked by the client and
// guarded by its own mutex, so ticks on one agent are serialised while
// different agents tick concurrently.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cxd309/roadnav/internal/agent"
	"github.com/cxd309/roadnav/internal/config"
	"github.com/cxd309/roadnav/internal/graph"
	"github.com/cxd309/roadnav/internal/navigator"
)

// Server holds the live sessions.
type Server struct {
	cfg    config.Config
	log    *slog.Logger
	router *gin.Engine

	mu       sync.RWMutex
	sessions map[string]*session
}

type session struct {
	id    string
	graph *graph.Graph
	nav   navigator.Config

	mu     sync.RWMutex
	agents map[agent.AgentID]*agentHandle
}

type agentHandle struct {
	mu  sync.Mutex
	sim *agent.SimAgent
}

// New builds a server with its routes registered.
func New(cfg config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	gin.SetMode(cfg.Server.GinMode)

	s := &Server{
		cfg:      cfg,
		log:      logger,
		sessions: make(map[string]*session),
	}
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	if cfg.Server.EnableMetrics {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	v1 := r.Group("/v1")
	v1.POST("/simulations", s.handleSimulation)
	v1.POST("/sessions", s.handleCreateSession)
	v1.DELETE("/sessions/:session", s.handleDeleteSession)
	v1.GET("/sessions/:session/graph", s.handleGraph)
	v1.GET("/sessions/:session/route", s.handleRoute)
	v1.GET("/sessions/:session/chain/:segment", s.handleChain)
	v1.POST("/sessions/:session/agents", s.handleCreateAgent)
	v1.GET("/sessions/:session/agents/:agent", s.handleGetAgent)
	v1.POST("/sessions/:session/agents/:agent/tick", s.handleTick)
	v1.POST("/sessions/:session/agents/:agent/seek", s.handleSeek)

	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.log.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		began := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		httpRequests.WithLabelValues(c.Request.Method, route, fmt.Sprint(status)).Inc()
		s.log.Debug("http request",
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"elapsed", time.Since(began))
	}
}

func (s *Server) session(id string) (*session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (sess *session) agent(id agent.AgentID) (*agentHandle, bool) {
	sess.mu.RLock()
	defer sess.mu.RUnlock()
	h, ok := sess.agents[id]
	return h, ok
}

// sessionConfig overlays raw settings on the server defaults.
func (s *Server) sessionConfig(raw json.RawMessage) (config.Config, error) {
	cfg := s.cfg
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return config.Config{}, fmt.Errorf("parsing config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
