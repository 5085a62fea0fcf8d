// Package config loads roadnav settings and scenes from HJSON files. HJSON
// is a superset of JSON, so plain JSON files load unchanged. Decoding goes
// through the JSON struct tags of the target types, and any field absent from
// the file keeps its default.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/hjson/hjson-go/v4"

	"github.com/cxd309/roadnav/internal/graph"
	"github.com/cxd309/roadnav/internal/navigator"
)

// Graph configures the graph builder.
type Graph struct {
	LinkTolerance float64 `json:"link_distance_tolerance"`
	LinkReversed  bool    `json:"link_reversed"`
}

// Options converts the section into builder options.
func (g Graph) Options(logger *slog.Logger) graph.Options {
	return graph.Options{LinkTolerance: g.LinkTolerance, LinkReversed: g.LinkReversed, Logger: logger}
}

// Log configures the process logger.
type Log struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // text or json
}

// NewLogger builds a slog logger writing to w at the configured level and
// format. Validate has already rejected unknown values.
func (l Log) NewLogger(w io.Writer) *slog.Logger {
	level, _ := ParseLevel(l.Level)
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Server configures the HTTP surface.
type Server struct {
	Addr          string `json:"addr"`
	GinMode       string `json:"gin_mode"` // debug, release, test
	EnableMetrics bool   `json:"enable_metrics"`
}

// Config is the full settings file.
type Config struct {
	Graph     Graph            `json:"graph"`
	Navigator navigator.Config `json:"navigator"`
	Log       Log              `json:"log"`
	Server    Server           `json:"server"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Graph:     Graph{LinkTolerance: graph.DefaultLinkTolerance},
		Navigator: navigator.DefaultConfig(),
		Log:       Log{Level: "info", Format: "text"},
		Server:    Server{Addr: ":8080", GinMode: "release", EnableMetrics: true},
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Graph.LinkTolerance < 0 {
		return fmt.Errorf("graph.link_distance_tolerance %g: must not be negative", c.Graph.LinkTolerance)
	}
	if err := c.Navigator.Validate(); err != nil {
		return fmt.Errorf("navigator: %w", err)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q: want text or json", c.Log.Format)
	}
	switch c.Server.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.gin_mode %q: want debug, release or test", c.Server.GinMode)
	}
	return nil
}

// ParseLevel maps a level name onto a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", name)
}

// DecodeHJSON decodes HJSON (or JSON) data into v. The document is parsed into
// a generic tree and re-encoded as JSON, so v's JSON tags and custom
// unmarshalers apply and fields absent from data keep their current values.
func DecodeHJSON(data []byte, v any) error {
	// Strip a UTF-8 byte order mark.
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		data = data[3:]
	}
	var tree any
	if err := hjson.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("parsing hjson: %w", err)
	}
	js, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("re-encoding hjson: %w", err)
	}
	if err := json.Unmarshal(js, v); err != nil {
		return err
	}
	return nil
}

// Parse decodes settings over the defaults and validates them.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := DecodeHJSON(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Load reads settings from path. An empty path yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// LoadScene reads a scene description from path.
func LoadScene(path string) (graph.SceneData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return graph.SceneData{}, fmt.Errorf("reading scene: %w", err)
	}
	var scene graph.SceneData
	if err := DecodeHJSON(data, &scene); err != nil {
		return graph.SceneData{}, fmt.Errorf("scene %s: %w", path, err)
	}
	return scene, nil
}
