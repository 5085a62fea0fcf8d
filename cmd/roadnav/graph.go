package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cxd309/roadnav/internal/config"
	"github.com/cxd309/roadnav/internal/graph"
)

func GraphCmd(a *app) *cobra.Command {
	var (
		asJSON bool
		route  string
		exit   string
		chain  int
	)
	c := &cobra.Command{
		Use:   "graph <scene>",
		Short: "build a scene's road graph and print its links",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGraph(a, args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			if cmd.Flags().Changed("chain") {
				ch, err := g.ChainFrom(chain)
				if err != nil {
					return err
				}
				if asJSON {
					return json.NewEncoder(w).Encode(ch)
				}
				_, err = fmt.Fprintf(w, "chain %v length=%.3f\n", ch.Segments, ch.Length)
				return err
			}

			if route != "" {
				from, to, err := parseRoute(route)
				if err != nil {
					return err
				}
				var e graph.Endpoint
				if err := e.UnmarshalText([]byte(exit)); err != nil {
					return err
				}
				r, err := g.ShortestRoute(from, e, to)
				if err != nil {
					return err
				}
				if asJSON {
					return json.NewEncoder(w).Encode(r)
				}
				_, err = fmt.Fprintf(w, "route %v length=%.3f\n", r.Segments, r.Length)
				return err
			}

			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(g.Describe())
			}
			return g.WriteTable(w)
		},
	}
	c.Flags().BoolVar(&asJSON, "json", false, "print json instead of a table")
	c.Flags().StringVar(&route, "route", "", "print the shortest route from:to instead")
	c.Flags().StringVar(&exit, "exit", "end", "endpoint the route leaves the origin through")
	c.Flags().IntVar(&chain, "chain", 0, "print the forward chain from this segment instead")
	return c
}

func loadGraph(a *app, path string) (*graph.Graph, error) {
	scene, err := config.LoadScene(path)
	if err != nil {
		return nil, err
	}
	return graph.NewGraph(scene, a.cfg.Graph.Options(a.log))
}

func parseRoute(s string) (from, to graph.SegmentID, err error) {
	a, b, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("route %q: want from:to", s)
	}
	if from, err = strconv.Atoi(a); err != nil {
		return 0, 0, fmt.Errorf("route origin %q: %w", a, err)
	}
	if to, err = strconv.Atoi(b); err != nil {
		return 0, 0, fmt.Errorf("route destination %q: %w", b, err)
	}
	return from, to, nil
}
