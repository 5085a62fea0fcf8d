// Command roadnav runs the curve network navigator: batch simulations,
// graph inspection, an interactive terminal driver and the HTTP server.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cxd309/roadnav/internal/config"
)

// app is the state shared by every subcommand, filled in before any of them
// runs.
type app struct {
	configFile string
	logLevel   string
	logFormat  string

	cfg config.Config
	log *slog.Logger
}

func (a *app) load() error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.log = cfg.Log.NewLogger(os.Stderr)
	slog.SetDefault(a.log)
	return nil
}

func RootCmd() *cobra.Command {
	a := &app{}
	c := &cobra.Command{
		Use:           "roadnav",
		Short:         "navigate agents over a network of curves",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}
	c.PersistentFlags().StringVar(&a.configFile, "config", "", "hjson config file")
	c.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error")
	c.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "text or json")

	c.AddCommand(
		SimulateCmd(a),
		GraphCmd(a),
		DriveCmd(a),
		ServeCmd(a),
	)
	return c
}

func main() {
	if err := RootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "roadnav: %v\n", err)
		os.Exit(1)
	}
}
