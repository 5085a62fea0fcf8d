package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/cxd309/roadnav/internal/config"
	"github.com/cxd309/roadnav/internal/engine"
)

func SimulateCmd(a *app) *cobra.Command {
	var (
		format string
		output string
		indent bool
	)
	c := &cobra.Command{
		Use:   "simulate [input]",
		Short: "run a scripted simulation and write its log",
		Long: "Reads a simulation input (JSON or HJSON) from the named file, or from stdin\n" +
			"when the argument is missing or \"-\", runs it and writes the simulation log.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			input, err := readSimulationInput(cmd.InOrStdin(), path)
			if err != nil {
				return err
			}
			// Settings in the input win; otherwise the --config file applies.
			if len(input.Config) == 0 {
				if input.Config, err = json.Marshal(a.cfg); err != nil {
					return err
				}
			}

			simLog, err := engine.Run(input, a.log)
			if err != nil {
				return fmt.Errorf("simulation: %w", err)
			}

			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return writeSimulationLog(w, simLog, format, indent)
		},
	}
	c.Flags().StringVar(&format, "format", "json", "output encoding: json or msgpack")
	c.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	c.Flags().BoolVar(&indent, "indent", false, "indent json output")
	return c
}

func readSimulationInput(stdin io.Reader, path string) (engine.SimulationInput, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return engine.SimulationInput{}, fmt.Errorf("reading input: %w", err)
	}
	var input engine.SimulationInput
	if err := config.DecodeHJSON(data, &input); err != nil {
		return engine.SimulationInput{}, fmt.Errorf("invalid input: %w", err)
	}
	return input, nil
}

func writeSimulationLog(w io.Writer, simLog engine.SimulationLog, format string, indent bool) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		if indent {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(simLog)
	case "msgpack":
		enc := msgpack.NewEncoder(w)
		enc.SetCustomStructTag("json")
		return enc.Encode(simLog)
	}
	return fmt.Errorf("unknown output format %q: want json or msgpack", format)
}
