//go:build js && wasm

// Command wasm exposes the navigator to the browser via WebAssembly.
// After loading, it registers a global JavaScript function:
//
//	runNavigation(jsonString) -> jsonString
//
// The input and output are a JSON SimulationInput and SimulationLog, the same
// documents `roadnav simulate` and POST /v1/simulations accept and return.
package main

import (
	"syscall/js"

	"github.com/cxd309/roadnav/internal/engine"
)

func main() {
	js.Global().Set("runNavigation", js.FuncOf(runNavigation))
	select {} // keep the module alive until the page is closed
}

func runNavigation(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return map[string]any{"error": "no input provided"}
	}

	result, err := engine.RunJSON(args[0].String())
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	return result
}
