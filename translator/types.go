package translator

import (
	"github.com/spektr-org/simtrace/engine"
)

// ============================================================================
// TRANSLATOR — Widget wire format → engine.Selection
// ============================================================================
// The dashboard sends the state of its widgets (over HTTP or the WebSocket)
// using the widget ids below. The translator decodes that state, fills in
// whatever the client left unset from the table's default selection, and
// hands the engine a Selection plus options.
//
// A nil field means "unset"; an empty list is a real selection of nothing.
// ============================================================================

// Request is the widget state sent by a dashboard client.
type Request struct {
	YAxis         string    `json:"yAxis,omitempty"` // "receiver" | "emitter"
	Runs          []string  `json:"runs"`            // seeds, may contain engine.AllRuns
	Types         []string  `json:"types"`           // message types
	FailureRates  []float64 `json:"failureRates"`    // [lo, hi]
	ShowLatencies bool      `json:"showLatencies,omitempty"`
}

// Selection builds the engine selection, taking unset fields from the
// table's default selection. A requested rate range is snapped to the
// observed rates inside it; a range holding none is kept as sent and
// selects nothing.
func (r *Request) Selection(table *engine.Table) engine.Selection {
	sel := engine.DefaultSelection(table)
	if r == nil {
		return sel
	}
	if r.Runs != nil {
		sel.Seeds = r.Runs
	}
	if r.Types != nil {
		sel.MessageTypes = r.Types
	}
	if len(r.FailureRates) == 2 {
		lo, hi, _ := table.FailureDomain().Snap(r.FailureRates[0], r.FailureRates[1])
		sel.FailureRange = [2]float64{lo, hi}
	}
	return sel
}

// Options returns the engine options carried by the request.
func (r *Request) Options() []engine.Option {
	if r == nil {
		return nil
	}
	opts := []engine.Option{engine.WithLatencies(r.ShowLatencies)}
	if r.YAxis != "" {
		opts = append(opts, engine.WithYAxis(r.YAxis))
	}
	return opts
}
