// Package simtrace is a dashboard for distributed-system simulation exports.
//
// Usage:
//
//	import "github.com/spektr-org/simtrace/helpers"
//
//	table, _, err := helpers.LoadFile("events.csv")
//	result, err := engine.Execute(table, engine.DefaultSelection(table),
//	    engine.WithYAxis(engine.YAxisEmitter),
//	    engine.WithLatencies(true),
//	)
//
// The engine loads the CSV once into an immutable, enriched table and
// answers each widget selection with render-ready timelines and a run
// table. The server package hosts the dashboard over HTTP and WebSocket.
package simtrace
