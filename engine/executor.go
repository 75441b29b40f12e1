package engine

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// ============================================================================
// EXECUTOR — Selection → Result
// ============================================================================
// Entry point: Execute(table, sel, opts...)
//
// Pipeline:
//   1. Filter the table by the selection → SubView
//   2. Build every requested timeline from the filtered view (concurrently)
//   3. (Optional) Run-level table of the filtered rows
//   4. One-line reply
//
// The table is only read, so concurrent callers are safe.
// ============================================================================

// Execute applies a selection to the table and returns the render-ready
// projections. An empty selection is a valid Result with empty series.
//
// Options:
//   - WithYAxis("receiver"|"emitter"): message timeline Y column
//   - WithLatencies(bool): add the latency timeline
//   - WithMaxPoints(n): cap points per series
//   - WithRunTable(bool): attach the run-level table
func Execute(table *Table, sel Selection, opts ...Option) (*Result, error) {
	cfg := applyOptions(opts)

	yCol, err := yColumn(cfg.YAxis)
	if err != nil {
		return nil, err
	}

	// 1. Filter → SubView (zero-copy)
	filtered := Filter(table, sel)

	slog.Debug("selection applied",
		"dataset", table.ID(),
		"rows", filtered.Len(),
		"total", table.Len(),
		"seeds", sel.Seeds,
		"types", len(sel.MessageTypes),
		"failure_range", sel.FailureRange)

	// 2. Timelines: one goroutine per projection over the same read-only view
	specs := timelineSpecs(yCol, cfg.Latencies)
	timelines := make([]Timeline, len(specs))

	g, _ := errgroup.WithContext(context.Background())
	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			timelines[i] = buildTimeline(spec, filtered, cfg.MaxPoints)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{
		Success:   true,
		DatasetID: table.ID(),
		Rows:      filtered.Len(),
		Total:     table.Len(),
		Runs:      CountRuns(filtered),
		Selection: sel,
		Timelines: timelines,
		View:      filtered,
	}

	// 3. Run table
	if cfg.RunTable {
		result.RunTable = BuildRunTable(SummarizeRuns(filtered))
	}

	// 4. Reply
	result.Reply = BuildReply(filtered, table.Len())
	return result, nil
}
