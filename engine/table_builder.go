package engine

import (
	"fmt"
)

// ============================================================================
// TABLE BUILDER — Produces TableData from runs or filtered events
// ============================================================================
// All functions operate on RecordView for zero-copy access to any data source.
// ============================================================================

// BuildRunTable renders the run-level summary: one row per (seed, strategy).
func BuildRunTable(runs []RunSummary) *TableData {
	columns := []Column{
		{Key: ColSeed, Label: "Seed", Type: "text", Align: "left"},
		{Key: ColStrategy, Label: "Strategy", Type: "text", Align: "left"},
		{Key: ColSimulationLength, Label: "Simulation Length", Type: "number", Align: "right"},
		{Key: ColTotalWork, Label: "Total Work", Type: "number", Align: "right"},
		{Key: ColAverageFailureTime, Label: "Failure Rate", Type: "number", Align: "right"},
		{Key: ColCompleteness, Label: "Completeness", Type: "number", Align: "right"},
	}

	rows := make([][]string, 0, len(runs))
	var totalWork float64
	for _, r := range runs {
		rows = append(rows, []string{
			r.Seed,
			StrategyLabel(r.Strategy),
			FormatNumber(r.SimulationLength),
			FormatNumber(r.TotalWork),
			FormatNumber(RoundTo(r.AverageFailureTime, 5)),
			FormatNumber(r.Completeness),
		})
		totalWork += r.TotalWork
	}

	return &TableData{
		Title:   "Runs",
		Columns: columns,
		Rows:    rows,
		Summary: &Summary{
			Label: fmt.Sprintf("Total (%d runs)", len(runs)),
			Values: map[string]string{
				ColTotalWork: FormatNumber(totalWork),
			},
		},
	}
}

// ============================================================================
// EVENT TABLE — Row per record
// ============================================================================

// BuildEventTable lists every row of the view with all its columns,
// dimensions as text and measures as numbers.
func BuildEventTable(view RecordView) *TableData {
	dims := toSet(view.DimensionKeys())

	columns := make([]Column, 0, len(eventColumns))
	for _, key := range eventColumns {
		col := Column{Key: key, Label: LabelForDimension(key), Type: "number", Align: "right"}
		if dims[key] {
			col.Type = "text"
			col.Align = "left"
		}
		columns = append(columns, col)
	}

	rows := make([][]string, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		row := make([]string, 0, len(columns))
		for _, col := range columns {
			if col.Type == "text" {
				row = append(row, view.Dimension(i, col.Key))
			} else {
				row = append(row, FormatNumber(view.Measure(i, col.Key)))
			}
		}
		rows = append(rows, row)
	}

	return &TableData{
		Title:   "Events",
		Columns: columns,
		Rows:    rows,
		Summary: &Summary{
			Label:  fmt.Sprintf("Total (%s events)", FormatInt(view.Len())),
			Values: map[string]string{},
		},
	}
}
