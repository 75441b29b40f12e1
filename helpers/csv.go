package helpers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spektr-org/simtrace/engine"
	"github.com/spektr-org/simtrace/schema"
)

// ============================================================================
// CSV HELPER — Parses a simulation export into []engine.Event
// ============================================================================
// Load pipeline: discover schema → validate columns → parse rows → enrich.
// The input file is only ever read.
// ============================================================================

// ParseError reports an unparsable cell.
type ParseError struct {
	Line   int    // 1-based line in the file
	Column string // column key
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("line %d, column %s: empty value", e.Line, e.Column)
	}
	return fmt.Sprintf("line %d, column %s: cannot parse %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ErrNotNumeric is wrapped by ParseError for numeric cells that do not parse
// under the dataset's decimal convention.
var ErrNotNumeric = errors.New("not a number")

// ParseCSV parses CSV bytes into Events using the discovered schema.
// Rows the CSV reader rejects (wrong field count, bad quoting) are skipped
// with a warning; an empty or unparsable numeric cell is an error.
func ParseCSV(data []byte, sch *schema.Config) ([]engine.Event, error) {
	reader := csv.NewReader(bytes.NewReader(data))

	// Header already validated by discovery
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	idx := make(map[string]int, len(sch.Columns))
	for _, key := range sch.RequiredKeys() {
		i := sch.ColumnIndex(key)
		if i < 0 {
			return nil, &schema.MissingColumnsError{Columns: []string{key}}
		}
		idx[key] = i
	}

	var events []engine.Event
	skipped := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			slog.Warn("skipping malformed CSV row", "error", err)
			continue
		}
		line, _ := reader.FieldPos(0)

		ev, err := parseRow(row, line, idx, sch.Decimal)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}

	if skipped > 0 {
		slog.Warn("malformed rows skipped", "count", skipped, "parsed", len(events))
	}
	if len(events) == 0 {
		return nil, schema.ErrNoRows
	}
	return events, nil
}

func parseRow(row []string, line int, idx map[string]int, mark string) (engine.Event, error) {
	text := func(key string) string {
		return strings.TrimSpace(row[idx[key]])
	}

	var perr error
	num := func(key string) float64 {
		if perr != nil {
			return 0
		}
		raw := text(key)
		if raw == "" {
			perr = &ParseError{Line: line, Column: key, Err: ErrNotNumeric}
			return 0
		}
		d, ok := schema.ParseNumber(raw, mark)
		if !ok {
			perr = &ParseError{Line: line, Column: key, Value: raw, Err: ErrNotNumeric}
			return 0
		}
		return d.InexactFloat64()
	}

	ev := engine.Event{
		Seed:               text(engine.ColSeed),
		MessageType:        text(engine.ColMessageType),
		ReceiverAddress:    text(engine.ColReceiverAddress),
		EmitterAddress:     text(engine.ColEmitterAddress),
		FailureHandling:    text(engine.ColFailureHandling),
		ArrivalTime:        num(engine.ColArrivalTime),
		DepartureTime:      num(engine.ColDepartureTime),
		TotalWork:          num(engine.ColTotalWork),
		TotalBandwidth:     num(engine.ColTotalBandwidth),
		AverageFailureTime: num(engine.ColAverageFailureTime),
		Completeness:       num(engine.ColCompleteness),
	}
	return ev, perr
}

// Load discovers the schema, validates it, parses every row and builds the
// enriched table.
func Load(data []byte, opts ...schema.DiscoverOptions) (*engine.Table, *schema.Config, error) {
	sch, err := schema.DiscoverFromCSV(data, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("discover schema: %w", err)
	}
	if err := sch.Validate(); err != nil {
		return nil, nil, fmt.Errorf("validate schema: %w", err)
	}

	events, err := ParseCSV(data, sch)
	if err != nil {
		return nil, nil, fmt.Errorf("parse rows: %w", err)
	}

	table, err := engine.NewTable(events)
	if err != nil {
		return nil, nil, err
	}

	slog.Info("dataset loaded",
		"id", table.ID(),
		"rows", table.Len(),
		"decimal", sch.Decimal,
		"columns", table.Columns())
	for _, sc := range sch.SkippedColumns {
		slog.Debug("column ignored", "column", sc.Column, "reason", sc.Reason)
	}
	return table, sch, nil
}

// LoadFile reads path and calls Load.
func LoadFile(path string, opts ...schema.DiscoverOptions) (*engine.Table, *schema.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	if opt := firstOption(opts); opt.Name == "" {
		opt.Name = path
		opts = []schema.DiscoverOptions{opt}
	}
	return Load(data, opts...)
}

func firstOption(opts []schema.DiscoverOptions) schema.DiscoverOptions {
	if len(opts) > 0 {
		return opts[0]
	}
	return schema.DefaultDiscoverOptions()
}
