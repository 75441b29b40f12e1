package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ============================================================================
// SCHEMA — Describes the shape of a simulation event dataset
// ============================================================================
// Discovered from the CSV header + sample rows, then checked against the
// declared event columns. The loader uses it to locate columns and to know
// which decimal mark the numbers were written with.
// ============================================================================

// Decimal marks understood by the loader.
const (
	DecimalPoint = "."
	DecimalComma = ","
)

var (
	// ErrNoRows is returned when the file has a header but no data rows.
	ErrNoRows = errors.New("CSV has no data rows")

	// ErrDecimalFormat is returned when neither decimal convention yields a
	// floating-point column.
	ErrDecimalFormat = errors.New("no floating-point column under either decimal convention")

	// ErrMissingColumns is wrapped by MissingColumnsError.
	ErrMissingColumns = errors.New("missing required columns")
)

// MissingColumnsError lists every required column absent from the header.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%v: %s", ErrMissingColumns, strings.Join(e.Columns, ", "))
}

func (e *MissingColumnsError) Unwrap() error { return ErrMissingColumns }

// Config describes the complete shape of a dataset.
type Config struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`

	// Decimal is the decimal mark numbers were written with ("." or ",").
	Decimal string `json:"decimal"`

	Dimensions []DimensionMeta `json:"dimensions"`
	Measures   []MeasureMeta   `json:"measures"`
	Columns    []ColumnInfo    `json:"columns,omitempty"`

	// Auto-discovery metadata
	DiscoveredFrom string `json:"discoveredFrom,omitempty"`
	DiscoveredAt   string `json:"discoveredAt,omitempty"`

	// Columns present in the file but not part of the event schema
	SkippedColumns []SkippedColumn `json:"skippedColumns,omitempty"`
}

// DimensionMeta describes a string field used for grouping/filtering.
type DimensionMeta struct {
	Key             string   `json:"key"`
	DisplayName     string   `json:"displayName"`
	Description     string   `json:"description,omitempty"`
	SampleValues    []string `json:"sampleValues,omitempty"`
	Groupable       bool     `json:"groupable"`
	Filterable      bool     `json:"filterable"`
	CardinalityHint string   `json:"cardinalityHint,omitempty"` // "low", "medium", "high"
}

// MeasureMeta describes a numeric field.
type MeasureMeta struct {
	Key                string   `json:"key"`
	DisplayName        string   `json:"displayName"`
	Description        string   `json:"description,omitempty"`
	Unit               string   `json:"unit,omitempty"`
	IsDerived          bool     `json:"isDerived,omitempty"` // computed at load time, not read from the file
	Aggregations       []string `json:"aggregations,omitempty"`
	DefaultAggregation string   `json:"defaultAggregation,omitempty"`
}

// ColumnInfo is what discovery learned about one physical CSV column.
type ColumnInfo struct {
	Header string     `json:"header"`
	Key    string     `json:"key"`
	Index  int        `json:"index"`
	Type   ColumnType `json:"type"`
}

// SkippedColumn records why a column was left out of the event schema.
type SkippedColumn struct {
	Column      string `json:"column"`
	Reason      string `json:"reason"`
	Recoverable bool   `json:"recoverable"`
}

// DefaultDimension creates a DimensionMeta with sensible defaults.
func DefaultDimension(key, description string) DimensionMeta {
	return DimensionMeta{
		Key:         key,
		DisplayName: toDisplayName(key),
		Description: description,
		Groupable:   true,
		Filterable:  true,
	}
}

// DefaultMeasure creates a MeasureMeta with sensible defaults.
func DefaultMeasure(key, description string) MeasureMeta {
	return MeasureMeta{
		Key:                key,
		DisplayName:        toDisplayName(key),
		Description:        description,
		Aggregations:       []string{"min", "max", "avg", "sum", "count"},
		DefaultAggregation: "max",
	}
}

// EventConfig returns the declared schema of a simulation event export.
// Every dimension and non-derived measure listed here must be present in
// the file.
func EventConfig() *Config {
	derived := func(m MeasureMeta) MeasureMeta {
		m.IsDerived = true
		return m
	}
	return &Config{
		Name:    "Simulation Events",
		Version: "1.0",
		Decimal: DecimalPoint,
		Dimensions: []DimensionMeta{
			DefaultDimension("seed", "Protocol execution the event belongs to"),
			DefaultDimension("message_type", "Kind of message"),
			DefaultDimension("receiver_address", "Receiving node"),
			DefaultDimension("emitter_address", "Emitting node"),
			DefaultDimension("failure_handling", "Failure handling strategy code"),
		},
		Measures: []MeasureMeta{
			DefaultMeasure("arrival_time", "Arrival timestamp"),
			DefaultMeasure("departure_time", "Departure timestamp"),
			DefaultMeasure("total_work", "Cumulative work at event time"),
			DefaultMeasure("total_bandwidth", "Cumulative bandwidth at event time"),
			DefaultMeasure("average_failure_time", "Configured failure rate of the run"),
			DefaultMeasure("completeness", "Run completion metric"),
			derived(DefaultMeasure("latency", "max(0, arrival - departure)")),
			derived(DefaultMeasure("simulation_length", "Per-seed simulation length")),
		},
	}
}

// RequiredKeys returns every column key that must be read from the file.
func (c Config) RequiredKeys() []string {
	keys := make([]string, 0, len(c.Dimensions)+len(c.Measures))
	for _, d := range c.Dimensions {
		keys = append(keys, d.Key)
	}
	for _, m := range c.Measures {
		if !m.IsDerived {
			keys = append(keys, m.Key)
		}
	}
	return keys
}

// ColumnIndex returns the CSV column index for key, or -1.
func (c Config) ColumnIndex(key string) int {
	for _, col := range c.Columns {
		if col.Key == key {
			return col.Index
		}
	}
	return -1
}

// ColumnKeys returns the keys of every discovered column in file order.
func (c Config) ColumnKeys() []string {
	keys := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		keys[i] = col.Key
	}
	return keys
}

// Validate checks that every required column was discovered.
func (c Config) Validate() error {
	var missing []string
	for _, key := range c.RequiredKeys() {
		if c.ColumnIndex(key) < 0 {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Columns: missing}
	}
	if c.Decimal != DecimalPoint && c.Decimal != DecimalComma {
		return fmt.Errorf("unsupported decimal mark %q", c.Decimal)
	}
	return nil
}

// DimensionKeys returns all dimension keys.
func (c Config) DimensionKeys() []string {
	keys := make([]string, len(c.Dimensions))
	for i, d := range c.Dimensions {
		keys[i] = d.Key
	}
	return keys
}

// MeasureKeys returns all measure keys.
func (c Config) MeasureKeys() []string {
	keys := make([]string, len(c.Measures))
	for i, m := range c.Measures {
		keys[i] = m.Key
	}
	return keys
}
