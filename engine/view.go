package engine

// ============================================================================
// RECORD VIEW — Zero-Copy Data Access Interface
// ============================================================================
// The engine reads events through this interface and never copies rows.
//
// Implementations:
//   Columns[T].View : typed rows read through accessor functions
//   SubView         : filtered subset holding indices into its parent
//
// Filters and groups produce SubViews, so the base table is never mutated.
// ============================================================================

// RecordView provides indexed access to a dataset.
// The engine calls Dimension/Measure in tight loops; keep implementations fast.
type RecordView interface {
	Len() int
	Dimension(index int, key string) string
	Measure(index int, key string) float64
	DimensionKeys() []string // available dimension keys
	MeasureKeys() []string   // available measure keys
}

// ============================================================================
// SUB VIEW — filtered subset (zero-copy)
// ============================================================================

// SubView is a filtered subset of a parent RecordView.
// Holds indices into the parent, no data copy.
type SubView struct {
	parent  RecordView
	indices []int
}

func newSubView(parent RecordView, indices []int) RecordView {
	return &SubView{parent: parent, indices: indices}
}

func (v *SubView) Len() int { return len(v.indices) }

func (v *SubView) Dimension(i int, key string) string {
	if i < 0 || i >= len(v.indices) {
		return ""
	}
	return v.parent.Dimension(v.indices[i], key)
}

func (v *SubView) Measure(i int, key string) float64 {
	if i < 0 || i >= len(v.indices) {
		return 0
	}
	return v.parent.Measure(v.indices[i], key)
}

func (v *SubView) DimensionKeys() []string { return v.parent.DimensionKeys() }
func (v *SubView) MeasureKeys() []string   { return v.parent.MeasureKeys() }

// ============================================================================
// COLUMN BINDING — Typed rows as a RecordView
// ============================================================================
//
//	cols := engine.NewColumns[Event]().
//	    Text("seed", func(e Event) string { return e.Seed }).
//	    Number("latency", func(e Event) float64 { return e.Latency })
//	view := cols.View(events)
//
// ============================================================================

// Columns declares the text and numeric columns of row type T.
// Declare once, then bind any number of row slices with View.
type Columns[T any] struct {
	textKeys []string
	numKeys  []string
	text     map[string]func(T) string
	num      map[string]func(T) float64
}

// NewColumns returns an empty column set for T.
func NewColumns[T any]() *Columns[T] {
	return &Columns[T]{
		text: make(map[string]func(T) string),
		num:  make(map[string]func(T) float64),
	}
}

// Text registers a dimension column. Re-registering a key replaces its
// accessor and keeps its position.
func (c *Columns[T]) Text(key string, get func(T) string) *Columns[T] {
	if _, ok := c.text[key]; !ok {
		c.textKeys = append(c.textKeys, key)
	}
	c.text[key] = get
	return c
}

// Number registers a measure column.
func (c *Columns[T]) Number(key string, get func(T) float64) *Columns[T] {
	if _, ok := c.num[key]; !ok {
		c.numKeys = append(c.numKeys, key)
	}
	c.num[key] = get
	return c
}

// View binds rows without copying them. The caller must not mutate rows
// while the view is in use.
func (c *Columns[T]) View(rows []T) RecordView {
	return &rowView[T]{rows: rows, cols: c}
}

type rowView[T any] struct {
	rows []T
	cols *Columns[T]
}

func (v *rowView[T]) Len() int { return len(v.rows) }

func (v *rowView[T]) Dimension(i int, key string) string {
	get, ok := v.cols.text[key]
	if !ok || i < 0 || i >= len(v.rows) {
		return ""
	}
	return get(v.rows[i])
}

func (v *rowView[T]) Measure(i int, key string) float64 {
	get, ok := v.cols.num[key]
	if !ok || i < 0 || i >= len(v.rows) {
		return 0
	}
	return get(v.rows[i])
}

func (v *rowView[T]) DimensionKeys() []string { return v.cols.textKeys }
func (v *rowView[T]) MeasureKeys() []string   { return v.cols.numKeys }

// ============================================================================
// EVENT COLUMNS
// ============================================================================

// eventCols exposes every Event column, original and derived.
var eventCols = NewColumns[Event]().
	Text(ColSeed, func(e Event) string { return e.Seed }).
	Text(ColMessageType, func(e Event) string { return e.MessageType }).
	Text(ColReceiverAddress, func(e Event) string { return e.ReceiverAddress }).
	Text(ColEmitterAddress, func(e Event) string { return e.EmitterAddress }).
	Text(ColFailureHandling, func(e Event) string { return e.FailureHandling }).
	Text(ColStrategy, func(e Event) string { return e.Strategy }).
	Number(ColArrivalTime, func(e Event) float64 { return e.ArrivalTime }).
	Number(ColDepartureTime, func(e Event) float64 { return e.DepartureTime }).
	Number(ColTotalWork, func(e Event) float64 { return e.TotalWork }).
	Number(ColTotalBandwidth, func(e Event) float64 { return e.TotalBandwidth }).
	Number(ColAverageFailureTime, func(e Event) float64 { return e.AverageFailureTime }).
	Number(ColCompleteness, func(e Event) float64 { return e.Completeness }).
	Number(ColLatency, func(e Event) float64 { return e.Latency }).
	Number(ColSimulationLength, func(e Event) float64 { return e.SimulationLength })

// NewEventView binds events to a RecordView exposing every event column.
func NewEventView(events []Event) RecordView {
	return eventCols.View(events)
}
