package engine

// ============================================================================
// SIMTRACE ENGINE TYPES — Simulation event timelines
// ============================================================================
// Event (typed row) → RecordView (zero-copy access) → Selection (widget
// state) → Result (render-ready timelines + optional run table).
// ============================================================================

// ============================================================================
// EVENT — One simulated message event
// ============================================================================

// Event is a single row of a simulation export plus its derived columns.
type Event struct {
	Seed               string  `json:"seed"`
	MessageType        string  `json:"message_type"`
	ReceiverAddress    string  `json:"receiver_address"`
	EmitterAddress     string  `json:"emitter_address"`
	ArrivalTime        float64 `json:"arrival_time"`
	DepartureTime      float64 `json:"departure_time"`
	FailureHandling    string  `json:"failure_handling"`
	TotalWork          float64 `json:"total_work"`
	TotalBandwidth     float64 `json:"total_bandwidth"`
	AverageFailureTime float64 `json:"average_failure_time"`
	Completeness       float64 `json:"completeness"`

	// Derived at load time
	Strategy         string  `json:"strategy"`
	Latency          float64 `json:"latency"`
	SimulationLength float64 `json:"simulation_length"`
}

// Column keys used across the engine.
const (
	ColSeed               = "seed"
	ColMessageType        = "message_type"
	ColReceiverAddress    = "receiver_address"
	ColEmitterAddress     = "emitter_address"
	ColArrivalTime        = "arrival_time"
	ColDepartureTime      = "departure_time"
	ColFailureHandling    = "failure_handling"
	ColTotalWork          = "total_work"
	ColTotalBandwidth     = "total_bandwidth"
	ColAverageFailureTime = "average_failure_time"
	ColCompleteness       = "completeness"
	ColStrategy           = "strategy"
	ColLatency            = "latency"
	ColSimulationLength   = "simulation_length"
)

// ============================================================================
// SELECTION — Current widget state
// ============================================================================

// AllRuns is the seed sentinel that disables seed filtering.
const AllRuns = "All"

// Selection is the state of the dashboard filter widgets.
//
// OR within each field, AND across fields. An empty Seeds (without AllRuns)
// or MessageTypes selects nothing.
type Selection struct {
	FailureRange [2]float64 `json:"failureRange"` // closed [lo, hi]
	Seeds        []string   `json:"seeds"`
	MessageTypes []string   `json:"messageTypes"`
}

// AllSeeds reports whether the AllRuns sentinel is selected.
func (s Selection) AllSeeds() bool {
	for _, seed := range s.Seeds {
		if seed == AllRuns {
			return true
		}
	}
	return false
}

// Filters define which records to include.
// A key present in a map restricts on that column (an empty value list
// matches nothing); absent keys do not restrict.
// OR within a column, AND across columns.
type Filters struct {
	Dimensions map[string][]string  `json:"dimensions,omitempty"`
	Measures   map[string][]float64 `json:"measures,omitempty"`
}

// HasFilter returns true if a column restriction is set.
func (f Filters) HasFilter(key string) bool {
	if _, ok := f.Dimensions[key]; ok {
		return true
	}
	_, ok := f.Measures[key]
	return ok
}

// IsEmpty returns true if no restriction is set.
func (f Filters) IsEmpty() bool {
	return len(f.Dimensions) == 0 && len(f.Measures) == 0
}

// ============================================================================
// RESULT — Render-ready output
// ============================================================================

// Result is the engine's render-ready output for one selection.
type Result struct {
	Success   bool       `json:"success"`
	Reply     string     `json:"reply"`
	DatasetID string     `json:"datasetId,omitempty"`
	Rows      int        `json:"rows"`
	Total     int        `json:"total"`
	Runs      int        `json:"runs"`
	Selection Selection  `json:"selection"`
	Timelines []Timeline `json:"timelines"`
	RunTable  *TableData `json:"runTable,omitempty"`

	// View over the filtered rows, for exporters.
	View RecordView `json:"-"`
}

// Timeline returns the projection with the given id, or nil.
func (r *Result) Timeline(id string) *Timeline {
	for i := range r.Timelines {
		if r.Timelines[i].ID == id {
			return &r.Timelines[i]
		}
	}
	return nil
}

// ============================================================================
// TIMELINE TYPES
// ============================================================================

// Timeline ids.
const (
	MessageTimeline   = "message_timeline"
	BandwidthTimeline = "bandwidth_timeline"
	WorkTimeline      = "work_timeline"
	LatencyTimeline   = "latency_timeline"
)

// Timeline is a scatter projection of events along the time axis.
type Timeline struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	X           string   `json:"x"`
	Y           string   `json:"y"`
	Color       string   `json:"color"`
	HoverName   string   `json:"hoverName"`
	HoverFields []string `json:"hoverFields"`
	XAxis       string   `json:"xAxis"`
	YAxis       string   `json:"yAxis"`

	// YCategories holds the labels of a categorical Y axis; point Y values
	// are indices into it.
	YCategories []string `json:"yCategories,omitempty"`

	Series []Series `json:"series"`
	Points int      `json:"points"`
}

// Series is one colour group of a timeline.
type Series struct {
	Name   string  `json:"name"`
	Color  string  `json:"color,omitempty"`
	Points []Point `json:"points"`
}

// Point is a single scatter point.
type Point struct {
	X      float64           `json:"x"`
	Y      float64           `json:"y"`
	YLabel string            `json:"yLabel,omitempty"`
	Name   string            `json:"name,omitempty"`
	Hover  map[string]string `json:"hover,omitempty"`
}

// ============================================================================
// GROUP — Intermediate computation result
// ============================================================================

// Group represents a grouped/aggregated result.
type Group struct {
	Key       string     `json:"key"`
	Label     string     `json:"label"`
	Value     float64    `json:"value"`
	Count     int        `json:"count"`
	SubGroups []Group    `json:"subGroups,omitempty"`
	View      RecordView `json:"-"` // Sub-view for records in this group (zero-copy)
}

// ============================================================================
// RUN SUMMARY
// ============================================================================

// RunSummary is the terminal/peak values of one (seed, strategy) run.
type RunSummary struct {
	Seed               string  `json:"seed"`
	Strategy           string  `json:"strategy"`
	SimulationLength   float64 `json:"simulation_length"`
	TotalWork          float64 `json:"total_work"`
	AverageFailureTime float64 `json:"average_failure_time"`
	Completeness       float64 `json:"completeness"`
}

// FailureDomain is the selectable failure-rate domain of a dataset.
type FailureDomain struct {
	Values []float64 `json:"values"` // sorted distinct rates
	Min    float64   `json:"min"`
	Max    float64   `json:"max"`
	Step   float64   `json:"step"` // 0 when only one rate exists
}

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData defines how to render a table.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Summary *Summary   `json:"summary,omitempty"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number"
	Align string `json:"align"` // "left", "center", "right"
}

// Summary provides totals or aggregations for a table.
type Summary struct {
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}
