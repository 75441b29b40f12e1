package engine

import (
	"errors"
	"math"

	"github.com/google/uuid"
)

// ============================================================================
// TABLE — Enriched, immutable event dataset
// ============================================================================
// Built once at start-up by NewTable and shared read-only by every filter
// call. Accessors return copies so callers cannot reach the internal state.
//
// Enrichment:
//   strategy           = failure_handling
//   latency            = max(0, arrival_time - departure_time)
//   failure rate       = rounded to 6 decimals
//   simulation_length  = 2 × min(departure_time) over the seed's rows
// ============================================================================

// ErrEmptyTable is returned by NewTable when there are no events.
var ErrEmptyTable = errors.New("no events to load")

// strategyNames maps failure-handling codes to display names.
var strategyNames = map[string]string{
	"EAGER": "Eager",
	"OPTI":  "Optimistic",
	"PESS":  "Pessimistic",
	"STRAW": "Strawman",
}

// StrategyLabel returns the display name of a failure-handling code, or the
// code itself when it is unknown.
func StrategyLabel(code string) string {
	if name, ok := strategyNames[code]; ok {
		return name
	}
	return code
}

// eventColumns lists every event column, original then derived.
var eventColumns = []string{
	ColSeed, ColMessageType, ColReceiverAddress, ColEmitterAddress,
	ColArrivalTime, ColDepartureTime, ColFailureHandling,
	ColTotalWork, ColTotalBandwidth, ColAverageFailureTime, ColCompleteness,
	ColStrategy, ColLatency, ColSimulationLength,
}

// Table is the enriched event dataset.
type Table struct {
	id     uuid.UUID
	events []Event
	view   RecordView

	seeds         []string
	messageTypes  []string
	strategies    []string
	strategiesMap map[string]string
	domain        FailureDomain
	runs          []RunSummary
}

// NewTable copies events, derives the computed columns and pre-computes the
// metadata the dashboard needs.
func NewTable(events []Event) (*Table, error) {
	if len(events) == 0 {
		return nil, ErrEmptyTable
	}

	evs := make([]Event, len(events))
	copy(evs, events)

	for i := range evs {
		e := &evs[i]
		e.Strategy = e.FailureHandling
		e.Latency = math.Max(0, e.ArrivalTime-e.DepartureTime)
		e.AverageFailureTime = RoundTo(e.AverageFailureTime, 6)
	}

	view := NewEventView(evs)

	// simulation_length: per-seed minimum departure added to itself, then
	// broadcast back onto every row of the seed.
	lengths := make(map[string]float64)
	for _, g := range groupBySingle(view, ColSeed) {
		first := MinMeasure(g.View, ColDepartureTime)
		lengths[g.Key] = first + first
	}
	for i := range evs {
		evs[i].SimulationLength = lengths[evs[i].Seed]
	}

	t := &Table{
		id:           uuid.New(),
		events:       evs,
		view:         view,
		seeds:        UniqueValues(view, ColSeed),
		messageTypes: UniqueValues(view, ColMessageType),
		strategies:   UniqueValues(view, ColStrategy),
		runs:         SummarizeRuns(view),
	}
	SortSeeds(t.seeds)

	t.strategiesMap = make(map[string]string)
	for _, s := range t.strategies {
		if name, ok := strategyNames[s]; ok {
			t.strategiesMap[s] = name
		}
	}

	t.domain = newFailureDomain(UniqueMeasures(view, ColAverageFailureTime))
	return t, nil
}

// ID identifies this loaded snapshot.
func (t *Table) ID() string { return t.id.String() }

// Len returns the number of events.
func (t *Table) Len() int { return len(t.events) }

// View returns a read-only view over every event.
func (t *Table) View() RecordView { return t.view }

// Event returns a copy of the i-th event.
func (t *Table) Event(i int) Event { return t.events[i] }

// Columns returns every event column key, original then derived.
func (t *Table) Columns() []string { return append([]string(nil), eventColumns...) }

// Seeds returns the distinct seeds (integer seeds in numeric order).
func (t *Table) Seeds() []string { return append([]string(nil), t.seeds...) }

// MessageTypes returns the distinct message types in first-seen order.
func (t *Table) MessageTypes() []string { return append([]string(nil), t.messageTypes...) }

// Strategies returns the distinct strategy codes in first-seen order.
func (t *Table) Strategies() []string { return append([]string(nil), t.strategies...) }

// StrategiesMap returns the display mapping pruned to codes present in the
// data.
func (t *Table) StrategiesMap() map[string]string {
	m := make(map[string]string, len(t.strategiesMap))
	for k, v := range t.strategiesMap {
		m[k] = v
	}
	return m
}

// FailureDomain returns the selectable failure-rate domain.
func (t *Table) FailureDomain() FailureDomain {
	d := t.domain
	d.Values = append([]float64(nil), t.domain.Values...)
	return d
}

// Runs returns the run-level summary of the whole dataset.
func (t *Table) Runs() []RunSummary { return append([]RunSummary(nil), t.runs...) }

// ============================================================================
// FAILURE DOMAIN
// ============================================================================

func newFailureDomain(values []float64) FailureDomain {
	d := FailureDomain{Values: values}
	if len(values) == 0 {
		return d
	}
	d.Min = math.Min(0, values[0])
	d.Max = values[len(values)-1]
	if len(values) > 1 {
		d.Step = RoundTo(values[1]-values[0], 6)
	}
	return d
}

// Within returns the observed rates inside the closed interval [lo, hi].
// An inverted interval yields no rates.
func (d FailureDomain) Within(lo, hi float64) []float64 {
	out := []float64{}
	if lo > hi {
		return out
	}
	for _, v := range d.Values {
		if v >= lo && v <= hi {
			out = append(out, v)
		}
	}
	return out
}

// Snap narrows [lo, hi] to the smallest and largest observed rates inside
// it. ok is false when no observed rate falls inside.
func (d FailureDomain) Snap(lo, hi float64) (snappedLo, snappedHi float64, ok bool) {
	in := d.Within(lo, hi)
	if len(in) == 0 {
		return lo, hi, false
	}
	return in[0], in[len(in)-1], true
}

// DefaultSelection selects everything: the full failure domain, every run
// and every message type.
func DefaultSelection(t *Table) Selection {
	return Selection{
		FailureRange: [2]float64{t.domain.Min, t.domain.Max},
		Seeds:        []string{AllRuns},
		MessageTypes: t.MessageTypes(),
	}
}
