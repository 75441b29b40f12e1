package engine

import (
	"errors"
	"reflect"
	"testing"
)

// ============================================================================
// TABLE TESTS
// ============================================================================
// Tests cover:
//   1. Enrichment: strategy, latency clamp, rate rounding, simulation length
//   2. Metadata: seeds, message types, strategies map, failure domain, runs
//   3. Isolation: caller slice and accessor copies
// ============================================================================

// --- Test Fixtures ---

func sampleEvents() []Event {
	return []Event{
		{Seed: "1", MessageType: "APP", ReceiverAddress: "0", EmitterAddress: "1", ArrivalTime: 5, DepartureTime: 3, FailureHandling: "OPTI", TotalWork: 10, TotalBandwidth: 100, AverageFailureTime: 0.1, Completeness: 0.5},
		{Seed: "1", MessageType: "SYNC", ReceiverAddress: "1", EmitterAddress: "0", ArrivalTime: 7, DepartureTime: 9, FailureHandling: "OPTI", TotalWork: 20, TotalBandwidth: 150, AverageFailureTime: 0.1, Completeness: 0.8},
		{Seed: "2", MessageType: "APP", ReceiverAddress: "2", EmitterAddress: "1", ArrivalTime: 4, DepartureTime: 2, FailureHandling: "PESS", TotalWork: 5, TotalBandwidth: 50, AverageFailureTime: 0.2, Completeness: 0.4},
		{Seed: "2", MessageType: "SYNC", ReceiverAddress: "0", EmitterAddress: "2", ArrivalTime: 8, DepartureTime: 6, FailureHandling: "PESS", TotalWork: 15, TotalBandwidth: 80, AverageFailureTime: 0.2, Completeness: 1},
		{Seed: "10", MessageType: "APP", ReceiverAddress: "1", EmitterAddress: "0", ArrivalTime: 3, DepartureTime: 1, FailureHandling: "EAGER", TotalWork: 7, TotalBandwidth: 30, AverageFailureTime: 0.3, Completeness: 0.9},
	}
}

func sampleTable(t *testing.T) *Table {
	t.Helper()
	table, err := NewTable(sampleEvents())
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return table
}

// ============================================================================
// ENRICHMENT
// ============================================================================

func TestNewTable_Empty(t *testing.T) {
	_, err := NewTable(nil)
	if !errors.Is(err, ErrEmptyTable) {
		t.Fatalf("expected ErrEmptyTable, got %v", err)
	}
}

func TestNewTable_LatencyClampsAtZero(t *testing.T) {
	table, err := NewTable([]Event{
		{Seed: "1", MessageType: "A", ArrivalTime: 10, DepartureTime: 12},
		{Seed: "1", MessageType: "A", ArrivalTime: 10, DepartureTime: 8},
	})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	if got := table.Event(0).Latency; got != 0 {
		t.Errorf("latency for arrival before departure = %v, want 0", got)
	}
	if got := table.Event(1).Latency; got != 2 {
		t.Errorf("latency = %v, want 2", got)
	}
}

func TestNewTable_StrategyCopiesFailureHandling(t *testing.T) {
	table := sampleTable(t)
	for i := 0; i < table.Len(); i++ {
		e := table.Event(i)
		if e.Strategy != e.FailureHandling {
			t.Errorf("row %d: strategy %q != failure_handling %q", i, e.Strategy, e.FailureHandling)
		}
	}
}

// simulation_length doubles the per-seed minimum departure time. This is the
// observed formula of the dashboard and is kept as-is; it does not involve
// the maximum departure time.
func TestNewTable_SimulationLengthDoublesMinimumDeparture(t *testing.T) {
	table := sampleTable(t)
	want := map[string]float64{"1": 6, "2": 4, "10": 2}
	for i := 0; i < table.Len(); i++ {
		e := table.Event(i)
		if e.SimulationLength != want[e.Seed] {
			t.Errorf("seed %s row %d: simulation_length = %v, want %v", e.Seed, i, e.SimulationLength, want[e.Seed])
		}
	}
}

func TestNewTable_RoundsFailureRate(t *testing.T) {
	table, err := NewTable([]Event{
		{Seed: "1", MessageType: "A", AverageFailureTime: 0.1 + 0.2},
		{Seed: "1", MessageType: "A", AverageFailureTime: 0.3},
		{Seed: "1", MessageType: "A", AverageFailureTime: 0.0000504},
	})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	if table.Event(0).AverageFailureTime != table.Event(1).AverageFailureTime {
		t.Errorf("0.1+0.2 and 0.3 should round to the same rate: %v vs %v",
			table.Event(0).AverageFailureTime, table.Event(1).AverageFailureTime)
	}
	if got := table.Event(2).AverageFailureTime; got != 0.00005 {
		t.Errorf("rate = %v, want 0.00005", got)
	}
	if got := len(table.FailureDomain().Values); got != 2 {
		t.Errorf("expected 2 distinct rates, got %d", got)
	}
}

func TestNewTable_DoesNotRetainCallerSlice(t *testing.T) {
	events := sampleEvents()
	table, err := NewTable(events)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	events[0].Seed = "mutated"
	if table.Event(0).Seed != "1" {
		t.Error("table should not share the caller's slice")
	}
	if events[0].Strategy != "" {
		t.Error("caller's events should not be enriched in place")
	}
}

// ============================================================================
// METADATA
// ============================================================================

func TestTable_Metadata(t *testing.T) {
	table := sampleTable(t)

	if got, want := table.Seeds(), []string{"1", "2", "10"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Seeds() = %v, want %v", got, want)
	}
	if got, want := table.MessageTypes(), []string{"APP", "SYNC"}; !reflect.DeepEqual(got, want) {
		t.Errorf("MessageTypes() = %v, want %v", got, want)
	}
	if got, want := table.Strategies(), []string{"OPTI", "PESS", "EAGER"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Strategies() = %v, want %v", got, want)
	}
	if table.Len() != 5 {
		t.Errorf("Len() = %d, want 5", table.Len())
	}
	if table.ID() == "" {
		t.Error("ID() should not be empty")
	}
	if got := len(table.Columns()); got != 14 {
		t.Errorf("Columns() has %d keys, want 14", got)
	}
}

func TestTable_StrategiesMapPrunesUnusedCodes(t *testing.T) {
	table := sampleTable(t)
	want := map[string]string{"EAGER": "Eager", "OPTI": "Optimistic", "PESS": "Pessimistic"}
	if got := table.StrategiesMap(); !reflect.DeepEqual(got, want) {
		t.Errorf("StrategiesMap() = %v, want %v", got, want)
	}

	table.StrategiesMap()["STRAW"] = "Strawman"
	if _, ok := table.StrategiesMap()["STRAW"]; ok {
		t.Error("StrategiesMap() should return a copy")
	}
}

func TestTable_FailureDomain(t *testing.T) {
	table := sampleTable(t)
	d := table.FailureDomain()

	if want := []float64{0.1, 0.2, 0.3}; !reflect.DeepEqual(d.Values, want) {
		t.Errorf("Values = %v, want %v", d.Values, want)
	}
	if d.Min != 0 {
		t.Errorf("Min = %v, want 0", d.Min)
	}
	if d.Max != 0.3 {
		t.Errorf("Max = %v, want 0.3", d.Max)
	}
	if d.Step != 0.1 {
		t.Errorf("Step = %v, want 0.1", d.Step)
	}
}

func TestFailureDomain_SingleValue(t *testing.T) {
	d := newFailureDomain([]float64{0.5})
	if d.Step != 0 || d.Min != 0 || d.Max != 0.5 {
		t.Errorf("unexpected domain %+v", d)
	}
}

func TestFailureDomain_WithinAndSnap(t *testing.T) {
	d := newFailureDomain([]float64{0, 0.00005, 0.0001})

	if got := d.Within(0, 0.00005); !reflect.DeepEqual(got, []float64{0, 0.00005}) {
		t.Errorf("Within = %v", got)
	}
	if got := d.Within(0.0001, 0); len(got) != 0 {
		t.Errorf("inverted interval should select nothing, got %v", got)
	}

	lo, hi, ok := d.Snap(0.00001, 0.0002)
	if !ok || lo != 0.00005 || hi != 0.0001 {
		t.Errorf("Snap = (%v, %v, %v)", lo, hi, ok)
	}
	if _, _, ok := d.Snap(0.00001, 0.00002); ok {
		t.Error("Snap over a gap should report !ok")
	}
}

func TestTable_Runs(t *testing.T) {
	table := sampleTable(t)
	want := []RunSummary{
		{Seed: "1", Strategy: "OPTI", SimulationLength: 6, TotalWork: 20, AverageFailureTime: 0.1, Completeness: 0.8},
		{Seed: "2", Strategy: "PESS", SimulationLength: 4, TotalWork: 15, AverageFailureTime: 0.2, Completeness: 1},
		{Seed: "10", Strategy: "EAGER", SimulationLength: 2, TotalWork: 7, AverageFailureTime: 0.3, Completeness: 0.9},
	}
	if got := table.Runs(); !reflect.DeepEqual(got, want) {
		t.Errorf("Runs() =\n%+v\nwant\n%+v", got, want)
	}
}

func TestDefaultSelection(t *testing.T) {
	table := sampleTable(t)
	sel := DefaultSelection(table)

	if !sel.AllSeeds() {
		t.Error("default selection should include AllRuns")
	}
	if sel.FailureRange != [2]float64{0, 0.3} {
		t.Errorf("FailureRange = %v", sel.FailureRange)
	}
	if got := Filter(table, sel).Len(); got != table.Len() {
		t.Errorf("default selection kept %d of %d rows", got, table.Len())
	}
}

func TestDefaultSelection_KeepsEmptyMessageType(t *testing.T) {
	table, err := NewTable([]Event{
		{Seed: "1", MessageType: "APP", ReceiverAddress: "0", FailureHandling: "OPTI", AverageFailureTime: 0.1},
		{Seed: "1", MessageType: "", ReceiverAddress: "", FailureHandling: "OPTI", AverageFailureTime: 0.1},
	})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}

	if got := table.MessageTypes(); !reflect.DeepEqual(got, []string{"APP", ""}) {
		t.Errorf("MessageTypes = %q", got)
	}
	if got := Filter(table, DefaultSelection(table)).Len(); got != 2 {
		t.Errorf("default selection kept %d of 2 rows", got)
	}
	only := Selection{FailureRange: [2]float64{0, 0.1}, Seeds: []string{AllRuns}, MessageTypes: []string{""}}
	if got := Filter(table, only).Len(); got != 1 {
		t.Errorf("selecting the empty type kept %d rows, want 1", got)
	}

	res, err := Execute(table, DefaultSelection(table))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	msg := res.Timeline(MessageTimeline)
	if !reflect.DeepEqual(msg.YCategories, []string{"0", ""}) {
		t.Fatalf("YCategories = %q", msg.YCategories)
	}
	ys := map[float64]bool{}
	for _, s := range msg.Series {
		for _, p := range s.Points {
			ys[p.Y] = true
		}
	}
	if !ys[0] || !ys[1] {
		t.Errorf("empty address should get its own ordinal position, got %v", ys)
	}
}

func TestSeedOrdering(t *testing.T) {
	seeds := []string{"10", "b", "2", "a", "1"}
	SortSeeds(seeds)
	if want := []string{"1", "2", "10", "a", "b"}; !reflect.DeepEqual(seeds, want) {
		t.Errorf("SortSeeds = %v, want %v", seeds, want)
	}
}
