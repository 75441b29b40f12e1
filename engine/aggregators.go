package engine

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ============================================================================
// AGGREGATORS — Grouping, Aggregation, and Sorting via RecordView
// ============================================================================
// All functions operate on RecordView for zero-copy access to any data source.
// Grouping produces SubViews (index lists into parent view).
// ============================================================================

// Aggregation reduces one measure over the rows of a group.
type Aggregation string

const (
	AggSum   Aggregation = "sum"
	AggCount Aggregation = "count"
	AggAvg   Aggregation = "avg"
	AggMax   Aggregation = "max"
	AggMin   Aggregation = "min"
)

// SortMode orders groups after aggregation.
type SortMode string

const (
	SortNone      SortMode = ""           // first-seen order
	SortSeed      SortMode = "seed_asc"   // integer seeds numerically, then lexically
	SortValueDesc SortMode = "value_desc" // largest aggregate first
)

// GroupSpec describes one grouping pass.
type GroupSpec struct {
	By      []string // one or two dimensions; none yields a single group
	Measure string
	Agg     Aggregation
	Sort    SortMode
	Limit   int // 0 = all groups
}

// GroupAndAggregate runs group → aggregate → sort → limit over a view.
// With two dimensions each group carries its sub-groups, aggregated the
// same way.
func GroupAndAggregate(view RecordView, spec GroupSpec) []Group {
	if view.Len() == 0 {
		return nil
	}

	var groups []Group
	switch len(spec.By) {
	case 0:
		groups = []Group{{Key: "all", Label: "Total", View: view}}
	case 1:
		groups = groupBySingle(view, spec.By[0])
	default:
		groups = groupBySingle(view, spec.By[0])
		for i := range groups {
			groups[i].SubGroups = groupBySingle(groups[i].View, spec.By[1])
		}
	}

	for i := range groups {
		groups[i].Count, groups[i].Value = aggregate(groups[i].View, spec.Measure, spec.Agg)
		for j := range groups[i].SubGroups {
			sg := &groups[i].SubGroups[j]
			sg.Count, sg.Value = aggregate(sg.View, spec.Measure, spec.Agg)
		}
	}

	SortGroups(groups, spec.Sort)
	if spec.Limit > 0 && len(groups) > spec.Limit {
		groups = groups[:spec.Limit]
	}
	return groups
}

// ============================================================================
// GROUPING
// ============================================================================

// groupBySingle partitions rows by one dimension in first-seen key order.
func groupBySingle(view RecordView, dimension string) []Group {
	index := make(map[string]int)
	var groups []Group
	rows := make([][]int, 0)

	for i := 0; i < view.Len(); i++ {
		key := view.Dimension(i, dimension)
		g, ok := index[key]
		if !ok {
			g = len(groups)
			index[key] = g
			groups = append(groups, Group{Key: key, Label: key})
			rows = append(rows, nil)
		}
		rows[g] = append(rows[g], i)
	}

	for g := range groups {
		groups[g].View = newSubView(view, rows[g])
	}
	return groups
}

// ============================================================================
// AGGREGATION
// ============================================================================

func aggregate(view RecordView, measure string, agg Aggregation) (int, float64) {
	n := view.Len()
	if n == 0 {
		return 0, 0
	}
	switch agg {
	case AggCount:
		return n, float64(n)
	case AggAvg:
		return n, AvgMeasure(view, measure)
	case AggMax:
		return n, MaxMeasure(view, measure)
	case AggMin:
		return n, MinMeasure(view, measure)
	default:
		return n, SumMeasure(view, measure)
	}
}

// SumMeasure sums a named measure across a view.
func SumMeasure(view RecordView, measure string) float64 {
	var total float64
	for i := 0; i < view.Len(); i++ {
		total += view.Measure(i, measure)
	}
	return total
}

// AvgMeasure computes average of a named measure.
func AvgMeasure(view RecordView, measure string) float64 {
	n := view.Len()
	if n == 0 {
		return 0
	}
	return SumMeasure(view, measure) / float64(n)
}

// MaxMeasure returns the largest value of a named measure.
func MaxMeasure(view RecordView, measure string) float64 {
	n := view.Len()
	if n == 0 {
		return 0
	}
	m := math.Inf(-1)
	for i := 0; i < n; i++ {
		if v := view.Measure(i, measure); v > m {
			m = v
		}
	}
	return m
}

// MinMeasure returns the smallest value of a named measure.
func MinMeasure(view RecordView, measure string) float64 {
	n := view.Len()
	if n == 0 {
		return 0
	}
	m := math.Inf(1)
	for i := 0; i < n; i++ {
		if v := view.Measure(i, measure); v < m {
			m = v
		}
	}
	return m
}

// ============================================================================
// RUN SUMMARY
// ============================================================================

// SummarizeRuns groups a view by (seed, strategy) and keeps the peak of
// simulation length, total work, failure rate and completeness per run.
// The failure rate is re-rounded to 5 decimals. Runs are ordered by seed,
// then strategy.
func SummarizeRuns(view RecordView) []RunSummary {
	if view.Len() == 0 {
		return nil
	}

	groups := GroupAndAggregate(view, GroupSpec{
		By:      []string{ColSeed, ColStrategy},
		Measure: ColSimulationLength,
		Agg:     AggMax,
	})
	runs := make([]RunSummary, 0, len(groups))
	for _, g := range groups {
		for _, sg := range g.SubGroups {
			runs = append(runs, RunSummary{
				Seed:               g.Key,
				Strategy:           sg.Key,
				SimulationLength:   sg.Value,
				TotalWork:          MaxMeasure(sg.View, ColTotalWork),
				AverageFailureTime: RoundTo(MaxMeasure(sg.View, ColAverageFailureTime), 5),
				Completeness:       MaxMeasure(sg.View, ColCompleteness),
			})
		}
	}

	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].Seed != runs[j].Seed {
			return seedLess(runs[i].Seed, runs[j].Seed)
		}
		return runs[i].Strategy < runs[j].Strategy
	})
	return runs
}

// ============================================================================
// SORTING
// ============================================================================

// SortGroups orders groups in place. SortNone keeps grouping order.
func SortGroups(groups []Group, mode SortMode) {
	switch mode {
	case SortSeed:
		sort.SliceStable(groups, func(i, j int) bool { return seedLess(groups[i].Key, groups[j].Key) })
	case SortValueDesc:
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Value > groups[j].Value })
	}
}

// seedLess orders integer seeds numerically and falls back to string order.
func seedLess(a, b string) bool {
	ai, errA := strconv.ParseInt(a, 10, 64)
	bi, errB := strconv.ParseInt(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		return ai < bi
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}

// SortSeeds sorts seed identifiers in place (numeric seeds first, numerically).
func SortSeeds(seeds []string) {
	sort.SliceStable(seeds, func(i, j int) bool { return seedLess(seeds[i], seeds[j]) })
}

// ============================================================================
// FORMATTING UTILITIES
// ============================================================================

// RoundTo rounds v to the given number of decimal places using decimal
// arithmetic, so 0.1+0.2 and 0.3 round to the same float.
func RoundTo(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// FormatNumber renders a float without exponent or trailing zeros.
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return decimal.NewFromFloat(v).String()
}

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s,%03d", FormatInt(n/1000), n%1000)
}

// UniqueValues returns distinct values for a dimension across a view, in
// first-seen order. An empty value is a label of its own.
func UniqueValues(view RecordView, dimension string) []string {
	seen := make(map[string]bool)
	var result []string
	for i := 0; i < view.Len(); i++ {
		val := view.Dimension(i, dimension)
		if !seen[val] {
			seen[val] = true
			result = append(result, val)
		}
	}
	return result
}

// UniqueMeasures returns the sorted distinct values of a measure.
func UniqueMeasures(view RecordView, measure string) []float64 {
	seen := make(map[float64]bool)
	var result []float64
	for i := 0; i < view.Len(); i++ {
		v := view.Measure(i, measure)
		if math.IsNaN(v) || seen[v] {
			continue
		}
		seen[v] = true
		result = append(result, v)
	}
	sort.Float64s(result)
	return result
}

// LabelForDimension returns a display label for a column key.
// "total_bandwidth" → "Total Bandwidth"
func LabelForDimension(dimension string) string {
	if len(dimension) == 0 {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(dimension, "_", " "))
}
