package engine

// ============================================================================
// FILTERS — Column-Based Filtering via RecordView
// ============================================================================
// Single-pass filter: checks ALL column constraints per record in one loop.
// Returns a SubView (index list into parent) with zero data copy, the parent is
// never modified.
// ============================================================================

// ApplyFilters returns a view of records matching all column filters.
// Columns are AND-combined; values within a column are OR-combined.
// Empty filter = no restriction (returns original view).
func ApplyFilters(view RecordView, filters Filters) RecordView {
	if filters.IsEmpty() {
		return view
	}

	dimSets := make(map[string]map[string]bool, len(filters.Dimensions))
	for dim, allowed := range filters.Dimensions {
		dimSets[dim] = toSet(allowed)
	}
	mesSets := make(map[string]map[float64]bool, len(filters.Measures))
	for mes, allowed := range filters.Measures {
		set := make(map[float64]bool, len(allowed))
		for _, v := range allowed {
			set[v] = true
		}
		mesSets[mes] = set
	}

	// Single pass: a record passes if it matches ALL column filters
	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if matches(view, i, dimSets, mesSets) {
			indices = append(indices, i)
		}
	}

	return newSubView(view, indices)
}

func matches(view RecordView, i int, dimSets map[string]map[string]bool, mesSets map[string]map[float64]bool) bool {
	for dim, set := range dimSets {
		if !set[view.Dimension(i, dim)] {
			return false
		}
	}
	for mes, set := range mesSets {
		if !set[view.Measure(i, mes)] {
			return false
		}
	}
	return true
}

// Filter applies a widget selection to the table and returns the view of
// retained rows. The table itself is never modified.
//
// A row is retained iff its failure rate is one of the observed rates inside
// the closed FailureRange, its seed is selected (or AllRuns is), and its
// message type is selected.
func Filter(table *Table, sel Selection) RecordView {
	return ApplyFilters(table.View(), SelectionFilters(table.FailureDomain(), sel))
}

// SelectionFilters translates a Selection into column Filters against the
// given failure-rate domain.
func SelectionFilters(domain FailureDomain, sel Selection) Filters {
	f := Filters{
		Dimensions: map[string][]string{
			ColMessageType: sel.MessageTypes,
		},
		Measures: map[string][]float64{
			ColAverageFailureTime: domain.Within(sel.FailureRange[0], sel.FailureRange[1]),
		},
	}
	if !sel.AllSeeds() {
		f.Dimensions[ColSeed] = sel.Seeds
	}
	return f
}

// toSet converts a string slice to a lookup set. Matching is exact: message
// types and seeds are identifiers.
func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
