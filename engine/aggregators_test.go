package engine

import (
	"reflect"
	"testing"
)

func TestGroupAndAggregate(t *testing.T) {
	view := NewEventView(sampleEvents())

	bySeed := GroupAndAggregate(view, GroupSpec{By: []string{ColSeed}, Measure: ColTotalWork, Agg: AggCount, Sort: SortSeed})
	var keys []string
	for _, g := range bySeed {
		keys = append(keys, g.Key)
	}
	if !reflect.DeepEqual(keys, []string{"1", "2", "10"}) {
		t.Errorf("seed order = %v", keys)
	}

	total := GroupAndAggregate(view, GroupSpec{Measure: ColTotalWork, Agg: AggSum})
	if len(total) != 1 || total[0].Count != view.Len() {
		t.Fatalf("expected one group over every row, got %+v", total)
	}
	if total[0].Value != SumMeasure(view, ColTotalWork) {
		t.Errorf("sum = %v", total[0].Value)
	}

	top := GroupAndAggregate(view, GroupSpec{By: []string{ColSeed}, Measure: ColTotalWork, Agg: AggMax, Sort: SortValueDesc, Limit: 1})
	if len(top) != 1 {
		t.Fatalf("limit ignored: %d groups", len(top))
	}
	for _, g := range bySeed {
		if MaxMeasure(g.View, ColTotalWork) > top[0].Value {
			t.Errorf("group %s exceeds the top group", g.Key)
		}
	}

	if GroupAndAggregate(newSubView(view, nil), GroupSpec{By: []string{ColSeed}}) != nil {
		t.Error("empty view should give no groups")
	}
}

func TestGroupAndAggregate_SubGroups(t *testing.T) {
	view := NewEventView(sampleEvents())
	groups := GroupAndAggregate(view, GroupSpec{By: []string{ColSeed, ColMessageType}, Agg: AggCount})

	for _, g := range groups {
		n := 0
		for _, sg := range g.SubGroups {
			n += sg.Count
		}
		if n != g.Count {
			t.Errorf("seed %s: sub-groups hold %d of %d rows", g.Key, n, g.Count)
		}
	}
}

func TestSortSeeds(t *testing.T) {
	seeds := []string{"10", "b", "2", "a", "1"}
	SortSeeds(seeds)
	if want := []string{"1", "2", "10", "a", "b"}; !reflect.DeepEqual(seeds, want) {
		t.Errorf("got %v, want %v", seeds, want)
	}
}

func TestRoundTo(t *testing.T) {
	if got := RoundTo(0.1+0.2, 6); got != 0.3 {
		t.Errorf("RoundTo(0.1+0.2, 6) = %v", got)
	}
	if got := RoundTo(0.1234567, 5); got != 0.12346 {
		t.Errorf("RoundTo(0.1234567, 5) = %v", got)
	}
	if got := FormatNumber(2.50); got != "2.5" {
		t.Errorf("FormatNumber(2.50) = %q", got)
	}
	if got := LabelForDimension(ColTotalBandwidth); got != "Total Bandwidth" {
		t.Errorf("LabelForDimension = %q", got)
	}
}
