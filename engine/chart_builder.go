package engine

// ============================================================================
// TIMELINE BUILDER — Produces Timeline projections from a filtered view
// ============================================================================
// Every projection plots one point per event along arrival_time. Points are
// split into series by the colour column. Categorical Y columns (addresses)
// are mapped onto ordinal positions with the labels in YCategories.
// ============================================================================

// Default color palette for timeline series.
var defaultColors = []string{
	"#636EFA", "#EF553B", "#00CC96", "#AB63FA", "#FFA15A",
	"#19D3F3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
}

// timelineSpec declares one projection.
type timelineSpec struct {
	ID          string
	Title       string
	X           string
	Y           string
	Color       string
	HoverFields []string
}

var addressHover = []string{ColReceiverAddress, ColEmitterAddress, ColSeed}

// timelineSpecs lists the projections to build for the given Y axis column.
func timelineSpecs(yColumn string, latencies bool) []timelineSpec {
	specs := []timelineSpec{
		{
			ID:    MessageTimeline,
			Title: "Message timeline",
			X:     ColArrivalTime,
			Y:     yColumn,
			Color: ColMessageType,
			HoverFields: []string{
				ColArrivalTime, ColDepartureTime,
				ColReceiverAddress, ColEmitterAddress, ColSeed,
			},
		},
		{
			ID:          BandwidthTimeline,
			Title:       "Bandwidth timeline",
			X:           ColArrivalTime,
			Y:           ColTotalBandwidth,
			Color:       ColSeed,
			HoverFields: addressHover,
		},
		{
			ID:          WorkTimeline,
			Title:       "Work timeline",
			X:           ColArrivalTime,
			Y:           ColTotalWork,
			Color:       ColSeed,
			HoverFields: addressHover,
		},
	}
	if latencies {
		specs = append(specs, timelineSpec{
			ID:          LatencyTimeline,
			Title:       "Message latencies",
			X:           ColArrivalTime,
			Y:           ColLatency,
			Color:       ColMessageType,
			HoverFields: []string{ColArrivalTime, ColDepartureTime, ColEmitterAddress, ColSeed},
		})
	}
	return specs
}

// buildTimeline projects a view onto a scatter timeline.
// maxPoints > 0 caps the number of points kept per series.
func buildTimeline(spec timelineSpec, view RecordView, maxPoints int) Timeline {
	tl := Timeline{
		ID:          spec.ID,
		Title:       spec.Title,
		X:           spec.X,
		Y:           spec.Y,
		Color:       spec.Color,
		HoverName:   ColMessageType,
		HoverFields: spec.HoverFields,
		XAxis:       LabelForDimension(spec.X),
		YAxis:       LabelForDimension(spec.Y),
		Series:      []Series{},
	}

	dims := toSet(view.DimensionKeys())
	categorical := dims[spec.Y]

	var position map[string]int
	if categorical {
		tl.YCategories = UniqueValues(view, spec.Y)
		SortSeeds(tl.YCategories)
		position = make(map[string]int, len(tl.YCategories))
		for i, c := range tl.YCategories {
			position[c] = i
		}
	}

	groups := groupBySingle(view, spec.Color)
	if spec.Color == ColSeed {
		SortGroups(groups, SortSeed)
	}

	for gi, g := range groups {
		points := make([]Point, 0, g.View.Len())
		for i := 0; i < g.View.Len(); i++ {
			p := Point{
				X:     g.View.Measure(i, spec.X),
				Name:  g.View.Dimension(i, ColMessageType),
				Hover: hoverValues(g.View, i, spec.HoverFields, dims),
			}
			if categorical {
				p.YLabel = g.View.Dimension(i, spec.Y)
				p.Y = float64(position[p.YLabel])
			} else {
				p.Y = g.View.Measure(i, spec.Y)
			}
			points = append(points, p)
		}

		points = downsample(points, maxPoints)
		tl.Points += len(points)
		tl.Series = append(tl.Series, Series{
			Name:   g.Key,
			Color:  defaultColors[gi%len(defaultColors)],
			Points: points,
		})
	}

	return tl
}

func hoverValues(view RecordView, i int, fields []string, dims map[string]bool) map[string]string {
	hover := make(map[string]string, len(fields))
	for _, f := range fields {
		if dims[f] {
			hover[f] = view.Dimension(i, f)
		} else {
			hover[f] = FormatNumber(view.Measure(i, f))
		}
	}
	return hover
}

// downsample keeps at most limit points, evenly spaced, always keeping the
// first and last.
func downsample(points []Point, limit int) []Point {
	n := len(points)
	if limit <= 0 || n <= limit {
		return points
	}
	if limit == 1 {
		return points[:1]
	}

	out := make([]Point, 0, limit)
	step := float64(n-1) / float64(limit-1)
	for i := 0; i < limit; i++ {
		out = append(out, points[int(float64(i)*step+0.5)])
	}
	return out
}
