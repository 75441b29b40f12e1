package server

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/spektr-org/simtrace/engine"
)

// pointStyle renders points only, no connecting line.
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: 0,
		DotWidth:    4,
		DotColor:    col,
	}
}

// RenderTimeline draws a timeline as a point-only scatter PNG.
// An empty timeline, or one the chart library cannot lay out, is rendered
// as a blank image of the same size.
func RenderTimeline(w io.Writer, tl engine.Timeline, width, height int) error {
	if tl.Points == 0 {
		return writeBlank(w, width, height)
	}

	series := make([]chart.Series, 0, len(tl.Series))
	xMin, xMax := math.Inf(1), math.Inf(-1)
	yMin, yMax := math.Inf(1), math.Inf(-1)
	for _, s := range tl.Series {
		if len(s.Points) == 0 {
			continue
		}
		xs := make([]float64, len(s.Points))
		ys := make([]float64, len(s.Points))
		for i, p := range s.Points {
			xs[i], ys[i] = p.X, p.Y
			xMin, xMax = math.Min(xMin, p.X), math.Max(xMax, p.X)
			yMin, yMax = math.Min(yMin, p.Y), math.Max(yMax, p.Y)
		}
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style:   pointStyle(drawing.ColorFromHex(strings.TrimPrefix(s.Color, "#"))),
		})
	}

	xMin, xMax = padRange(xMin, xMax)
	yAxis := chart.YAxis{Name: tl.YAxis}
	if len(tl.YCategories) > 0 {
		// ordinal axis: one tick per address
		ticks := make([]chart.Tick, len(tl.YCategories))
		for i, c := range tl.YCategories {
			ticks[i] = chart.Tick{Value: float64(i), Label: c}
		}
		yAxis.Range = &chart.ContinuousRange{Min: -0.5, Max: float64(len(tl.YCategories)) - 0.5}
		yAxis.Ticks = ticks
	} else {
		yMin, yMax = padRange(yMin, yMax)
		yAxis.Range = &chart.ContinuousRange{Min: yMin, Max: yMax}
	}

	ch := chart.Chart{
		Title:      tl.Title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 24, Left: 16, Right: 12, Bottom: 28}},
		XAxis:      chart.XAxis{Name: tl.XAxis, Range: &chart.ContinuousRange{Min: xMin, Max: xMax}},
		YAxis:      yAxis,
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		slog.Warn("chart render failed, sending blank image", "timeline", tl.ID, "error", err)
		return writeBlank(w, width, height)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// padRange widens a degenerate range so the axis has a non-zero span.
func padRange(lo, hi float64) (float64, float64) {
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return 0, 1
	}
	if hi <= lo {
		return lo - 1, hi + 1
	}
	return lo, hi
}

func writeBlank(w io.Writer, width, height int) error {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode blank chart: %w", err)
	}
	return nil
}
