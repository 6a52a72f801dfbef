package chart

import (
	"bytes"
	"time"

	"overwatch-tracker/internal/constants"
	"overwatch-tracker/internal/domain"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

type roleLine struct {
	name string
	x    []time.Time
	y    []float64
}

var roleLabels = map[string]string{
	domain.RoleTank:    "Tank",
	domain.RoleDamage:  "Damage",
	domain.RoleSupport: "Support",
}

// buildLines turns an already time-ordered history into one point list per
// role. A role gains a point only when its level differs from the last
// plotted point for that role, so an unchanged run of N snapshots collapses
// to a single vertex. Absent levels are omitted. Roles are independent: one
// role's unchanged run never suppresses another role's change.
func buildLines(history []domain.RankSnapshot) []roleLine {
	var lines []roleLine
	for _, role := range domain.Roles {
		line := roleLine{name: roleLabels[role]}
		var lastPlotted *int
		for _, snap := range history {
			level := snap.Level(role)
			if level == nil {
				continue
			}
			if lastPlotted != nil && *lastPlotted == *level {
				continue
			}
			line.x = append(line.x, snap.ObservedAt)
			line.y = append(line.y, float64(*level))
			lastPlotted = level
		}
		if len(line.x) > 0 {
			lines = append(lines, line)
		}
	}
	return lines
}

// Render produces a PNG line chart of a user's rank history, one series per
// role. The input is assumed ascending by observation time and is never
// re-sorted here.
func Render(history []domain.RankSnapshot, label string) ([]byte, error) {
	lines := buildLines(history)

	// A line chart needs at least two vertices spanning a non-zero time
	// range; go-chart rejects a zero x-range. Collapse can produce one,
	// e.g. when a role disappears and every surviving vertex sits at the
	// baseline timestamp.
	points := 0
	var firstX time.Time
	spansRange := false
	for _, line := range lines {
		for _, x := range line.x {
			if points == 0 {
				firstX = x
			} else if !x.Equal(firstX) {
				spansRange = true
			}
			points++
		}
	}
	if points < 2 || !spansRange {
		return renderPlaceholder(label)
	}

	series := make([]chart.Series, 0, len(lines))
	for _, line := range lines {
		series = append(series, chart.TimeSeries{
			Name:    line.name,
			XValues: line.x,
			YValues: line.y,
			Style: chart.Style{
				StrokeWidth: 2,
				DotWidth:    4,
			},
		})
	}

	graph := chart.Chart{
		Title:  label,
		Width:  constants.ChartWidth,
		Height: constants.ChartHeight,
		XAxis: chart.XAxis{
			Name:           "Time",
			ValueFormatter: chart.TimeValueFormatterWithFormat("02-01"),
		},
		YAxis: chart.YAxis{
			Name: "Rank in SR",
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// renderPlaceholder covers histories with too few plottable points for a
// line chart (fresh links, fully private history).
func renderPlaceholder(label string) ([]byte, error) {
	const msg = "Not enough rank history yet"

	graph := chart.Chart{
		Title:  label,
		Width:  400,
		Height: 200,
		// Render refuses a chart without any visible series; a flat
		// background-colored line anchors the canvas without showing.
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: []float64{0, 1},
				YValues: []float64{0, 0},
				Style:   chart.Style{StrokeColor: drawing.ColorWhite},
			},
		},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, chartDefaults chart.Style) {
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				x := (cb.Width() - tb.Width()) / 2
				y := (cb.Height() + tb.Height()) / 2
				r.Text(msg, x, y)
			},
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
