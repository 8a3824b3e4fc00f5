package app

import (
	"bytes"
	"fmt"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	msg "github.com/LeonardoBeccarini/iot_dashboard/internal/model/messages"
	"github.com/LeonardoBeccarini/iot_dashboard/internal/services/dashboard/view"
)

const (
	chartWidth  = 900
	chartHeight = 360

	chartEmptyHTML = `<p class="loading">No chart data</p>`
)

var (
	lineColor = drawing.ColorFromHex("3b82f6")
	fillColor = drawing.Color{R: 59, G: 130, B: 246, A: 26}
)

// Chart is one rendered line chart. A destroyed chart drops its markup.
type Chart struct {
	Labels    []string
	Values    []*float64
	SVG       string
	destroyed bool
}

func (c *Chart) Destroyed() bool { return c.destroyed }

func (c *Chart) destroy() {
	c.SVG = ""
	c.destroyed = true
}

// ChartRenderer holds the single live chart instance.
type ChartRenderer struct {
	width, height int
	current       *Chart
	destroyed     int
}

func NewChartRenderer(width, height int) *ChartRenderer {
	if width <= 0 {
		width = chartWidth
	}
	if height <= 0 {
		height = chartHeight
	}
	return &ChartRenderer{width: width, height: height}
}

func (r *ChartRenderer) Current() *Chart { return r.current }

// Destroyed counts the instances released so far.
func (r *ChartRenderer) Destroyed() int { return r.destroyed }

// Update releases the previous chart and renders a new one from rows. The new
// chart is kept even when rendering fails, with empty markup.
func (r *ChartRenderer) Update(rows []msg.HistoricalPoint) (*Chart, error) {
	if r.current != nil {
		r.current.destroy()
		r.destroyed++
		r.current = nil
	}

	c := &Chart{Labels: make([]string, len(rows)), Values: make([]*float64, len(rows))}
	for i, p := range rows {
		c.Labels[i] = p.FormattedTime
		c.Values[i] = p.Value
	}
	r.current = c

	svg, err := r.render(c)
	if err != nil {
		return c, err
	}
	c.SVG = svg
	return c, nil
}

func (r *ChartRenderer) render(c *Chart) (string, error) {
	ticks := make([]chart.Tick, 0, len(c.Labels))
	var xs, ys []float64
	maxY := 0.0
	for i, label := range c.Labels {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: label})
		if c.Values[i] == nil {
			continue
		}
		xs = append(xs, float64(i))
		ys = append(ys, *c.Values[i])
		if *c.Values[i] > maxY {
			maxY = *c.Values[i]
		}
	}
	if len(xs) == 0 {
		return "", nil
	}
	if maxY <= 0 {
		maxY = 1
	}
	maxX := float64(len(c.Labels) - 1)
	if maxX < 1 {
		maxX = 1
	}

	graph := chart.Chart{
		Width:      r.width,
		Height:     r.height,
		Background: chart.Style{Padding: chart.Box{Top: 30, Left: 20, Right: 20, Bottom: 20}},
		XAxis: chart.XAxis{
			Range:     &chart.ContinuousRange{Min: 0, Max: maxX},
			Ticks:     ticks,
			TickStyle: chart.Style{TextRotationDegrees: 45},
		},
		YAxis: chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: maxY}},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Sensor Value",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: lineColor,
					FillColor:   fillColor,
					StrokeWidth: 3,
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.SVG, &buf); err != nil {
		return "", fmt.Errorf("chart render: %w", err)
	}
	return buf.String(), nil
}

// UpdateChart redraws the history chart from rows.
func (d *Dashboard) UpdateChart(rows []msg.HistoricalPoint) {
	d.do(func() { d.updateChart(rows) })
}

func (d *Dashboard) updateChart(rows []msg.HistoricalPoint) {
	c, err := d.chart.Update(rows)
	if err != nil {
		d.log.Printf("dashboard: %v", err)
	}
	if c.SVG == "" {
		d.doc.SetHTML(view.HistoryChart, chartEmptyHTML)
		return
	}
	d.doc.SetHTML(view.HistoryChart, c.SVG)
}
