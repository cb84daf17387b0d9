// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kemchart

import (
	"fmt"
	"math"

	"github.com/pqcbench/kemperf/kemstat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Bars draws bar charts of statistics, one chart per statistic in
// kemstat.Names. recs holds one record per (KEM, field) pair, in the
// row order of a kemfmt.Table, and units gives the unit of each field.
//
// Each chart has one bar group per KEM and one bar per field. With
// opts.GroupBy set to GroupByField, each field instead gets a chart of
// its own, labelled with that field's unit.
//
// Charts are named prefix + statistic name, with the field name
// appended when charts are split by field.
func Bars(recs []kemstat.Record, kems, fields, units []string, prefix string, opts Options) ([]*Chart, error) {
	if err := opts.Check(); err != nil {
		return nil, fmt.Errorf("bar chart: %v", err)
	}
	nFields := len(fields)
	if len(kems) == 0 {
		return nil, fmt.Errorf("bar chart: no KEMs")
	}
	if nFields == 0 || len(recs) != len(kems)*nFields {
		return nil, fmt.Errorf("bar chart: %d records for %d KEMs × %d fields", len(recs), len(kems), nFields)
	}
	if len(units) != nFields {
		return nil, fmt.Errorf("bar chart: %d units for %d fields", len(units), nFields)
	}

	var charts []*Chart
	for s, stat := range kemstat.Names {
		col := kemstat.Column(recs, s)
		// byField[f][k] is statistic s of field f for KEM k.
		byField := make([]plotter.Values, nFields)
		for f := range fields {
			byField[f] = make(plotter.Values, len(kems))
			for k := range kems {
				byField[f][k] = col[k*nFields+f]
			}
		}

		if opts.GroupBy == GroupByField {
			for f, field := range fields {
				p, err := barPlot(stat, units[f], kems, fields[f:f+1], byField[f:f+1], opts)
				if err != nil {
					return nil, fmt.Errorf("bar chart %s %s: %v", stat, field, err)
				}
				charts = append(charts, newChart(prefix+stat+field, p, opts))
			}
			continue
		}
		p, err := barPlot(stat, unitLabel(units), kems, fields, byField, opts)
		if err != nil {
			return nil, fmt.Errorf("bar chart %s: %v", stat, err)
		}
		charts = append(charts, newChart(prefix+stat, p, opts))
	}
	return charts, nil
}

var (
	barWidth   = vg.Points(12)
	barSpacing = vg.Points(1)
)

// barPlot draws one bar group per KEM with a bar for each series.
func barPlot(title, ylabel string, kems, series []string, values []plotter.Values, opts Options) (*plot.Plot, error) {
	p := newPlot(title, ylabel, opts)
	colors := palette(len(series))

	// Width of a bar group, center to center of its outer bars.
	groupWidth := (barWidth + barSpacing) * vg.Length(len(series)-1)
	for i, name := range series {
		bc, err := plotter.NewBarChart(values[i], barWidth)
		if err != nil {
			return nil, err
		}
		bc.Offset = (barWidth+barSpacing)*vg.Length(i) - groupWidth/2
		bc.Color = colors[i]
		bc.LineStyle.Width = 0
		b := &bars{BarChart: bc, log: opts.LogScale}
		p.Add(b)
		p.Legend.Add(name, b)
	}
	p.NominalX(kems...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	if opts.LogScale {
		fixLogRange(p)
	}
	return p, nil
}

// bars is a bar chart that can be drawn on a log-scaled y axis, where
// bars rise from the bottom of the axis instead of from zero.
type bars struct {
	*plotter.BarChart
	log bool
}

// DataRange implements the plot.DataRanger interface.
func (b *bars) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin, xmax, ymin, ymax = b.BarChart.DataRange()
	if b.log {
		ymin, ymax = positiveRange(b.Values)
		ymin = decadeBelow(ymin)
	}
	return xmin, xmax, ymin, ymax
}

// decadeBelow returns the largest power of ten strictly below v, so
// that the smallest bar on a log axis still has a height.
func decadeBelow(v float64) float64 {
	if !(v > 0) || math.IsInf(v, 0) {
		return v
	}
	d := math.Pow(10, math.Floor(math.Log10(v)))
	if d >= v {
		d /= 10
	}
	return d
}

// Plot implements the plot.Plotter interface.
func (b *bars) Plot(c draw.Canvas, plt *plot.Plot) {
	if !b.log {
		b.BarChart.Plot(c, plt)
		return
	}
	trX, trY := plt.Transforms(&c)
	bottom := trY(plt.Y.Min)
	for i, v := range b.Values {
		if !(v > 0) {
			continue
		}
		x := trX(b.XMin+float64(i)) + b.Offset
		if !c.ContainsX(x) {
			continue
		}
		top := trY(v)
		pts := []vg.Point{
			{X: x - b.Width/2, Y: bottom},
			{X: x - b.Width/2, Y: top},
			{X: x + b.Width/2, Y: top},
			{X: x + b.Width/2, Y: bottom},
		}
		if b.Color != nil {
			c.FillPolygon(b.Color, c.ClipPolygonY(pts))
		}
		if b.LineStyle.Width > 0 {
			c.StrokeLines(b.LineStyle, c.ClipLinesY(append(pts, pts[0]))...)
		}
	}
}
