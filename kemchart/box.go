// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kemchart

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// BoxOptions control box charts.
type BoxOptions struct {
	Options

	// KEMs lists the indexes of the KEMs to draw, in order.
	// If nil, every KEM is drawn.
	KEMs []int
}

// Boxes draws a box-and-whisker chart of every field of the selected
// KEMs. rows are in the row order of a kemfmt.Table.
//
// The box of field j of the KEM with index k sits at x = k*len(fields) + j
// and is labelled with the field name; KEMs are told apart by color.
// The y axis is labelled with the distinct units.
// The chart is named name.
func Boxes(rows [][]float64, kems, fields, units []string, name string, opts BoxOptions) (*Chart, error) {
	if err := opts.Check(); err != nil {
		return nil, fmt.Errorf("box chart: %v", err)
	}
	nFields := len(fields)
	if nFields == 0 || len(rows) != len(kems)*nFields {
		return nil, fmt.Errorf("box chart: %d rows for %d KEMs × %d fields", len(rows), len(kems), nFields)
	}
	sel := opts.KEMs
	if sel == nil {
		sel = make([]int, len(kems))
		for k := range sel {
			sel[k] = k
		}
	}
	if len(sel) == 0 {
		return nil, fmt.Errorf("box chart: no KEMs selected")
	}

	p := newPlot("", unitLabel(units), opts.Options)
	colors := palette(len(kems))
	var ticks []plot.Tick
	for _, k := range sel {
		if k < 0 || k >= len(kems) {
			return nil, fmt.Errorf("box chart: KEM index %d out of range [0, %d)", k, len(kems))
		}
		for j, field := range fields {
			row := rows[k*nFields+j]
			if len(row) == 0 {
				return nil, fmt.Errorf("box chart: %s %s has no samples", kems[k], field)
			}
			if opts.LogScale && !allPositive(row) {
				return nil, fmt.Errorf("box chart: %s %s has values that are not positive, cannot use a log scale", kems[k], field)
			}
			loc := float64(k*nFields + j)
			b, err := plotter.NewBoxPlot(vg.Points(20), loc, plotter.Values(row))
			if err != nil {
				return nil, fmt.Errorf("box chart: %s %s: %v", kems[k], field, err)
			}
			b.BoxStyle.Color = colors[k]
			b.MedianStyle.Color = colors[k]
			b.WhiskerStyle.Color = colors[k]
			// Outliers are not marked.
			b.GlyphStyle.Radius = 0
			p.Add(b)
			ticks = append(ticks, plot.Tick{Value: loc, Label: field})
		}
		p.Legend.Add(kems[k], swatch{colors[k]})
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	if opts.LogScale {
		fixLogRange(p)
	}
	return newChart(name, p, opts.Options), nil
}

func allPositive(vs []float64) bool {
	for _, v := range vs {
		if !(v > 0) {
			return false
		}
	}
	return true
}
