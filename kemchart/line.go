// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kemchart

import (
	"fmt"

	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Lines draws the raw samples of each field against the iteration
// index, one chart per field with one line per KEM. rows are in the
// row order of a kemfmt.Table.
//
// Charts are named prefix + field name + unit.
func Lines(rows [][]float64, kems, fields, units []string, prefix string, opts Options) ([]*Chart, error) {
	if err := opts.Check(); err != nil {
		return nil, fmt.Errorf("line chart: %v", err)
	}
	nFields := len(fields)
	if nFields == 0 || len(rows) != len(kems)*nFields {
		return nil, fmt.Errorf("line chart: %d rows for %d KEMs × %d fields", len(rows), len(kems), nFields)
	}
	if len(units) != nFields {
		return nil, fmt.Errorf("line chart: %d units for %d fields", len(units), nFields)
	}

	colors := palette(len(kems))
	var charts []*Chart
	for f, field := range fields {
		p := newPlot(field, units[f], opts)
		p.X.Label.Text = "Iteration"
		for k, kem := range kems {
			xys := lineXYs(rows[k*nFields+f], opts.LogScale)
			if len(xys) == 0 {
				continue
			}
			l, err := plotter.NewLine(xys)
			if err != nil {
				return nil, fmt.Errorf("line chart %s %s: %v", field, kem, err)
			}
			l.Color = colors[k]
			l.Width = vg.Points(1)
			p.Add(l)
			p.Legend.Add(kem, l)
		}
		if opts.LogScale {
			fixLogRange(p)
		}
		charts = append(charts, newChart(prefix+field+units[f], p, opts))
	}
	return charts, nil
}

// lineXYs returns the points of row, indexed by iteration. On a log
// scale, points that are not positive are dropped.
func lineXYs(row []float64, log bool) plotter.XYs {
	xys := make(plotter.XYs, 0, len(row))
	for i, v := range row {
		if log && !(v > 0) {
			continue
		}
		xys = append(xys, plotter.XY{X: float64(i), Y: v})
	}
	return xys
}
