// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pipeline turns raw KEM measurement files into statistics
// files and charts.
//
// Each performance variable is analyzed independently: its input is
// parsed, reduced to statistics and charted entirely in memory by
// Analyze, and only then published. A variable whose analysis fails
// publishes nothing.
package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pqcbench/kemperf/kemchart"
	"github.com/pqcbench/kemperf/kemfmt"
	"github.com/pqcbench/kemperf/kemstat"
	"github.com/pqcbench/kemperf/storage/db"
	"github.com/pqcbench/kemperf/storage/fs"
)

// A Result is the analysis of one variable.
type Result struct {
	Variable *Variable
	Table    *kemfmt.Table

	// Fields and Units label the statistics, one per field.
	Fields []string
	Units  []string

	// Stats holds one record per row of Table.
	Stats []kemstat.Record

	Charts []*kemchart.Chart

	// files are the rendered statistics file and charts, in
	// publishing order.
	files []file
}

// A file is a rendered artifact waiting to be published.
type file struct {
	name        string
	contentType string
	data        []byte
}

// Analyze reads the input of v, computes its statistics and renders
// its statistics file and charts in memory. It writes nothing.
func Analyze(v *Variable) (*Result, error) {
	res, err := analyze(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", v.Name, err)
	}
	return res, nil
}

func analyze(v *Variable) (*Result, error) {
	tab, err := v.load()
	if err != nil {
		return nil, err
	}
	fields, err := fieldLabels("field labels", v.Fields, tab.FieldNames())
	if err != nil {
		return nil, err
	}
	lineFields, err := fieldLabels("line field labels", v.LineFields, fields)
	if err != nil {
		return nil, err
	}
	units, err := fieldLabels("units", spread(v.Units, len(tab.Fields)), tab.Units())
	if err != nil {
		return nil, err
	}
	stats, err := kemstat.Compute(tab.Rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", v.Input, err)
	}

	res := &Result{
		Variable: v,
		Table:    tab,
		Fields:   fields,
		Units:    units,
		Stats:    stats,
	}
	if v.BarPrefix != "" {
		charts, err := kemchart.Bars(stats, tab.KEMs, fields, units, v.BarPrefix, v.Bars)
		if err != nil {
			return nil, err
		}
		res.Charts = append(res.Charts, charts...)
	}
	if v.LinePrefix != "" {
		charts, err := kemchart.Lines(tab.Rows, tab.KEMs, lineFields, units, v.LinePrefix, v.Lines)
		if err != nil {
			return nil, err
		}
		res.Charts = append(res.Charts, charts...)
	}
	if v.Box != "" {
		chart, err := kemchart.Boxes(tab.Rows, tab.KEMs, fields, units, v.Box, v.BoxOpts)
		if err != nil {
			return nil, err
		}
		res.Charts = append(res.Charts, chart)
	}
	if err := res.render(); err != nil {
		return nil, err
	}
	return res, nil
}

// render renders the statistics file and every chart of r.
func (r *Result) render() error {
	v := r.Variable
	if v.Stats != "" {
		var fields []string
		if v.FieldRow {
			fields = r.Fields
		}
		var buf bytes.Buffer
		if err := kemstat.Write(&buf, v.Comma, r.Table.KEMs, r.Stats, fields); err != nil {
			return fmt.Errorf("%s: %v", v.Stats, err)
		}
		r.files = append(r.files, file{v.Stats, "text/csv", buf.Bytes()})
	}
	for _, c := range r.Charts {
		var buf bytes.Buffer
		if err := c.Render(&buf); err != nil {
			return err
		}
		r.files = append(r.files, file{c.Name, c.ContentType(), buf.Bytes()})
	}
	return nil
}

// Publish writes the statistics file and the charts of r to sink,
// and returns the number of files written.
func (r *Result) Publish(ctx context.Context, sink fs.FS) (int, error) {
	for i, f := range r.files {
		if err := publish(ctx, sink, f.name, f.contentType, f.data); err != nil {
			return i, err
		}
	}
	return len(r.files), nil
}

func publish(ctx context.Context, sink fs.FS, name, contentType string, data []byte) error {
	w, err := sink.NewWriter(ctx, name, map[string]string{"Content-Type": contentType})
	if err != nil {
		return fmt.Errorf("%s: %v", name, err)
	}
	if _, err := w.Write(data); err != nil {
		w.CloseWithError(err)
		return fmt.Errorf("%s: %v", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%s: %v", name, err)
	}
	return nil
}

// Archive records the statistics of r in run.
func (r *Result) Archive(ctx context.Context, run *db.Run) error {
	return run.InsertStatistics(ctx, r.Variable.Name, r.Table.KEMs, r.Fields, r.Stats)
}

// A Runner analyzes and publishes variables one after another.
type Runner struct {
	// Sink receives the statistics files and charts.
	Sink fs.FS

	// Archive, if not nil, receives the statistics of every
	// variable.
	Archive *db.Run

	// Logf, if not nil, is called with progress messages.
	Logf func(format string, args ...interface{})
}

// Run analyzes and publishes each variable in turn, stopping at the
// first error.
func (rn *Runner) Run(ctx context.Context, vars []Variable) error {
	for i := range vars {
		v := &vars[i]
		res, err := Analyze(v)
		if err != nil {
			return err
		}
		n, err := res.Publish(ctx, rn.Sink)
		if err != nil {
			return fmt.Errorf("%s: %w", v.Name, err)
		}
		if rn.Archive != nil {
			if err := res.Archive(ctx, rn.Archive); err != nil {
				return err
			}
		}
		if rn.Logf != nil {
			rn.Logf("%s: %d KEMs, %d rows, wrote %d files", v.Name, len(res.Table.KEMs), len(res.Stats), n)
		}
	}
	return nil
}
