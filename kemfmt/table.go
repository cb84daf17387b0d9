// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package kemfmt reads the raw measurement files produced while
// benchmarking key-encapsulation mechanisms (KEMs).
//
// There are three file shapes: CPU time or cycle reports, memory
// access logs, and packet capture summaries. Each is positionally
// encoded rather than self-describing, so every reader checks the
// layout it expects and reports a *SyntaxError when the input does
// not match. All readers return the same typed Table.
package kemfmt

import "fmt"

// A Field is a measured quantity and the unit it is measured in.
type Field struct {
	Name string
	Unit string
}

// A Table holds the samples of one performance variable.
//
// Rows are ordered field-major within KEM-major: the rows of a KEM
// are consecutive, one per field, and row i belongs to KEM
// i/len(Fields) and field i%len(Fields). Each row holds one sample
// per benchmark iteration.
type Table struct {
	KEMs   []string
	Fields []Field
	Rows   [][]float64
}

// Row returns the samples of field f for KEM k.
func (t *Table) Row(k, f int) []float64 {
	return t.Rows[k*len(t.Fields)+f]
}

// FieldRows returns the rows of field f, one per KEM, in KEM order.
func (t *Table) FieldRows(f int) [][]float64 {
	rows := make([][]float64, len(t.KEMs))
	for k := range t.KEMs {
		rows[k] = t.Row(k, f)
	}
	return rows
}

// FieldNames returns the names of t's fields.
func (t *Table) FieldNames() []string {
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = f.Name
	}
	return names
}

// Units returns the unit of each of t's fields.
func (t *Table) Units() []string {
	units := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		units[i] = f.Unit
	}
	return units
}

// check verifies the row count invariant of t.
func (t *Table) check() error {
	if len(t.Fields) == 0 {
		return fmt.Errorf("table has no fields")
	}
	if want := len(t.KEMs) * len(t.Fields); len(t.Rows) != want {
		return fmt.Errorf("table has %d rows, want %d (%d KEMs × %d fields)", len(t.Rows), want, len(t.KEMs), len(t.Fields))
	}
	return nil
}
