// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kemfmt

import (
	"io"
	"strings"
)

// CPUFields is the number of fields in a CPU report.
const CPUFields = 3

// ReadCPU reads a CPU time or cycle report for nKEM KEMs.
//
// The first record names the fields as "<name> <unit>" cells; all
// fields share the unit of the first cell. It is followed by nKEM
// blocks, each a record holding the KEM name and one data record per
// field. The benchmark harness terminates every data record with a
// delimiter, so the last cell of a data record is discarded.
func ReadCPU(r io.Reader, fileName string, comma rune, nKEM int) (*Table, error) {
	rr := newRecordReader(r, fileName, comma)
	if nKEM <= 0 {
		return nil, &SyntaxError{rr.fileName, 0, "missing KEM count"}
	}

	hdr, err := rr.next("field header")
	if err != nil {
		return nil, err
	}
	if len(hdr) < CPUFields {
		return nil, rr.errorf("field header has %d cells, want %d", len(hdr), CPUFields)
	}
	t := &Table{Fields: make([]Field, CPUFields)}
	var unit string
	for i := 0; i < CPUFields; i++ {
		name, u, ok := strings.Cut(strings.TrimSpace(hdr[i]), " ")
		if !ok || name == "" {
			return nil, rr.errorf("field header cell %d: %q is not \"<name> <unit>\"", i+1, hdr[i])
		}
		if i == 0 {
			unit = strings.TrimSpace(u)
		}
		t.Fields[i].Name = name
	}
	for i := range t.Fields {
		t.Fields[i].Unit = unit
	}

	for k := 0; k < nKEM; k++ {
		rec, err := rr.next("KEM name")
		if err != nil {
			return nil, err
		}
		if len(rec) == 0 || strings.TrimSpace(rec[0]) == "" {
			return nil, rr.errorf("empty KEM name")
		}
		t.KEMs = append(t.KEMs, rec[0])
		for f := 0; f < CPUFields; f++ {
			rec, err := rr.next(t.Fields[f].Name + " samples for " + t.KEMs[k])
			if err != nil {
				return nil, err
			}
			if len(rec) < 2 {
				return nil, rr.errorf("%s samples for %s: no values before the trailing cell", t.Fields[f].Name, t.KEMs[k])
			}
			row, err := rr.floats(rec[:len(rec)-1])
			if err != nil {
				return nil, err
			}
			t.Rows = append(t.Rows, row)
		}
	}
	if err := t.check(); err != nil {
		return nil, &SyntaxError{rr.fileName, 0, err.Error()}
	}
	return t, nil
}

// LoadCPU reads the CPU report at path. See ReadCPU.
func LoadCPU(path string, comma rune, nKEM int) (*Table, error) {
	return load(path, func(r io.Reader, name string) (*Table, error) {
		return ReadCPU(r, name, comma, nKEM)
	})
}
