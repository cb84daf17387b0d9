// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kemfmt

import (
	"fmt"
	"io"
)

// MemoryField is the name of the single field of a memory log.
const MemoryField = "Memory"

// ReadMemory reads a memory access log.
//
// The first record lists the KEM names. Every following record is
// the memory access log of one execution, one record per KEM in
// header order, each of its own length. The rows are padded with
// zeros to one more than the longest record, so the returned table is
// rectangular and every row ends in at least one zero. The padding
// counts as samples.
//
// The field of the returned table is MemoryField and has no unit.
func ReadMemory(r io.Reader, fileName string, comma rune) (*Table, error) {
	rr := newRecordReader(r, fileName, comma)
	hdr, err := rr.next("KEM names")
	if err != nil {
		return nil, err
	}
	t := &Table{
		KEMs:   hdr,
		Fields: []Field{{Name: MemoryField}},
	}

	maxLen := 0
	for {
		rec, err := rr.read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		row, err := rr.ints(rec)
		if err != nil {
			return nil, err
		}
		if len(row) > maxLen {
			maxLen = len(row)
		}
		t.Rows = append(t.Rows, row)
	}
	if len(t.Rows) != len(t.KEMs) {
		return nil, &SyntaxError{rr.fileName, 0, fmt.Sprintf("found %d memory logs for %d KEMs", len(t.Rows), len(t.KEMs))}
	}

	maxLen++
	for i, row := range t.Rows {
		t.Rows[i] = append(row, make([]float64, maxLen-len(row))...)
	}
	return t, nil
}

// LoadMemory reads the memory log at path. See ReadMemory.
func LoadMemory(path string, comma rune) (*Table, error) {
	return load(path, func(r io.Reader, name string) (*Table, error) {
		return ReadMemory(r, name, comma)
	})
}
