// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kemstat

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// A File is the content of a statistics file.
type File struct {
	KEMs    []string
	Fields  []string // nil if the file has no field row
	Records []Record
}

// Write writes a statistics file to w. The first row lists the KEMs,
// the second the fields (omitted if fields is empty), and every
// following row is the mean, maximum, standard deviation and variance
// of one record.
//
// Numbers are written with the fewest digits that read back exactly.
func Write(w io.Writer, comma rune, kems []string, recs []Record, fields []string) error {
	cw := csv.NewWriter(w)
	if comma != 0 {
		cw.Comma = comma
	}
	cw.Write(kems)
	if len(fields) > 0 {
		cw.Write(fields)
	}
	row := make([]string, len(Names))
	for _, r := range recs {
		for i, v := range r.Values() {
			row[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		cw.Write(row)
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes a statistics file to path, replacing any existing
// file. See Write.
func WriteFile(path string, comma rune, kems []string, recs []Record, fields []string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := Write(f, comma, kems, recs, fields); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Read reads a statistics file written by Write. fieldRow reports
// whether the file has a field row, that is, whether Write was given
// fields.
func Read(r io.Reader, comma rune, fieldRow bool) (*File, error) {
	cr := csv.NewReader(r)
	if comma != 0 {
		cr.Comma = comma
	}
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("missing KEM row")
	}
	f := &File{KEMs: rows[0]}
	rows = rows[1:]
	if fieldRow {
		if len(rows) == 0 {
			return nil, fmt.Errorf("missing field row")
		}
		f.Fields = rows[0]
		rows = rows[1:]
	}
	for i, row := range rows {
		rec, err := parseRecord(row)
		if err != nil {
			return nil, fmt.Errorf("statistics row %d: %v", i+1, err)
		}
		f.Records = append(f.Records, rec)
	}
	return f, nil
}

// ReadFile reads the statistics file at path. See Read.
func ReadFile(path string, comma rune, fieldRow bool) (*File, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	f, err := Read(fp, comma, fieldRow)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

func parseRecord(row []string) (Record, error) {
	if len(row) != len(Names) {
		return Record{}, fmt.Errorf("have %d values, want %d", len(row), len(Names))
	}
	var vals [4]float64
	for i, s := range row {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return Record{}, err
		}
		vals[i] = v
	}
	return Record{vals[0], vals[1], vals[2], vals[3]}, nil
}
