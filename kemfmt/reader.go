// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kemfmt

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// DefaultComma is the delimiter used by the capture tools.
const DefaultComma = ','

// A recordReader hands out delimited records and tracks the position
// for error messages.
//
// Every line is one record, and an empty line is an empty record
// rather than being skipped, so that positional layouts stay aligned.
// Quoted cells therefore cannot span lines.
type recordReader struct {
	r        *bufio.Reader
	comma    rune
	fileName string
	line     int
}

func newRecordReader(r io.Reader, fileName string, comma rune) *recordReader {
	if fileName == "" {
		fileName = "<unknown>"
	}
	if comma == 0 {
		comma = DefaultComma
	}
	return &recordReader{r: bufio.NewReader(r), comma: comma, fileName: fileName}
}

// read returns the next record, or io.EOF at the end of the input.
func (rr *recordReader) read() ([]string, error) {
	line, err := rr.r.ReadString('\n')
	if err == io.EOF {
		if line == "" {
			return nil, io.EOF
		}
	} else if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", rr.fileName, ErrMissingFile, err)
	}
	rr.line++
	line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
	if line == "" {
		return []string{}, nil
	}
	cr := csv.NewReader(strings.NewReader(line))
	cr.Comma = rr.comma
	cr.FieldsPerRecord = -1
	rec, err := cr.Read()
	if err != nil {
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			return nil, rr.errorf("%v", perr.Err)
		}
		return nil, rr.errorf("%v", err)
	}
	return rec, nil
}

// next is like read, but treats the end of the input as an error.
// want describes the record that was expected.
func (rr *recordReader) next(want string) ([]string, error) {
	rec, err := rr.read()
	if err == io.EOF {
		return nil, &SyntaxError{rr.fileName, rr.line + 1, "unexpected end of file, want " + want}
	}
	return rec, err
}

func (rr *recordReader) errorf(format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{rr.fileName, rr.line, fmt.Sprintf(format, args...)}
}

func (rr *recordReader) floats(rec []string) ([]float64, error) {
	row := make([]float64, len(rec))
	for i, s := range rec {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, rr.errorf("column %d: %q is not a number", i+1, s)
		}
		row[i] = v
	}
	return row, nil
}

func (rr *recordReader) ints(rec []string) ([]float64, error) {
	row := make([]float64, len(rec))
	for i, s := range rec {
		v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, rr.errorf("column %d: %q is not an integer", i+1, s)
		}
		row[i] = float64(v)
	}
	return row, nil
}

// load opens path and hands it to read, closing it afterwards.
func load(path string, read func(io.Reader, string) (*Table, error)) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingFile, err)
	}
	defer f.Close()
	return read(f, path)
}
