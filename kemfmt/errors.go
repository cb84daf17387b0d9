// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kemfmt

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed is wrapped by every *SyntaxError.
	ErrMalformed = errors.New("malformed input")

	// ErrMissingFile is wrapped by errors opening or reading an
	// input file.
	ErrMissingFile = errors.New("missing input file")
)

// A SyntaxError reports input that does not follow the expected
// layout, at a particular record of a file.
type SyntaxError struct {
	FileName string
	Line     int // 1-based record number; 0 if the error is not tied to a record
	Msg      string
}

func (e *SyntaxError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: %s", e.FileName, e.Msg)
	}
	return fmt.Sprintf("%s:%d: %s", e.FileName, e.Line, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return ErrMalformed }
