// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kemfmt

import (
	"fmt"
	"io"
	"strings"
)

// A PacketLayout describes the report layout of the packet capture
// tool. The report is not self-describing: it is a header record
// followed by one fixed-length block of records per KEM, and the
// quantities of interest sit at fixed positions.
type PacketLayout struct {
	// BlockLen is the number of records in each KEM block.
	BlockLen int

	// KEMOffset is the offset within a block of the record whose
	// first cell names the KEM.
	KEMOffset int

	// Fields lists the quantities read from each block, in the
	// order they appear in the returned table.
	Fields []PacketField
}

// A PacketField locates one quantity in a packet report.
type PacketField struct {
	// Column is the header column holding the field's label.
	Column int

	// Offset is the offset within a KEM block of the record
	// holding the field's samples.
	Offset int

	// Integer indicates the samples are integers.
	Integer bool
}

// Positions within DefaultPacketLayout.
const (
	PacketBlockLen = 10

	PacketKEMOffset      = 0
	PacketCountOffset    = 1
	PacketBytesOffset    = 2
	PacketDurationOffset = 7

	PacketCountColumn    = 0
	PacketBytesColumn    = 1
	PacketDurationColumn = 6
)

// DefaultPacketLayout is the layout of the capture tool's conversation
// report: packet count, byte count and connection duration.
var DefaultPacketLayout = PacketLayout{
	BlockLen:  PacketBlockLen,
	KEMOffset: PacketKEMOffset,
	Fields: []PacketField{
		{Column: PacketCountColumn, Offset: PacketCountOffset, Integer: true},
		{Column: PacketBytesColumn, Offset: PacketBytesOffset, Integer: true},
		{Column: PacketDurationColumn, Offset: PacketDurationOffset},
	},
}

// validate reports whether l is usable.
func (l *PacketLayout) validate() error {
	if l.BlockLen <= 0 {
		return fmt.Errorf("block length %d", l.BlockLen)
	}
	if len(l.Fields) == 0 {
		return fmt.Errorf("no fields")
	}
	seen := map[int]bool{l.KEMOffset: true}
	for _, f := range l.Fields {
		if f.Column < 0 {
			return fmt.Errorf("negative header column %d", f.Column)
		}
		if f.Offset < 0 || f.Offset >= l.BlockLen {
			return fmt.Errorf("block offset %d outside block of %d", f.Offset, l.BlockLen)
		}
		if seen[f.Offset] {
			return fmt.Errorf("block offset %d used twice", f.Offset)
		}
		seen[f.Offset] = true
	}
	if l.KEMOffset < 0 || l.KEMOffset >= l.BlockLen {
		return fmt.Errorf("KEM offset %d outside block of %d", l.KEMOffset, l.BlockLen)
	}
	return nil
}

// lastOffset returns the highest offset l reads from a block.
func (l *PacketLayout) lastOffset() int {
	last := l.KEMOffset
	for _, f := range l.Fields {
		if f.Offset > last {
			last = f.Offset
		}
	}
	return last
}

// ReadPacket reads a packet capture report laid out as described by
// layout. If layout is nil, DefaultPacketLayout is used. If nKEM is
// not zero, the report must contain exactly nKEM blocks.
//
// Field labels come from the header; packet reports carry no units.
// The last block may omit the records after its last field.
func ReadPacket(r io.Reader, fileName string, comma rune, layout *PacketLayout, nKEM int) (*Table, error) {
	rr := newRecordReader(r, fileName, comma)
	if layout == nil {
		layout = &DefaultPacketLayout
	}
	if err := layout.validate(); err != nil {
		return nil, fmt.Errorf("invalid packet layout: %v", err)
	}

	hdr, err := rr.next("field header")
	if err != nil {
		return nil, err
	}
	t := &Table{Fields: make([]Field, len(layout.Fields))}
	for i, f := range layout.Fields {
		if f.Column >= len(hdr) {
			return nil, rr.errorf("field header has %d cells, want a label in column %d", len(hdr), f.Column+1)
		}
		t.Fields[i].Name = strings.TrimSpace(hdr[f.Column])
	}

	// field maps a block offset to its index in layout.Fields.
	field := make(map[int]int, len(layout.Fields))
	for i, f := range layout.Fields {
		field[f.Offset] = i
	}
	last := layout.lastOffset()

	var block [][]float64
	pos := 0
	for ; ; pos = (pos + 1) % layout.BlockLen {
		rec, err := rr.read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		if pos == 0 {
			block = make([][]float64, len(layout.Fields))
		}
		if pos == layout.KEMOffset {
			if len(rec) == 0 || strings.TrimSpace(rec[0]) == "" {
				return nil, rr.errorf("empty KEM name")
			}
			t.KEMs = append(t.KEMs, rec[0])
		}
		i, ok := field[pos]
		if !ok {
			continue
		}
		conv := rr.floats
		if layout.Fields[i].Integer {
			conv = rr.ints
		}
		row, err := conv(rec)
		if err != nil {
			return nil, err
		}
		block[i] = row
		if pos == last {
			t.Rows = append(t.Rows, block...)
		}
	}
	if pos != 0 && pos <= last {
		return nil, &SyntaxError{rr.fileName, rr.line + 1, fmt.Sprintf("unexpected end of file in block %d, want record %d of %d", len(t.KEMs), last+1, layout.BlockLen)}
	}
	if len(t.KEMs) == 0 {
		return nil, &SyntaxError{rr.fileName, 0, "no KEM blocks"}
	}
	if nKEM != 0 && len(t.KEMs) != nKEM {
		return nil, &SyntaxError{rr.fileName, 0, fmt.Sprintf("found %d KEM blocks, want %d", len(t.KEMs), nKEM)}
	}
	if err := t.check(); err != nil {
		return nil, &SyntaxError{rr.fileName, 0, err.Error()}
	}
	return t, nil
}

// LoadPacket reads the packet report at path. See ReadPacket.
func LoadPacket(path string, comma rune, layout *PacketLayout, nKEM int) (*Table, error) {
	return load(path, func(r io.Reader, name string) (*Table, error) {
		return ReadPacket(r, name, comma, layout, nKEM)
	})
}
