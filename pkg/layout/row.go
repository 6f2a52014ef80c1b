// Package layout tiles a cell sequence into rows and cuts cells into
// segments at field boundaries.
package layout

import (
	"fmt"

	"bitgrid/pkg/cells"
	"bitgrid/pkg/format"
)

// Continuation marks which occurrence of a multi-row field a span is.
type Continuation int

const (
	Whole Continuation = iota
	First
	Middle
	Last
)

func (c Continuation) String() string {
	switch c {
	case Whole:
		return "whole"
	case First:
		return "first"
	case Middle:
		return "middle"
	case Last:
		return "last"
	default:
		return fmt.Sprintf("Continuation(%d)", int(c))
	}
}

// NoField marks a segment that no annotation covers.
const NoField = -1

// Segment is a whole cell or a bit range of one cell.
type Segment struct {
	Cell cells.Cell
	// FirstBit is the cell-local position of the first bit (0 = MSB).
	FirstBit int
	Bits     int
	// Value holds the segment's bits, right aligned.
	Value byte
	// Field is the descriptor annotation index, or NoField.
	Field int
	// Derived holds the transformed bits when HasDerived is set.
	Derived    byte
	HasDerived bool
}

// WholeCell reports whether the segment spans its entire cell.
func (s Segment) WholeCell() bool {
	return s.FirstBit == 0 && s.Bits == cells.BitsPerCell
}

// BitOffset returns the global offset of the segment's first bit.
func (s Segment) BitOffset() int {
	return s.Cell.BitOffset() + s.FirstBit
}

// FieldSpan is the part of one annotation that falls inside a row.
type FieldSpan struct {
	Field int
	// Offset and Length are the clipped global bit range.
	Offset int
	Length int
	// Declared is the number of the field's bits that fall in the row's
	// full word. It exceeds Length when the buffer ends inside the field.
	Declared     int
	Part         int
	Parts        int
	Continuation Continuation
}

// End returns the bit offset just past the span.
func (s FieldSpan) End() int {
	return s.Offset + s.Length
}

// Truncated reports whether the buffer ends before the span's declared
// bits.
func (s FieldSpan) Truncated() bool {
	return s.Length < s.Declared
}

// Row is one rendered line group.
type Row struct {
	// Label is the word name, e.g. "QWORD".
	Label string
	// Index is 1-based.
	Index    int
	Cells    []cells.Cell
	Segments []Segment
	// Spans lists intersecting annotations in offset order.
	Spans []FieldSpan
}

// Title returns the row label with its index, e.g. "QWORD 2".
func (r Row) Title() string {
	return fmt.Sprintf("%s %d", r.Label, r.Index)
}

// StartBit returns the global offset of the row's first bit.
func (r Row) StartBit() int {
	if len(r.Cells) == 0 {
		return 0
	}
	return r.Cells[0].BitOffset()
}

// Bits returns the number of bits in the row.
func (r Row) Bits() int {
	return len(r.Cells) * cells.BitsPerCell
}

// Table is the laid-out form of one buffer.
type Table struct {
	Descriptor *format.Descriptor
	Rows       []Row
}

// NumCells returns the number of cells over all rows.
func (t Table) NumCells() int {
	n := 0
	for _, r := range t.Rows {
		n += len(r.Cells)
	}
	return n
}
