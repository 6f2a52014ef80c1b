package cells

import "iter"

// BitsPerCell is the number of addressable bit positions in a cell.
const BitsPerCell = 8

// Cell is one byte of a buffer and its byte index.
type Cell struct {
	Value byte
	Index int
}

// BitOffset returns the global bit offset of the cell's most significant bit.
func (c Cell) BitOffset() int {
	return c.Index * BitsPerCell
}

// Bit reports whether the bit at pos is set (0 = most significant).
func (c Cell) Bit(pos int) bool {
	if pos < 0 || pos >= BitsPerCell {
		return false
	}
	return c.Value&(0x80>>pos) != 0
}

// Bits returns n bits starting at first, right aligned.
func (c Cell) Bits(first, n int) byte {
	return Fragment(c.Value, first, n)
}

// Fragment extracts n bits of b starting at first (0 = most significant),
// right aligned.
func Fragment(b byte, first, n int) byte {
	if n <= 0 || first < 0 || first+n > BitsPerCell {
		return 0
	}
	shift := BitsPerCell - first - n
	mask := byte(1<<n - 1)
	return (b >> shift) & mask
}

// Source produces the cells of a buffer lazily, front to back.
type Source struct {
	buf []byte
	pos int
}

// NewSource wraps buf. The buffer is not copied and must not be modified
// while the source is in use.
func NewSource(buf []byte) *Source {
	return &Source{buf: buf}
}

// Len returns the total number of cells the source produces.
func (s *Source) Len() int {
	return len(s.buf)
}

// Remaining returns the number of cells not yet consumed.
func (s *Source) Remaining() int {
	return len(s.buf) - s.pos
}

// Position returns the index of the next cell.
func (s *Source) Position() int {
	return s.pos
}

// Next consumes and returns the next cell. ok is false once the buffer
// is exhausted.
func (s *Source) Next() (c Cell, ok bool) {
	if s.pos >= len(s.buf) {
		return Cell{}, false
	}
	c = Cell{Value: s.buf[s.pos], Index: s.pos}
	s.pos++
	return c, true
}

// Peek returns up to n upcoming cells without consuming them.
func (s *Source) Peek(n int) []Cell {
	if n <= 0 {
		return nil
	}
	end := s.pos + n
	if end > len(s.buf) {
		end = len(s.buf)
	}
	out := make([]Cell, 0, end-s.pos)
	for i := s.pos; i < end; i++ {
		out = append(out, Cell{Value: s.buf[i], Index: i})
	}
	return out
}

// Take consumes up to n cells.
func (s *Source) Take(n int) []Cell {
	out := s.Peek(n)
	s.pos += len(out)
	return out
}

// All returns an iterator that consumes the rest of the source.
func (s *Source) All() iter.Seq[Cell] {
	return func(yield func(Cell) bool) {
		for {
			c, ok := s.Next()
			if !ok || !yield(c) {
				return
			}
		}
	}
}
