package layout

import (
	"iter"

	"go.uber.org/zap"

	"bitgrid/pkg/cells"
	"bitgrid/pkg/format"
)

// Engine lays out buffers according to one descriptor. It holds no
// per-buffer state and may be used from several goroutines.
type Engine struct {
	d      *format.Descriptor
	fields []format.FieldAnnotation
}

// New returns an engine for d.
func New(d *format.Descriptor) *Engine {
	return &Engine{d: d, fields: d.Annotations()}
}

// Build lays out buf with d.
func Build(buf []byte, d *format.Descriptor) Table {
	return New(d).Layout(cells.NewSource(buf))
}

// Layout drains src and returns every row.
func (e *Engine) Layout(src *cells.Source) Table {
	t := Table{Descriptor: e.d}
	for r := range e.Rows(src) {
		t.Rows = append(t.Rows, r)
	}
	return t
}

// Rows returns an iterator over the rows of src. Cells are consumed as
// rows are produced.
func (e *Engine) Rows(src *cells.Source) iter.Seq[Row] {
	return func(yield func(Row) bool) {
		keys := e.newKeys()
		next := 0
		for index := 1; ; index++ {
			group := src.Take(e.d.CellsPerRow())
			if len(group) == 0 {
				return
			}
			for _, ks := range keys {
				ks.capture(group)
			}

			rowStart := group[0].BitOffset()
			for next < len(e.fields) && e.fields[next].End() <= rowStart {
				next++
			}
			row := Row{
				Label: e.d.WordSize().Name(),
				Index: index,
				Cells: group,
				Spans: e.spans(next, rowStart, rowStart+len(group)*cells.BitsPerCell),
			}
			row.Segments = e.segments(row, keys, src)

			Logger().Debug("row laid out",
				zap.String("row", row.Title()),
				zap.Int("cells", len(row.Cells)),
				zap.Int("segments", len(row.Segments)),
				zap.Int("spans", len(row.Spans)))
			if !yield(row) {
				return
			}
		}
	}
}

// spans clips the annotations starting at from to [start, end).
func (e *Engine) spans(from, start, end int) []FieldSpan {
	rowBits := e.d.RowBits()
	var out []FieldSpan
	for i := from; i < len(e.fields); i++ {
		f := e.fields[i]
		if f.Offset >= end {
			break
		}
		if f.End() <= start {
			continue
		}
		s := max(f.Offset, start)
		en := min(f.End(), end)

		firstRow := f.Offset / rowBits
		lastRow := (f.End() - 1) / rowBits
		parts := lastRow - firstRow + 1
		part := start/rowBits - firstRow + 1

		cont := Whole
		switch {
		case parts == 1:
		case part == 1:
			cont = First
		case part == parts:
			cont = Last
		default:
			cont = Middle
		}
		out = append(out, FieldSpan{
			Field:        i,
			Offset:       s,
			Length:       en - s,
			Declared:     min(f.End(), start+rowBits) - s,
			Part:         part,
			Parts:        parts,
			Continuation: cont,
		})
	}
	return out
}

// segments cuts every cell of the row at the span boundaries inside it.
func (e *Engine) segments(row Row, keys map[string]*keyState, src *cells.Source) []Segment {
	out := make([]Segment, 0, len(row.Cells))
	si := 0
	for _, c := range row.Cells {
		cellStart := c.BitOffset()
		cellEnd := cellStart + cells.BitsPerCell

		bit := cellStart
		for bit < cellEnd {
			for si < len(row.Spans) && row.Spans[si].End() <= bit {
				si++
			}
			field := NoField
			stop := cellEnd
			if si < len(row.Spans) {
				sp := row.Spans[si]
				if sp.Offset <= bit {
					field = sp.Field
					stop = min(sp.End(), cellEnd)
				} else {
					stop = min(sp.Offset, cellEnd)
				}
			}

			seg := Segment{
				Cell:     c,
				FirstBit: bit - cellStart,
				Bits:     stop - bit,
				Field:    field,
			}
			seg.Value = c.Bits(seg.FirstBit, seg.Bits)
			if field != NoField {
				e.derive(&seg, keys, src)
			}
			out = append(out, seg)
			bit = stop
		}
	}
	return out
}

// derive applies the field's transform. The raw cell is left untouched.
func (e *Engine) derive(seg *Segment, keys map[string]*keyState, src *cells.Source) {
	f := e.fields[seg.Field]
	t := f.Transform
	if !t.Derives() {
		return
	}
	index := seg.Cell.Index - f.Offset/cells.BitsPerCell

	var key []byte
	if len(t.Key) == 0 {
		ks := keys[t.KeyField]
		if ks == nil || !ks.resolve(index, src) {
			return
		}
		key = ks.buf
	}
	b, ok := t.Apply(seg.Cell.Value, index, key)
	if !ok {
		return
	}
	seg.Derived = cells.Fragment(b, seg.FirstBit, seg.Bits)
	seg.HasDerived = true
}

func (e *Engine) newKeys() map[string]*keyState {
	keys := make(map[string]*keyState)
	for _, f := range e.fields {
		t := f.Transform
		if !t.Derives() || len(t.Key) > 0 || keys[t.KeyField] != nil {
			continue
		}
		i, ok := e.d.Lookup(t.KeyField)
		if !ok {
			continue
		}
		kf := e.d.Annotation(i)
		keys[t.KeyField] = &keyState{
			start: kf.Offset / cells.BitsPerCell,
			buf:   make([]byte, kf.Length/cells.BitsPerCell),
		}
	}
	return keys
}

// keyState collects the bytes of a key field as they stream past.
// Bytes that have not been consumed yet are read with Peek.
type keyState struct {
	start  int
	buf    []byte
	filled int
}

func (k *keyState) capture(cs []cells.Cell) {
	for _, c := range cs {
		if c.Index == k.start+k.filled && k.filled < len(k.buf) {
			k.buf[k.filled] = c.Value
			k.filled++
		}
	}
}

// resolve reports whether the key byte used for field byte index is
// available, peeking ahead in src when the key lies later in the buffer.
func (k *keyState) resolve(index int, src *cells.Source) bool {
	if len(k.buf) == 0 || index < 0 {
		return false
	}
	need := index%len(k.buf) + 1
	if k.filled < need && src.Position() <= k.start+k.filled {
		k.capture(src.Peek(k.start + len(k.buf) - src.Position()))
		if k.filled < need {
			Logger().Debug("key bytes unavailable",
				zap.Int("key_start", k.start),
				zap.Int("have", k.filled),
				zap.Int("need", need))
		}
	}
	return k.filled >= need
}
