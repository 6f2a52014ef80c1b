package render

import (
	"fmt"
	"strconv"
	"strings"

	"bitgrid/pkg/format"
	"bitgrid/pkg/layout"
	"bitgrid/pkg/style"
)

// maxNotes is the number of header lines that can carry a note.
const maxNotes = 3

// Render draws t. An empty table renders no lines.
func Render(t layout.Table, cfg style.Config) []string {
	if len(t.Rows) == 0 || t.Descriptor == nil {
		return nil
	}
	r := newRenderer(t, style.Resolve(cfg))
	return r.lines()
}

// Bytes lays out buf with d and renders it.
func Bytes(buf []byte, d *format.Descriptor, cfg style.Config) []string {
	return Render(layout.Build(buf, d), cfg)
}

// Text joins lines into one newline-terminated string.
func Text(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

type segPlan struct {
	layout.Segment
	col    int
	bits   string
	value  string
	dbits  string
	dvalue string
	width  int
}

type labelPlan struct {
	field int
	width int
	lines []string
}

type rowPlan struct {
	row     layout.Row
	segs    []segPlan
	labels  []labelPlan
	height  int
	derived bool
	// tag labels the derived value line.
	tag string
}

type region struct {
	text  string
	width int
	align align
	keys  []string
}

type renderer struct {
	d      *format.Descriptor
	st     style.Resolved
	frame  bool
	fields []format.FieldAnnotation
	rows   []rowPlan
	widths []int
	labelW int
}

func newRenderer(t layout.Table, st style.Resolved) *renderer {
	r := &renderer{
		d:      t.Descriptor,
		st:     st,
		frame:  t.Descriptor.Mode() == format.ModeFrame,
		fields: t.Descriptor.Annotations(),
	}
	for _, row := range t.Rows {
		r.rows = append(r.rows, r.planRow(row))
	}
	r.sizeColumns()
	for i := range r.rows {
		r.planLabels(&r.rows[i])
	}
	r.sizeLabel()
	return r
}

func (r *renderer) bitText(v byte, n int) string {
	if r.frame {
		return spacedBits(v, n)
	}
	return compactBits(v, n)
}

func (r *renderer) field(i int) *format.FieldAnnotation {
	if i == layout.NoField {
		return nil
	}
	return &r.fields[i]
}

func (r *renderer) planRow(row layout.Row) rowPlan {
	p := rowPlan{row: row}
	first := row.Cells[0].Index
	for _, seg := range row.Segments {
		sp := segPlan{Segment: seg, col: seg.Cell.Index - first}
		sp.bits = r.bitText(seg.Value, seg.Bits)

		var tr *format.Transform
		if f := r.field(seg.Field); f != nil {
			tr = f.Transform
		}
		whole := seg.WholeCell()
		switch {
		case whole && tr != nil && tr.Kind == format.TransformASCII:
			sp.value = decoded(seg.Value)
		case whole || style.Width(decimal(seg.Value)) <= style.Width(sp.bits):
			sp.value = decimal(seg.Value)
		}

		if tr.Derives() {
			p.derived = true
			if p.tag == "" {
				p.tag = tr.DerivedTag()
			}
		}
		if seg.HasDerived {
			sp.dbits = r.bitText(seg.Derived, seg.Bits)
			switch {
			case whole:
				sp.dvalue = decoded(seg.Derived)
			case style.Width(decimal(seg.Derived)) <= style.Width(sp.dbits):
				sp.dvalue = decimal(seg.Derived)
			}
		}
		sp.width = max(style.Width(sp.bits), style.Width(sp.value),
			style.Width(sp.dbits), style.Width(sp.dvalue))
		p.segs = append(p.segs, sp)
	}
	return p
}

// sizeColumns makes every column as wide as its widest occurrence and
// gives the slack of narrower occurrences to their last segment.
func (r *renderer) sizeColumns() {
	n := r.d.CellsPerRow()
	r.widths = make([]int, n)
	for c := range r.widths {
		r.widths[c] = max(style.Width(columnTitle(c))+2, style.Width(r.bitText(0, 8)))
	}

	natural := func(p *rowPlan) map[int]int {
		w := make(map[int]int)
		for _, s := range p.segs {
			if _, ok := w[s.col]; ok {
				w[s.col]++
			}
			w[s.col] += s.width
		}
		return w
	}
	for i := range r.rows {
		for c, w := range natural(&r.rows[i]) {
			r.widths[c] = max(r.widths[c], w)
		}
	}
	for i := range r.rows {
		p := &r.rows[i]
		nat := natural(p)
		for j := range p.segs {
			last := j == len(p.segs)-1 || p.segs[j+1].col != p.segs[j].col
			if last {
				p.segs[j].width += r.widths[p.segs[j].col] - nat[p.segs[j].col]
			}
		}
	}
}

// planLabels groups the segments of each field into one label region and
// word-wraps the label to the region's width.
func (r *renderer) planLabels(p *rowPlan) {
	spans := make(map[int]layout.FieldSpan, len(p.row.Spans))
	for _, s := range p.row.Spans {
		spans[s.Field] = s
	}
	for _, s := range p.segs {
		if n := len(p.labels); n > 0 && s.Field != layout.NoField && p.labels[n-1].field == s.Field {
			p.labels[n-1].width += 1 + s.width
			continue
		}
		p.labels = append(p.labels, labelPlan{field: s.Field, width: s.width})
	}
	for i := range p.labels {
		lp := &p.labels[i]
		f := r.field(lp.field)
		if f == nil {
			continue
		}
		span := spans[lp.field]
		lp.lines = wrap(f.PartLabel(span.Part, span.Parts), lp.width)
		if r.frame {
			if c := caption(span.Length, span.Declared, lp.width); c != "" {
				lp.lines = append(lp.lines, c)
			}
		}
		p.height = max(p.height, len(lp.lines))
	}
}

// caption is the size note under a frame field label. A field cut short by
// the end of the buffer shows how many of its declared bits are present.
func caption(bits, declared, width int) string {
	candidates := []string{fmt.Sprintf("(%d bits)", bits), fmt.Sprintf("(%d b)", bits)}
	if bits < declared {
		candidates = []string{
			fmt.Sprintf("(%d of %d bits)", bits, declared),
			fmt.Sprintf("(%d/%d b)", bits, declared),
			fmt.Sprintf("(%d/%d)", bits, declared),
		}
	}
	for _, c := range candidates {
		if style.Width(c) <= width {
			return c
		}
	}
	return ""
}

func (r *renderer) sizeLabel() {
	w := max(style.Width(r.d.Title()), digits(len(r.rows)))
	for _, p := range r.rows {
		w = max(w, style.Width(p.row.Label), style.Width(p.tag))
	}
	if !r.frame {
		r.labelW = w + 1
		return
	}
	for _, n := range r.notes() {
		w = max(w, style.Width(n))
	}
	r.labelW = w + 2
}

func (r *renderer) notes() []string {
	n := r.d.Notes()
	if len(n) > maxNotes {
		n = n[:maxNotes]
	}
	return n
}

func columnTitle(c int) string {
	return "Byte " + strconv.Itoa(c)
}

func (r *renderer) lines() []string {
	g := r.st.Glyphs
	out := r.header()
	prevMarks, prevLen := r.headerMarks()
	for i, p := range r.rows {
		top, topLen := segMarks(p.segs)
		left := g.LeftTee
		if i == 0 {
			left = g.TopLeft
		}
		out = append(out, r.border(left, g.Junction, prevMarks, top, prevLen, topLen))
		out = append(out, r.rowLines(p)...)
		prevMarks, prevLen = r.bottomMarks(p)
	}
	out = append(out, r.border(g.BottomLeft, g.BottomTee, prevMarks, nil, prevLen, 0))
	return out
}

func (r *renderer) headerMarks() (map[int]bool, int) {
	marks := make(map[int]bool, len(r.widths))
	pos := 0
	for _, w := range r.widths {
		pos += w
		marks[pos] = true
		pos++
	}
	return marks, pos
}

func segMarks(segs []segPlan) (map[int]bool, int) {
	marks := make(map[int]bool, len(segs))
	pos := 0
	for _, s := range segs {
		pos += s.width
		marks[pos] = true
		pos++
	}
	return marks, pos
}

func (r *renderer) bottomMarks(p rowPlan) (map[int]bool, int) {
	if p.height == 0 {
		return segMarks(p.segs)
	}
	marks := make(map[int]bool, len(p.labels))
	pos := 0
	for _, l := range p.labels {
		pos += l.width
		marks[pos] = true
		pos++
	}
	return marks, pos
}

// border draws a horizontal rule across the label column and the cells.
// left is the glyph in the outer column, mid the one between the label
// column and the first cell.
func (r *renderer) border(left, mid string, up, down map[int]bool, upLen, downLen int) string {
	var b strings.Builder
	b.WriteString(left)
	b.WriteString(strings.Repeat(r.st.Glyphs.Horizontal, r.labelW))
	b.WriteString(mid)
	b.WriteString(r.rule(up, down, upLen, downLen))
	return r.st.Colorize(b.String(), style.ClassBorder)
}

// rule draws the cell part of a horizontal line. up and down hold the
// positions of verticals meeting the line from above and below, upLen and
// downLen the widths of the lines above and below.
func (r *renderer) rule(up, down map[int]bool, upLen, downLen int) string {
	g := r.st.Glyphs
	length := max(upLen, downLen)
	var b strings.Builder
	for pos := range length {
		u, d := up[pos], down[pos]
		switch {
		case pos == length-1 && upLen == downLen:
			b.WriteString(g.RightTee)
		case pos == length-1 && upLen > downLen:
			b.WriteString(g.BottomRight)
		case pos == length-1:
			b.WriteString(g.TopRight)
		case u && d:
			b.WriteString(g.Junction)
		case u:
			b.WriteString(g.BottomTee)
		case d:
			b.WriteString(g.TopTee)
		default:
			b.WriteString(g.Horizontal)
		}
	}
	return b.String()
}

// content draws one text line: lead, the label column, then each region
// followed by a vertical.
func (r *renderer) content(lead string, label region, regions []region) string {
	v := r.st.Colorize(r.st.Glyphs.Vertical, style.ClassBorder)
	var b strings.Builder
	if lead == " " {
		b.WriteString(lead)
	} else {
		b.WriteString(v)
	}
	r.writeRegion(&b, label)
	b.WriteString(v)
	for _, reg := range regions {
		r.writeRegion(&b, reg)
		b.WriteString(v)
	}
	return b.String()
}

func (r *renderer) writeRegion(b *strings.Builder, reg region) {
	left, right := pad(reg.text, reg.width, reg.align)
	b.WriteString(strings.Repeat(" ", left))
	b.WriteString(r.st.Colorize(reg.text, reg.keys...))
	b.WriteString(strings.Repeat(" ", right))
}

func (r *renderer) labelAlign() align {
	if r.frame {
		return alignCenter
	}
	return alignLeft
}

func (r *renderer) valueAlign() align {
	if r.frame {
		return alignCenter
	}
	return alignRight
}

func (r *renderer) header() []string {
	g := r.st.Glyphs
	marks, length := r.headerMarks()
	lines := []string{
		strings.Repeat(" ", r.labelW+1) + r.st.Colorize(g.TopLeft+r.rule(nil, marks, 0, length), style.ClassBorder),
	}

	titles := make([]region, len(r.widths))
	for c, w := range r.widths {
		titles[c] = region{text: columnTitle(c), width: w, align: alignCenter, keys: []string{style.ClassHeader}}
	}
	lines = append(lines, r.content(" ", r.headerLabel(r.d.Title()), titles))
	if !r.frame {
		return lines
	}

	notes := r.notes()
	note := func(i int) string {
		if i < len(notes) {
			return notes[i]
		}
		return ""
	}
	sep := " " + r.writeLabel(r.headerLabel(note(0)))
	lines = append(lines, sep+r.st.Colorize(g.LeftTee+r.rule(marks, marks, length, length), style.ClassBorder))
	lines = append(lines, r.content(" ", r.headerLabel(note(1)), r.bitIndex(func(b int) byte {
		if b%10 != 0 {
			return ' '
		}
		return byte('0' + b/10%10)
	})))
	lines = append(lines, r.content(" ", r.headerLabel(note(2)), r.bitIndex(func(b int) byte {
		return byte('0' + b%10)
	})))
	return lines
}

func (r *renderer) headerLabel(text string) region {
	return region{text: text, width: r.labelW, align: r.labelAlign(), keys: []string{style.ClassHeader}}
}

func (r *renderer) writeLabel(reg region) string {
	var b strings.Builder
	r.writeRegion(&b, reg)
	return b.String()
}

// bitIndex builds one row of bit numbers, aligned with spaced bit digits.
func (r *renderer) bitIndex(digit func(bit int) byte) []region {
	base := len(spacedBits(0, 8))
	out := make([]region, len(r.widths))
	for c, w := range r.widths {
		buf := []byte(strings.Repeat(" ", w))
		off := (w - base) / 2
		for k := range 8 {
			buf[off+2*k] = digit(c*8 + k)
		}
		out[c] = region{text: string(buf), width: w, keys: []string{style.ClassHeader}}
	}
	return out
}

func (r *renderer) rowLines(p rowPlan) []string {
	segLine := func(text func(segPlan) string, a align, class func(segPlan) string) []region {
		out := make([]region, len(p.segs))
		for i, s := range p.segs {
			out[i] = region{text: text(s), width: s.width, align: a, keys: r.keys(s.Field, class(s))}
		}
		return out
	}
	rawClass := func(s segPlan) string {
		if f := r.field(s.Field); f != nil && f.Transform.Derives() {
			return style.ClassMaskedByte
		}
		return style.ClassRawByte
	}
	valueClass := func(segPlan) string { return style.ClassValue }
	unmaskedClass := func(segPlan) string { return style.ClassUnmaskedByte }
	label := func(text string, a align) region {
		return region{text: text, width: r.labelW, align: a, keys: []string{style.ClassLabel}}
	}

	lines := []string{
		r.content("", label(p.row.Label, r.labelAlign()),
			segLine(func(s segPlan) string { return s.bits }, alignCenter, rawClass)),
		r.content("", label(strconv.Itoa(p.row.Index), alignCenter),
			segLine(func(s segPlan) string { return s.value }, r.valueAlign(), valueClass)),
	}
	if p.derived {
		lines = append(lines,
			r.content("", label("", alignLeft),
				segLine(func(s segPlan) string { return s.dbits }, alignCenter, unmaskedClass)),
			r.content("", label(p.tag, r.labelAlign()),
				segLine(func(s segPlan) string { return s.dvalue }, r.valueAlign(), unmaskedClass)),
		)
	}

	for k := range p.height {
		regions := make([]region, len(p.labels))
		for i, l := range p.labels {
			text := ""
			start := (p.height - len(l.lines)) / 2
			if j := k - start; j >= 0 && j < len(l.lines) {
				text = l.lines[j]
			}
			regions[i] = region{text: text, width: l.width, align: alignCenter, keys: r.keys(l.field, style.ClassFieldLabel)}
		}
		lines = append(lines, r.content("", label("", alignLeft), regions))
	}
	return lines
}

// keys lists the color lookup keys for a field and class, field first.
func (r *renderer) keys(field int, class string) []string {
	if f := r.field(field); f != nil {
		return []string{f.Name, class}
	}
	return []string{class}
}
