package format

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// WordSize is the row width in bits.
type WordSize int

const (
	Byte  WordSize = 8
	Word  WordSize = 16
	DWord WordSize = 32
	QWord WordSize = 64
)

// Valid reports whether w is one of the supported word sizes.
func (w WordSize) Valid() bool {
	switch w {
	case Byte, Word, DWord, QWord:
		return true
	}
	return false
}

// Name returns the row label prefix for the word size, e.g. "QWORD".
func (w WordSize) Name() string {
	switch w {
	case Byte:
		return "BYTE"
	case Word:
		return "WORD"
	case DWord:
		return "DWORD"
	case QWord:
		return "QWORD"
	default:
		return fmt.Sprintf("W%d", int(w))
	}
}

// CellsPerRow returns the number of byte cells in a row.
func (w WordSize) CellsPerRow() int {
	return int(w) / 8
}

// Mode selects the table shape.
type Mode int

const (
	// ModeBytes is a plain byte table. Annotations are optional and need
	// not cover the row.
	ModeBytes Mode = iota
	// ModeFrame is a protocol-frame table. Annotations must tile the
	// frame header without gaps.
	ModeFrame
)

func (m Mode) String() string {
	switch m {
	case ModeBytes:
		return "bytes"
	case ModeFrame:
		return "frame"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode maps a config name to a Mode. The empty string is ModeBytes.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bytes", "table":
		return ModeBytes, nil
	case "frame", "protocol":
		return ModeFrame, nil
	default:
		return ModeBytes, fmt.Errorf("unknown mode %q", s)
	}
}

// DefaultPartFormat is the label suffix of a field that continues over
// several rows.
const DefaultPartFormat = " (part %d)"

// FieldAnnotation names a contiguous bit range of the buffer.
type FieldAnnotation struct {
	Name string
	// Offset is the global bit offset of the field's first bit.
	Offset int
	// Length is the field width in bits.
	Length int
	// Transform optionally decodes the field's bytes.
	Transform *Transform
	// PartFormat overrides DefaultPartFormat. It receives the 1-based
	// part index.
	PartFormat string
}

// End returns the bit offset just past the field.
func (f FieldAnnotation) End() int {
	return f.Offset + f.Length
}

// Contains reports whether bit lies inside the field.
func (f FieldAnnotation) Contains(bit int) bool {
	return bit >= f.Offset && bit < f.End()
}

// PartLabel returns the field label for the given part. Fields that fit in
// one row (parts == 1) keep their bare name.
func (f FieldAnnotation) PartLabel(part, parts int) string {
	if parts <= 1 {
		return f.Name
	}
	pf := f.PartFormat
	if pf == "" {
		pf = DefaultPartFormat
	}
	return f.Name + fmt.Sprintf(pf, part)
}

// Sequence lays fields out back to back starting at bit start, ignoring
// their Offset values.
func Sequence(start int, fields ...FieldAnnotation) []FieldAnnotation {
	out := make([]FieldAnnotation, len(fields))
	off := start
	for i, f := range fields {
		f.Offset = off
		off += f.Length
		out[i] = f
	}
	return out
}

// Options is the caller-facing description of a table.
type Options struct {
	WordSize WordSize
	Mode     Mode
	// Title is shown in the header's label area. Defaults to "Bytes".
	Title string
	// Notes are extra header captions (frame mode shows up to three).
	Notes       []string
	Annotations []FieldAnnotation
}

// Descriptor is a validated, immutable table description.
type Descriptor struct {
	word   WordSize
	mode   Mode
	title  string
	notes  []string
	fields []FieldAnnotation
	byName map[string]int
}

// NewByteTable returns a descriptor for a plain byte table.
func NewByteTable(w WordSize) (*Descriptor, error) {
	return New(Options{WordSize: w, Mode: ModeBytes})
}

// New validates opts and returns the descriptor. All validation happens
// here; a descriptor that was built successfully never fails to render.
func New(opts Options) (*Descriptor, error) {
	d, err := build(opts)
	if err != nil {
		Logger().Debug("descriptor rejected", zap.Error(err))
		return nil, err
	}
	Logger().Debug("descriptor built",
		zap.Int("word_size", int(d.word)),
		zap.Stringer("mode", d.mode),
		zap.Int("annotations", len(d.fields)))
	return d, nil
}

func build(opts Options) (*Descriptor, error) {
	if !opts.WordSize.Valid() {
		return nil, invalid(ErrInvalidWordSize, nil, []int{int(opts.WordSize)},
			"word size %d not in {8,16,32,64}", int(opts.WordSize))
	}
	if opts.Mode != ModeBytes && opts.Mode != ModeFrame {
		return nil, fmt.Errorf("format: unknown mode %d", int(opts.Mode))
	}

	fields := make([]FieldAnnotation, len(opts.Annotations))
	copy(fields, opts.Annotations)

	byName := make(map[string]int, len(fields))
	for _, f := range fields {
		if err := checkDegenerate(f); err != nil {
			return nil, err
		}
		if _, dup := byName[f.Name]; dup {
			return nil, invalid(ErrDuplicateAnnotation, []string{f.Name}, []int{f.Offset}, "field names must be unique")
		}
		byName[f.Name] = -1
	}

	slices.SortStableFunc(fields, func(a, b FieldAnnotation) int {
		return a.Offset - b.Offset
	})
	for i := 1; i < len(fields); i++ {
		prev, cur := fields[i-1], fields[i]
		if cur.Offset < prev.End() {
			return nil, invalid(ErrOverlappingAnnotation,
				[]string{prev.Name, cur.Name},
				[]int{prev.Offset, cur.Offset},
				"bits [%d,%d) and [%d,%d) intersect", prev.Offset, prev.End(), cur.Offset, cur.End())
		}
	}
	for i, f := range fields {
		byName[f.Name] = i
	}

	for _, f := range fields {
		if err := checkTransform(f, fields, byName); err != nil {
			return nil, err
		}
	}

	if opts.Mode == ModeFrame {
		if err := checkCoverage(fields); err != nil {
			return nil, err
		}
	}

	title := opts.Title
	if title == "" {
		title = "Bytes"
	}
	return &Descriptor{
		word:   opts.WordSize,
		mode:   opts.Mode,
		title:  title,
		notes:  slices.Clone(opts.Notes),
		fields: fields,
		byName: byName,
	}, nil
}

func checkDegenerate(f FieldAnnotation) error {
	switch {
	case strings.TrimSpace(f.Name) == "":
		return invalid(ErrDegenerateAnnotation, []string{f.Name}, []int{f.Offset}, "field name is empty")
	case f.Length <= 0:
		return invalid(ErrDegenerateAnnotation, []string{f.Name}, []int{f.Offset}, "bit length %d is not positive", f.Length)
	case f.Offset < 0:
		return invalid(ErrDegenerateAnnotation, []string{f.Name}, []int{f.Offset}, "bit offset is negative")
	case f.Offset > math.MaxInt-f.Length:
		return invalid(ErrDegenerateAnnotation, []string{f.Name}, []int{f.Offset}, "bit range overflows")
	}
	return nil
}

func checkTransform(f FieldAnnotation, fields []FieldAnnotation, byName map[string]int) error {
	t := f.Transform
	if t == nil {
		return nil
	}
	switch t.Kind {
	case TransformNone, TransformASCII:
		return nil
	case TransformXOR:
	default:
		return invalid(ErrInvalidTransform, []string{f.Name}, []int{f.Offset}, "unknown transform kind %d", int(t.Kind))
	}
	if len(t.Key) > 0 {
		return nil
	}
	if t.KeyField == "" {
		return invalid(ErrInvalidTransform, []string{f.Name}, []int{f.Offset}, "xor needs a key or a key field")
	}
	i, ok := byName[t.KeyField]
	if !ok {
		return invalid(ErrInvalidTransform, []string{f.Name, t.KeyField}, []int{f.Offset}, "key field %q is not declared", t.KeyField)
	}
	if t.KeyField == f.Name {
		return invalid(ErrInvalidTransform, []string{f.Name}, []int{f.Offset}, "a field cannot be its own key")
	}
	key := fields[i]
	if key.Offset%8 != 0 || key.Length%8 != 0 {
		return invalid(ErrInvalidTransform, []string{f.Name, key.Name}, []int{f.Offset, key.Offset},
			"key field must cover whole bytes")
	}
	return nil
}

// checkCoverage enforces that frame annotations tile [0, end) and that end
// falls on a cell boundary. fields must be sorted by offset.
func checkCoverage(fields []FieldAnnotation) error {
	if len(fields) == 0 {
		return invalid(ErrIncompleteAnnotationCoverage, nil, nil, "frame mode needs annotations")
	}
	if first := fields[0]; first.Offset != 0 {
		return invalid(ErrIncompleteAnnotationCoverage, []string{first.Name}, []int{0, first.Offset},
			"gap at bits [0,%d) before %s", first.Offset, first.Name)
	}
	for i := 1; i < len(fields); i++ {
		prev, cur := fields[i-1], fields[i]
		if cur.Offset != prev.End() {
			return invalid(ErrIncompleteAnnotationCoverage,
				[]string{prev.Name, cur.Name},
				[]int{prev.End(), cur.Offset},
				"gap at bits [%d,%d) between %s and %s", prev.End(), cur.Offset, prev.Name, cur.Name)
		}
	}
	last := fields[len(fields)-1]
	if end := last.End(); end%8 != 0 {
		return invalid(ErrIncompleteAnnotationCoverage, []string{last.Name}, []int{end},
			"annotations cover %d bits, which ends inside a byte (next boundary at %d)", end, (end/8+1)*8)
	}
	return nil
}

// WordSize returns the row width in bits.
func (d *Descriptor) WordSize() WordSize { return d.word }

// CellsPerRow returns the number of cells in a full row.
func (d *Descriptor) CellsPerRow() int { return d.word.CellsPerRow() }

// RowBits returns the row width in bits.
func (d *Descriptor) RowBits() int { return int(d.word) }

// Mode returns the table shape.
func (d *Descriptor) Mode() Mode { return d.mode }

// Title returns the header title.
func (d *Descriptor) Title() string { return d.title }

// Notes returns a copy of the header captions.
func (d *Descriptor) Notes() []string { return slices.Clone(d.notes) }

// Annotations returns a copy of the annotations sorted by offset.
func (d *Descriptor) Annotations() []FieldAnnotation { return slices.Clone(d.fields) }

// NumAnnotations returns the number of annotations.
func (d *Descriptor) NumAnnotations() int { return len(d.fields) }

// Annotation returns the i-th annotation in offset order.
func (d *Descriptor) Annotation(i int) FieldAnnotation { return d.fields[i] }

// Lookup returns the offset-order index of the named annotation.
func (d *Descriptor) Lookup(name string) (int, bool) {
	i, ok := d.byName[name]
	return i, ok
}
