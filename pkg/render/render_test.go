package render

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"bitgrid/pkg/format"
	"bitgrid/pkg/layout"
	"bitgrid/pkg/style"
)

var maskedFrame = []byte{0x81, 0x83, 0x5A, 0x0E, 0x91, 0x36, 0x3B, 0x6C, 0xF2}

var ansi = regexp.MustCompile("\x1b\\[[0-9;]*m")

func qwords(t *testing.T) *format.Descriptor {
	t.Helper()
	d, err := format.NewByteTable(format.QWord)
	require.NoError(t, err)
	return d
}

func headerFields() []format.FieldAnnotation {
	return format.Sequence(0,
		format.FieldAnnotation{Name: "FIN", Length: 1},
		format.FieldAnnotation{Name: "RSV1", Length: 1},
		format.FieldAnnotation{Name: "RSV2", Length: 1},
		format.FieldAnnotation{Name: "RSV3", Length: 1},
		format.FieldAnnotation{Name: "op code", Length: 4},
		format.FieldAnnotation{Name: "MASK", Length: 1},
		format.FieldAnnotation{Name: "Payload len", Length: 7},
	)
}

func frameDescriptor(t *testing.T) *format.Descriptor {
	t.Helper()
	fields := append(headerFields(), format.Sequence(16,
		format.FieldAnnotation{Name: "Masking-key", Length: 32},
		format.FieldAnnotation{Name: "Payload Data", Length: 24, Transform: format.XOR("Masking-key")},
	)...)
	d, err := format.New(format.Options{
		WordSize:    format.DWord,
		Mode:        format.ModeFrame,
		Title:       "Frame Data",
		Notes:       []string{"(Masked)", "(Short)"},
		Annotations: fields,
	})
	require.NoError(t, err)
	return d
}

func TestBytes_OneByte(t *testing.T) {
	want := "       +--------+--------+--------+--------+--------+--------+--------+--------+\n" +
		" Bytes | Byte 0 | Byte 1 | Byte 2 | Byte 3 | Byte 4 | Byte 5 | Byte 6 | Byte 7 |\n" +
		"+------+--------+--------+--------+--------+--------+--------+--------+--------+\n" +
		"|QWORD |10000001|\n" +
		"|  1   |   (129)|\n" +
		"+------+--------+\n"

	require.Equal(t, want, Text(Bytes([]byte{129}, qwords(t), style.Config{})))
}

func TestBytes_TwoRows(t *testing.T) {
	want := []string{
		"       +--------+--------+--------+--------+--------+--------+--------+--------+",
		" Bytes | Byte 0 | Byte 1 | Byte 2 | Byte 3 | Byte 4 | Byte 5 | Byte 6 | Byte 7 |",
		"+------+--------+--------+--------+--------+--------+--------+--------+--------+",
		"|QWORD |10000001|10000011|01011010|00001110|10010001|00110110|00111011|01101100|",
		"|  1   |   (129)|   (131)|    (90)|    (14)|   (145)|    (54)|    (59)|   (108)|",
		"+------+--------+--------+--------+--------+--------+--------+--------+--------+",
		"|QWORD |11110010|",
		"|  2   |   (242)|",
		"+------+--------+",
	}
	require.Equal(t, want, Bytes(maskedFrame, qwords(t), style.Config{}))
}

func TestBytes_Empty(t *testing.T) {
	require.Empty(t, Bytes(nil, qwords(t), style.Config{}))
	require.Equal(t, "", Text(nil))
}

func TestBytes_PartialRowBorders(t *testing.T) {
	d, err := format.NewByteTable(format.Word)
	require.NoError(t, err)

	want := []string{
		"       +--------+--------+",
		" Bytes | Byte 0 | Byte 1 |",
		"+------+--------+--------+",
		"|WORD  |00000001|00000010|",
		"|  1   |     (1)|     (2)|",
		"+------+--------+--------+",
		"|WORD  |00000011|",
		"|  2   |     (3)|",
		"+------+--------+",
	}
	require.Equal(t, want, Bytes([]byte{1, 2, 3}, d, style.Config{}))
}

func TestRender_FrameHeader(t *testing.T) {
	d, err := format.New(format.Options{
		WordSize:    format.DWord,
		Mode:        format.ModeFrame,
		Annotations: headerFields(),
	})
	require.NoError(t, err)

	want := []string{
		"        +---------------+---------------+---------------+---------------+",
		"  Bytes |    Byte 0     |    Byte 1     |    Byte 2     |    Byte 3     |",
		"        +---------------+---------------+---------------+---------------+",
		"        |0              |    1          |        2      |            3  |",
		"        |0 1 2 3 4 5 6 7|8 9 0 1 2 3 4 5|6 7 8 9 0 1 2 3|4 5 6 7 8 9 0 1|",
		"+-------+-+-+-+-+-------+-+-------------+---------------+---------------+",
		"| DWORD |1|0|0|0|0 0 0 1|1|0 0 0 0 0 1 1|",
		"|   1   | | | | |  (1)  | |     (3)     |",
		"|       |F|R|R|R|       |M|             |",
		"|       |I|S|S|S|op code|A| Payload len |",
		"|       |N|V|V|V| (4 b) |S|  (7 bits)   |",
		"|       | |1|2|3|       |K|             |",
		"+-------+-+-+-+-+-------+-+-------------+",
	}
	require.Equal(t, want, Bytes([]byte{0x81, 0x83}, d, style.Config{}))
}

func TestRender_MaskedFrame(t *testing.T) {
	lines := Bytes(maskedFrame, frameDescriptor(t), style.Config{})
	out := Text(lines)

	require.Contains(t, lines[1], "Frame Data")
	require.Contains(t, lines[2], "(Masked)")
	require.Contains(t, lines[3], "(Short)")
	require.Contains(t, out, "Masking-key (part 1)")
	require.Contains(t, out, "Masking-key (part 2)")
	require.Contains(t, out, "Payload Data (part 1)")
	require.Contains(t, out, "(16 bits)")
	require.Contains(t, out, "|0 1 1 0 0 0 0 1|0 1 1 0 0 0 1 0|")
	require.Contains(t, out, "(97) 'a'")
	require.Contains(t, out, "(98) 'b'")
	require.Contains(t, out, "(99) 'c'")

	require.Contains(t, out, "|  UNMASKED  |"+strings.Repeat(" ", 15)+"|"+strings.Repeat(" ", 15)+"|   (97) 'a'    |   (98) 'b'    |")

	// Payload Data (part 2) is wrapped into the single remaining column.
	require.Contains(t, out, "| Payload Data  |")
	require.Contains(t, out, "|   (part 2)    |")
}

func TestRender_RowLinesShareWidth(t *testing.T) {
	lines := Bytes(maskedFrame, frameDescriptor(t), style.Config{})
	var group []string
	flush := func() {
		for _, l := range group {
			require.Equal(t, len(group[0]), len(l), "%q", group)
		}
		group = nil
	}
	for _, l := range lines[5:] {
		if strings.HasPrefix(l, "+") {
			flush()
			continue
		}
		group = append(group, l)
	}
	flush()
}

func TestRender_ASCIIField(t *testing.T) {
	d, err := format.New(format.Options{
		WordSize: format.Word,
		Annotations: []format.FieldAnnotation{
			{Name: "text", Offset: 0, Length: 16, Transform: format.ASCII()},
		},
	})
	require.NoError(t, err)

	want := []string{
		"       +---------+---------+",
		" Bytes | Byte 0  | Byte 1  |",
		"+------+---------+---------+",
		"|WORD  |01101000 |01101001 |",
		"|  1   |(104) 'h'|(105) 'i'|",
		"|      |       text        |",
		"+------+-------------------+",
	}
	require.Equal(t, want, Bytes([]byte("hi"), d, style.Config{}))
}

func TestRender_UnmaskedTag(t *testing.T) {
	d, err := format.New(format.Options{
		WordSize: format.Word,
		Annotations: []format.FieldAnnotation{
			{Name: "data", Offset: 0, Length: 16, Transform: format.StaticXOR([]byte{0xFF})},
		},
	})
	require.NoError(t, err)

	want := []string{
		"          +---------+--------+",
		" Bytes    | Byte 0  | Byte 1 |",
		"+---------+---------+--------+",
		"|WORD     |00001111 |11110000|",
		"|    1    |     (15)|   (240)|",
		"|         |11110000 |00001111|",
		"|UNMASKED |(240) '.'|(15) '.'|",
		"|         |       data       |",
		"+---------+------------------+",
	}
	require.Equal(t, want, Bytes([]byte{0x0F, 0xF0}, d, style.Config{}))
}

func TestRender_Deterministic(t *testing.T) {
	d := frameDescriptor(t)
	cfg := style.Config{Colors: map[string]string{"Payload Data": "green"}}
	require.Equal(t, Bytes(maskedFrame, d, cfg), Bytes(maskedFrame, d, cfg))
}

func TestRender_StyleFallback(t *testing.T) {
	d := frameDescriptor(t)
	plain := Bytes(maskedFrame, d, style.Config{})

	require.Equal(t, plain, Bytes(maskedFrame, d, style.Config{Glyphs: style.ASCII}))
	require.Equal(t, plain, Bytes(maskedFrame, d, style.Config{
		Glyphs: style.Glyphs{Vertical: "||", Horizontal: ""},
		Colors: map[string]string{"no-such-field": "mauve"},
	}))
}

func TestRender_BoxGlyphs(t *testing.T) {
	lines := Bytes(maskedFrame, qwords(t), style.Config{Glyphs: style.Box})

	cell := strings.Repeat("─", 8)
	require.Equal(t, "       ┌"+strings.Repeat(cell+"┬", 7)+cell+"┐", lines[0])
	require.Equal(t, "┌──────┼"+strings.Repeat(cell+"┼", 7)+cell+"┤", lines[2])
	require.True(t, strings.HasPrefix(lines[3], "│QWORD │"))
	// The second row has a single cell.
	require.Equal(t, "├──────┼"+cell+"┼"+strings.Repeat(cell+"┴", 6)+cell+"┘", lines[5])
	require.Equal(t, "└──────┴"+cell+"┘", lines[len(lines)-1])

	ascii := Bytes(maskedFrame, qwords(t), style.Config{})
	for i := range lines {
		require.Equal(t, style.Width(ascii[i]), style.Width(lines[i]))
	}
}

func TestRender_Colors(t *testing.T) {
	d := frameDescriptor(t)
	cfg := style.Config{Colors: map[string]string{
		style.ClassBorder:       "blue",
		"Masking-key":           "red",
		style.ClassUnmaskedByte: "green",
	}}
	colored := Bytes(maskedFrame, d, cfg)
	plain := Bytes(maskedFrame, d, style.Config{})

	out := Text(colored)
	require.Contains(t, out, "\x1b[34m")
	require.Contains(t, out, "\x1b[31m")
	require.Contains(t, out, "\x1b[32m")

	require.Len(t, colored, len(plain))
	for i := range colored {
		require.Equal(t, plain[i], ansi.ReplaceAllString(colored[i], ""))
	}
}

func TestRender_BoxFrameTees(t *testing.T) {
	lines := Bytes(maskedFrame, frameDescriptor(t), style.Config{Glyphs: style.Box})

	// Header separator between the titles and the bit numbers.
	require.True(t, strings.HasSuffix(lines[2], "├"+strings.Repeat(strings.Repeat("─", 15)+"┼", 3)+strings.Repeat("─", 15)+"┤"), lines[2])
	// First row: the flag columns start below full byte columns.
	require.Contains(t, lines[5], "┼─┬─┬─┬─┬───────┼─┬─────────────┼")
	for _, l := range lines[5:] {
		if strings.HasPrefix(l, "│") {
			continue
		}
		require.NotContains(t, l, "+")
	}
}

func TestRender_TruncatedFieldCaption(t *testing.T) {
	d, err := format.New(format.Options{
		WordSize: format.QWord,
		Mode:     format.ModeFrame,
		Annotations: append(headerFields(), format.Sequence(16,
			format.FieldAnnotation{Name: "Masking-key", Length: 32},
		)...),
	})
	require.NoError(t, err)

	// The buffer ends after three of the four key bytes.
	out := Text(Bytes(maskedFrame[:5], d, style.Config{}))
	require.Contains(t, out, "Masking-key")
	require.Contains(t, out, "(24 of 32 bits)")
	require.NotContains(t, out, "(24 bits)")

	out = Text(Bytes(maskedFrame[:6], d, style.Config{}))
	require.Contains(t, out, "(32 bits)")
}

func TestRender_EmptyTable(t *testing.T) {
	require.Nil(t, Render(layout.Table{Descriptor: qwords(t)}, style.Config{}))
	require.Nil(t, Render(layout.Table{}, style.Config{}))
}

func TestWrap(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  []string
	}{
		{"FIN", 1, []string{"F", "I", "N"}},
		{"op code", 7, []string{"op code"}},
		{"Masking-key (part 1)", 31, []string{"Masking-key (part 1)"}},
		{"Masking-key (part 1)", 10, []string{"Masking-", "key (part", "1)"}},
		{"Masking-key (part 1)", 9, []string{"Masking-", "key (part", "1)"}},
		{"Masking-key", 8, []string{"Masking-", "key"}},
		{"Masking-key", 5, []string{"Maski", "ng-", "key"}},
		{"-key", 2, []string{"-k", "ey"}},
		{"Payload Data (part 2)", 15, []string{"Payload Data", "(part 2)"}},
		{"", 5, nil},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			require.Equal(t, tt.want, wrap(tt.text, tt.width))
		})
	}
}

func TestCaption(t *testing.T) {
	require.Equal(t, "(16 bits)", caption(16, 16, 31))
	require.Equal(t, "(4 b)", caption(4, 4, 7))
	require.Equal(t, "", caption(1, 1, 1))
	require.Equal(t, "(24 of 32 bits)", caption(24, 32, 31))
	require.Equal(t, "(8/16 b)", caption(8, 16, 10))
	require.Equal(t, "(8/16)", caption(8, 16, 7))
	require.Equal(t, "", caption(8, 16, 5))
}

func TestBits(t *testing.T) {
	require.Equal(t, "10000001", compactBits(0x81, 8))
	require.Equal(t, "0001", compactBits(1, 4))
	require.Equal(t, "0 0 0 0 0 1 1", spacedBits(3, 7))
	require.Equal(t, "1", spacedBits(1, 1))
}
