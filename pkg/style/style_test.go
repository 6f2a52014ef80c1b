package style

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
)

func TestResolve_Defaults(t *testing.T) {
	r := Resolve(Config{})
	require.Equal(t, ASCII, r.Glyphs)
	require.False(t, r.HasColor())
	require.Equal(t, "text", r.Colorize("text", ClassBorder, "FIN"))
}

func TestResolve_GlyphFallback(t *testing.T) {
	r := Resolve(Config{Glyphs: Glyphs{
		TopLeft:    "#",
		Horizontal: "==",
		Vertical:   "界",
		Junction:   "┼",
	}})
	require.Equal(t, "#", r.Glyphs.TopLeft)
	require.Equal(t, ASCII.Horizontal, r.Glyphs.Horizontal, "two columns wide")
	require.Equal(t, ASCII.Vertical, r.Glyphs.Vertical, "wide rune")
	require.Equal(t, "┼", r.Glyphs.Junction)
	require.Equal(t, ASCII.BottomRight, r.Glyphs.BottomRight)
}

func TestResolve_TeesFallBackToJunction(t *testing.T) {
	r := Resolve(Config{Glyphs: Glyphs{Junction: "*", RightTee: "]", TopTee: "~~"}})
	require.Equal(t, "*", r.Glyphs.LeftTee)
	require.Equal(t, "]", r.Glyphs.RightTee)
	require.Equal(t, "*", r.Glyphs.TopTee, "two columns wide")
	require.Equal(t, "*", r.Glyphs.BottomTee)

	r = Resolve(Config{Glyphs: Glyphs{Junction: "==="}})
	require.Equal(t, ASCII.Junction, r.Glyphs.LeftTee)
}

func TestResolve_Box(t *testing.T) {
	require.Equal(t, Box, Resolve(Config{Glyphs: Box}).Glyphs)
}

func TestPreset(t *testing.T) {
	tests := []struct {
		name string
		want Glyphs
		ok   bool
	}{
		{"", ASCII, true},
		{"ascii", ASCII, true},
		{"BOX", Box, true},
		{"fancy", Glyphs{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Preset(tt.name)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_Colors(t *testing.T) {
	r := Resolve(Config{Colors: map[string]string{
		"Payload Data": "Cyan",
		ClassBorder:    "blue",
		"MASK":         "purple",
	}})
	require.True(t, r.HasColor())

	require.Nil(t, r.Color("MASK"), "unknown color names are ignored")
	require.Nil(t, r.Color("unused-field"))

	want := color.New(color.FgCyan)
	want.EnableColor()
	require.Equal(t, want.Sprint("abc"), r.Colorize("abc", "Payload Data", ClassBorder))
	require.Contains(t, r.Colorize("abc", "Payload Data"), "\x1b[36m")

	// The field name wins over the class.
	require.Contains(t, r.Colorize("x", "", ClassBorder), "\x1b[34m")
	require.Equal(t, "", r.Colorize("", ClassBorder))
}

func TestColorNames(t *testing.T) {
	require.Equal(t,
		[]string{"black", "blue", "cyan", "green", "magenta", "red", "white", "yellow"},
		ColorNames())
}

func TestWidth(t *testing.T) {
	require.Equal(t, 5, Width("(129)"))
	require.Equal(t, 1, Width("┼"))
	require.Equal(t, 2, Width("界"))
}
