// Package style resolves border glyphs and colors for rendered tables.
//
// A Config may be partial. Resolve fills every missing option with the
// plain ASCII default and never fails.
package style

import (
	"maps"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

// Classes name the parts of a table that can be colored when no field
// name matches.
const (
	ClassBorder       = "border"
	ClassHeader       = "header"
	ClassLabel        = "label"
	ClassRawByte      = "raw-byte"
	ClassMaskedByte   = "masked-byte"
	ClassUnmaskedByte = "unmasked-byte"
	ClassValue        = "value"
	ClassFieldLabel   = "field-label"
)

// Glyphs are the characters used to draw borders. Each must be exactly
// one display column wide. The tees are where a rule meets the outer edge
// of the table; unset tees fall back to Junction.
type Glyphs struct {
	TopLeft     string `yaml:"top_left" toml:"top_left"`
	TopRight    string `yaml:"top_right" toml:"top_right"`
	BottomLeft  string `yaml:"bottom_left" toml:"bottom_left"`
	BottomRight string `yaml:"bottom_right" toml:"bottom_right"`
	Horizontal  string `yaml:"horizontal" toml:"horizontal"`
	Vertical    string `yaml:"vertical" toml:"vertical"`
	Junction    string `yaml:"junction" toml:"junction"`
	LeftTee     string `yaml:"left_tee" toml:"left_tee"`
	RightTee    string `yaml:"right_tee" toml:"right_tee"`
	TopTee      string `yaml:"top_tee" toml:"top_tee"`
	BottomTee   string `yaml:"bottom_tee" toml:"bottom_tee"`
}

// ASCII is the default glyph set.
var ASCII = Glyphs{
	TopLeft:     "+",
	TopRight:    "+",
	BottomLeft:  "+",
	BottomRight: "+",
	Horizontal:  "-",
	Vertical:    "|",
	Junction:    "+",
	LeftTee:     "+",
	RightTee:    "+",
	TopTee:      "+",
	BottomTee:   "+",
}

// Box draws with Unicode box-drawing characters.
var Box = Glyphs{
	TopLeft:     "┌",
	TopRight:    "┐",
	BottomLeft:  "└",
	BottomRight: "┘",
	Horizontal:  "─",
	Vertical:    "│",
	Junction:    "┼",
	LeftTee:     "├",
	RightTee:    "┤",
	TopTee:      "┬",
	BottomTee:   "┴",
}

// Preset returns the glyph set with the given name ("ascii" or "box").
func Preset(name string) (Glyphs, bool) {
	switch strings.ToLower(name) {
	case "", "ascii", "plain":
		return ASCII, true
	case "box", "unicode":
		return Box, true
	}
	return Glyphs{}, false
}

// Config is a possibly partial style. Colors maps a field name or a class
// to a color name.
type Config struct {
	Glyphs Glyphs            `yaml:"border_glyphs" toml:"border_glyphs"`
	Colors map[string]string `yaml:"colors" toml:"colors"`
}

// Resolved is a complete style. It is immutable and safe for concurrent
// use.
type Resolved struct {
	Glyphs Glyphs
	colors map[string]*color.Color
}

var palette = map[string]color.Attribute{
	"red":     color.FgRed,
	"green":   color.FgGreen,
	"yellow":  color.FgYellow,
	"blue":    color.FgBlue,
	"magenta": color.FgMagenta,
	"cyan":    color.FgCyan,
	"white":   color.FgWhite,
	"black":   color.FgBlack,
}

// ColorNames returns the recognized color names.
func ColorNames() []string {
	return slices.Sorted(maps.Keys(palette))
}

// Resolve fills in defaults. Unknown color names resolve to no color.
func Resolve(cfg Config) Resolved {
	r := Resolved{
		Glyphs: Glyphs{
			TopLeft:     glyph(cfg.Glyphs.TopLeft, ASCII.TopLeft),
			TopRight:    glyph(cfg.Glyphs.TopRight, ASCII.TopRight),
			BottomLeft:  glyph(cfg.Glyphs.BottomLeft, ASCII.BottomLeft),
			BottomRight: glyph(cfg.Glyphs.BottomRight, ASCII.BottomRight),
			Horizontal:  glyph(cfg.Glyphs.Horizontal, ASCII.Horizontal),
			Vertical:    glyph(cfg.Glyphs.Vertical, ASCII.Vertical),
			Junction:    glyph(cfg.Glyphs.Junction, ASCII.Junction),
		},
	}
	j := r.Glyphs.Junction
	r.Glyphs.LeftTee = glyph(cfg.Glyphs.LeftTee, j)
	r.Glyphs.RightTee = glyph(cfg.Glyphs.RightTee, j)
	r.Glyphs.TopTee = glyph(cfg.Glyphs.TopTee, j)
	r.Glyphs.BottomTee = glyph(cfg.Glyphs.BottomTee, j)
	for key, name := range cfg.Colors {
		attr, ok := palette[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			continue
		}
		if r.colors == nil {
			r.colors = make(map[string]*color.Color)
		}
		c := color.New(attr)
		// Applied regardless of fatih/color's terminal detection.
		c.EnableColor()
		r.colors[key] = c
	}
	return r
}

var widths = &runewidth.Condition{StrictEmojiNeutral: true}

// Width returns the display width of s. Ambiguous-width runes such as
// box-drawing characters count as one column.
func Width(s string) int {
	return widths.StringWidth(s)
}

func glyph(s, def string) string {
	if s == "" || Width(s) != 1 {
		return def
	}
	return s
}

// HasColor reports whether any color resolved.
func (r Resolved) HasColor() bool {
	return len(r.colors) > 0
}

// Color returns the color of the first key that has one, or nil.
func (r Resolved) Color(keys ...string) *color.Color {
	for _, k := range keys {
		if k == "" {
			continue
		}
		if c, ok := r.colors[k]; ok {
			return c
		}
	}
	return nil
}

// Colorize wraps text in the color of the first matching key. Text is
// returned unchanged when no key has a color.
func (r Resolved) Colorize(text string, keys ...string) string {
	if text == "" {
		return text
	}
	c := r.Color(keys...)
	if c == nil {
		return text
	}
	return c.Sprint(text)
}
