package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"bitgrid/internal/config"
	"bitgrid/internal/inputtype"
	"bitgrid/pkg/format"
	"bitgrid/pkg/layout"
	"bitgrid/pkg/markdown"
	"bitgrid/pkg/render"
	"bitgrid/pkg/style"
	"bitgrid/pkg/wsframe"
)

var log = zap.NewNop()

// defaultColors apply when colors are on and the style names none.
var defaultColors = map[string]string{
	style.ClassHeader:       "cyan",
	style.ClassMaskedByte:   "yellow",
	style.ClassUnmaskedByte: "green",
	style.ClassFieldLabel:   "magenta",
}

var bannerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#7D56F4")).
	Border(lipgloss.RoundedBorder()).
	Padding(0, 1)

func setupLogging(verbose bool) error {
	if !verbose {
		log = zap.NewNop()
	} else {
		l, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		log = l
	}
	format.SetLogger(log.Named("format"))
	layout.SetLogger(log.Named("layout"))
	return nil
}

// readInput reads the file named by args, or stdin, and decodes it.
func readInput(cmd *cobra.Command, args []string, opts *options) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 1 && args[0] != "-" {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	want, err := inputtype.ParseInputType(opts.inputFormat)
	if err != nil {
		return nil, err
	}
	out, got, err := inputtype.Decode(data, want)
	if err != nil {
		return nil, err
	}
	log.Debug("input decoded",
		zap.String("requested", string(want)),
		zap.String("detected", string(got)),
		zap.Int("bytes", len(out)))
	return out, nil
}

func wordSize(opts *options, def format.WordSize) format.WordSize {
	if opts.wordSize == 0 {
		return def
	}
	return format.WordSize(opts.wordSize)
}

// styleFor merges the schema style with the command line flags.
func styleFor(cmd *cobra.Command, opts *options, base style.Config) (style.Config, error) {
	cfg := base
	if cmd.Flags().Changed("glyphs") || cfg.Glyphs == (style.Glyphs{}) {
		g, ok := style.Preset(opts.glyphs)
		if !ok {
			return style.Config{}, fmt.Errorf("unknown glyph set %q", opts.glyphs)
		}
		cfg.Glyphs = g
	}

	on, err := colorEnabled(cmd, opts)
	if err != nil {
		return style.Config{}, err
	}
	switch {
	case !on || opts.html:
		cfg.Colors = nil
	case len(cfg.Colors) == 0:
		cfg.Colors = defaultColors
	}
	return cfg, nil
}

func colorEnabled(cmd *cobra.Command, opts *options) (bool, error) {
	switch opts.colorMode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto", "":
		f, ok := cmd.OutOrStdout().(*os.File)
		return ok && term.IsTerminal(int(f.Fd())), nil
	default:
		return false, fmt.Errorf("unknown color mode %q (want auto, always or never)", opts.colorMode)
	}
}

func emit(cmd *cobra.Command, opts *options, d *format.Descriptor, data []byte, cfg style.Config) error {
	lines := render.Bytes(data, d, cfg)
	var out string
	if opts.html {
		out = markdown.TableHTML(markdown.Section{
			Heading: d.Title(),
			Notes:   d.Notes(),
			Lines:   lines,
		})
	} else {
		out = render.Text(lines)
	}
	if _, err := io.WriteString(cmd.OutOrStdout(), out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func runBytes(cmd *cobra.Command, args []string, opts *options) error {
	data, err := readInput(cmd, args, opts)
	if err != nil {
		return err
	}
	d, err := format.NewByteTable(wordSize(opts, format.QWord))
	if err != nil {
		return err
	}
	cfg, err := styleFor(cmd, opts, style.Config{})
	if err != nil {
		return err
	}
	return emit(cmd, opts, d, data, cfg)
}

func runFrame(cmd *cobra.Command, args []string, opts *options) error {
	data, err := readInput(cmd, args, opts)
	if err != nil {
		return err
	}
	d, h, err := wsframe.Describe(data, wsframe.Options{WordSize: wordSize(opts, format.DWord)})
	if err != nil {
		return fmt.Errorf("describe frame: %w", err)
	}
	log.Debug("frame header", zap.String("summary", h.Summary()), zap.Int("header_bits", h.HeaderBits()))

	summary := h.Summary()
	if ce, ok := wsframe.CloseStatus(data, h); ok {
		log.Debug("close status", zap.Int("code", ce.Code), zap.Bool("expected", wsframe.Expected(ce)))
		summary += "\n" + ce.Error()
	}
	if !opts.html {
		banner := bannerStyle.Renderer(lipgloss.NewRenderer(cmd.ErrOrStderr())).Render(summary)
		fmt.Fprintln(cmd.ErrOrStderr(), banner)
	}

	cfg, err := styleFor(cmd, opts, style.Config{})
	if err != nil {
		return err
	}
	return emit(cmd, opts, d, data, cfg)
}

func runSchema(cmd *cobra.Command, args []string, opts *options) error {
	schema, err := config.Load(opts.schemaPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("word-size") {
		schema.Options.WordSize = format.WordSize(opts.wordSize)
	}
	d, err := schema.Descriptor()
	if err != nil {
		return fmt.Errorf("invalid schema %s: %w", opts.schemaPath, err)
	}

	data, err := readInput(cmd, args, opts)
	if err != nil {
		return err
	}
	cfg, err := styleFor(cmd, opts, schema.Style)
	if err != nil {
		return err
	}
	return emit(cmd, opts, d, data, cfg)
}
