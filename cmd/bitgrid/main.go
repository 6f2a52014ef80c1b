package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type options struct {
	wordSize    int
	inputFormat string
	glyphs      string
	colorMode   string
	html        bool
	verbose     bool
	schemaPath  string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "bitgrid",
		Short: "bitgrid - Bit-annotated tables for binary buffers",
		Long: `bitgrid renders binary buffers as bordered tables of bytes and bits.

Input is read from a file or from stdin. Hex and base64 text input is
detected and decoded unless --input-format says otherwise.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(opts.verbose)
		},
	}

	bytesCmd := &cobra.Command{
		Use:   "bytes [file]",
		Short: "Print a plain byte table",
		Long:  `Print the input as rows of bytes. --word-size selects the row width (8, 16, 32 or 64 bits).`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBytes(cmd, args, opts)
		},
	}

	frameCmd := &cobra.Command{
		Use:   "frame [file]",
		Short: "Annotate a WebSocket frame",
		Long: `Annotate a single WebSocket frame: header flags, opcode, payload length,
masking key and payload. Masked payloads are shown unmasked next to the raw bytes.
A short summary of the header is written to stderr.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFrame(cmd, args, opts)
		},
	}

	schemaCmd := &cobra.Command{
		Use:   "schema --schema file [input]",
		Short: "Annotate input with a YAML or TOML schema",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(cmd, args, opts)
		},
	}
	schemaCmd.Flags().StringVar(&opts.schemaPath, "schema", "", "Schema file (.yaml, .yml or .toml)")
	_ = schemaCmd.MarkFlagRequired("schema")

	flags := rootCmd.PersistentFlags()
	flags.IntVarP(&opts.wordSize, "word-size", "w", 0, "Row width in bits: 8, 16, 32 or 64 (default: 64 for bytes, 32 for frame)")
	flags.StringVar(&opts.inputFormat, "input-format", "auto", "Input encoding: auto, raw, hex or base64")
	flags.StringVar(&opts.glyphs, "glyphs", "ascii", "Border glyphs: ascii or box")
	flags.StringVar(&opts.colorMode, "color", "auto", "Colorize output: auto, always or never")
	flags.BoolVar(&opts.html, "html", false, "Print a sanitized HTML fragment instead of text")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log layout decisions to stderr")

	rootCmd.AddCommand(bytesCmd)
	rootCmd.AddCommand(frameCmd)
	rootCmd.AddCommand(schemaCmd)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
