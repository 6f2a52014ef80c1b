// Package config loads table schemas from YAML or TOML files.
//
// A schema file names the word size, the table mode, the field
// annotations and an optional style:
//
//	word_size: 32
//	mode: frame
//	title: Frame Data
//	annotations:
//	  - {name: FIN, bits: 1}
//	  - {name: opcode, bits: 7}
//	  - {name: key, bits: 32}
//	  - {name: payload, bits: 24, transform: {kind: xor, key_field: key}}
//	style:
//	  colors: {payload: green}
//
// Annotations without an offset start where the previous one ended.
package config

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"bitgrid/pkg/format"
	"bitgrid/pkg/style"
)

// Syntax is the file format of a schema.
type Syntax string

const (
	SyntaxYAML Syntax = "yaml"
	SyntaxTOML Syntax = "toml"
)

// DefaultWordSize is used when a schema does not set word_size.
const DefaultWordSize = format.QWord

type fileConfig struct {
	WordSize    int              `yaml:"word_size" toml:"word_size"`
	Mode        string           `yaml:"mode" toml:"mode"`
	Title       string           `yaml:"title" toml:"title"`
	Notes       []string         `yaml:"notes" toml:"notes"`
	Annotations []fileAnnotation `yaml:"annotations" toml:"annotations"`
	Style       style.Config     `yaml:"style" toml:"style"`
}

type fileAnnotation struct {
	Name       string         `yaml:"name" toml:"name"`
	Offset     *int           `yaml:"offset" toml:"offset"`
	Bits       int            `yaml:"bits" toml:"bits"`
	PartFormat string         `yaml:"part_format" toml:"part_format"`
	Transform  *fileTransform `yaml:"transform" toml:"transform"`
}

type fileTransform struct {
	Kind     string `yaml:"kind" toml:"kind"`
	KeyField string `yaml:"key_field" toml:"key_field"`
	// Key is a static XOR key in hex.
	Key string `yaml:"key" toml:"key"`
}

// Schema is a loaded schema file.
type Schema struct {
	Options format.Options
	Style   style.Config
}

// Descriptor validates the schema's options.
func (s Schema) Descriptor() (*format.Descriptor, error) {
	return format.New(s.Options)
}

// SyntaxFor picks the syntax from a file extension.
func SyntaxFor(path string) (Syntax, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return SyntaxYAML, nil
	case ".toml":
		return SyntaxTOML, nil
	default:
		return "", fmt.Errorf("unsupported schema file extension %q", filepath.Ext(path))
	}
}

// Load reads the schema file at path.
func Load(path string) (Schema, error) {
	syntax, err := SyntaxFor(path)
	if err != nil {
		return Schema{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, fmt.Errorf("failed to read schema: %w", err)
	}
	s, err := Parse(data, syntax)
	if err != nil {
		return Schema{}, fmt.Errorf("load schema %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a schema.
func Parse(data []byte, syntax Syntax) (Schema, error) {
	var raw fileConfig
	switch syntax {
	case SyntaxYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return Schema{}, fmt.Errorf("parse yaml: %w", err)
		}
	case SyntaxTOML:
		meta, err := toml.Decode(string(data), &raw)
		if err != nil {
			return Schema{}, fmt.Errorf("parse toml: %w", err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return Schema{}, fmt.Errorf("parse toml: unknown key %q", undecoded[0].String())
		}
	default:
		return Schema{}, fmt.Errorf("unknown schema syntax %q", syntax)
	}
	return raw.schema()
}

func (raw fileConfig) schema() (Schema, error) {
	mode, err := format.ParseMode(raw.Mode)
	if err != nil {
		return Schema{}, err
	}
	opts := format.Options{
		WordSize: format.WordSize(raw.WordSize),
		Mode:     mode,
		Title:    strings.TrimSpace(raw.Title),
		Notes:    raw.Notes,
	}
	if raw.WordSize == 0 {
		opts.WordSize = DefaultWordSize
	}

	next := 0
	for i, a := range raw.Annotations {
		f := format.FieldAnnotation{
			Name:       strings.TrimSpace(a.Name),
			Offset:     next,
			Length:     a.Bits,
			PartFormat: a.PartFormat,
		}
		if a.Offset != nil {
			f.Offset = *a.Offset
		}
		if a.Transform != nil {
			t, err := a.Transform.transform()
			if err != nil {
				return Schema{}, fmt.Errorf("annotation %d (%s): %w", i, f.Name, err)
			}
			f.Transform = t
		}
		opts.Annotations = append(opts.Annotations, f)
		next = f.End()
	}
	return Schema{Options: opts, Style: raw.Style}, nil
}

func (ft fileTransform) transform() (*format.Transform, error) {
	kind, err := format.ParseTransformKind(strings.ToLower(strings.TrimSpace(ft.Kind)))
	if err != nil {
		return nil, err
	}
	switch kind {
	case format.TransformNone:
		return nil, nil
	case format.TransformASCII:
		return format.ASCII(), nil
	}
	if ft.Key == "" {
		return format.XOR(strings.TrimSpace(ft.KeyField)), nil
	}
	key, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(ft.Key), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid xor key: %w", err)
	}
	return format.StaticXOR(key), nil
}
