package format

import "fmt"

// TransformKind selects how a field's bytes are decoded for display.
type TransformKind int

const (
	TransformNone TransformKind = iota
	// TransformXOR unmasks bytes against a repeating key.
	TransformXOR
	// TransformASCII annotates bytes with their character.
	TransformASCII
)

func (k TransformKind) String() string {
	switch k {
	case TransformNone:
		return "none"
	case TransformXOR:
		return "xor"
	case TransformASCII:
		return "ascii"
	default:
		return fmt.Sprintf("TransformKind(%d)", int(k))
	}
}

// ParseTransformKind maps a config name to a TransformKind.
func ParseTransformKind(s string) (TransformKind, error) {
	switch s {
	case "", "none":
		return TransformNone, nil
	case "xor", "unmask":
		return TransformXOR, nil
	case "ascii", "char":
		return TransformASCII, nil
	default:
		return TransformNone, fmt.Errorf("unknown transform %q", s)
	}
}

// Transform derives a secondary display value from a field's raw bytes.
// For TransformXOR the key is either static (Key) or read from the bytes
// of another annotation in the same buffer (KeyField).
type Transform struct {
	Kind     TransformKind
	KeyField string
	Key      []byte
}

// XOR returns a transform that unmasks with the bytes of the named field.
func XOR(keyField string) *Transform {
	return &Transform{Kind: TransformXOR, KeyField: keyField}
}

// StaticXOR returns a transform that unmasks with a fixed key.
func StaticXOR(key []byte) *Transform {
	return &Transform{Kind: TransformXOR, Key: append([]byte(nil), key...)}
}

// ASCII returns a transform that decodes bytes as characters.
func ASCII() *Transform {
	return &Transform{Kind: TransformASCII}
}

// Derives reports whether the transform produces a byte distinct from the
// raw one.
func (t *Transform) Derives() bool {
	return t != nil && t.Kind == TransformXOR
}

// DerivedTag names the derived values in a table, e.g. "UNMASKED".
func (t *Transform) DerivedTag() string {
	if t.Derives() {
		return "UNMASKED"
	}
	return ""
}

// Decodes reports whether the transform's output is shown as a character.
func (t *Transform) Decodes() bool {
	return t != nil && (t.Kind == TransformXOR || t.Kind == TransformASCII)
}

// Apply returns the derived value of b, the index-th byte of the field.
// key is the resolved key for KeyField transforms; it is ignored when the
// transform carries a static key. ok is false when no key byte is
// available for index.
func (t *Transform) Apply(b byte, index int, key []byte) (derived byte, ok bool) {
	if t == nil {
		return b, false
	}
	switch t.Kind {
	case TransformXOR:
		if len(t.Key) > 0 {
			key = t.Key
		}
		if len(key) == 0 || index < 0 {
			return b, false
		}
		return Mask(b, key[index%len(key)]), true
	case TransformASCII:
		return b, true
	default:
		return b, false
	}
}

// Mask XORs b with k. Masking is its own inverse.
func Mask(b, k byte) byte {
	return b ^ k
}

// Unmask reverses Mask.
func Unmask(b, k byte) byte {
	return b ^ k
}

// Char returns the printable character for b, or '.' for bytes outside
// the printable ASCII range.
func Char(b byte) rune {
	if b < 32 || b > 126 {
		return '.'
	}
	return rune(b)
}
