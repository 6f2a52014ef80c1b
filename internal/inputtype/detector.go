package inputtype

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// InputType is the encoding of the bytes handed to the CLI.
type InputType string

const (
	InputTypeAuto   InputType = "auto"
	InputTypeRaw    InputType = "raw"
	InputTypeHex    InputType = "hex"
	InputTypeBase64 InputType = "base64"
)

// ParseInputType maps a flag value to an InputType.
func ParseInputType(s string) (InputType, error) {
	switch t := InputType(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return InputTypeAuto, nil
	case InputTypeAuto, InputTypeRaw, InputTypeHex, InputTypeBase64:
		return t, nil
	case "b64":
		return InputTypeBase64, nil
	case "binary":
		return InputTypeRaw, nil
	default:
		return "", fmt.Errorf("unknown input format %q", s)
	}
}

// Detector classifies input from the characters it contains. Feed it with
// Analyze and read the verdict from GetDetectedType.
// Note: a Detector is used from a single goroutine.
type Detector struct {
	detectedType    InputType
	detectionReason string
	detected        bool
	sampled         int
	maxSampleSize   int

	significant  int
	nonPrintable int
	hexDigits    int
	base64Only   int
	padding      int
	other        int

	// The last two bytes seen, for spotting "0x" prefixes.
	prev, prev2 byte
}

// NewDetector creates a new input type detector.
func NewDetector() *Detector {
	return &Detector{
		detectedType:  InputTypeRaw,
		maxSampleSize: 8192, // Analyze up to 8KB of input
		prev:          ' ',
		prev2:         ' ',
	}
}

// Analyze inspects the next chunk of input. It returns true once the type
// is certain; callers may stop feeding input then.
func (d *Detector) Analyze(chunk []byte) bool {
	if d.detected {
		return true
	}
	for _, c := range chunk {
		if d.sampled >= d.maxSampleSize {
			break
		}
		d.sampled++
		prefix := (c == 'x' || c == 'X') && d.prev == '0' && isSeparator(d.prev2)
		d.prev2, d.prev = d.prev, c
		switch {
		case c == 0:
			return d.decide(InputTypeRaw, "null byte detected")
		case isSeparator(c):
			continue
		case prefix:
			d.hexDigits--
			d.significant--
			continue
		case c < 32 || c > 126:
			d.nonPrintable++
		case isHexDigit(c):
			d.hexDigits++
		case isBase64Char(c):
			d.base64Only++
		case c == '=':
			d.padding++
		default:
			d.other++
		}
		d.significant++
	}
	if d.significant > 0 && float64(d.nonPrintable) > float64(d.significant)*0.3 {
		return d.decide(InputTypeRaw, "high proportion of non-printable characters detected")
	}
	return false
}

// Finish settles the type from everything analyzed so far.
func (d *Detector) Finish() (InputType, string) {
	if d.detected {
		return d.GetDetectedType()
	}
	switch {
	case d.significant == 0:
		d.decide(InputTypeRaw, "no printable content")
	case d.nonPrintable > 0 || d.other > 0:
		d.decide(InputTypeRaw, "characters outside the hex and base64 alphabets")
	case d.base64Only == 0 && d.padding == 0 && d.hexDigits%2 == 0:
		d.decide(InputTypeHex, "only hex digits detected")
	default:
		d.decide(InputTypeBase64, "only base64 characters detected")
	}
	return d.GetDetectedType()
}

func (d *Detector) decide(t InputType, reason string) bool {
	d.detectedType = t
	d.detectionReason = reason
	d.detected = true
	return true
}

// GetDetectedType returns the detected type and reason.
func (d *Detector) GetDetectedType() (InputType, string) {
	return d.detectedType, d.detectionReason
}

// IsDetected returns true if type has been determined.
func (d *Detector) IsDetected() bool {
	return d.detected
}

func isSeparator(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == ':' || c == ','
}

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func isBase64Char(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
		c == '+' || c == '/' || c == '-' || c == '_'
}

// Detect classifies data.
func Detect(data []byte) (InputType, string) {
	d := NewDetector()
	d.Analyze(data)
	return d.Finish()
}

// Decode turns data of type t into raw bytes. InputTypeAuto detects the
// type first and falls back to raw bytes when the text does not decode.
func Decode(data []byte, t InputType) ([]byte, InputType, error) {
	if t == InputTypeAuto || t == "" {
		detected, _ := Detect(data)
		if detected == InputTypeRaw {
			return data, InputTypeRaw, nil
		}
		out, _, err := Decode(data, detected)
		if err != nil {
			return data, InputTypeRaw, nil
		}
		return out, detected, nil
	}

	switch t {
	case InputTypeRaw:
		return data, t, nil
	case InputTypeHex:
		out, err := decodeHex(data)
		return out, t, err
	case InputTypeBase64:
		out, err := decodeBase64(data)
		return out, t, err
	default:
		return nil, t, fmt.Errorf("unknown input format %q", t)
	}
}

func decodeHex(data []byte) ([]byte, error) {
	var clean []byte
	for _, field := range bytes.FieldsFunc(data, func(r rune) bool {
		return r < 128 && isSeparator(byte(r))
	}) {
		field = bytes.TrimPrefix(bytes.TrimPrefix(field, []byte("0x")), []byte("0X"))
		clean = append(clean, field...)
	}
	out := make([]byte, hex.DecodedLen(len(clean)))
	if _, err := hex.Decode(out, clean); err != nil {
		return nil, fmt.Errorf("failed to decode hex input: %w", err)
	}
	return out, nil
}

func decodeBase64(data []byte) ([]byte, error) {
	clean := bytes.Join(bytes.Fields(data), nil)
	var lastErr error
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		out := make([]byte, enc.DecodedLen(len(clean)))
		n, err := enc.Decode(out, clean)
		if err == nil {
			return out[:n], nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("failed to decode base64 input: %w", lastErr)
}
