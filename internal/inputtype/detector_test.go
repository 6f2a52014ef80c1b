package inputtype

import (
	"bytes"
	"strings"
	"testing"
)

var frame = []byte{0x81, 0x83, 0x5A, 0x0E, 0x91, 0x36, 0x3B, 0x6C, 0xF2}

func TestDetect(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   InputType
		reason string
	}{
		{
			name:   "raw frame bytes",
			input:  string(frame),
			want:   InputTypeRaw,
			reason: "non-printable",
		},
		{
			name:   "null byte",
			input:  "abc\x00def",
			want:   InputTypeRaw,
			reason: "null",
		},
		{
			name:  "compact hex",
			input: "81835a0e91363b6cf2\n",
			want:  InputTypeHex,
		},
		{
			name:  "spaced hex",
			input: "81 83 5A 0E 91 36 3B 6C F2",
			want:  InputTypeHex,
		},
		{
			name:  "prefixed hex",
			input: "0x81, 0x83, 0x5a",
			want:  InputTypeHex,
		},
		{
			name:  "colon separated hex",
			input: "81:83:5a",
			want:  InputTypeHex,
		},
		{
			name:  "base64",
			input: "gYNaDpE2O2zy",
			want:  InputTypeBase64,
		},
		{
			name:  "padded base64",
			input: "gYM=\n",
			want:  InputTypeBase64,
		},
		{
			name:   "plain text",
			input:  "hello, world!",
			want:   InputTypeRaw,
			reason: "outside",
		},
		{
			name:   "empty",
			input:  "",
			want:   InputTypeRaw,
			reason: "no printable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := Detect([]byte(tt.input))
			if got != tt.want {
				t.Errorf("Detect(%q) = %s (%s), want %s", tt.input, got, reason, tt.want)
			}
			if tt.reason != "" && !strings.Contains(reason, tt.reason) {
				t.Errorf("Expected reason to mention %q, got: %s", tt.reason, reason)
			}
		})
	}
}

func TestDetector_StopsOnBinary(t *testing.T) {
	d := NewDetector()
	if !d.Analyze(frame) {
		t.Fatal("Expected binary to be detected immediately")
	}
	if !d.IsDetected() {
		t.Error("Expected IsDetected after binary input")
	}
	if !d.Analyze([]byte("8183")) {
		t.Error("Expected Analyze to keep reporting detection")
	}
	if got, _ := d.Finish(); got != InputTypeRaw {
		t.Errorf("Expected raw, got %s", got)
	}
}

func TestDetector_Chunks(t *testing.T) {
	d := NewDetector()
	for _, chunk := range []string{"0", "x81 0", "x83\n"} {
		if d.Analyze([]byte(chunk)) {
			t.Fatalf("Did not expect a decision after %q", chunk)
		}
	}
	if got, reason := d.Finish(); got != InputTypeHex {
		t.Errorf("Expected hex across chunks, got %s (%s)", got, reason)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		as       InputType
		want     []byte
		wantType InputType
	}{
		{"auto hex", "81 83 5a 0e 91 36 3b 6c f2", InputTypeAuto, frame, InputTypeHex},
		{"auto base64", "gYNaDpE2O2zy", InputTypeAuto, frame, InputTypeBase64},
		{"auto raw", string(frame), InputTypeAuto, frame, InputTypeRaw},
		{"auto undecodable falls back", "a=b=", InputTypeAuto, []byte("a=b="), InputTypeRaw},
		{"auto leading padding falls back", "=abc", InputTypeAuto, []byte("=abc"), InputTypeRaw},
		{"forced raw", "8183", InputTypeRaw, []byte("8183"), InputTypeRaw},
		{"forced hex", "0x81 0x83", InputTypeHex, []byte{0x81, 0x83}, InputTypeHex},
		{"url base64", "_-8", InputTypeBase64, []byte{0xFF, 0xEF}, InputTypeBase64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, gotType, err := Decode([]byte(tt.input), tt.as)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Decode() = %x, want %x", got, tt.want)
			}
			if gotType != tt.wantType {
				t.Errorf("Decode() type = %s, want %s", gotType, tt.wantType)
			}
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	if _, _, err := Decode([]byte("zz"), InputTypeHex); err == nil {
		t.Error("Expected error for invalid hex")
	}
	if _, _, err := Decode([]byte("!!!"), InputTypeBase64); err == nil {
		t.Error("Expected error for invalid base64")
	}
	if _, _, err := Decode([]byte("x"), InputType("rot13")); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestParseInputType(t *testing.T) {
	for in, want := range map[string]InputType{
		"":       InputTypeAuto,
		"auto":   InputTypeAuto,
		"RAW":    InputTypeRaw,
		"binary": InputTypeRaw,
		"hex":    InputTypeHex,
		"b64":    InputTypeBase64,
		"base64": InputTypeBase64,
	} {
		got, err := ParseInputType(in)
		if err != nil || got != want {
			t.Errorf("ParseInputType(%q) = %s, %v; want %s", in, got, err, want)
		}
	}
	if _, err := ParseInputType("octal"); err == nil {
		t.Error("Expected error for unknown input format")
	}
}
