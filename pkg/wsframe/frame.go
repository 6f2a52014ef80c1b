// Package wsframe builds table descriptors for WebSocket frames.
//
// The descriptor is derived from the frame's own header: the MASK bit
// decides whether a masking key is present and the 7-bit payload length
// selects the extended length width through a LengthPolicy. Frames are
// never validated; a truncated frame renders whatever bytes exist.
package wsframe

import (
	"errors"
	"fmt"
	"math"

	"bitgrid/pkg/format"
)

// Field names used in frame descriptors. They are also the keys for
// per-field colors.
const (
	FieldFin            = "FIN"
	FieldRSV1           = "RSV1"
	FieldRSV2           = "RSV2"
	FieldRSV3           = "RSV3"
	FieldOpcode         = "op code"
	FieldMask           = "MASK"
	FieldPayloadLen     = "Payload len"
	FieldExtendedLength = "Extended payload length"
	FieldMaskingKey     = "Masking-key"
	FieldPayload        = "Payload Data"
)

// Title is the header title of frame tables.
const Title = "Frame Data"

// ErrShortFrame is returned for frames without a complete two byte base
// header.
var ErrShortFrame = errors.New("wsframe: frame shorter than 2 bytes")

// maxPayload caps the declared payload length used for the payload field.
const maxPayload = math.MaxInt32

// LengthPolicy returns the width in bits of the extended payload length
// that follows a 7-bit payload length. Zero means there is none.
type LengthPolicy func(payloadLen byte) int

// RFC6455 is the standard policy: 126 selects a 16-bit length and 127 a
// 64-bit length.
func RFC6455(payloadLen byte) int {
	switch payloadLen {
	case 126:
		return 16
	case 127:
		return 64
	default:
		return 0
	}
}

// Size classifies how the payload length is encoded.
type Size int

const (
	Short Size = iota
	Medium
	Long
)

func (s Size) String() string {
	switch s {
	case Short:
		return "Short"
	case Medium:
		return "Medium"
	default:
		return "Long"
	}
}

// Header is the decoded fixed part of a frame.
type Header struct {
	Fin        bool
	RSV1       bool
	RSV2       bool
	RSV3       bool
	Opcode     Opcode
	Masked     bool
	PayloadLen byte
	// ExtendedBits is the width of the extended payload length.
	ExtendedBits int
	// Length is the effective payload length in bytes. It is only
	// meaningful when LengthKnown is set.
	Length      uint64
	LengthKnown bool
	// MaskingKey holds the key bytes present in the frame.
	MaskingKey []byte
}

// Size returns the payload length encoding class.
func (h Header) Size() Size {
	switch {
	case h.ExtendedBits == 0:
		return Short
	case h.ExtendedBits <= 16:
		return Medium
	default:
		return Long
	}
}

// HeaderBits returns the number of bits before the payload.
func (h Header) HeaderBits() int {
	n := 16 + h.ExtendedBits
	if h.Masked {
		n += 32
	}
	return n
}

// Notes returns the table notes for the header, e.g. "(Masked)", "(Short)".
func (h Header) Notes() []string {
	masked := "(Unmasked)"
	if h.Masked {
		masked = "(Masked)"
	}
	return []string{masked, "(" + h.Size().String() + ")"}
}

// Summary describes the header on one line.
func (h Header) Summary() string {
	s := h.Opcode.Class().String()
	if h.Fin {
		s += " final"
	} else {
		s += " fragment"
	}
	if h.Masked {
		s += " masked"
	}
	if h.LengthKnown {
		s += fmt.Sprintf(" payload=%d", h.Length)
	} else {
		s += " payload=?"
	}
	return s
}

// ParseHeader decodes the header of frame. A nil policy means RFC6455.
func ParseHeader(frame []byte, policy LengthPolicy) (Header, error) {
	if len(frame) < 2 {
		return Header{}, ErrShortFrame
	}
	if policy == nil {
		policy = RFC6455
	}
	bit := func(offset int) bool {
		v, _ := format.ExtractBits(frame, offset, 1)
		return v == 1
	}
	opcode, _ := format.ExtractBits(frame, 4, 4)
	plen, _ := format.ExtractBits(frame, 9, 7)

	h := Header{
		Fin:        bit(0),
		RSV1:       bit(1),
		RSV2:       bit(2),
		RSV3:       bit(3),
		Opcode:     Opcode(opcode),
		Masked:     bit(8),
		PayloadLen: byte(plen),
	}
	h.ExtendedBits = policy(h.PayloadLen)
	if h.ExtendedBits < 0 || h.ExtendedBits > 64 {
		return Header{}, fmt.Errorf("wsframe: length policy returned %d bits for %d", h.ExtendedBits, h.PayloadLen)
	}
	if h.ExtendedBits == 0 {
		h.Length, h.LengthKnown = uint64(h.PayloadLen), true
	} else {
		h.Length, h.LengthKnown = format.ExtractBits(frame, 16, h.ExtendedBits)
	}
	if h.Masked {
		start := (16 + h.ExtendedBits) / 8
		end := min(start+4, len(frame))
		if start < end {
			h.MaskingKey = append([]byte(nil), frame[start:end]...)
		}
	}
	return h, nil
}

// Options tune Describe.
type Options struct {
	// WordSize defaults to format.DWord.
	WordSize format.WordSize
	// Policy defaults to RFC6455.
	Policy LengthPolicy
}

// Describe parses frame and returns the descriptor that annotates it.
func Describe(frame []byte, opts Options) (*format.Descriptor, Header, error) {
	h, err := ParseHeader(frame, opts.Policy)
	if err != nil {
		return nil, Header{}, err
	}
	d, err := Schema(h, opts.WordSize, len(frame))
	if err != nil {
		return nil, Header{}, err
	}
	return d, h, nil
}

// Schema builds the frame descriptor for h. available is the number of
// frame bytes present; it bounds the payload field when the declared
// length is unknown.
func Schema(h Header, w format.WordSize, available int) (*format.Descriptor, error) {
	if w == 0 {
		w = format.DWord
	}
	fields := []format.FieldAnnotation{
		{Name: FieldFin, Length: 1},
		{Name: FieldRSV1, Length: 1},
		{Name: FieldRSV2, Length: 1},
		{Name: FieldRSV3, Length: 1},
		{Name: FieldOpcode, Length: 4},
		{Name: FieldMask, Length: 1},
		{Name: FieldPayloadLen, Length: 7},
	}
	if h.ExtendedBits > 0 {
		fields = append(fields, format.FieldAnnotation{Name: FieldExtendedLength, Length: h.ExtendedBits})
	}
	if h.Masked {
		fields = append(fields, format.FieldAnnotation{Name: FieldMaskingKey, Length: 32})
	}

	payload := h.Length
	if !h.LengthKnown {
		payload = uint64(max(available-h.HeaderBits()/8, 0))
	}
	payload = min(payload, maxPayload)
	if payload > 0 {
		f := format.FieldAnnotation{Name: FieldPayload, Length: int(payload) * 8}
		switch {
		case h.Masked:
			f.Transform = format.XOR(FieldMaskingKey)
		case h.Opcode == Text:
			f.Transform = format.ASCII()
		}
		fields = append(fields, f)
	}

	d, err := format.New(format.Options{
		WordSize:    w,
		Mode:        format.ModeFrame,
		Title:       Title,
		Notes:       h.Notes(),
		Annotations: format.Sequence(0, fields...),
	})
	if err != nil {
		return nil, fmt.Errorf("wsframe: building descriptor: %w", err)
	}
	return d, nil
}

// Payload returns the payload bytes present in frame, unmasked when the
// frame is masked and the full key is present.
func Payload(frame []byte, h Header) []byte {
	start := h.HeaderBits() / 8
	if start >= len(frame) {
		return nil
	}
	end := len(frame)
	if h.LengthKnown && h.Length < uint64(end-start) {
		end = start + int(h.Length)
	}
	out := append([]byte(nil), frame[start:end]...)
	if h.Masked && len(h.MaskingKey) == 4 {
		for i := range out {
			out[i] = format.Unmask(out[i], h.MaskingKey[i%4])
		}
	}
	return out
}
