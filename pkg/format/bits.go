package format

import (
	"bytes"

	"github.com/icza/bitio"
)

// ExtractBits reads n bits (1..64) of buf starting at the global bit
// offset, most significant bit first. ok is false when the range does not
// lie inside buf.
func ExtractBits(buf []byte, offset, n int) (v uint64, ok bool) {
	if n <= 0 || n > 64 || offset < 0 || offset+n > len(buf)*8 {
		return 0, false
	}
	r := bitio.NewReader(bytes.NewReader(buf[offset/8:]))
	if skip := offset % 8; skip > 0 {
		if _, err := r.ReadBits(uint8(skip)); err != nil {
			return 0, false
		}
	}
	v, err := r.ReadBits(uint8(n))
	if err != nil {
		return 0, false
	}
	return v, true
}

// FieldValue reads the value of f from buf. Fields wider than 64 bits or
// extending past buf are reported as not ok.
func FieldValue(buf []byte, f FieldAnnotation) (uint64, bool) {
	return ExtractBits(buf, f.Offset, f.Length)
}

// FieldBytes returns the whole bytes of a byte-aligned field that are
// present in buf. The result may be shorter than the field.
func FieldBytes(buf []byte, f FieldAnnotation) []byte {
	if f.Offset%8 != 0 || f.Length%8 != 0 {
		return nil
	}
	start := f.Offset / 8
	end := start + f.Length/8
	if start >= len(buf) {
		return nil
	}
	if end > len(buf) {
		end = len(buf)
	}
	return append([]byte(nil), buf[start:end]...)
}
