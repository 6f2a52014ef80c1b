// Package inputtype detects whether CLI input is raw bytes, hex text or
// base64 text, and decodes it.
package inputtype
