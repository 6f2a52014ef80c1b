// Package format describes how a buffer is tiled into rows and which named
// bit fields are overlaid on it.
//
// A Descriptor is built once with New and validated at construction time.
// It is immutable afterwards and may be shared by concurrent renders.
//
//	d, err := format.New(format.Options{
//		WordSize: format.DWord,
//		Mode:     format.ModeFrame,
//		Annotations: format.Sequence(0,
//			format.FieldAnnotation{Name: "FIN", Length: 1},
//			format.FieldAnnotation{Name: "RSV1", Length: 1},
//			format.FieldAnnotation{Name: "RSV2", Length: 1},
//			format.FieldAnnotation{Name: "RSV3", Length: 1},
//			format.FieldAnnotation{Name: "op code", Length: 4},
//			format.FieldAnnotation{Name: "MASK", Length: 1},
//			format.FieldAnnotation{Name: "Payload len", Length: 7},
//		),
//	})
//
// Validation failures are reported as *ValidationError and match one of
// the package's sentinel errors with errors.Is.
package format
