package format

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidWordSize              = errors.New("format: invalid word size")
	ErrOverlappingAnnotation        = errors.New("format: overlapping annotation")
	ErrIncompleteAnnotationCoverage = errors.New("format: incomplete annotation coverage")
	ErrDegenerateAnnotation         = errors.New("format: degenerate annotation")
	ErrDuplicateAnnotation          = errors.New("format: duplicate annotation name")
	ErrInvalidTransform             = errors.New("format: invalid transform")
)

// ValidationError reports which construction rule failed and for which
// fields. Rule is one of the package's sentinel errors.
type ValidationError struct {
	Rule    error
	Fields  []string
	Offsets []int
	Reason  string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Rule.Error())
	if len(e.Fields) > 0 {
		b.WriteString(": fields=")
		b.WriteString(strings.Join(e.Fields, ","))
	}
	if len(e.Offsets) > 0 {
		offsets := make([]string, len(e.Offsets))
		for i, o := range e.Offsets {
			offsets[i] = strconv.Itoa(o)
		}
		if len(e.Fields) > 0 {
			b.WriteString(" offsets=")
		} else {
			b.WriteString(": offsets=")
		}
		b.WriteString(strings.Join(offsets, ","))
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

func (e *ValidationError) Unwrap() error {
	return e.Rule
}

func invalid(rule error, fields []string, offsets []int, reason string, args ...any) *ValidationError {
	if len(args) > 0 {
		reason = fmt.Sprintf(reason, args...)
	}
	return &ValidationError{Rule: rule, Fields: fields, Offsets: offsets, Reason: reason}
}
