package errors

import (
	"fmt"
	"strings"

	crdberrors "github.com/cockroachdb/errors"
)

// Marks used to classify planning failures. Test with crdberrors.Is.
var (
	// ErrInvalidInput marks caller contract violations: negative cardinalities,
	// thresholds outside [0,1], malformed specification trees.
	ErrInvalidInput = crdberrors.New("invalid input")

	// ErrParse marks malformed measure expressions or link specifications.
	ErrParse = crdberrors.New("parse error")
)

// InvalidInputf builds an error marked with ErrInvalidInput
func InvalidInputf(format string, args ...interface{}) error {
	return crdberrors.Mark(crdberrors.Newf(format, args...), ErrInvalidInput)
}

// IsInvalidInput reports whether err (or anything it wraps) is an invalid-input failure
func IsInvalidInput(err error) bool {
	return crdberrors.Is(err, ErrInvalidInput)
}

// IsParse reports whether err (or anything it wraps) is a parse failure
func IsParse(err error) bool {
	return crdberrors.Is(err, ErrParse)
}

// ParseError describes where a textual expression stopped making sense
type ParseError struct {
	Input  string // full text being parsed
	Line   int    // 1-based line (0 if unknown)
	Column int    // 1-based column (0 if unknown)
	Found  string // offending token literal
	Reason string // human-readable explanation
}

func (e *ParseError) Error() string {
	var parts []string

	parts = append(parts, "parse error")

	if e.Line > 0 {
		parts = append(parts, fmt.Sprintf("at line %d, col %d", e.Line, e.Column))
	}

	if e.Found != "" {
		parts = append(parts, fmt.Sprintf("near %q", e.Found))
	}

	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}

	return strings.Join(parts, " - ")
}

// NewParseError builds a ParseError marked with ErrParse
func NewParseError(input string, line, column int, found, reason string) error {
	return crdberrors.Mark(&ParseError{
		Input:  input,
		Line:   line,
		Column: column,
		Found:  found,
		Reason: reason,
	}, ErrParse)
}
