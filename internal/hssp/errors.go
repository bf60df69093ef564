package hssp

import (
	"errors"
	"fmt"
)

// Kind classifies a FormatError.
type Kind int

const (
	// MissingSection means fewer than four section boundaries were found.
	MissingSection Kind = iota + 1
	// BadHeader means a header keyword line is absent or a numeric header
	// field does not parse.
	BadHeader
	// BadRow means a data row failed numeric coercion or has an unexpected
	// column count after correction.
	BadRow
	// BlockMismatch means the alignment sub-blocks disagree on shape.
	BlockMismatch
)

func (k Kind) String() string {
	switch k {
	case MissingSection:
		return "missing section"
	case BadHeader:
		return "bad header"
	case BadRow:
		return "bad row"
	case BlockMismatch:
		return "block mismatch"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Sentinels for errors.Is. A *FormatError matches the sentinel of its Kind.
var (
	ErrMissingSection = &FormatError{Kind: MissingSection}
	ErrBadHeader      = &FormatError{Kind: BadHeader}
	ErrBadRow         = &FormatError{Kind: BadRow}
	ErrBlockMismatch  = &FormatError{Kind: BlockMismatch}
)

// FormatError is returned for any input that does not follow the HSSP
// layout. Line is the 1-based physical line number, or 0 when the failure
// is not tied to a single line.
type FormatError struct {
	Kind    Kind
	Section string
	Line    int
	Msg     string
	Err     error
}

func (e *FormatError) Error() string {
	s := "hssp"
	if e.Section != "" {
		s += ": " + e.Section
	}
	if e.Line > 0 {
		s += fmt.Sprintf(": line %d", e.Line)
	}
	s += ": " + e.Kind.String()
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *FormatError) Unwrap() error { return e.Err }

// Is reports whether target is a FormatError of the same Kind.
func (e *FormatError) Is(target error) bool {
	var fe *FormatError
	if !errors.As(target, &fe) {
		return false
	}
	return fe.Kind == e.Kind
}

// Section names used in errors.
const (
	sectionLocate     = "sections"
	sectionHeader     = "header"
	sectionProteins   = "proteins"
	sectionAlignments = "alignments"
	sectionProfile    = "profile"
	sectionInsertions = "insertions"
)

func formatErr(kind Kind, section string, line int, format string, args ...any) *FormatError {
	return &FormatError{
		Kind:    kind,
		Section: section,
		Line:    line,
		Msg:     fmt.Sprintf(format, args...),
	}
}
