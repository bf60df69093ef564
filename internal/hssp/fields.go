package hssp

import (
	"strconv"
	"strings"
)

// fields splits a line on runs of whitespace.
func fields(s string) []string {
	return strings.Fields(s)
}

// column returns s[lo:hi] clamped to the length of s. Fixed-width rows are
// often right-trimmed, so a zone may be short or missing entirely.
func column(s string, lo, hi int) string {
	if lo >= len(s) {
		return ""
	}
	if hi < 0 || hi > len(s) {
		hi = len(s)
	}
	return s[lo:hi]
}

// rowCoercer accumulates the first coercion failure of a row so the
// correction functions can read many fields without an if after each.
type rowCoercer struct {
	section string
	line    int
	err     error
}

func (c *rowCoercer) atoi(name, tok string) int {
	if c.err != nil {
		return 0
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		c.err = &FormatError{Kind: BadRow, Section: c.section, Line: c.line,
			Msg: "column " + name, Err: err}
	}
	return n
}

func (c *rowCoercer) float(name, tok string) float64 {
	if c.err != nil {
		return 0
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		c.err = &FormatError{Kind: BadRow, Section: c.section, Line: c.line,
			Msg: "column " + name, Err: err}
	}
	return f
}
