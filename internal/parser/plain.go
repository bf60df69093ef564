package parser

import (
	"fmt"
	"io"

	"github.com/dgallion1/hsspgest/internal/hssp"
)

// PlainParser handles uncompressed HSSP files.
type PlainParser struct{}

func (p *PlainParser) Parse(r io.Reader, filename string) (*hssp.Document, error) {
	doc, err := hssp.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	return doc, nil
}
