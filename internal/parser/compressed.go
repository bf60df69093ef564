package parser

import (
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/dgallion1/hsspgest/internal/hssp"
)

// GzipParser handles gzip-compressed HSSP files, the form the public
// mirrors distribute.
type GzipParser struct{}

func (p *GzipParser) Parse(r io.Reader, filename string) (*hssp.Document, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("open gzip %s: %w", filename, err)
	}
	defer zr.Close()
	return (&PlainParser{}).Parse(zr, filename)
}

// Bzip2Parser handles bzip2-compressed HSSP files.
type Bzip2Parser struct{}

func (p *Bzip2Parser) Parse(r io.Reader, filename string) (*hssp.Document, error) {
	return (&PlainParser{}).Parse(bzip2.NewReader(r), filename)
}
