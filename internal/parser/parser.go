package parser

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/hsspgest/internal/hssp"
)

// Parser converts raw HSSP bytes into a Document.
type Parser interface {
	Parse(r io.Reader, filename string) (*hssp.Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".hssp": true,
	".gz":   true,
	".bz2":  true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".hssp":
		return &PlainParser{}, nil
	case ".gz":
		return &GzipParser{}, nil
	case ".bz2":
		return &Bzip2Parser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Open parses the file at path with the parser its extension selects.
func Open(path string) (*hssp.Document, error) {
	p, err := ForFile(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return p.Parse(f, filepath.Base(path))
}

// DocID derives a document ID from a file name: "1taq.hssp.gz" → "1taq".
func DocID(filename string) string {
	base := filepath.Base(filename)
	for {
		ext := strings.ToLower(filepath.Ext(base))
		if !SupportedExtensions[ext] {
			return base
		}
		base = strings.TrimSuffix(base, base[len(base)-len(ext):])
	}
}
