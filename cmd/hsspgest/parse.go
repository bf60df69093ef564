package main

import (
	"encoding/gob"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/Jeffail/tunny"

	"github.com/dgallion1/hsspgest/internal/hssp"
	"github.com/dgallion1/hsspgest/internal/parser"
)

type parseResult struct {
	input  string
	output string
	doc    *hssp.Document
	took   time.Duration
	err    error
}

func runParse(args []string, out io.Writer, log *slog.Logger) error {
	fs := flag.NewFlagSet("parse", flag.ContinueOnError)
	dir := fs.String("o", ".", "output directory")
	format := fs.String("format", "gob", "output format: gob or json")
	workers := fs.Int("j", runtime.NumCPU(), "files parsed concurrently")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *format != "gob" && *format != "json" {
		return fmt.Errorf("unknown format %q", *format)
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("no input files")
	}
	if *workers < 1 {
		*workers = 1
	}
	seen := make(map[string]string, fs.NArg())
	for _, path := range fs.Args() {
		out := outputPath(*dir, path, *format)
		if prev, ok := seen[out]; ok {
			return fmt.Errorf("%s and %s would both write %s", prev, path, out)
		}
		seen[out] = path
	}
	if err := os.MkdirAll(*dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	pool := tunny.NewFunc(*workers, func(payload interface{}) interface{} {
		return parseOne(payload.(string), *dir, *format)
	})
	defer pool.Close()

	results := make(chan parseResult, fs.NArg())
	for _, path := range fs.Args() {
		go func(path string) {
			results <- pool.Process(path).(parseResult)
		}(path)
	}

	failed := 0
	for range fs.NArg() {
		r := <-results
		if r.err != nil {
			log.Error("parse failed", "file", r.input, "error", r.err)
			failed++
			continue
		}
		log.Info("parsed", "file", r.input, "pdb_id", r.doc.PDBID,
			"residues", r.doc.Alignments.Len(), "homologs", r.doc.Homologs.Len(),
			"duration_ms", r.took.Milliseconds())
		fmt.Fprintf(out, "%s -> %s\n", r.input, r.output)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, fs.NArg())
	}
	return nil
}

func parseOne(path, dir, format string) parseResult {
	start := time.Now()
	doc, err := parser.Open(path)
	if err != nil {
		return parseResult{input: path, err: err}
	}
	r := parseResult{
		input:  path,
		output: outputPath(dir, path, format),
		doc:    doc,
		took:   time.Since(start),
	}
	r.err = writeDocument(r.output, format, doc)
	return r
}

func outputPath(dir, input, format string) string {
	return filepath.Join(dir, parser.DocID(input)+"."+format)
}

func writeDocument(path, format string, doc *hssp.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	switch format {
	case "json":
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		err = enc.Encode(doc)
	default:
		err = gob.NewEncoder(f).Encode(doc)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// loadDocument reads an HSSP file in any supported encoding, or a gob file
// written by parse.
func loadDocument(path string) (*hssp.Document, error) {
	if filepath.Ext(path) != ".gob" {
		return parser.Open(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var doc hssp.Document
	if err := gob.NewDecoder(f).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &doc, nil
}
