package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var sample = filepath.Join("..", "..", "internal", "parser", "testdata", "1tst.hssp")

func quietLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParse_GobRoundTrip(t *testing.T) {
	dir := t.TempDir()
	raw, err := os.ReadFile(sample + ".gz")
	if err != nil {
		t.Fatal(err)
	}
	gz := filepath.Join(dir, "2tst.hssp.gz")
	if err := os.WriteFile(gz, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if code := run([]string{"parse", "-o", dir, "-j", "2", sample, gz}, &out, quietLog()); code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	for _, want := range []string{"1tst.gob", "2tst.gob"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected output %s, got %q", want, out.String())
		}
	}

	doc, err := loadDocument(filepath.Join(dir, "1tst.gob"))
	if err != nil {
		t.Fatalf("load gob: %v", err)
	}
	if doc.PDBID != "1tst" || doc.Homologs.Len() != 2 {
		t.Errorf("unexpected document: %s", doc)
	}
	if err := doc.Verify(); err != nil {
		t.Errorf("verify round-tripped document: %v", err)
	}
}

func TestParse_JSON(t *testing.T) {
	dir := t.TempDir()
	if code := run([]string{"parse", "-o", dir, "-format", "json", sample}, io.Discard, quietLog()); code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	raw, err := os.ReadFile(filepath.Join(dir, "1tst.json"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var doc struct {
		PDBID      string `json:"pdb_id"`
		Alignments []struct {
			PDBNo string `json:"pdb_no"`
		} `json:"alignments"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if doc.PDBID != "1tst" || len(doc.Alignments) != 3 || doc.Alignments[0].PDBNo != "11A" {
		t.Errorf("unexpected json document: %+v", doc)
	}
}

func TestParse_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.hssp")
	if err := os.WriteFile(bad, []byte("HSSP\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no files", []string{"parse", "-o", dir}, 1},
		{"bad format", []string{"parse", "-format", "xml", sample}, 1},
		{"malformed input", []string{"parse", "-o", dir, bad, sample}, 1},
		{"unknown command", []string{"frobnicate"}, 2},
		{"no command", nil, 2},
	}
	for _, tt := range tests {
		if code := run(tt.args, io.Discard, quietLog()); code != tt.want {
			t.Errorf("%s: expected exit %d, got %d", tt.name, tt.want, code)
		}
	}
}

func TestParse_SameOutputName(t *testing.T) {
	dir := t.TempDir()
	code := run([]string{"parse", "-o", dir, sample, sample + ".gz"}, io.Discard, quietLog())
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if _, err := os.Stat(filepath.Join(dir, "1tst.gob")); !os.IsNotExist(err) {
		t.Errorf("expected no output written, got err=%v", err)
	}
}

func TestInspect(t *testing.T) {
	var out bytes.Buffer
	if code := run([]string{"inspect", "-nr", "2", "-pdbno", "13A", sample}, &out, quietLog()); code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	for _, want := range []string{"TEST2_MOUSE", "Q22222", "Test protein two, fragment", "V.", "0.250"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out.String())
		}
	}

	if code := run([]string{"inspect", "-nr", "9", sample}, io.Discard, quietLog()); code != 1 {
		t.Errorf("expected exit 1 for missing homolog, got %d", code)
	}
	if code := run([]string{"inspect", "-pdbno", "99Z", sample}, io.Discard, quietLog()); code != 1 {
		t.Errorf("expected exit 1 for missing residue, got %d", code)
	}
}

func TestVerify(t *testing.T) {
	var out bytes.Buffer
	if code := run([]string{"verify", sample, sample + ".bz2"}, &out, quietLog()); code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, out.String())
	}
	if strings.Count(out.String(), "OK ") != 2 {
		t.Errorf("expected two OK lines, got %q", out.String())
	}

	out.Reset()
	if code := run([]string{"verify", "missing.hssp"}, &out, quietLog()); code != 1 {
		t.Errorf("expected exit 1, got %d", code)
	}
	if !strings.HasPrefix(out.String(), "FAIL missing.hssp") {
		t.Errorf("expected FAIL line, got %q", out.String())
	}
}
