package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dgallion1/hsspgest/internal/hssp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Options controls how much of a document goes into a report.
type Options struct {
	Title string
	// MaxHomologs caps the homolog table. Zero means all rows.
	MaxHomologs int
	// SequenceWidth is the number of residues per line of the query
	// sequence block.
	SequenceWidth int
}

func (o Options) withDefaults(doc *hssp.Document) Options {
	if o.Title == "" {
		o.Title = "HSSP " + doc.PDBID
	}
	if o.SequenceWidth <= 0 {
		o.SequenceWidth = 60
	}
	return o
}

// Markdown renders a summary of doc as GitHub-flavored Markdown.
func Markdown(doc *hssp.Document, opts Options) []byte {
	opts = opts.withDefaults(doc)
	var b bytes.Buffer

	fmt.Fprintf(&b, "# %s\n\n", escape(opts.Title))

	b.WriteString("## Header\n\n")
	b.WriteString("| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Version | %s |\n", escape(doc.Version))
	fmt.Fprintf(&b, "| PDB ID | %s |\n", escape(doc.PDBID))
	fmt.Fprintf(&b, "| Sequence length | %d |\n", doc.SeqLength)
	fmt.Fprintf(&b, "| Chains | %d |\n", doc.NChain)
	fmt.Fprintf(&b, "| Alignments | %d |\n\n", doc.NAlign)

	writeSequence(&b, doc.QuerySequence(), opts.SequenceWidth)
	writeHomologs(&b, doc, opts.MaxHomologs)
	writeEntropy(&b, doc)
	writeInsertions(&b, doc)
	return b.Bytes()
}

func writeSequence(b *bytes.Buffer, seq string, width int) {
	b.WriteString("## Query sequence\n\n```\n")
	for i := 0; i < len(seq); i += width {
		end := min(i+width, len(seq))
		fmt.Fprintf(b, "%5d %s\n", i+1, seq[i:end])
	}
	b.WriteString("```\n\n")
}

func writeHomologs(b *bytes.Buffer, doc *hssp.Document, limit int) {
	b.WriteString("## Homologs\n\n")
	if doc.Homologs.Len() == 0 {
		b.WriteString("No homologs.\n\n")
		return
	}
	b.WriteString("| NR | ID | STRID | %IDE | %WSIM | LALI | ACCNUM | Protein |\n")
	b.WriteString("|---:|---|---|---:|---:|---:|---|---|\n")
	n := 0
	for _, h := range doc.Homologs.All() {
		if limit > 0 && n == limit {
			break
		}
		fmt.Fprintf(b, "| %d | %s | %s | %.2f | %.2f | %d | %s | %s |\n",
			h.NR, escape(h.ID), escape(h.STRID), h.Identity, h.Similarity, h.LAli,
			escape(h.AccNum), escape(h.Protein))
		n++
	}
	if rest := doc.Homologs.Len() - n; rest > 0 {
		fmt.Fprintf(b, "\n%d more homologs not shown.\n", rest)
	}
	b.WriteString("\n")
}

func writeEntropy(b *bytes.Buffer, doc *hssp.Document) {
	if doc.Profile == nil || doc.Profile.Rows.Len() == 0 {
		return
	}
	b.WriteString("## Conservation\n\n")
	b.WriteString("| PDBNo | AA | NOCC | ENTROPY | RELENT |\n|---|---|---:|---:|---:|\n")
	for key, p := range doc.Profile.Rows.All() {
		aa := ""
		if rec, ok := doc.Alignments.Get(key); ok {
			aa = rec.AA
		}
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n", escape(p.PDBNo), escape(aa),
			column(p, "NOCC", "%.0f"), column(p, "ENTROPY", "%.3f"), column(p, "RELENT", "%.0f"))
	}
	b.WriteString("\n")
}

func writeInsertions(b *bytes.Buffer, doc *hssp.Document) {
	if len(doc.Insertions) == 0 {
		return
	}
	b.WriteString("## Insertions\n\n")
	b.WriteString("| AliNo | IPOS | JPOS | Len | Sequence |\n|---:|---:|---:|---:|---|\n")
	for _, ins := range doc.Insertions {
		fmt.Fprintf(b, "| %d | %d | %d | %d | `%s` |\n", ins.AliNo, ins.IPos, ins.JPos, ins.Len, ins.Sequence)
	}
	b.WriteString("\n")
}

func column(p hssp.ProfileRecord, name, format string) string {
	v, ok := p.Value(name)
	if !ok {
		return ""
	}
	return fmt.Sprintf(format, v)
}

var cellEscaper = strings.NewReplacer("|", `\|`, "\n", " ", "<", "&lt;", ">", "&gt;")

func escape(s string) string {
	return cellEscaper.Replace(s)
}

var md = goldmark.New(goldmark.WithExtensions(extension.Table))

// HTML renders the Markdown report and wraps it in a standalone page.
func HTML(doc *hssp.Document, opts Options) ([]byte, error) {
	opts = opts.withDefaults(doc)
	var body bytes.Buffer
	if err := md.Convert(Markdown(doc, opts), &body); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return page(opts.Title, body.Bytes())
}
