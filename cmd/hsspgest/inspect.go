package main

import (
	"flag"
	"fmt"
	"io"
	"text/tabwriter"
)

func runInspect(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	nr := fs.Int("nr", 1, "homolog number to print")
	pdbNo := fs.String("pdbno", "", "residue to print (default: first residue)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("inspect takes exactly one file")
	}
	doc, err := loadDocument(fs.Arg(0))
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 1, ' ', 0)
	fmt.Fprintf(tw, "HSSP\t%s\n", doc.Version)
	fmt.Fprintf(tw, "PDBID\t%s\n", doc.PDBID)
	fmt.Fprintf(tw, "SEQLENGTH\t%d\n", doc.SeqLength)
	fmt.Fprintf(tw, "NCHAIN\t%d\n", doc.NChain)
	fmt.Fprintf(tw, "NALIGN\t%d\n", doc.NAlign)
	fmt.Fprintf(tw, "INSERTIONS\t%d\n", len(doc.Insertions))

	if h, ok := doc.Homologs.Get(*nr); ok {
		fmt.Fprintf(tw, "\nhomolog %d\t\n", *nr)
		fmt.Fprintf(tw, "ID\t%s\n", h.ID)
		fmt.Fprintf(tw, "STRID\t%s\n", h.STRID)
		fmt.Fprintf(tw, "ACCNUM\t%s\n", h.AccNum)
		fmt.Fprintf(tw, "%%IDE\t%.2f\n", h.Identity)
		fmt.Fprintf(tw, "%%WSIM\t%.2f\n", h.Similarity)
		fmt.Fprintf(tw, "LALI\t%d\n", h.LAli)
		fmt.Fprintf(tw, "PROTEIN\t%s\n", h.Protein)
	} else if doc.Homologs.Len() > 0 {
		return fmt.Errorf("no homolog %d (file has %d)", *nr, doc.Homologs.Len())
	}

	key := *pdbNo
	if key == "" && doc.Alignments.Len() > 0 {
		key, _ = doc.Alignments.At(0)
	}
	if key != "" {
		rec, ok := doc.Alignments.Get(key)
		if !ok {
			return fmt.Errorf("no residue %q", key)
		}
		fmt.Fprintf(tw, "\nresidue %s\t\n", key)
		fmt.Fprintf(tw, "SeqNo\t%d\n", rec.SeqNo)
		fmt.Fprintf(tw, "AA\t%s\n", rec.AA)
		fmt.Fprintf(tw, "STRUCTURE\t%q\n", rec.Structure)
		fmt.Fprintf(tw, "BP1 BP2\t%d %d\n", rec.BP1, rec.BP2)
		if rec.Sheet != "" {
			fmt.Fprintf(tw, "SHEET\t%s\n", rec.Sheet)
		}
		fmt.Fprintf(tw, "ACC\t%d\n", rec.Acc)
		fmt.Fprintf(tw, "NOCC\t%d\n", rec.NOcc)
		fmt.Fprintf(tw, "VAR\t%d\n", rec.Var)
		fmt.Fprintf(tw, "alignment\t%s\n", rec.Alignment)
		if doc.Profile != nil {
			if p, ok := doc.Profile.Rows.Get(key); ok {
				if v, ok := p.Value("ENTROPY"); ok {
					fmt.Fprintf(tw, "ENTROPY\t%.3f\n", v)
				}
			}
		}
	}
	return tw.Flush()
}
