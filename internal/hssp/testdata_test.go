package hssp

import (
	"fmt"
	"strings"
)

const residueLetters = "ACDEFGHIKLMNPQRSTVWY"

// fixtureResidue is one row of the ALIGNMENTS and PROFILE sections of a
// generated file.
type fixtureResidue struct {
	seq       int
	pdb       string
	chain     string
	aa        string
	structure string
	bp1, bp2  int
	sheet     string
	brk       bool
}

// fixture describes a small but complete HSSP file.
type fixture struct {
	pdbID       string
	nAlign      int
	residues    []fixtureResidue
	noSTRID     map[int]bool
	chainFields bool
	insertions  []string
}

// newFixture returns a fixture with n residues on chain A and nAlign
// homologs.
func newFixture(n, nAlign int) *fixture {
	f := &fixture{pdbID: "1tst", nAlign: nAlign, noSTRID: map[int]bool{}}
	for i := 1; i <= n; i++ {
		f.residues = append(f.residues, fixtureResidue{
			seq:   i,
			pdb:   fmt.Sprint(i + 10),
			chain: "A",
			aa:    string(residueLetters[i%len(residueLetters)]),
		})
	}
	return f
}

// seqLength counts the residue rows that are not chain breaks.
func (f *fixture) seqLength() int {
	n := 0
	for _, r := range f.residues {
		if !r.brk {
			n++
		}
	}
	return n
}

// alignChar is the character homolog nr (1-based) contributes at row i.
func (f *fixture) alignChar(i, nr int) byte {
	if f.residues[i].brk {
		return ' '
	}
	if (i+nr)%7 == 0 {
		return '.'
	}
	return residueLetters[(i*3+nr)%len(residueLetters)]
}

// alignment is the full alignment string expected for row i.
func (f *fixture) alignment(i int) string {
	b := make([]byte, f.nAlign)
	for nr := 1; nr <= f.nAlign; nr++ {
		b[nr-1] = f.alignChar(i, nr)
	}
	return string(b)
}

func (f *fixture) key(r fixtureResidue) string {
	return r.pdb + r.chain
}

func (f *fixture) String() string {
	var sb strings.Builder
	w := func(format string, args ...any) {
		fmt.Fprintf(&sb, format, args...)
		sb.WriteByte('\n')
	}

	w("HSSP       HOMOLOGY DERIVED SECONDARY STRUCTURE OF PROTEINS , VERSION 2.0 2011")
	w("PDBID      %s", f.pdbID)
	w("DATE       file generated on 2026-01-01")
	w("SEQBASE    UniProt")
	w("THRESHOLD  according to: t(L)=(290.15 * L ** -0.562) + 5")
	w("SEQLENGTH  %5d", f.seqLength())
	w("NCHAIN     %5d chain(s) in %s data set", 1, f.pdbID)
	w("KCHAIN     %5d chain(s) used here ; chains(s) : A", 1)
	w("NALIGN     %5d", f.nAlign)
	w("NOTATION : ID: EMBL/SWISSPROT identifier of the aligned (homologous) protein")
	w("NOTATION : STRID: if the 3-D structure of the aligned protein is known, then STRID is its PDB identifier")
	w("")

	w("## PROTEINS : identifier and alignment statistics")
	w("  NR.    ID         STRID   %%IDE %%WSIM IFIR ILAS JFIR JLAS LALI NGAP LGAP LSEQ2 ACCNUM     PROTEIN")
	for nr := 1; nr <= f.nAlign; nr++ {
		w("%s", f.homologRow(nr))
	}

	for first := 1; first <= max(f.nAlign, 1); first += blockWidth {
		last := min(first+blockWidth-1, max(f.nAlign, 1))
		w("## ALIGNMENTS %4d - %4d", first, last)
		w(" SeqNo  PDBNo AA STRUCTURE BP1 BP2  ACC NOCC  VAR  ....:....1....:....2....:....3....:....4....:....5....:....6....:....7")
		for i := range f.residues {
			w("%s", f.alignmentRow(i, first, last))
		}
	}

	w("## SEQUENCE PROFILE AND ENTROPY")
	title := " SeqNo PDBNo   V   L   I NOCC NDEL NINS ENTROPY RELENT WEIGHT"
	if f.chainFields {
		title += " CHAIN AUTHCHAIN"
	}
	w("%s", title)
	for i := range f.residues {
		w("%s", f.profileRow(i))
	}

	w("## INSERTION LIST")
	w(" AliNo  IPOS  JPOS   Len Sequence")
	for _, l := range f.insertions {
		w("%s", l)
	}
	w("//")
	return sb.String()
}

func (f *fixture) homologRow(nr int) string {
	strid := fmt.Sprintf("%dabc", nr%10)
	if f.noSTRID[nr] {
		strid = ""
	}
	prefix := fmt.Sprintf("%5d : %-12s %-5s%5.2f %5.2f%5d%5d%5d%5d%5d%5d%5d%6d %-10s",
		nr, fmt.Sprintf("HOM%d_HUMAN", nr), strid, 0.5+float64(nr%50)/100, 0.75,
		1, len(f.residues), 5, 4+len(f.residues), len(f.residues), nr%3, nr%3*2, 300+nr,
		fmt.Sprintf("P%05d", nr))
	return fmt.Sprintf("%-90s%s", prefix, fmt.Sprintf("Homolog protein %d, isoform   2", nr))
}

func (f *fixture) alignmentRow(i, first, last int) string {
	r := f.residues[i]
	var ident string
	if r.brk {
		ident = fmt.Sprintf("%5d        !!", r.seq)
	} else {
		ident = fmt.Sprintf("%5d%5s %s %s", r.seq, r.pdb, r.chain, r.aa)
	}
	sheet := r.sheet
	if sheet == "" {
		sheet = " "
	}
	nums := fmt.Sprintf("%4d%4d%1s%4d%5d%5d", r.bp1, r.bp2, sheet, 10*r.seq, 3, i%9)

	slice := make([]byte, 0, blockWidth)
	for nr := first; nr <= last && nr <= f.nAlign; nr++ {
		slice = append(slice, f.alignChar(i, nr))
	}
	line := fmt.Sprintf("%-17s%-9s%-25s%s", ident, r.structure, nums, slice)
	if f.chainFields && !r.brk {
		line = fmt.Sprintf("%-121s %s %s", line, r.chain, r.chain)
	}
	return strings.TrimRight(line, " ")
}

func (f *fixture) profileRow(i int) string {
	r := f.residues[i]
	if r.brk {
		return fmt.Sprintf("%5d        !!", r.seq)
	}
	line := fmt.Sprintf("%5d%5s %s%4d%4d%4d %4d %4d %4d %7.3f %6d %5.2f",
		r.seq, r.pdb, r.chain, 20, 30, 50, 3, 0, 0, 0.125*float64(i%8), 12, 1.0)
	if f.chainFields {
		line += "  " + r.chain + " " + r.chain
	}
	return line
}
