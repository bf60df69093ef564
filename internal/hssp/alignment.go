package hssp

import (
	"slices"
	"strconv"
	"strings"
)

// Physical layout of an ALIGNMENTS row. The format was designed for
// fixed-width printing, so every row of every sub-block has the same
// zones:
//
//	[0,51)    residue analysis: SeqNo PDBNo AA STRUCTURE BP1 BP2 ACC NOCC VAR
//	[51,121)  alignment characters, one column per homolog of this block
//	[121,...) CHAIN and AUTHCHAIN, absent in older files
//
// The analysis zone follows the DSSP residue layout:
//
//	[0,17)   SeqNo, PDBNo with insertion code and chain, AA
//	[17,26)  STRUCTURE: secondary structure, turns, bend, chirality, bridge labels
//	[26,30)  BP1
//	[30,34)  BP2
//	34       sheet label
//	[35,51)  ACC NOCC VAR
//
// STRUCTURE may contain blanks, and the sheet label is printed directly
// after BP2 ("  40A"), so both bridge partners and the label are read by
// position. Four-digit partners fill their column, so tokens would merge.
const (
	blockWidth     = 70
	alignStart     = 51
	alignEnd       = alignStart + blockWidth
	structureStart = 17
	structureEnd   = 26
	bp1Start       = 26
	bp2Start       = 30
	sheetColumn    = 34
	countsStart    = 35
)

// breakSentinel marks a chain break row. It occupies a row in every block
// but stands for no residue.
const breakSentinel = "!!"

// blockHeaderRows is the marker line plus the column title line that
// start every sub-block.
const blockHeaderRows = 2

// alignmentBlock is one sub-block with its header rows removed. The
// homolog columns it covers are First..Last, 1-based and inclusive.
type alignmentBlock struct {
	First, Last int
	Rows        []Line
}

func (b alignmentBlock) width() int { return b.Last - b.First + 1 }

// zonedRow is a data row cut into its three zones.
type zonedRow struct {
	Line   Line
	Prefix string
	Slice  string
	Suffix string
}

// analysis is the part of a row that every block repeats.
func (z zonedRow) analysis() string {
	return strings.TrimRight(z.Prefix+z.Suffix, " ")
}

// alignmentArena holds the alignment slices of every block, indexed by
// block and then by row.
type alignmentArena struct {
	slices [][]string
}

// stitch concatenates row's slices across all blocks in block order.
func (a alignmentArena) stitch(row int) string {
	var sb strings.Builder
	for _, block := range a.slices {
		sb.WriteString(block[row])
	}
	return sb.String()
}

// alignmentFields is an analysis row after token correction, before
// numeric coercion.
type alignmentFields struct {
	SeqNo, PDBNo, AA, Structure string
	BP1, BP2, Sheet             string
	Acc, NOcc, Var              string
	Chain, AuthChain            string
}

// reconstructAlignments rebuilds one record per residue from the
// ALIGNMENTS window. starts holds the window offsets of each sub-block
// marker; the first is 0.
func reconstructAlignments(window []Line, starts []int, nAlign int) (*Table[string, AlignmentRecord], error) {
	blocks, err := splitBlocks(window, starts)
	if err != nil {
		return nil, err
	}
	if err := checkBlockRanges(blocks, nAlign); err != nil {
		return nil, err
	}

	zoned := make([][]zonedRow, len(blocks))
	for b, block := range blocks {
		zoned[b] = make([]zonedRow, len(block.Rows))
		for i, l := range block.Rows {
			zoned[b][i] = zoneLine(l, block.width())
		}
	}

	analysis, err := dedupAnalysis(zoned)
	if err != nil {
		return nil, err
	}
	arena := newArena(zoned)

	table := NewTable[string, AlignmentRecord](len(analysis))
	for i, row := range analysis {
		f, isBreak, err := correctAlignmentRow(row)
		if err != nil {
			return nil, err
		}
		if isBreak {
			continue
		}
		rec, err := f.record(row.Line)
		if err != nil {
			return nil, err
		}
		rec.Alignment = arena.stitch(i)
		if len(rec.Alignment) != nAlign {
			return nil, formatErr(BlockMismatch, sectionAlignments, row.Line.Num,
				"residue %s has %d alignment characters, want %d", rec.PDBNo, len(rec.Alignment), nAlign)
		}
		if err := table.Put(rec.PDBNo, rec); err != nil {
			return nil, formatErr(BadRow, sectionAlignments, row.Line.Num, "%s", err)
		}
	}
	return table, nil
}

// splitBlocks cuts the window at each sub-block marker, drops the two
// header rows of every block, and reads the homolog range from the marker.
func splitBlocks(window []Line, starts []int) ([]alignmentBlock, error) {
	blocks := make([]alignmentBlock, 0, len(starts))
	for b, start := range starts {
		end := len(window)
		if b+1 < len(starts) {
			end = starts[b+1]
		}
		if end-start < blockHeaderRows {
			return nil, formatErr(BlockMismatch, sectionAlignments, window[start].Num,
				"sub-block %d has no column title row", b+1)
		}
		marker := window[start]
		first, last, ok := blockRange(marker.Text)
		if !ok {
			// Without a range the block is assumed to be full width.
			first, last = b*blockWidth+1, (b+1)*blockWidth
		}

		block := alignmentBlock{First: first, Last: last}
		for _, l := range window[start+blockHeaderRows : end] {
			if strings.TrimSpace(l.Text) == "" {
				continue
			}
			block.Rows = append(block.Rows, l)
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

// blockRange reads "## ALIGNMENTS   71 -  140".
func blockRange(marker string) (first, last int, ok bool) {
	rest := strings.TrimPrefix(marker, markerAlignments)
	lo, hi, found := strings.Cut(rest, "-")
	if !found {
		return 0, 0, false
	}
	first, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return 0, 0, false
	}
	last, err = strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return 0, 0, false
	}
	return first, last, true
}

// checkBlockRanges makes sure the blocks tile homologs 1..nAlign with no
// gap or overlap, in at most blockWidth columns each, and that every block
// prints the same number of rows.
func checkBlockRanges(blocks []alignmentBlock, nAlign int) error {
	want := (nAlign + blockWidth - 1) / blockWidth
	if want == 0 {
		want = 1
	}
	if len(blocks) != want {
		return formatErr(BlockMismatch, sectionAlignments, 0,
			"%d sub-blocks for %d homologs, want %d", len(blocks), nAlign, want)
	}

	next := 1
	for b, block := range blocks {
		if nAlign == 0 {
			break
		}
		if block.First != next || block.Last < block.First || block.width() > blockWidth {
			return formatErr(BlockMismatch, sectionAlignments, 0,
				"sub-block %d covers homologs %d-%d, want it to start at %d",
				b+1, block.First, block.Last, next)
		}
		next = block.Last + 1
	}
	if nAlign > 0 && next != nAlign+1 {
		return formatErr(BlockMismatch, sectionAlignments, 0,
			"sub-blocks end at homolog %d, want %d", next-1, nAlign)
	}

	for b, block := range blocks[1:] {
		if len(block.Rows) != len(blocks[0].Rows) {
			return formatErr(BlockMismatch, sectionAlignments, 0,
				"sub-block %d has %d rows, sub-block 1 has %d", b+2, len(block.Rows), len(blocks[0].Rows))
		}
	}
	return nil
}

// zoneLine cuts a data row into its zones. Trailing blanks of the
// alignment slice are often trimmed from the file, so the slice is padded
// back to width.
func zoneLine(l Line, width int) zonedRow {
	slice := column(l.Text, alignStart, alignStart+width)
	if len(slice) < width {
		slice += strings.Repeat(" ", width-len(slice))
	}
	return zonedRow{
		Line:   l,
		Prefix: column(l.Text, 0, alignStart),
		Slice:  slice,
		Suffix: column(l.Text, alignEnd, -1),
	}
}

// dedupAnalysis keeps the first physical occurrence of every residue's
// analysis columns. Every block repeats the same analysis rows in the same
// order, so the first block supplies them and each later block must
// repeat them row for row.
func dedupAnalysis(blocks [][]zonedRow) ([]zonedRow, error) {
	if len(blocks) == 0 {
		return nil, nil
	}
	first := blocks[0]
	for b, rows := range blocks[1:] {
		for i, row := range rows {
			if row.analysis() != first[i].analysis() {
				return nil, formatErr(BlockMismatch, sectionAlignments, row.Line.Num,
					"sub-block %d row %d does not repeat line %d", b+2, i+1, first[i].Line.Num)
			}
		}
	}
	return slices.Clone(first), nil
}

func newArena(blocks [][]zonedRow) alignmentArena {
	a := alignmentArena{slices: make([][]string, len(blocks))}
	for b, rows := range blocks {
		a.slices[b] = make([]string, len(rows))
		for i, row := range rows {
			a.slices[b][i] = row.Slice
		}
	}
	return a
}

// correctAlignmentRow names the analysis fields of one row. It reports
// chain break rows instead of failing on them.
//
// The identity zone [0,17) reads "  438  438 A L" or, with an insertion
// code, "  439  438BA L": the tokens between SeqNo and AA make up PDBNo.
func correctAlignmentRow(row zonedRow) (alignmentFields, bool, error) {
	tokens := fields(row.Prefix)
	suffix := fields(row.Suffix)
	if slices.Contains(tokens, breakSentinel) || slices.Contains(suffix, breakSentinel) {
		return alignmentFields{}, true, nil
	}

	ident := fields(column(row.Prefix, 0, structureStart))
	if len(ident) < 3 {
		return alignmentFields{}, false, formatErr(BadRow, sectionAlignments, row.Line.Num,
			"residue identity %q has %d columns, want at least 3", column(row.Prefix, 0, structureStart), len(ident))
	}
	counts := fields(column(row.Prefix, countsStart, -1))
	if len(counts) != 3 {
		return alignmentFields{}, false, formatErr(BadRow, sectionAlignments, row.Line.Num,
			"%d count columns, want 3 (ACC NOCC VAR)", len(counts))
	}
	if len(suffix) > 2 {
		return alignmentFields{}, false, formatErr(BadRow, sectionAlignments, row.Line.Num,
			"%d trailing columns, want at most 2 (CHAIN AUTHCHAIN)", len(suffix))
	}

	f := alignmentFields{
		SeqNo: ident[0],
		PDBNo: strings.Join(ident[1:len(ident)-1], ""),
		AA:    ident[len(ident)-1],
		BP1:   strings.TrimSpace(column(row.Prefix, bp1Start, bp2Start)),
		BP2:   strings.TrimSpace(column(row.Prefix, bp2Start, sheetColumn)),
		Sheet: strings.TrimSpace(column(row.Prefix, sheetColumn, countsStart)),
		Acc:   counts[0],
		NOcc:  counts[1],
		Var:   counts[2],
	}
	if structure := column(row.Prefix, structureStart, structureEnd); strings.TrimSpace(structure) != "" {
		f.Structure = structure
	}
	if len(suffix) > 0 {
		f.Chain = suffix[0]
	}
	if len(suffix) > 1 {
		f.AuthChain = suffix[1]
	}
	return f, false, nil
}

func (f alignmentFields) record(l Line) (AlignmentRecord, error) {
	c := rowCoercer{section: sectionAlignments, line: l.Num}
	rec := AlignmentRecord{
		SeqNo:     c.atoi("SeqNo", f.SeqNo),
		PDBNo:     f.PDBNo,
		AA:        f.AA,
		Structure: f.Structure,
		BP1:       c.atoi("BP1", f.BP1),
		BP2:       c.atoi("BP2", f.BP2),
		Sheet:     f.Sheet,
		Acc:       c.atoi("ACC", f.Acc),
		NOcc:      c.atoi("NOCC", f.NOcc),
		Var:       c.atoi("VAR", f.Var),
		Chain:     f.Chain,
		AuthChain: f.AuthChain,
	}
	return rec, c.err
}
