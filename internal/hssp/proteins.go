package hssp

import (
	"slices"
	"strings"
)

// homologPrefixWidth is where the fixed-width statistics of a PROTEINS row
// end and the free-text description (the PROTEIN column) begins. The
// description may contain anything, including runs of spaces, so it is
// never tokenized.
const homologPrefixWidth = 90

// homologColumns is the number of analysis tokens of a PROTEINS row after
// correction: NR ID STRID %IDE %WSIM IFIR ILAS JFIR JLAS LALI NGAP LGAP
// LSEQ2 ACCNUM.
const homologColumns = 14

// homologSTRIDIndex is where the placeholder goes when a row has no
// structure identifier. Only homologs with a known PDB entry print one.
const homologSTRIDIndex = 2

// homologFields is a PROTEINS row after token correction, before numeric
// coercion.
type homologFields struct {
	NR, ID, STRID, IDE, WSIM        string
	IFIR, ILAS, JFIR, JLAS          string
	LALI, NGAP, LGAP, LSEQ2, ACCNUM string
	Protein                         string
}

// correctHomologRow turns the raw tokens of a PROTEINS row into named
// fields. Data rows read "    2 : DPO1_THEAQ  1TAU    1.00 ..." so the ':'
// separator is dropped first. A row one token short is missing STRID.
func correctHomologRow(l Line) (homologFields, error) {
	tokens := fields(column(l.Text, 0, homologPrefixWidth))
	if len(tokens) > 1 && tokens[1] == ":" {
		tokens = append(tokens[:1], tokens[2:]...)
	}
	if len(tokens) == homologColumns-1 {
		tokens = slices.Insert(tokens, homologSTRIDIndex, "")
	}
	if len(tokens) != homologColumns {
		return homologFields{}, formatErr(BadRow, sectionProteins, l.Num,
			"%d columns, want %d", len(tokens), homologColumns)
	}
	return homologFields{
		NR: tokens[0], ID: tokens[1], STRID: tokens[2],
		IDE: tokens[3], WSIM: tokens[4],
		IFIR: tokens[5], ILAS: tokens[6], JFIR: tokens[7], JLAS: tokens[8],
		LALI: tokens[9], NGAP: tokens[10], LGAP: tokens[11], LSEQ2: tokens[12],
		ACCNUM:  tokens[13],
		Protein: strings.TrimSpace(column(l.Text, homologPrefixWidth, -1)),
	}, nil
}

func (f homologFields) record(l Line) (HomologRecord, error) {
	c := rowCoercer{section: sectionProteins, line: l.Num}
	rec := HomologRecord{
		NR:         c.atoi("NR", f.NR),
		ID:         f.ID,
		STRID:      f.STRID,
		Identity:   c.float("%IDE", f.IDE),
		Similarity: c.float("%WSIM", f.WSIM),
		IFir:       c.atoi("IFIR", f.IFIR),
		ILas:       c.atoi("ILAS", f.ILAS),
		JFir:       c.atoi("JFIR", f.JFIR),
		JLas:       c.atoi("JLAS", f.JLAS),
		LAli:       c.atoi("LALI", f.LALI),
		NGap:       c.atoi("NGAP", f.NGAP),
		LGap:       c.atoi("LGAP", f.LGAP),
		LSeq2:      c.atoi("LSEQ2", f.LSEQ2),
		AccNum:     f.ACCNUM,
		Protein:    f.Protein,
	}
	return rec, c.err
}

// parseProteins parses the lines between the PROTEINS marker and the first
// ALIGNMENTS marker. The first line is the column title row.
func parseProteins(window []Line) (*Table[int, HomologRecord], error) {
	table := NewTable[int, HomologRecord](len(window))
	for i, l := range window {
		if i == 0 && strings.HasPrefix(strings.TrimSpace(l.Text), "NR.") {
			continue
		}
		if strings.TrimSpace(l.Text) == "" {
			continue
		}
		f, err := correctHomologRow(l)
		if err != nil {
			return nil, err
		}
		rec, err := f.record(l)
		if err != nil {
			return nil, err
		}
		if err := table.Put(rec.NR, rec); err != nil {
			return nil, formatErr(BadRow, sectionProteins, l.Num, "%s", err)
		}
	}

	// NR is dense from 1.
	for i := range table.Len() {
		if nr, _ := table.At(i); nr != i+1 {
			return nil, formatErr(BadRow, sectionProteins, 0, "homolog %d is numbered %d", i+1, nr)
		}
	}
	return table, nil
}
