package hssp

import (
	"fmt"
	"io"
)

// Parse reads a complete HSSP file from r. Any layout problem is
// returned as a *FormatError; I/O failures are wrapped as-is.
func Parse(r io.Reader) (*Document, error) {
	lines, err := ReadLines(r)
	if err != nil {
		return nil, err
	}
	return ParseLines(lines)
}

// ParseLines assembles a Document from lines already read by ReadLines.
// The section boundaries are located once and every section parser sees
// only its own window of lines.
func ParseLines(lines []Line) (*Document, error) {
	s, err := Locate(lines)
	if err != nil {
		return nil, err
	}

	h, err := parseHeader(lines[:s.Proteins])
	if err != nil {
		return nil, err
	}

	homologs, err := parseProteins(lines[s.Proteins+1 : s.Alignments[0]])
	if err != nil {
		return nil, err
	}
	if homologs.Len() != h.NAlign {
		return nil, formatErr(BadRow, sectionProteins, 0,
			"%d homologs listed, NALIGN is %d", homologs.Len(), h.NAlign)
	}

	base := s.Alignments[0]
	starts := make([]int, len(s.Alignments))
	for i, at := range s.Alignments {
		starts[i] = at - base
	}
	alignments, err := reconstructAlignments(lines[base:s.Profile], starts, h.NAlign)
	if err != nil {
		return nil, err
	}

	profile, err := parseProfile(lines[s.Profile+1 : s.Insertions])
	if err != nil {
		return nil, err
	}

	insertions, err := parseInsertions(lines[s.Insertions+1:])
	if err != nil {
		return nil, err
	}

	return &Document{
		Version:    h.Version,
		PDBID:      h.PDBID,
		SeqLength:  h.SeqLength,
		NChain:     h.NChain,
		NAlign:     h.NAlign,
		Homologs:   homologs,
		Alignments: alignments,
		Profile:    profile,
		Insertions: insertions,
	}, nil
}

// Header returns the scalar header fields of d.
func (d *Document) Header() Header {
	return Header{
		Version:   d.Version,
		PDBID:     d.PDBID,
		SeqLength: d.SeqLength,
		NChain:    d.NChain,
		NAlign:    d.NAlign,
	}
}

// String summarizes d for logs.
func (d *Document) String() string {
	return fmt.Sprintf("%s: %d residues, %d homologs, %d insertions",
		d.PDBID, d.Alignments.Len(), d.Homologs.Len(), len(d.Insertions))
}
