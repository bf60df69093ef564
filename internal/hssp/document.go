package hssp

import (
	"fmt"
	"strings"
)

// Document is a fully parsed HSSP file.
type Document struct {
	Version   string `json:"version"`
	PDBID     string `json:"pdb_id"`
	SeqLength int    `json:"seq_length"`
	NChain    int    `json:"n_chain"`
	NAlign    int    `json:"n_align"`

	Homologs   *Table[int, HomologRecord]      `json:"proteins"`
	Alignments *Table[string, AlignmentRecord] `json:"alignments"`
	Profile    *ProfileTable                   `json:"profile"`
	Insertions []InsertionRecord               `json:"insertions"`
}

// Header holds the scalar fields of the header section.
type Header struct {
	Version   string
	PDBID     string
	SeqLength int
	NChain    int
	NAlign    int
}

// HomologRecord is one row of the PROTEINS section.
type HomologRecord struct {
	NR         int     `json:"nr"`
	ID         string  `json:"id"`
	STRID      string  `json:"strid"`
	Identity   float64 `json:"ide"`
	Similarity float64 `json:"wsim"`
	IFir       int     `json:"ifir"`
	ILas       int     `json:"ilas"`
	JFir       int     `json:"jfir"`
	JLas       int     `json:"jlas"`
	LAli       int     `json:"lali"`
	NGap       int     `json:"ngap"`
	LGap       int     `json:"lgap"`
	LSeq2      int     `json:"lseq2"`
	AccNum     string  `json:"accnum"`
	Protein    string  `json:"protein"`
}

// AlignmentRecord is one residue of the query sequence together with the
// character every homolog contributes at that position.
type AlignmentRecord struct {
	SeqNo     int    `json:"seq_no"`
	PDBNo     string `json:"pdb_no"`
	AA        string `json:"aa"`
	Structure string `json:"structure"`
	BP1       int    `json:"bp1"`
	BP2       int    `json:"bp2"`
	// Sheet is the label of the beta sheet the residue belongs to, or empty.
	Sheet     string `json:"sheet,omitempty"`
	Acc       int    `json:"acc"`
	NOcc      int    `json:"nocc"`
	Var       int    `json:"var"`
	// Alignment holds one character per homolog, in NR order.
	Alignment string `json:"alignment"`
	Chain     string `json:"chain,omitempty"`
	AuthChain string `json:"auth_chain,omitempty"`
}

// Homolog returns the character homolog nr (1-based) contributes at this
// position.
func (r AlignmentRecord) Homolog(nr int) (byte, bool) {
	if nr < 1 || nr > len(r.Alignment) {
		return 0, false
	}
	return r.Alignment[nr-1], true
}

// ProfileTable is the SEQUENCE PROFILE AND ENTROPY section. Columns names
// the numeric columns in the order of ProfileRecord.Values.
type ProfileTable struct {
	Columns []string                      `json:"columns"`
	Rows    *Table[string, ProfileRecord] `json:"rows"`
}

// ProfileRecord is one residue of the profile section.
type ProfileRecord struct {
	SeqNo     int       `json:"seq_no"`
	PDBNo     string    `json:"pdb_no"`
	Columns   []string  `json:"-"`
	Values    []float64 `json:"values"`
	Chain     string    `json:"chain,omitempty"`
	AuthChain string    `json:"auth_chain,omitempty"`
}

// Value returns the value of the named column, e.g. "ENTROPY" or "L".
func (r ProfileRecord) Value(column string) (float64, bool) {
	for i, c := range r.Columns {
		if c == column && i < len(r.Values) {
			return r.Values[i], true
		}
	}
	return 0, false
}

// InsertionRecord is one entry of the INSERTION LIST. Sequence has any
// continuation lines already joined.
type InsertionRecord struct {
	AliNo    int    `json:"ali_no"`
	IPos     int    `json:"ipos"`
	JPos     int    `json:"jpos"`
	Len      int    `json:"len"`
	Sequence string `json:"sequence"`
}

// QuerySequence returns the residue letters of the query in file order.
func (d *Document) QuerySequence() string {
	var sb strings.Builder
	for _, rec := range d.Alignments.All() {
		sb.WriteString(rec.AA)
	}
	return sb.String()
}

// Verify checks the cross-section properties Parse does not enforce:
// profile rows must line up with alignment rows, and SeqLength must match
// the number of residues.
func (d *Document) Verify() error {
	if d.Homologs.Len() != d.NAlign {
		return fmt.Errorf("NALIGN is %d but %d homologs were parsed", d.NAlign, d.Homologs.Len())
	}
	for key, rec := range d.Alignments.All() {
		if len(rec.Alignment) != d.NAlign {
			return fmt.Errorf("residue %s: alignment has %d characters, want %d",
				key, len(rec.Alignment), d.NAlign)
		}
	}
	if d.Profile != nil {
		if d.Profile.Rows.Len() != d.Alignments.Len() {
			return fmt.Errorf("profile has %d rows but alignment has %d",
				d.Profile.Rows.Len(), d.Alignments.Len())
		}
		for i := range d.Alignments.Len() {
			ak, _ := d.Alignments.At(i)
			pk, _ := d.Profile.Rows.At(i)
			if ak != pk {
				return fmt.Errorf("row %d: profile residue %s does not match alignment residue %s", i, pk, ak)
			}
		}
	}
	if d.Alignments.Len() != d.SeqLength {
		return fmt.Errorf("SEQLENGTH is %d but alignment has %d residues", d.SeqLength, d.Alignments.Len())
	}
	return nil
}
