package hssp

import (
	"slices"
	"strings"
)

// Profile columns that are not numeric. SeqNo is numeric but is a
// record field rather than a profile value.
const (
	profileSeqNo     = "SeqNo"
	profilePDBNo     = "PDBNo"
	profileChain     = "CHAIN"
	profileAuthChain = "AUTHCHAIN"
)

// maxPDBNoTokens bounds the residue identity between SeqNo and the
// numeric block: the residue number with its insertion code, then the
// chain letter.
const maxPDBNoTokens = 2

// profileFields is a profile row after token correction.
type profileFields struct {
	SeqNo     string
	PDBNo     string
	Values    []string
	Chain     string
	AuthChain string
}

// parseProfile parses the lines between the SEQUENCE PROFILE marker and
// the INSERTION LIST marker. Its first line names the columns, which vary
// between HSSP versions.
func parseProfile(window []Line) (*ProfileTable, error) {
	if len(window) == 0 {
		return nil, formatErr(BadRow, sectionProfile, 0, "no column title row")
	}
	title := window[0]
	names := fields(title.Text)
	if len(names) < 2 || names[0] != profileSeqNo || names[1] != profilePDBNo {
		return nil, formatErr(BadRow, sectionProfile, title.Num, "column title row %q does not start with SeqNo PDBNo", title.Text)
	}
	columns := names[2:]
	chainFields := 0
	for len(columns) > 0 && slices.Contains([]string{profileChain, profileAuthChain}, columns[len(columns)-1]) {
		columns = columns[:len(columns)-1]
		chainFields++
	}

	table := &ProfileTable{
		Columns: columns,
		Rows:    NewTable[string, ProfileRecord](len(window)),
	}
	for _, l := range window[1:] {
		if strings.TrimSpace(l.Text) == "" {
			continue
		}
		f, isBreak, err := correctProfileRow(l, len(columns), chainFields)
		if err != nil {
			return nil, err
		}
		if isBreak {
			continue
		}
		c := rowCoercer{section: sectionProfile, line: l.Num}
		rec := ProfileRecord{
			SeqNo:     c.atoi(profileSeqNo, f.SeqNo),
			PDBNo:     f.PDBNo,
			Columns:   columns,
			Values:    make([]float64, len(f.Values)),
			Chain:     f.Chain,
			AuthChain: f.AuthChain,
		}
		for i, v := range f.Values {
			rec.Values[i] = c.float(columns[i], v)
		}
		if c.err != nil {
			return nil, c.err
		}
		if err := table.Rows.Put(rec.PDBNo, rec); err != nil {
			return nil, formatErr(BadRow, sectionProfile, l.Num, "%s", err)
		}
	}
	return table, nil
}

// correctProfileRow splits a profile row into SeqNo, PDBNo, the numeric
// block and the optional chain fields. As in the alignment section the
// residue number and its insertion/chain letters can be separate tokens;
// whatever sits between SeqNo and the numeric block is PDBNo, one or two
// tokens wide.
//
// chainFields is how many chain columns the title row names. A row either
// carries all of them or none, and the token count tells which. Chain IDs
// may be digits, so the tokens themselves cannot.
func correctProfileRow(l Line, numeric, chainFields int) (profileFields, bool, error) {
	tokens := fields(l.Text)
	if slices.Contains(tokens, breakSentinel) {
		return profileFields{}, true, nil
	}

	trailing := -1
	for _, n := range []int{chainFields, 0} {
		if id := len(tokens) - n - numeric - 1; id >= 1 && id <= maxPDBNoTokens {
			trailing = n
			break
		}
	}
	if trailing < 0 {
		return profileFields{}, false, formatErr(BadRow, sectionProfile, l.Num,
			"%d columns, want %d to %d", len(tokens), numeric+2, numeric+1+maxPDBNoTokens+chainFields)
	}
	body := tokens[:len(tokens)-trailing]
	idEnd := len(body) - numeric
	f := profileFields{
		SeqNo:  body[0],
		PDBNo:  strings.Join(body[1:idEnd], ""),
		Values: body[idEnd:],
	}
	chain := tokens[len(tokens)-trailing:]
	if len(chain) > 0 {
		f.Chain = chain[0]
	}
	if len(chain) > 1 {
		f.AuthChain = chain[1]
	}
	return f, false, nil
}
