package hssp

import (
	"slices"
	"strings"
)

// insertionTerminator ends the INSERTION LIST and the file.
const insertionTerminator = "//"

// insertionContinuation marks a row that carries more of the previous
// insertion's sequence.
const insertionContinuation = "+"

// parseInsertions parses the lines after the INSERTION LIST marker. The
// first line is the column title row ("AliNo  IPOS  JPOS   Len Sequence").
func parseInsertions(window []Line) ([]InsertionRecord, error) {
	records := make([]InsertionRecord, 0, len(window))
	for i, l := range window {
		text := strings.TrimSpace(l.Text)
		if i == 0 && strings.HasPrefix(text, "AliNo") {
			continue
		}
		if text == insertionTerminator {
			break
		}
		if text == "" {
			continue
		}

		tokens := fields(text)
		if slices.Contains(tokens, insertionContinuation) {
			if len(records) == 0 {
				return nil, formatErr(BadRow, sectionInsertions, l.Num, "continuation row with no insertion before it")
			}
			if len(tokens) < 2 {
				return nil, formatErr(BadRow, sectionInsertions, l.Num, "continuation row has no sequence")
			}
			records[len(records)-1].Sequence += tokens[len(tokens)-1]
			continue
		}

		if len(tokens) != 5 {
			return nil, formatErr(BadRow, sectionInsertions, l.Num, "%d columns, want 5", len(tokens))
		}
		c := rowCoercer{section: sectionInsertions, line: l.Num}
		rec := InsertionRecord{
			AliNo:    c.atoi("AliNo", tokens[0]),
			IPos:     c.atoi("IPOS", tokens[1]),
			JPos:     c.atoi("JPOS", tokens[2]),
			Len:      c.atoi("Len", tokens[3]),
			Sequence: tokens[4],
		}
		if c.err != nil {
			return nil, c.err
		}
		records = append(records, rec)
	}
	return records, nil
}
