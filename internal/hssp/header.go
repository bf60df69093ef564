package hssp

import (
	"strconv"
	"strings"
)

// parseHeader reads the five scalar fields from the lines preceding the
// PROTEINS section. The keywords appear in this order in every HSSP file,
// so each one is searched for after the previous match.
func parseHeader(window []Line) (Header, error) {
	keywords := []string{"HSSP", "PDBID", "SEQLENGTH", "NCHAIN", "NALIGN"}
	found := make([]Line, 0, len(keywords))
	next := 0
	for _, kw := range keywords {
		i := next
		for ; i < len(window); i++ {
			if strings.Contains(window[i].Text, kw) {
				break
			}
		}
		if i == len(window) {
			return Header{}, formatErr(BadHeader, sectionHeader, 0, "found %d of %d keyword lines, %s is missing",
				len(found), len(keywords), kw)
		}
		found = append(found, window[i])
		next = i + 1
	}

	h := Header{}

	version := found[0]
	_, after, ok := strings.Cut(version.Text, "VERSION")
	if !ok {
		return Header{}, formatErr(BadHeader, sectionHeader, version.Num, "no VERSION in %q", version.Text)
	}
	h.Version = strings.TrimSpace(after)
	h.PDBID = strings.TrimSpace(afterKeyword(found[1].Text, "PDBID"))

	var err error
	if h.SeqLength, err = headerInt(found[2], afterKeyword(found[2].Text, "SEQLENGTH")); err != nil {
		return Header{}, err
	}

	// "NCHAIN      1 chain(s) in 1TAQ data set"
	nchain, _, _ := strings.Cut(afterKeyword(found[3].Text, "NCHAIN"), "chain")
	if h.NChain, err = headerInt(found[3], nchain); err != nil {
		return Header{}, err
	}

	if h.NAlign, err = headerInt(found[4], afterKeyword(found[4].Text, "NALIGN")); err != nil {
		return Header{}, err
	}
	return h, nil
}

func afterKeyword(s, kw string) string {
	_, after, _ := strings.Cut(s, kw)
	return after
}

func headerInt(l Line, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &FormatError{Kind: BadHeader, Section: sectionHeader, Line: l.Num, Err: err}
	}
	return n, nil
}
