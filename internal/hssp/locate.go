package hssp

import "strings"

// Section markers. Every HSSP file prints them at column 0.
const (
	markerProteins   = "## PROTEINS : identifier and alignment statistics"
	markerAlignments = "## ALIGNMENTS"
	markerProfile    = "## SEQUENCE PROFILE AND ENTROPY"
	markerInsertions = "## INSERTION LIST"
)

// Sections holds the indices (into the line slice, not physical line
// numbers) at which each section starts. Alignments has one entry per
// sub-block.
type Sections struct {
	Proteins   int
	Alignments []int
	Profile    int
	Insertions int
}

// Locate scans lines once for the section markers.
func Locate(lines []Line) (Sections, error) {
	s := Sections{Proteins: -1, Profile: -1, Insertions: -1}
	found := 0
	for i, l := range lines {
		switch {
		case strings.HasPrefix(l.Text, markerProteins):
			if s.Proteins >= 0 {
				return Sections{}, formatErr(MissingSection, sectionLocate, l.Num, "second PROTEINS section")
			}
			s.Proteins = i
		case strings.HasPrefix(l.Text, markerAlignments):
			s.Alignments = append(s.Alignments, i)
		case strings.HasPrefix(l.Text, markerProfile):
			if s.Profile >= 0 {
				return Sections{}, formatErr(MissingSection, sectionLocate, l.Num, "second PROFILE section")
			}
			s.Profile = i
		case strings.HasPrefix(l.Text, markerInsertions):
			if s.Insertions >= 0 {
				return Sections{}, formatErr(MissingSection, sectionLocate, l.Num, "second INSERTION LIST")
			}
			s.Insertions = i
		default:
			continue
		}
		found++
	}

	switch {
	case found < 4:
		return Sections{}, formatErr(MissingSection, sectionLocate, 0, "found %d section markers, want at least 4", found)
	case s.Proteins < 0:
		return Sections{}, formatErr(MissingSection, sectionLocate, 0, "no %q", markerProteins)
	case len(s.Alignments) == 0:
		return Sections{}, formatErr(MissingSection, sectionLocate, 0, "no %q", markerAlignments)
	case s.Profile < 0:
		return Sections{}, formatErr(MissingSection, sectionLocate, 0, "no %q", markerProfile)
	case s.Insertions < 0:
		return Sections{}, formatErr(MissingSection, sectionLocate, 0, "no %q", markerInsertions)
	}

	first, last := s.Alignments[0], s.Alignments[len(s.Alignments)-1]
	if !(s.Proteins < first && last < s.Profile && s.Profile < s.Insertions) {
		return Sections{}, formatErr(MissingSection, sectionLocate, 0, "sections are out of order")
	}
	return s, nil
}
