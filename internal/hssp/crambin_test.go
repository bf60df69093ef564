package hssp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testdata/1crn.hssp is laid out like an HSSP 2.0 file: DSSP structure
// columns, bridge partners with sheet labels, an insertion code, a chain
// break between two chains and a wrapped insertion.
func parseCrambin(t *testing.T) *Document {
	t.Helper()
	f, err := os.Open(filepath.Join("testdata", "1crn.hssp"))
	require.NoError(t, err)
	defer f.Close()
	doc, err := Parse(f)
	require.NoError(t, err)
	return doc
}

func TestParse_Crambin(t *testing.T) {
	doc := parseCrambin(t)

	assert.Equal(t, "2.0 2011", doc.Version)
	assert.Equal(t, "1crn", doc.PDBID)
	assert.Equal(t, 8, doc.SeqLength)
	assert.Equal(t, 2, doc.NChain)
	assert.Equal(t, 3, doc.NAlign)
	assert.Equal(t, "TTCCPKAD", doc.QuerySequence())
	require.NoError(t, doc.Verify())

	thionin, ok := doc.Homologs.Get(2)
	require.True(t, ok)
	assert.Equal(t, "THN_PYRPU", thionin.ID)
	assert.Empty(t, thionin.STRID)
	assert.InDelta(t, 0.42, thionin.Identity, 1e-9)
	assert.Equal(t, "P07504", thionin.AccNum)
	assert.Equal(t, "Purothionin PP, Pyrularia thionin", thionin.Protein)

	fragment, _ := doc.Homologs.Get(3)
	assert.Equal(t, 132, fragment.LSeq2)
	assert.Equal(t, "Thionin-like protein, fragment", fragment.Protein)
}

func TestParse_CrambinAlignments(t *testing.T) {
	doc := parseCrambin(t)
	assert.Equal(t, []string{"1A", "2A", "3A", "4A", "5A", "1B", "2B", "2AB"}, doc.Alignments.Keys())

	tests := []struct {
		pdbNo string
		want  AlignmentRecord
	}{
		{"1A", AlignmentRecord{
			SeqNo: 1, PDBNo: "1A", AA: "T", Structure: "E      A ",
			BP1: 34, BP2: 0, Sheet: "A", Acc: 50, NOcc: 3, Var: 0,
			Alignment: "TTT", Chain: "A", AuthChain: "A",
		}},
		{"3A", AlignmentRecord{
			SeqNo: 3, PDBNo: "3A", AA: "C", Structure: "E   > -Ab",
			BP1: 32, BP2: 1040, Sheet: "A", Acc: 2, NOcc: 3, Var: 0,
			Alignment: "CCc", Chain: "A", AuthChain: "A",
		}},
		{"4A", AlignmentRecord{
			SeqNo: 4, PDBNo: "4A", AA: "C", Structure: "  3 >S+  ",
			Acc: 40, NOcc: 3, Var: 14,
			Alignment: "CCP", Chain: "A", AuthChain: "A",
		}},
		{"1B", AlignmentRecord{
			SeqNo: 7, PDBNo: "1B", AA: "K", Structure: "H  << -  ",
			Acc: 120, NOcc: 3, Var: 31,
			Alignment: "KkR", Chain: "B", AuthChain: "B",
		}},
		{"2AB", AlignmentRecord{
			SeqNo: 9, PDBNo: "2AB", AA: "D",
			Acc: 88, NOcc: 1, Var: 0,
			Alignment: "D  ", Chain: "B", AuthChain: "B",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.pdbNo, func(t *testing.T) {
			got, ok := doc.Alignments.Get(tt.pdbNo)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	// The break row sits between chains and is not a residue.
	for _, rec := range doc.Alignments.All() {
		assert.NotEqual(t, 6, rec.SeqNo)
	}
	gap, _ := doc.Alignments.Get("2B")
	assert.Equal(t, byte(' '), gap.Alignment[2])
}

func TestParse_CrambinProfileAndInsertions(t *testing.T) {
	doc := parseCrambin(t)

	require.NotNil(t, doc.Profile)
	assert.Len(t, doc.Profile.Columns, 26)
	assert.Equal(t, doc.Alignments.Keys(), doc.Profile.Rows.Keys())

	rec, ok := doc.Profile.Rows.Get("3A")
	require.True(t, ok)
	c, _ := rec.Value("C")
	assert.Equal(t, 67.0, c)
	nins, _ := rec.Value("NINS")
	assert.Equal(t, 1.0, nins)
	entropy, _ := rec.Value("ENTROPY")
	assert.InDelta(t, 0.637, entropy, 1e-9)
	assert.Equal(t, "A", rec.Chain)

	last, _ := doc.Profile.Rows.Get("2AB")
	assert.Equal(t, 9, last.SeqNo)
	assert.Equal(t, "B", last.AuthChain)
	weight, _ := last.Value("WEIGHT")
	assert.Equal(t, 1.0, weight)

	require.Len(t, doc.Insertions, 2)
	assert.Equal(t, InsertionRecord{AliNo: 3, IPos: 3, JPos: 6, Len: 2, Sequence: "cAGe"}, doc.Insertions[0])
	wrapped := doc.Insertions[1]
	assert.Equal(t, 45, wrapped.Len)
	assert.Equal(t, "kKLMNPQRSTVWYACDEFGHIKLMNP"+"QRSTVWYACDEFGHIKLMNPr", wrapped.Sequence)
}
