package hssp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const insertionTitle = " AliNo  IPOS  JPOS   Len Sequence"

func TestParseInsertions_Continuation(t *testing.T) {
	window := numbered(
		insertionTitle,
		"    3    12    40    11 vLLKEaLRiDk",
		"     +                  GyqsPLlsQ",
		"     +                  rA",
		"    5    20    61     2 gK",
		"//",
	)
	got, err := parseInsertions(window)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, InsertionRecord{AliNo: 3, IPos: 12, JPos: 40, Len: 11, Sequence: "vLLKEaLRiDkGyqsPLlsQrA"}, got[0])
	assert.Len(t, got[0].Sequence, len("vLLKEaLRiDk")+len("GyqsPLlsQ")+len("rA"))
	assert.Equal(t, InsertionRecord{AliNo: 5, IPos: 20, JPos: 61, Len: 2, Sequence: "gK"}, got[1])
}

func TestParseInsertions_StopsAtTerminator(t *testing.T) {
	got, err := parseInsertions(numbered(insertionTitle, "    1     2     3     2 AB", "", "//", "trailing garbage"))
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestParseInsertions_Empty(t *testing.T) {
	got, err := parseInsertions(numbered(insertionTitle, "//"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseInsertions_Errors(t *testing.T) {
	tests := []struct {
		name   string
		window []Line
	}{
		{"continuation first", numbered(insertionTitle, "     +   AB", "//")},
		{"bare continuation", numbered(insertionTitle, "    1     2     3     2 AB", "     +", "//")},
		{"not a number", numbered(insertionTitle, "    1     2     x     2 AB", "//")},
		{"short row", numbered(insertionTitle, "    1     2     3", "//")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseInsertions(tt.window)
			assert.ErrorIs(t, err, ErrBadRow)
		})
	}
}
