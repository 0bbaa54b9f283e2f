package streamid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDOrderingAndString(t *testing.T) {
	a := ID{Ms: 1, Seq: 5}
	b := ID{Ms: 1, Seq: 6}
	c := ID{Ms: 2, Seq: 0}

	assert.True(t, a.Less(b))
	assert.True(t, b.Less(c))
	assert.False(t, c.Less(a))
	assert.Equal(t, 0, a.Compare(a))
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, c.Compare(a))
	assert.Equal(t, "1-5", a.String())
}

func TestParseExplicit(t *testing.T) {
	id, autoMs, autoSeq, err := Parse("12-34", LowerBound, true)
	require.NoError(t, err)
	assert.False(t, autoMs)
	assert.False(t, autoSeq)
	assert.Equal(t, ID{Ms: 12, Seq: 34}, id)
}

func TestParseBareMsDefaultsBySide(t *testing.T) {
	lo, _, _, err := Parse("5", LowerBound, false)
	require.NoError(t, err)
	assert.Equal(t, ID{Ms: 5, Seq: 0}, lo)

	hi, _, _, err := Parse("5", UpperBound, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), hi.Ms)
	assert.Equal(t, Max.Seq, hi.Seq)
}

func TestParseSentinels(t *testing.T) {
	lo, _, _, err := Parse("-", LowerBound, false)
	require.NoError(t, err)
	assert.Equal(t, Min, lo)

	hi, _, _, err := Parse("+", UpperBound, false)
	require.NoError(t, err)
	assert.Equal(t, Max, hi)
}

func TestParseAutoForms(t *testing.T) {
	_, autoMs, autoSeq, err := Parse("*", LowerBound, true)
	require.NoError(t, err)
	assert.True(t, autoMs)
	assert.True(t, autoSeq)

	id, autoMs, autoSeq, err := Parse("7-*", LowerBound, true)
	require.NoError(t, err)
	assert.False(t, autoMs)
	assert.True(t, autoSeq)
	assert.Equal(t, uint64(7), id.Ms)
}

func TestParseAutoFormsRejectedWhenDisallowed(t *testing.T) {
	_, _, _, err := Parse("*", LowerBound, false)
	assert.ErrorIs(t, err, ErrSyntax)

	_, _, _, err = Parse("7-*", LowerBound, false)
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestParseMalformed(t *testing.T) {
	for _, s := range []string{"", "abc", "1-abc", "-1", "1-"} {
		_, _, _, err := Parse(s, LowerBound, true)
		assert.ErrorIsf(t, err, ErrSyntax, "input %q should be rejected", s)
	}
}

func TestMustParseExplicitPanicsOnAuto(t *testing.T) {
	assert.Panics(t, func() { MustParseExplicit("*") })
}
