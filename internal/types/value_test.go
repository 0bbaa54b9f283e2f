package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueKindAccessors(t *testing.T) {
	cases := []struct {
		name string
		v    *Value
		kind Kind
	}{
		{"string", NewString([]byte("x")), KindString},
		{"list", NewList(), KindList},
		{"hash", NewHash(), KindHash},
		{"set", NewSet(), KindSet},
		{"sortedset", NewSortedSet(), KindSortedSet},
		{"stream", NewStream(), KindStream},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.kind, tc.v.Kind())
		})
	}
}

func TestValueAsWrongType(t *testing.T) {
	v := NewString([]byte("hi"))
	_, err := v.AsList()
	require.ErrorIs(t, err, ErrWrongType)
	_, err = v.AsHash()
	require.ErrorIs(t, err, ErrWrongType)
	_, err = v.AsSet()
	require.ErrorIs(t, err, ErrWrongType)
	_, err = v.AsSortedSet()
	require.ErrorIs(t, err, ErrWrongType)
	_, err = v.AsStream()
	require.ErrorIs(t, err, ErrWrongType)

	s, err := v.AsString()
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), s)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "string", KindString.String())
	assert.Equal(t, "list", KindList.String())
	assert.Equal(t, "hash", KindHash.String())
	assert.Equal(t, "set", KindSet.String())
	assert.Equal(t, "zset", KindSortedSet.String())
	assert.Equal(t, "stream", KindStream.String())
	assert.Equal(t, "none", Kind(99).String())
}

func TestIsEmptyContainer(t *testing.T) {
	l := NewList()
	assert.True(t, l.IsEmptyContainer())
	list, _ := l.AsList()
	list.PushLeft([]byte("a"))
	assert.False(t, l.IsEmptyContainer())

	s := NewString([]byte("x"))
	assert.False(t, s.IsEmptyContainer())
}

func TestCloneIsIndependent(t *testing.T) {
	orig := NewList()
	l, _ := orig.AsList()
	l.PushRight([]byte("a"), []byte("b"))

	clone := orig.Clone()
	cl, _ := clone.AsList()
	cl.PushRight([]byte("c"))

	assert.Equal(t, 2, l.Len(), "mutating the clone must not affect the original")
	assert.Equal(t, 3, cl.Len())
}

func TestCloneNil(t *testing.T) {
	var v *Value
	assert.Nil(t, v.Clone())
}

func TestCloneAllKinds(t *testing.T) {
	h := NewHash()
	hh, _ := h.AsHash()
	hh.Set("f", []byte("v"))
	hc := h.Clone()
	hhc, _ := hc.AsHash()
	assert.Equal(t, hh.All(), hhc.All())

	s := NewSet()
	ss, _ := s.AsSet()
	ss.Add("a", "b")
	sc := s.Clone()
	ssc, _ := sc.AsSet()
	assert.ElementsMatch(t, ss.Members(), ssc.Members())

	z := NewSortedSet()
	zz, _ := z.AsSortedSet()
	zz.Add("m", 1.5)
	zc := z.Clone()
	zzc, _ := zc.AsSortedSet()
	score, ok := zzc.Score("m")
	require.True(t, ok)
	assert.Equal(t, 1.5, score)
}
