package types

import "sort"

type zsetEntry struct {
	member string
	score  float64
}

// SortedSet maps member -> score, with a secondary index ordered by
// (score, member) for ranged scans (spec.md §3).
type SortedSet struct {
	scores map[string]float64
	index  []zsetEntry // kept sorted by (score, member)
}

func newSortedSet() *SortedSet {
	return &SortedSet{scores: make(map[string]float64)}
}

// Len returns the number of members.
func (z *SortedSet) Len() int { return len(z.scores) }

func less(a, b zsetEntry) bool {
	if a.score != b.score {
		return a.score < b.score
	}
	return a.member < b.member
}

func (z *SortedSet) find(e zsetEntry) int {
	return sort.Search(len(z.index), func(i int) bool { return !less(z.index[i], e) })
}

// Add sets member's score, returning whether the member was newly added.
func (z *SortedSet) Add(member string, score float64) bool {
	if old, ok := z.scores[member]; ok {
		if old == score {
			return false
		}
		i := z.find(zsetEntry{member, old})
		z.index = append(z.index[:i], z.index[i+1:]...)
		z.scores[member] = score
		ne := zsetEntry{member, score}
		j := z.find(ne)
		z.index = append(z.index, zsetEntry{})
		copy(z.index[j+1:], z.index[j:])
		z.index[j] = ne
		return false
	}
	z.scores[member] = score
	ne := zsetEntry{member, score}
	j := z.find(ne)
	z.index = append(z.index, zsetEntry{})
	copy(z.index[j+1:], z.index[j:])
	z.index[j] = ne
	return true
}

// Score returns a member's score and whether it is present.
func (z *SortedSet) Score(member string) (float64, bool) {
	s, ok := z.scores[member]
	return s, ok
}

// Rem removes members, returning the count actually removed.
func (z *SortedSet) Rem(members ...string) int {
	n := 0
	for _, m := range members {
		score, ok := z.scores[m]
		if !ok {
			continue
		}
		i := z.find(zsetEntry{m, score})
		z.index = append(z.index[:i], z.index[i+1:]...)
		delete(z.scores, m)
		n++
	}
	return n
}

// Range returns (member, score) pairs for the inclusive rank range
// [start, stop], ordered by (score, member), after Redis-style negative
// index normalization.
func (z *SortedSet) Range(start, stop int) []struct {
	Member string
	Score  float64
} {
	n := len(z.index)
	start, stop, ok := normalizeRange(start, stop, n)
	out := make([]struct {
		Member string
		Score  float64
	}, 0)
	if !ok {
		return out
	}
	for i := start; i <= stop; i++ {
		out = append(out, struct {
			Member string
			Score  float64
		}{z.index[i].member, z.index[i].score})
	}
	return out
}
