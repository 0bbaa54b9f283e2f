package types

// Set is an unordered collection of distinct byte strings.
type Set struct {
	m map[string]struct{}
}

func newSet() *Set { return &Set{m: make(map[string]struct{})} }

// Len returns the number of members.
func (s *Set) Len() int { return len(s.m) }

// Add inserts members, returning the count newly added.
func (s *Set) Add(members ...string) int {
	n := 0
	for _, m := range members {
		if _, ok := s.m[m]; !ok {
			s.m[m] = struct{}{}
			n++
		}
	}
	return n
}

// Rem removes members, returning the count actually removed.
func (s *Set) Rem(members ...string) int {
	n := 0
	for _, m := range members {
		if _, ok := s.m[m]; ok {
			delete(s.m, m)
			n++
		}
	}
	return n
}

// IsMember reports whether member is present.
func (s *Set) IsMember(member string) bool {
	_, ok := s.m[member]
	return ok
}

// Members returns a snapshot slice of all members.
func (s *Set) Members() []string {
	out := make([]string, 0, len(s.m))
	for m := range s.m {
		out = append(out, m)
	}
	return out
}
