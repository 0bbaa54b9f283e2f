package types

// Hash is a field -> byte string mapping. Field insertion order is not
// required to be preserved (spec.md §3).
type Hash struct {
	m map[string][]byte
}

func newHash() *Hash { return &Hash{m: make(map[string][]byte)} }

// Len returns the number of fields.
func (h *Hash) Len() int { return len(h.m) }

// Get returns the field's value and whether it was present.
func (h *Hash) Get(field string) ([]byte, bool) {
	v, ok := h.m[field]
	return v, ok
}

// Set sets a field, reporting whether the field was newly created.
func (h *Hash) Set(field string, value []byte) bool {
	_, existed := h.m[field]
	h.m[field] = value
	return !existed
}

// Del removes fields, returning the count actually removed.
func (h *Hash) Del(fields ...string) int {
	n := 0
	for _, f := range fields {
		if _, ok := h.m[f]; ok {
			delete(h.m, f)
			n++
		}
	}
	return n
}

// All returns a snapshot of all field/value pairs.
func (h *Hash) All() map[string][]byte {
	out := make(map[string][]byte, len(h.m))
	for k, v := range h.m {
		out[k] = v
	}
	return out
}
