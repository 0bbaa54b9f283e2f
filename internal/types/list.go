package types

import "container/list"

// List is an ordered sequence of byte strings with O(1) push/pop at either
// end, backed by a doubly linked list (container/list), the same container
// shape the stdlib offers for deque-like access patterns.
type List struct {
	l *list.List
}

func newList() *List { return &List{l: list.New()} }

// Len returns the number of elements.
func (lst *List) Len() int { return lst.l.Len() }

// PushLeft inserts elements at the head, in argv order, so that the last
// argument ends up closest to the head (matches Redis LPUSH semantics:
// LPUSH k a b c results in [c, b, a]).
func (lst *List) PushLeft(values ...[]byte) {
	for _, v := range values {
		lst.l.PushFront(v)
	}
}

// PushRight inserts elements at the tail, in argv order.
func (lst *List) PushRight(values ...[]byte) {
	for _, v := range values {
		lst.l.PushBack(v)
	}
}

// PopLeft removes and returns up to count elements from the head.
func (lst *List) PopLeft(count int) [][]byte {
	out := make([][]byte, 0, count)
	for i := 0; i < count; i++ {
		e := lst.l.Front()
		if e == nil {
			break
		}
		lst.l.Remove(e)
		out = append(out, e.Value.([]byte))
	}
	return out
}

// PopRight removes and returns up to count elements from the tail.
func (lst *List) PopRight(count int) [][]byte {
	out := make([][]byte, 0, count)
	for i := 0; i < count; i++ {
		e := lst.l.Back()
		if e == nil {
			break
		}
		lst.l.Remove(e)
		out = append(out, e.Value.([]byte))
	}
	return out
}

// Range returns a snapshot slice of elements between inclusive indices
// [start, stop] after Redis-style negative-index normalization and
// clamping; callers pass raw argv indices.
func (lst *List) Range(start, stop int) [][]byte {
	n := lst.l.Len()
	start, stop, ok := normalizeRange(start, stop, n)
	if !ok {
		return [][]byte{}
	}

	out := make([][]byte, 0, stop-start+1)
	i := 0
	for e := lst.l.Front(); e != nil; e = e.Next() {
		if i > stop {
			break
		}
		if i >= start {
			out = append(out, e.Value.([]byte))
		}
		i++
	}
	return out
}

// normalizeRange converts Redis-style possibly-negative start/stop indices
// into clamped, ascending [start, stop] bounds over a sequence of length n.
// ok is false when the resulting range is empty.
func normalizeRange(start, stop, n int) (int, int, bool) {
	if n == 0 {
		return 0, 0, false
	}
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || start >= n {
		return 0, 0, false
	}
	return start, stop, true
}
