package types

// Clone returns a value whose container is a fresh, independent copy. It is
// the building block command implementations use inside Keyspace.Compute:
// each mutation clones the previous value (or starts fresh if absent),
// mutates the clone, and returns the clone as the compute result — so any
// snapshot returned by an earlier Get is never touched by a later mutation
// (spec.md §4.4's "get returns a snapshot reference").
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	switch v.kind {
	case KindString:
		b := make([]byte, len(v.str))
		copy(b, v.str)
		return NewString(b)
	case KindList:
		nl := newList()
		for _, e := range v.list.Range(0, -1) {
			nl.PushRight(e)
		}
		return &Value{kind: KindList, list: nl}
	case KindHash:
		nh := newHash()
		for f, val := range v.hash.All() {
			nh.Set(f, val)
		}
		return &Value{kind: KindHash, hash: nh}
	case KindSet:
		ns := newSet()
		ns.Add(v.set.Members()...)
		return &Value{kind: KindSet, set: ns}
	case KindSortedSet:
		nz := newSortedSet()
		for _, e := range v.zset.Range(0, -1) {
			nz.Add(e.Member, e.Score)
		}
		return &Value{kind: KindSortedSet, zset: nz}
	case KindStream:
		ns := newStream()
		ns.entries = append(ns.entries, v.strm.entries...)
		ns.lastID = v.strm.lastID
		ns.hasLast = v.strm.hasLast
		return &Value{kind: KindStream, strm: ns}
	default:
		return &Value{kind: v.kind}
	}
}
