// Package types implements the closed typed-value union stored in the
// keyspace: string, list, hash, set, sorted set, and stream.
package types

import "errors"

// ErrWrongType is returned by a kind-preserving accessor when the stored
// value's kind does not match the requested container.
var ErrWrongType = errors.New("WRONGTYPE Operation against a key holding the wrong kind of value")

// Kind identifies the container a Value holds. Once an entry exists at a
// key, its Kind is stable for the entry's lifetime (spec invariant 1).
type Kind int

const (
	KindString Kind = iota
	KindList
	KindHash
	KindSet
	KindSortedSet
	KindStream
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindHash:
		return "hash"
	case KindSet:
		return "set"
	case KindSortedSet:
		return "zset"
	case KindStream:
		return "stream"
	default:
		return "none"
	}
}

// Value is a closed union over the six supported container kinds. Only the
// field matching kind is meaningful; accessors enforce that.
type Value struct {
	kind Kind

	str  []byte
	list *List
	hash *Hash
	set  *Set
	zset *SortedSet
	strm *Stream
}

// Kind reports the value's kind without unwrapping its contents.
func (v *Value) Kind() Kind { return v.kind }

// NewString constructs a STRING value.
func NewString(b []byte) *Value { return &Value{kind: KindString, str: b} }

// NewList constructs an empty LIST value.
func NewList() *Value { return &Value{kind: KindList, list: newList()} }

// NewHash constructs an empty HASH value.
func NewHash() *Value { return &Value{kind: KindHash, hash: newHash()} }

// NewSet constructs an empty SET value.
func NewSet() *Value { return &Value{kind: KindSet, set: newSet()} }

// NewSortedSet constructs an empty SORTED_SET value.
func NewSortedSet() *Value { return &Value{kind: KindSortedSet, zset: newSortedSet()} }

// NewStream constructs an empty STREAM value.
func NewStream() *Value { return &Value{kind: KindStream, strm: newStream()} }

// AsString returns the underlying byte string, or ErrWrongType.
func (v *Value) AsString() ([]byte, error) {
	if v.kind != KindString {
		return nil, ErrWrongType
	}
	return v.str, nil
}

// AsList returns the underlying list container, or ErrWrongType.
func (v *Value) AsList() (*List, error) {
	if v.kind != KindList {
		return nil, ErrWrongType
	}
	return v.list, nil
}

// AsHash returns the underlying hash container, or ErrWrongType.
func (v *Value) AsHash() (*Hash, error) {
	if v.kind != KindHash {
		return nil, ErrWrongType
	}
	return v.hash, nil
}

// AsSet returns the underlying set container, or ErrWrongType.
func (v *Value) AsSet() (*Set, error) {
	if v.kind != KindSet {
		return nil, ErrWrongType
	}
	return v.set, nil
}

// AsSortedSet returns the underlying sorted-set container, or ErrWrongType.
func (v *Value) AsSortedSet() (*SortedSet, error) {
	if v.kind != KindSortedSet {
		return nil, ErrWrongType
	}
	return v.zset, nil
}

// AsStream returns the underlying stream container, or ErrWrongType.
func (v *Value) AsStream() (*Stream, error) {
	if v.kind != KindStream {
		return nil, ErrWrongType
	}
	return v.strm, nil
}

// IsEmptyContainer reports whether a composite value has become empty and
// should be deleted per spec (empty list/hash/set/zset/stream are deleted).
func (v *Value) IsEmptyContainer() bool {
	switch v.kind {
	case KindList:
		return v.list.Len() == 0
	case KindHash:
		return v.hash.Len() == 0
	case KindSet:
		return v.set.Len() == 0
	case KindSortedSet:
		return v.zset.Len() == 0
	case KindStream:
		return v.strm.Len() == 0
	default:
		return false
	}
}
