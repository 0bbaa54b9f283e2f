package types

import (
	"sort"

	"github.com/kvsrv/kvsrv/internal/streamid"
)

// StreamEntry is one inserted record: an id plus its insertion-ordered
// field/value pairs.
type StreamEntry struct {
	ID     streamid.ID
	Fields []Field
}

// Field is one field/value pair, kept in insertion order.
type Field struct {
	Name  string
	Value []byte
}

// Stream is an ordered mapping from StreamId to an insertion-ordered
// field/value mapping; insertion order is strictly increasing by id
// (spec.md §3, invariant 3).
type Stream struct {
	entries []StreamEntry // strictly increasing by ID
	lastID  streamid.ID
	hasLast bool
}

func newStream() *Stream { return &Stream{} }

// Len returns the number of entries.
func (s *Stream) Len() int { return len(s.entries) }

// LastID returns the most recently inserted id, or false if the stream is
// empty.
func (s *Stream) LastID() (streamid.ID, bool) { return s.lastID, s.hasLast }

// Append inserts a new entry. Callers (XADD) are responsible for choosing
// an id that is strictly greater than LastID(); Append enforces that as a
// final invariant check.
func (s *Stream) Append(id streamid.ID, fields []Field) error {
	if s.hasLast && !s.lastID.Less(id) {
		return errStreamOrderViolation
	}
	s.entries = append(s.entries, StreamEntry{ID: id, Fields: fields})
	s.lastID = id
	s.hasLast = true
	return nil
}

// Range returns entries with id in the inclusive [start, end] range,
// ascending, capped at count entries if count > 0.
func (s *Stream) Range(start, end streamid.ID, count int) []StreamEntry {
	lo := sort.Search(len(s.entries), func(i int) bool {
		return !s.entries[i].ID.Less(start)
	})
	out := make([]StreamEntry, 0)
	for i := lo; i < len(s.entries); i++ {
		if end.Less(s.entries[i].ID) {
			break
		}
		out = append(out, s.entries[i])
		if count > 0 && len(out) >= count {
			break
		}
	}
	return out
}

// After returns all entries with id strictly greater than after, ascending.
func (s *Stream) After(after streamid.ID) []StreamEntry {
	lo := sort.Search(len(s.entries), func(i int) bool {
		return after.Less(s.entries[i].ID)
	})
	out := make([]StreamEntry, len(s.entries)-lo)
	copy(out, s.entries[lo:])
	return out
}

var errStreamOrderViolation = &streamOrderError{}

type streamOrderError struct{}

func (e *streamOrderError) Error() string {
	return "ERR The ID specified in XADD is equal or smaller than the target stream top item"
}
