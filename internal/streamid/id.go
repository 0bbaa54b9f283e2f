// Package streamid implements the 128-bit ordered stream identifier
// (time_ms, sequence) described in spec.md §4.2: total order, string
// round-tripping, and the small sentinel grammar XADD/XRANGE accept.
package streamid

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrSyntax is returned when a stream id string does not parse.
var ErrSyntax = errors.New("ERR Invalid stream ID specified as stream command argument")

// ID is a strictly ordered pair (Ms, Seq); order is lexicographic on the
// pair (spec.md §3, invariant 3).
type ID struct {
	Ms  uint64
	Seq uint64
}

// Zero is the sentinel id (0,0), which XADD rejects outright.
var Zero = ID{0, 0}

// Min is the lower sentinel used by XRANGE's "-".
var Min = ID{0, 0}

// Max is the upper sentinel used by XRANGE's "+".
var Max = ID{math.MaxUint64, math.MaxUint64}

// Less reports whether id < other under the total (Ms, Seq) order.
func (id ID) Less(other ID) bool {
	if id.Ms != other.Ms {
		return id.Ms < other.Ms
	}
	return id.Seq < other.Seq
}

// Compare returns -1, 0, or 1 as id is less than, equal to, or greater than
// other.
func (id ID) Compare(other ID) int {
	switch {
	case id.Less(other):
		return -1
	case other.Less(id):
		return 1
	default:
		return 0
	}
}

// String renders "<ms>-<seq>".
func (id ID) String() string {
	return strconv.FormatUint(id.Ms, 10) + "-" + strconv.FormatUint(id.Seq, 10)
}

// Bound selects which default sequence value a bare "ms" form takes: the
// lower bound of a range defaults sequence to 0, the upper bound to
// math.MaxUint64 (spec.md §4.2).
type Bound int

const (
	LowerBound Bound = iota
	UpperBound
)

// Parse parses a stream id per spec.md §4.2: "ms-seq" explicit, "ms" alone
// (sequence defaulted per bound), "-"/"+" sentinels, and, when autoAllowed,
// "*" and "ms-*". Auto forms return an incomplete id ("*": the zero ID;
// "ms-*": only Ms set) that must be resolved by the caller against the
// stream's last id; Parse only validates grammar for those forms and
// reports which part (if any) requested automatic assignment via
// autoMs/autoSeq.
func Parse(s string, bound Bound, autoAllowed bool) (id ID, autoMs, autoSeq bool, err error) {
	switch s {
	case "-":
		return Min, false, false, nil
	case "+":
		return Max, false, false, nil
	case "*":
		if !autoAllowed {
			return ID{}, false, false, ErrSyntax
		}
		return ID{}, true, true, nil
	}

	parts := strings.SplitN(s, "-", 2)
	msPart := parts[0]
	ms, err := strconv.ParseUint(msPart, 10, 64)
	if err != nil || msPart == "" {
		return ID{}, false, false, ErrSyntax
	}

	if len(parts) == 1 {
		seq := uint64(0)
		if bound == UpperBound {
			seq = math.MaxUint64
		}
		return ID{Ms: ms, Seq: seq}, false, false, nil
	}

	seqPart := parts[1]
	if seqPart == "*" {
		if !autoAllowed {
			return ID{}, false, false, ErrSyntax
		}
		return ID{Ms: ms}, false, true, nil
	}

	seq, err := strconv.ParseUint(seqPart, 10, 64)
	if err != nil || seqPart == "" {
		return ID{}, false, false, ErrSyntax
	}
	return ID{Ms: ms, Seq: seq}, false, false, nil
}

// MustParseExplicit is a test/internal convenience for fully explicit
// "ms-seq" ids; it panics on malformed input.
func MustParseExplicit(s string) ID {
	id, autoMs, autoSeq, err := Parse(s, LowerBound, false)
	if err != nil || autoMs || autoSeq {
		panic(fmt.Sprintf("streamid: not a fully explicit id: %q", s))
	}
	return id
}
