package store

import (
	"time"

	"github.com/kvsrv/kvsrv/internal/types"
)

// entry is the stored unit: a typed value plus an optional absolute
// expiration deadline (spec.md §3). The zero Deadline means no TTL.
type entry struct {
	value    *types.Value
	deadline time.Time // zero = no TTL
}

func (e *entry) hasDeadline() bool { return !e.deadline.IsZero() }

// expiredAt reports whether e's deadline has passed at time now (spec
// invariant 2: deadline <= now means the key must be treated as absent).
func (e *entry) expiredAt(now time.Time) bool {
	return e.hasDeadline() && !e.deadline.After(now)
}
