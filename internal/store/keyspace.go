// Package store implements the concurrent keyspace (C4) and its expiration
// subsystem (C3): the atomic compute primitive every mutating command is
// built on, lazy + active expiration, and the list-growth notification hook
// that feeds the blocking waiter registry (C5).
package store

import (
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/kvsrv/kvsrv/internal/types"
)

const defaultShardCount = 32

// ListGrowthNotifier is invoked after a successful Compute whose result is a
// LIST with added elements on either end (spec.md §4.4's "list mutation
// hook"). added is the count of newly appended elements, used by the
// waiter registry to bound how many waiters it wakes for one notification
// (spec.md §4.5).
type ListGrowthNotifier func(key string, added int)

// Keyspace is the concurrent map from key to (value, optional deadline)
// described in spec.md §4.4. It shards keys across independent maps so
// unrelated keys proceed in parallel; Compute holds exclusive access to a
// single key only for the duration of its closure.
type Keyspace struct {
	shards     []*shard
	shardCount uint64
	expiry     *expiryIndex
	notify     ListGrowthNotifier
	stop       chan struct{}
}

// New constructs a Keyspace with defaultShardCount shards and starts its
// background reaper goroutine. Call Close to stop the reaper.
func New() *Keyspace {
	return NewWithShards(defaultShardCount)
}

// NewWithShards is New with an explicit shard count (primarily for tests
// that want to force cross-shard or same-shard key placement).
func NewWithShards(shardCount int) *Keyspace {
	if shardCount < 1 {
		shardCount = 1
	}
	ks := &Keyspace{
		shards:     make([]*shard, shardCount),
		shardCount: uint64(shardCount),
		expiry:     newExpiryIndex(),
		stop:       make(chan struct{}),
	}
	for i := range ks.shards {
		ks.shards[i] = newShard()
	}
	go ks.runReaper(ks.stop)
	return ks
}

// Close stops the background reaper. The keyspace itself remains usable;
// only active expiration stops (lazy expiration on access still applies).
func (ks *Keyspace) Close() { close(ks.stop) }

// SetNotifier installs the list-growth notification hook (wired to
// internal/waiter.Registry.Notify by the server bootstrap).
func (ks *Keyspace) SetNotifier(n ListGrowthNotifier) { ks.notify = n }

func (ks *Keyspace) shardFor(key string) *shard {
	h := xxhash.Sum64String(key)
	return ks.shards[h%ks.shardCount]
}

// lazyExpireLocked returns the live entry for key, deleting and returning
// (nil, false) if it has passed its deadline (spec invariant 2). Caller
// must hold the key's lock.
func lazyExpireLocked(sh *shard, key string, now time.Time) (*entry, bool) {
	sh.mu.RLock()
	e, ok := sh.data[key]
	sh.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if e.expiredAt(now) {
		sh.mu.Lock()
		delete(sh.data, key)
		sh.mu.Unlock()
		return nil, false
	}
	return e, true
}

// Get returns a snapshot of key's value, lazily expiring it first. The
// returned *types.Value is never mutated in place by a later Compute
// (commands clone-before-mutate), so holding onto it is safe.
func (ks *Keyspace) Get(key string) (*types.Value, bool) {
	sh := ks.shardFor(key)
	km := sh.keyLock(key)
	km.Lock()
	e, ok := lazyExpireLocked(sh, key, time.Now())
	km.Unlock()
	if !ok {
		return nil, false
	}
	return e.value, true
}

// TTL returns the remaining time-to-live for key. It returns (0, false,
// false) if the key is absent/expired, (0, false, true) if the key is
// present with no TTL, and (remaining, true, true) otherwise. Callers use
// (ok, hasTTL) to distinguish "absent" from "present, no expiry".
func (ks *Keyspace) TTL(key string) (ttl time.Duration, hasTTL bool, ok bool) {
	sh := ks.shardFor(key)
	km := sh.keyLock(key)
	km.Lock()
	defer km.Unlock()
	e, present := lazyExpireLocked(sh, key, time.Now())
	if !present {
		return 0, false, false
	}
	if !e.hasDeadline() {
		return 0, false, true
	}
	return time.Until(e.deadline), true, true
}

// Put overwrites key unconditionally. A zero deadline means no TTL and
// clears any previously registered expiration (design note §9: SET without
// TTL options wipes any prior TTL, matching Redis's default, no KEEPTTL).
func (ks *Keyspace) Put(key string, value *types.Value, deadline time.Time) {
	sh := ks.shardFor(key)
	km := sh.keyLock(key)
	km.Lock()
	sh.mu.Lock()
	sh.data[key] = &entry{value: value, deadline: deadline}
	sh.mu.Unlock()
	km.Unlock()

	if deadline.IsZero() {
		ks.expiry.unschedule(key)
	} else {
		ks.expiry.schedule(key, deadline)
	}
}

// Remove deletes key, reporting whether it existed (and was not already
// lazily expired).
func (ks *Keyspace) Remove(key string) bool {
	sh := ks.shardFor(key)
	km := sh.keyLock(key)
	km.Lock()
	_, existed := lazyExpireLocked(sh, key, time.Now())
	if existed {
		sh.mu.Lock()
		delete(sh.data, key)
		sh.mu.Unlock()
	}
	km.Unlock()

	if existed {
		ks.expiry.unschedule(key)
	}
	return existed
}

// Stats is a point-in-time snapshot of keyspace size, used by the admin
// HTTP surface's /stats endpoint. Counts are taken shard-by-shard and are
// not a single atomic snapshot of the whole keyspace.
type Stats struct {
	Shards int
	Keys   int
}

// Stats computes a keyspace size snapshot.
func (ks *Keyspace) Stats() Stats {
	st := Stats{Shards: len(ks.shards)}
	for _, sh := range ks.shards {
		sh.mu.RLock()
		st.Keys += len(sh.data)
		sh.mu.RUnlock()
	}
	return st
}

// FlushAll unconditionally clears every key in the keyspace and its pending
// expiry registrations. Destructive; reserved for the admin surface's
// debug-only /admin/flushall action.
func (ks *Keyspace) FlushAll() {
	for _, sh := range ks.shards {
		sh.mu.Lock()
		keys := make([]string, 0, len(sh.data))
		for k := range sh.data {
			keys = append(keys, k)
		}
		sh.data = make(map[string]*entry)
		sh.mu.Unlock()
		for _, k := range keys {
			ks.expiry.unschedule(k)
		}
	}
}

// RemoveMany deletes every key in keys, returning the count that existed.
func (ks *Keyspace) RemoveMany(keys []string) int64 {
	var n int64
	for _, k := range keys {
		if ks.Remove(k) {
			n++
		}
	}
	return n
}

// ComputeFunc is the atomic read-modify-write closure passed to Compute. It
// receives the current value (nil if absent, already lazily expired) and
// returns the new value (nil deletes the key) or an error that aborts the
// mutation without touching storage (design note §9's return-tuple shape,
// replacing the source's side-channel error pattern).
type ComputeFunc func(current *types.Value) (*types.Value, error)

// Compute runs fn under exclusive access to key (spec.md §4.4's "compute").
// On success, if the stored value becomes an empty composite container it
// is deleted (spec.md §3's lifecycle rule); a LIST result with more
// elements than the previous value triggers the registered
// ListGrowthNotifier — only after the per-key lock is released. The
// notifier (internal/waiter.Registry.Notify) turns around and calls back
// into Compute on the same key to deliver popped elements to parked
// BLPOP/BRPOP waiters; since a key's mutex is never reentrant-safe and is
// never swapped out (shard.go's keyLock always returns the same
// *sync.Mutex for a given key), firing the notifier while still holding
// that mutex would deadlock the calling goroutine against itself.
func (ks *Keyspace) Compute(key string, fn ComputeFunc) (*types.Value, error) {
	sh := ks.shardFor(key)
	km := sh.keyLock(key)
	km.Lock()

	e, present := lazyExpireLocked(sh, key, time.Now())
	var current *types.Value
	prevListLen := 0
	if present {
		current = e.value
		if current.Kind() == types.KindList {
			if l, err := current.AsList(); err == nil {
				prevListLen = l.Len()
			}
		}
	}

	next, err := fn(current)
	if err != nil {
		km.Unlock()
		return nil, err
	}

	if next == nil {
		if present {
			sh.mu.Lock()
			delete(sh.data, key)
			sh.mu.Unlock()
			ks.expiry.unschedule(key)
		}
		km.Unlock()
		return nil, nil
	}

	if next.IsEmptyContainer() {
		sh.mu.Lock()
		delete(sh.data, key)
		sh.mu.Unlock()
		ks.expiry.unschedule(key)
		km.Unlock()
		return next, nil
	}

	deadline := time.Time{}
	if present {
		deadline = e.deadline
	}
	sh.mu.Lock()
	sh.data[key] = &entry{value: next, deadline: deadline}
	sh.mu.Unlock()

	added := 0
	if next.Kind() == types.KindList {
		if l, err := next.AsList(); err == nil {
			added = l.Len() - prevListLen
		}
	}
	km.Unlock()

	if added > 0 && ks.notify != nil {
		ks.notify(key, added)
	}

	return next, nil
}

// ComputeTTLFunc is ComputeFunc's counterpart for operations that decide
// the key's deadline themselves rather than preserving whatever was there
// before (SET's EX/PX/NX/XX options, spec.md §4.6). hadDeadline/deadline
// describe the current entry's TTL (meaningless if current is nil).
// newDeadline's zero value means "no TTL"; it is ignored when next is nil.
type ComputeTTLFunc func(current *types.Value, hadDeadline bool, deadline time.Time) (next *types.Value, newDeadline time.Time, err error)

// ComputeTTL is Compute, but fn also decides the stored deadline explicitly
// instead of inheriting the previous one.
func (ks *Keyspace) ComputeTTL(key string, fn ComputeTTLFunc) (*types.Value, error) {
	sh := ks.shardFor(key)
	km := sh.keyLock(key)
	km.Lock()
	defer km.Unlock()

	e, present := lazyExpireLocked(sh, key, time.Now())
	var current *types.Value
	var hadDeadline bool
	var curDeadline time.Time
	if present {
		current = e.value
		hadDeadline = e.hasDeadline()
		curDeadline = e.deadline
	}

	next, newDeadline, err := fn(current, hadDeadline, curDeadline)
	if err != nil {
		return nil, err
	}

	if next == nil {
		if present {
			sh.mu.Lock()
			delete(sh.data, key)
			sh.mu.Unlock()
			ks.expiry.unschedule(key)
		}
		return nil, nil
	}

	sh.mu.Lock()
	sh.data[key] = &entry{value: next, deadline: newDeadline}
	sh.mu.Unlock()

	if newDeadline.IsZero() {
		ks.expiry.unschedule(key)
	} else {
		ks.expiry.schedule(key, newDeadline)
	}

	return next, nil
}
