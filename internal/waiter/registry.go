// Package waiter implements the blocking list-consumer registry (C5):
// BLPOP/BRPOP parking, FIFO wake-up on list growth, and deadline-based
// timeout, grounded on the teacher's condvar-gated slotPool
// (internal/infrastructure/processmgr/slot_pool.go) but reworked from a
// plain wake signal to a one-shot payload-carrying delivery channel per
// design note §9.
package waiter

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/kvsrv/kvsrv/internal/store"
	"github.com/kvsrv/kvsrv/internal/types"
)

// Side selects which end of the list a waiter pops from.
type Side int

const (
	Left Side = iota
	Right
)

// Result is delivered to a parked waiter: either a (key, element) pair, or
// a timeout/cancellation with Element == nil.
type Result struct {
	Key     string
	Element []byte
	TimedOut bool
}

const (
	statePending  = 0
	stateDelivered = 1
	stateTimedOut  = 2
)

// waiterEntry is one parked BLPOP/BRPOP request. The same entry is queued
// under every key it was asked to watch; state is CAS'd so exactly one of
// delivery, timeout, or cancellation wins (spec.md §4.5, design note §9).
type waiterEntry struct {
	keys    []string
	side    Side
	state   atomic.Int32
	resultC chan Result
}

func (w *waiterEntry) tryClaim(target int32) bool {
	return w.state.CompareAndSwap(statePending, target)
}

// Registry is the per-key FIFO waiter table described in spec.md §4.5,
// sharded the same way store.Keyspace shards keys so unrelated keys never
// contend on the same queue lock.
type Registry struct {
	ks        *store.Keyspace
	mu        []sync.Mutex
	queues    []map[string][]*waiterEntry
	numShards int
}

// New constructs a Registry bound to ks. Call ks.SetNotifier(reg.Notify) so
// list growth wakes parked waiters.
func New(ks *store.Keyspace, numShards int) *Registry {
	if numShards < 1 {
		numShards = 16
	}
	r := &Registry{
		ks:        ks,
		mu:        make([]sync.Mutex, numShards),
		queues:    make([]map[string][]*waiterEntry, numShards),
		numShards: numShards,
	}
	for i := range r.queues {
		r.queues[i] = make(map[string][]*waiterEntry)
	}
	return r
}

func (r *Registry) shardIdx(key string) int {
	return int(xxhash.Sum64String(key) % uint64(r.numShards))
}

func (r *Registry) enqueueOn(key string, w *waiterEntry) {
	i := r.shardIdx(key)
	r.mu[i].Lock()
	r.queues[i][key] = append(r.queues[i][key], w)
	r.mu[i].Unlock()
}

func (r *Registry) removeFrom(key string, w *waiterEntry) {
	i := r.shardIdx(key)
	r.mu[i].Lock()
	q := r.queues[i][key]
	for idx, e := range q {
		if e == w {
			r.queues[i][key] = append(q[:idx], q[idx+1:]...)
			break
		}
	}
	if len(r.queues[i][key]) == 0 {
		delete(r.queues[i], key)
	}
	r.mu[i].Unlock()
}

// tryPop runs a single non-blocking Compute-based pop against key on the
// given side, returning the popped element if one was available.
func tryPop(ks *store.Keyspace, key string, side Side) ([]byte, bool) {
	var popped []byte
	_, err := ks.Compute(key, func(current *types.Value) (*types.Value, error) {
		if current == nil {
			return current, nil
		}
		if _, err := current.AsList(); err != nil {
			return nil, err
		}
		v := current.Clone()
		l, _ := v.AsList()
		var out [][]byte
		if side == Left {
			out = l.PopLeft(1)
		} else {
			out = l.PopRight(1)
		}
		if len(out) == 0 {
			return current, nil
		}
		popped = out[0]
		return v, nil
	})
	if err != nil {
		return nil, false
	}
	return popped, popped != nil
}

// Pop performs the full BLPOP/BRPOP contract for one client request: an
// immediate non-blocking attempt across keys in argv order, falling back to
// parking on every key with the given deadline (spec.md §4.5). deadline's
// zero value means wait forever. cancel is closed on connection shutdown.
func (r *Registry) Pop(keys []string, side Side, deadline time.Time, cancel <-chan struct{}) Result {
	for _, k := range keys {
		if el, ok := tryPop(r.ks, k, side); ok {
			return Result{Key: k, Element: el}
		}
	}

	w := &waiterEntry{keys: keys, side: side, resultC: make(chan Result, 1)}
	for _, k := range keys {
		r.enqueueOn(k, w)
	}
	defer func() {
		for _, k := range keys {
			r.removeFrom(k, w)
		}
	}()

	var timerC <-chan time.Time
	if !deadline.IsZero() {
		t := time.NewTimer(time.Until(deadline))
		defer t.Stop()
		timerC = t.C
	}

	select {
	case res := <-w.resultC:
		return res
	case <-timerC:
		if w.tryClaim(stateTimedOut) {
			return Result{TimedOut: true}
		}
		return <-w.resultC
	case <-cancel:
		if w.tryClaim(stateTimedOut) {
			return Result{TimedOut: true}
		}
		return <-w.resultC
	}
}

// popHead removes and returns the head waiter for key, or nil if the queue
// is empty.
func (r *Registry) popHead(key string) *waiterEntry {
	i := r.shardIdx(key)
	r.mu[i].Lock()
	defer r.mu[i].Unlock()
	q := r.queues[i][key]
	if len(q) == 0 {
		return nil
	}
	head := q[0]
	r.queues[i][key] = q[1:]
	if len(r.queues[i][key]) == 0 {
		delete(r.queues[i], key)
	}
	return head
}

// pushFront re-queues a waiter at the head of key's queue, used when a
// delivery attempt finds nothing to pop (spec.md §4.5: the registry must
// not consume a waiter's turn when the list was already drained by another
// consumer).
func (r *Registry) pushFront(key string, w *waiterEntry) {
	i := r.shardIdx(key)
	r.mu[i].Lock()
	r.queues[i][key] = append([]*waiterEntry{w}, r.queues[i][key]...)
	r.mu[i].Unlock()
}

// Notify is the store.ListGrowthNotifier hook: it wakes up to `added` head
// waiters on key, each via a fresh non-blocking pop, advancing past any
// waiter that loses its delivery race and stopping once a pop attempt finds
// nothing left (spec.md §4.5's FIFO + "wakes at most N waiters").
func (r *Registry) Notify(key string, added int) {
	for woken := 0; woken < added; {
		head := r.popHead(key)
		if head == nil {
			return
		}

		if !head.tryClaim(stateDelivered) {
			// Already timed out or cancelled concurrently; it consumed no
			// element and is already being removed from its other key
			// queues by its own Pop cleanup. Try the next waiter without
			// counting this one against added.
			continue
		}

		el, ok := tryPop(r.ks, key, head.side)
		if !ok {
			// Raced with another consumer: nothing left to hand this
			// waiter. Undo the claim and put it back at the front of the
			// queue so it is the next one served once more elements
			// arrive, and stop — further added budget has nothing to
			// pop either.
			head.state.Store(statePending)
			r.pushFront(key, head)
			return
		}

		// Remove this waiter from every other key it was parked on.
		for _, k := range head.keys {
			if k != key {
				r.removeFrom(k, head)
			}
		}
		head.resultC <- Result{Key: key, Element: el}
		woken++
	}
}
