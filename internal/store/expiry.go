package store

import (
	"container/heap"
	"sync"
	"time"
)

// deadlineEvent is one scheduled expiration, directly grounded on the
// teacher's schedEvent (internal/infrastructure/processmgr/scheduler.go):
// same index-tracked heap-removal shape, generalized from "pid restart
// time" to "key deadline".
type deadlineEvent struct {
	key      string
	deadline time.Time
	index    int
}

type deadlineHeap []*deadlineEvent

func (h deadlineHeap) Len() int            { return len(h) }
func (h deadlineHeap) Less(i, j int) bool  { return h[i].deadline.Before(h[j].deadline) }
func (h deadlineHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *deadlineHeap) Push(x any) {
	ev := x.(*deadlineEvent)
	ev.index = len(*h)
	*h = append(*h, ev)
}
func (h *deadlineHeap) Pop() any {
	old := *h
	n := len(old)
	ev := old[n-1]
	ev.index = -1
	*h = old[:n-1]
	return ev
}

// expiryIndex is the priority structure over (deadline, key) described in
// spec.md §4.3 (C3). Stale registrations (a key overwritten or deleted
// after being scheduled) are tolerated: the reaper validates the popped
// deadline against the keyspace's live entry before reaping, exactly as
// spec.md requires, rather than trying to keep the heap perfectly in sync
// on every mutation.
type expiryIndex struct {
	mu      sync.Mutex
	h       deadlineHeap
	byKey   map[string]*deadlineEvent
	wake    chan struct{} // buffered(1): interrupts the reaper's sleep early
}

func newExpiryIndex() *expiryIndex {
	idx := &expiryIndex{
		byKey: make(map[string]*deadlineEvent),
		wake:  make(chan struct{}, 1),
	}
	heap.Init(&idx.h)
	return idx
}

// schedule registers (or replaces) key's deadline.
func (idx *expiryIndex) schedule(key string, deadline time.Time) {
	idx.mu.Lock()
	if old, ok := idx.byKey[key]; ok {
		heap.Remove(&idx.h, old.index)
		delete(idx.byKey, key)
	}
	ev := &deadlineEvent{key: key, deadline: deadline}
	idx.byKey[key] = ev
	heap.Push(&idx.h, ev)
	earliest := idx.h[0] == ev
	idx.mu.Unlock()

	if earliest {
		idx.poke()
	}
}

// unschedule removes key's pending deadline, if any (e.g. TTL cleared by an
// overwrite without TTL options, or the key was deleted directly).
func (idx *expiryIndex) unschedule(key string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	ev, ok := idx.byKey[key]
	if !ok {
		return
	}
	heap.Remove(&idx.h, ev.index)
	delete(idx.byKey, key)
}

// poke wakes a sleeping reaper without blocking.
func (idx *expiryIndex) poke() {
	select {
	case idx.wake <- struct{}{}:
	default:
	}
}

// popDue pops and returns the earliest (key, deadline) once its deadline
// has passed relative to now; ok is false if nothing is due yet.
func (idx *expiryIndex) popDue(now time.Time) (key string, deadline time.Time, ok bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if len(idx.h) == 0 {
		return "", time.Time{}, false
	}
	ev := idx.h[0]
	if ev.deadline.After(now) {
		return "", time.Time{}, false
	}
	heap.Pop(&idx.h)
	delete(idx.byKey, ev.key)
	return ev.key, ev.deadline, true
}

// nextDeadline reports the earliest pending deadline, if any.
func (idx *expiryIndex) nextDeadline() (time.Time, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if len(idx.h) == 0 {
		return time.Time{}, false
	}
	return idx.h[0].deadline, true
}

// runReaper is the background active-expiration loop (spec.md §4.3): sleep
// until the earliest deadline (or until poked by an earlier registration),
// wake, reap if the deadline is still live, loop. Stops when stop is
// closed.
func (ks *Keyspace) runReaper(stop <-chan struct{}) {
	idx := ks.expiry
	for {
		var timer *time.Timer
		var timerC <-chan time.Time

		if when, ok := idx.nextDeadline(); ok {
			d := time.Until(when)
			if d < 0 {
				d = 0
			}
			timer = time.NewTimer(d)
			timerC = timer.C
		}

		select {
		case <-stop:
			if timer != nil {
				timer.Stop()
			}
			return
		case <-idx.wake:
			if timer != nil {
				timer.Stop()
			}
			continue
		case <-orNever(timerC):
			ks.reapDue(time.Now())
		}
	}
}

// orNever returns c unchanged, or a channel that never fires if c is nil,
// so a select with no pending deadline simply waits on stop/wake.
func orNever(c <-chan time.Time) <-chan time.Time {
	if c != nil {
		return c
	}
	return nil
}

// reapDue pops and reaps every currently-due deadline, validating each
// against the keyspace's live entry before deleting (spec.md §4.3: a
// popped deadline that no longer matches the live entry is stale and
// skipped).
func (ks *Keyspace) reapDue(now time.Time) {
	for {
		key, deadline, ok := ks.expiry.popDue(now)
		if !ok {
			return
		}
		sh := ks.shardFor(key)
		km := sh.keyLock(key)
		km.Lock()
		sh.mu.Lock()
		e, exists := sh.data[key]
		if exists && e.hasDeadline() && e.deadline.Equal(deadline) {
			delete(sh.data, key)
		}
		sh.mu.Unlock()
		km.Unlock()
	}
}
