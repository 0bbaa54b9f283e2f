package waiter

import (
	"sync"
	"testing"
	"time"

	"github.com/kvsrv/kvsrv/internal/store"
	"github.com/kvsrv/kvsrv/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHarness() (*store.Keyspace, *Registry) {
	ks := store.New()
	reg := New(ks, 4)
	ks.SetNotifier(reg.Notify)
	return ks, reg
}

func TestPopImmediateWhenElementAlreadyPresent(t *testing.T) {
	ks, reg := newHarness()
	defer ks.Close()

	_, err := ks.Compute("k", func(current *types.Value) (*types.Value, error) {
		v := types.NewList()
		l, _ := v.AsList()
		l.PushRight([]byte("x"))
		return v, nil
	})
	require.NoError(t, err)

	res := reg.Pop([]string{"k"}, Left, time.Time{}, nil)
	assert.False(t, res.TimedOut)
	assert.Equal(t, "k", res.Key)
	assert.Equal(t, []byte("x"), res.Element)
}

func TestPopBlocksUntilNotified(t *testing.T) {
	ks, reg := newHarness()
	defer ks.Close()

	resultC := make(chan Result, 1)
	go func() {
		resultC <- reg.Pop([]string{"k"}, Left, time.Time{}, nil)
	}()

	time.Sleep(20 * time.Millisecond)
	_, err := ks.Compute("k", func(current *types.Value) (*types.Value, error) {
		v := types.NewList()
		l, _ := v.AsList()
		l.PushRight([]byte("late"))
		return v, nil
	})
	require.NoError(t, err)

	select {
	case res := <-resultC:
		assert.False(t, res.TimedOut)
		assert.Equal(t, []byte("late"), res.Element)
	case <-time.After(time.Second):
		t.Fatal("waiter was never woken")
	}
}

func TestPopTimesOut(t *testing.T) {
	ks, reg := newHarness()
	defer ks.Close()

	start := time.Now()
	res := reg.Pop([]string{"nope"}, Left, start.Add(30*time.Millisecond), nil)
	assert.True(t, res.TimedOut)
	assert.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond)
}

func TestPopCancelledOnConnectionClose(t *testing.T) {
	ks, reg := newHarness()
	defer ks.Close()

	cancel := make(chan struct{})
	resultC := make(chan Result, 1)
	go func() {
		resultC <- reg.Pop([]string{"k"}, Left, time.Time{}, cancel)
	}()

	time.Sleep(10 * time.Millisecond)
	close(cancel)

	select {
	case res := <-resultC:
		assert.True(t, res.TimedOut)
	case <-time.After(time.Second):
		t.Fatal("cancellation did not unblock Pop")
	}
}

func TestNotifyWakeCountBoundedByAdded(t *testing.T) {
	ks, reg := newHarness()
	defer ks.Close()

	var wg sync.WaitGroup
	results := make([]Result, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = reg.Pop([]string{"k"}, Left, time.Now().Add(200*time.Millisecond), nil)
		}(i)
	}
	// Give every waiter time to register before the list grows.
	time.Sleep(30 * time.Millisecond)

	_, err := ks.Compute("k", func(current *types.Value) (*types.Value, error) {
		v := types.NewList()
		l, _ := v.AsList()
		l.PushRight([]byte("a"), []byte("b"))
		return v, nil
	})
	require.NoError(t, err)

	wg.Wait()
	delivered := 0
	timedOut := 0
	for _, r := range results {
		if r.TimedOut {
			timedOut++
		} else {
			delivered++
		}
	}
	assert.Equal(t, 2, delivered, "only as many waiters as added elements should be woken")
	assert.Equal(t, 1, timedOut)
}
