package store

import (
	"sync"
	"testing"
	"time"

	"github.com/kvsrv/kvsrv/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGetRemove(t *testing.T) {
	ks := New()
	defer ks.Close()

	ks.Put("k", types.NewString([]byte("v")), time.Time{})
	v, ok := ks.Get("k")
	require.True(t, ok)
	s, err := v.AsString()
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), s)

	assert.True(t, ks.Remove("k"))
	assert.False(t, ks.Remove("k"))
	_, ok = ks.Get("k")
	assert.False(t, ok)
}

func TestComputeCreatesAndDeletes(t *testing.T) {
	ks := New()
	defer ks.Close()

	v, err := ks.Compute("k", func(current *types.Value) (*types.Value, error) {
		assert.Nil(t, current)
		return types.NewString([]byte("1")), nil
	})
	require.NoError(t, err)
	s, _ := v.AsString()
	assert.Equal(t, []byte("1"), s)

	_, err = ks.Compute("k", func(current *types.Value) (*types.Value, error) {
		require.NotNil(t, current)
		return nil, nil
	})
	require.NoError(t, err)
	_, ok := ks.Get("k")
	assert.False(t, ok)
}

func TestComputeEmptyContainerIsDeleted(t *testing.T) {
	ks := New()
	defer ks.Close()

	_, err := ks.Compute("k", func(current *types.Value) (*types.Value, error) {
		return types.NewList(), nil
	})
	require.NoError(t, err)
	_, ok := ks.Get("k")
	assert.False(t, ok, "an empty LIST result must not be stored")
}

func TestComputeErrorAbortsWithoutMutation(t *testing.T) {
	ks := New()
	defer ks.Close()
	ks.Put("k", types.NewString([]byte("orig")), time.Time{})

	boom := assert.AnError
	_, err := ks.Compute("k", func(current *types.Value) (*types.Value, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	v, ok := ks.Get("k")
	require.True(t, ok)
	s, _ := v.AsString()
	assert.Equal(t, []byte("orig"), s, "storage must be untouched when Compute's closure errors")
}

func TestComputePreservesTTL(t *testing.T) {
	ks := New()
	defer ks.Close()
	deadline := time.Now().Add(time.Hour)
	ks.Put("k", types.NewString([]byte("v")), deadline)

	_, err := ks.Compute("k", func(current *types.Value) (*types.Value, error) {
		return types.NewString([]byte("v2")), nil
	})
	require.NoError(t, err)

	ttl, hasTTL, ok := ks.TTL("k")
	require.True(t, ok)
	require.True(t, hasTTL)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestComputeTTLExplicitDeadline(t *testing.T) {
	ks := New()
	defer ks.Close()

	deadline := time.Now().Add(time.Minute)
	_, err := ks.ComputeTTL("k", func(current *types.Value, hadDeadline bool, curDeadline time.Time) (*types.Value, time.Time, error) {
		assert.False(t, hadDeadline)
		return types.NewString([]byte("v")), deadline, nil
	})
	require.NoError(t, err)

	ttl, hasTTL, ok := ks.TTL("k")
	require.True(t, ok)
	require.True(t, hasTTL)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestComputeTTLNoDeadlineClearsExisting(t *testing.T) {
	ks := New()
	defer ks.Close()
	ks.Put("k", types.NewString([]byte("v")), time.Now().Add(time.Hour))

	_, err := ks.ComputeTTL("k", func(current *types.Value, hadDeadline bool, curDeadline time.Time) (*types.Value, time.Time, error) {
		require.True(t, hadDeadline)
		return types.NewString([]byte("v2")), time.Time{}, nil
	})
	require.NoError(t, err)

	_, hasTTL, ok := ks.TTL("k")
	require.True(t, ok)
	assert.False(t, hasTTL)
}

func TestLazyExpirationOnGet(t *testing.T) {
	ks := New()
	defer ks.Close()
	ks.Put("k", types.NewString([]byte("v")), time.Now().Add(-time.Second))

	_, ok := ks.Get("k")
	assert.False(t, ok, "an entry past its deadline must be treated as absent")
}

func TestActiveExpirationReapsInBackground(t *testing.T) {
	ks := New()
	defer ks.Close()
	ks.Put("k", types.NewString([]byte("v")), time.Now().Add(20*time.Millisecond))

	assert.Eventually(t, func() bool {
		st := ks.Stats()
		return st.Keys == 0
	}, time.Second, 5*time.Millisecond)
}

func TestStatsAndFlushAll(t *testing.T) {
	ks := New()
	defer ks.Close()
	ks.Put("a", types.NewString([]byte("1")), time.Time{})
	ks.Put("b", types.NewString([]byte("2")), time.Time{})

	st := ks.Stats()
	assert.Equal(t, 2, st.Keys)
	assert.Greater(t, st.Shards, 0)

	ks.FlushAll()
	st = ks.Stats()
	assert.Equal(t, 0, st.Keys)
}

func TestConcurrentComputeIsAtomicPerKey(t *testing.T) {
	ks := NewWithShards(1)
	defer ks.Close()

	const n = 200
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := ks.Compute("counter", func(current *types.Value) (*types.Value, error) {
				v := int64(0)
				if current != nil {
					s, _ := current.AsString()
					for _, b := range s {
						v = v*10 + int64(b-'0')
					}
				}
				v++
				return types.NewString([]byte(itoa(v))), nil
			})
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	v, ok := ks.Get("counter")
	require.True(t, ok)
	s, _ := v.AsString()
	assert.Equal(t, itoa(int64(n)), string(s))
}

func itoa(v int64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

func TestListGrowthNotifierFires(t *testing.T) {
	ks := New()
	defer ks.Close()

	type notice struct {
		key   string
		added int
	}
	notices := make(chan notice, 10)
	ks.SetNotifier(func(key string, added int) {
		notices <- notice{key, added}
	})

	_, err := ks.Compute("list", func(current *types.Value) (*types.Value, error) {
		v := types.NewList()
		l, _ := v.AsList()
		l.PushRight([]byte("a"), []byte("b"))
		return v, nil
	})
	require.NoError(t, err)

	select {
	case n := <-notices:
		assert.Equal(t, "list", n.key)
		assert.Equal(t, 2, n.added)
	case <-time.After(time.Second):
		t.Fatal("expected a list growth notification")
	}
}
