package command

import (
	"testing"

	"github.com/kvsrv/kvsrv/internal/resp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGetRoundTrip(t *testing.T) {
	d, c, cleanup := newTestDeps()
	defer cleanup()

	r := Set(d, c, argv("SET", "k", "v"))
	assert.Equal(t, resp.SimpleString("OK"), r)

	r = Get(d, c, argv("GET", "k"))
	assert.Equal(t, "v", bulkText(t, r))
}

func TestGetMissingKeyIsNilBulk(t *testing.T) {
	d, c, cleanup := newTestDeps()
	defer cleanup()

	r := Get(d, c, argv("GET", "missing"))
	assert.Equal(t, resp.NilBulk(), r)
}

func TestSetNXFailsWhenPresent(t *testing.T) {
	d, c, cleanup := newTestDeps()
	defer cleanup()

	require.Equal(t, resp.SimpleString("OK"), Set(d, c, argv("SET", "k", "v1")))
	r := Set(d, c, argv("SET", "k", "v2", "NX"))
	assert.Equal(t, resp.NilBulk(), r)

	got := Get(d, c, argv("GET", "k"))
	assert.Equal(t, "v1", bulkText(t, got))
}

func TestSetXXFailsWhenAbsent(t *testing.T) {
	d, c, cleanup := newTestDeps()
	defer cleanup()

	r := Set(d, c, argv("SET", "k", "v", "XX"))
	assert.Equal(t, resp.NilBulk(), r)
	_, ok := d.KS.Get("k")
	assert.False(t, ok)
}

func TestSetBothNXAndXXIsSyntaxError(t *testing.T) {
	d, c, cleanup := newTestDeps()
	defer cleanup()

	r, ok := Set(d, c, argv("SET", "k", "v", "NX", "XX")).(resp.Error)
	require.True(t, ok)
	assert.Contains(t, string(r), "ERR")
}

func TestSetBothEXAndPXIsSyntaxError(t *testing.T) {
	d, c, cleanup := newTestDeps()
	defer cleanup()

	_, ok := Set(d, c, argv("SET", "k", "v", "EX", "10", "PX", "10000")).(resp.Error)
	assert.True(t, ok)
}

func TestSetEXClearsOnNonTTLOverwrite(t *testing.T) {
	d, c, cleanup := newTestDeps()
	defer cleanup()

	require.Equal(t, resp.SimpleString("OK"), Set(d, c, argv("SET", "k", "v1", "EX", "100")))
	_, hasTTL, ok := d.KS.TTL("k")
	require.True(t, ok)
	require.True(t, hasTTL)

	require.Equal(t, resp.SimpleString("OK"), Set(d, c, argv("SET", "k", "v2")))
	_, hasTTL, ok = d.KS.TTL("k")
	require.True(t, ok)
	assert.False(t, hasTTL, "SET without options must clear a prior TTL")
}

func TestIncrFromAbsentAndOverflow(t *testing.T) {
	d, c, cleanup := newTestDeps()
	defer cleanup()

	r := Incr(d, c, argv("INCR", "n"))
	assert.Equal(t, resp.Integer(1), r)

	require.Equal(t, resp.SimpleString("OK"), Set(d, c, argv("SET", "n", "9223372036854775807")))
	r = Incr(d, c, argv("INCR", "n"))
	_, isErr := r.(resp.Error)
	assert.True(t, isErr, "INCR at MaxInt64 must fail instead of overflowing")

	got := Get(d, c, argv("GET", "n"))
	assert.Equal(t, "9223372036854775807", bulkText(t, got), "a failed INCR must not mutate the value")
}

func TestIncrNonIntegerValue(t *testing.T) {
	d, c, cleanup := newTestDeps()
	defer cleanup()

	require.Equal(t, resp.SimpleString("OK"), Set(d, c, argv("SET", "k", "notanumber")))
	r := Incr(d, c, argv("INCR", "k"))
	_, isErr := r.(resp.Error)
	assert.True(t, isErr)
}

func TestGetWrongType(t *testing.T) {
	d, c, cleanup := newTestDeps()
	defer cleanup()

	require.Equal(t, resp.Integer(1), Lpush(d, c, argv("LPUSH", "k", "a")))
	r := Get(d, c, argv("GET", "k"))
	e, ok := r.(resp.Error)
	require.True(t, ok)
	assert.Contains(t, string(e), "WRONGTYPE")
}
