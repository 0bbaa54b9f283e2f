package command

import (
	"github.com/kvsrv/kvsrv/internal/resp"
	"github.com/kvsrv/kvsrv/internal/store"
	"github.com/kvsrv/kvsrv/internal/txn"
	"github.com/kvsrv/kvsrv/internal/waiter"
)

// newTestDeps builds a fresh Deps/Conn pair backed by a real (small) store
// and waiter registry, wired the same way cmd/kvsrv's bootstrap wires them.
func newTestDeps() (Deps, *Conn, func()) {
	ks := store.NewWithShards(4)
	reg := waiter.New(ks, 4)
	ks.SetNotifier(reg.Notify)
	d := Deps{KS: ks, Waiters: reg}
	c := &Conn{Txn: &txn.Context{}, Cancel: make(chan struct{})}
	return d, c, func() { ks.Close() }
}

func argv(parts ...string) [][]byte {
	out := make([][]byte, len(parts))
	for i, p := range parts {
		out[i] = []byte(p)
	}
	return out
}

func bulkText(t interface{ Errorf(string, ...any) }, r resp.Reply) string {
	bs, ok := r.(resp.BulkString)
	if !ok {
		t.Errorf("expected resp.BulkString, got %T (%v)", r, r)
		return ""
	}
	return string(bs.Data)
}
