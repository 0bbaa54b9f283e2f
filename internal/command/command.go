// Package command implements the per-command semantics of C6: one function
// per Redis command, each expressed as a store.Keyspace.Compute closure so
// every mutation is atomic per spec.md §4.6, plus the case-insensitive
// dispatch table and queue-time arity checking for MULTI (spec.md §4.7,
// §7).
package command

import (
	"github.com/kvsrv/kvsrv/internal/resp"
	"github.com/kvsrv/kvsrv/internal/store"
	"github.com/kvsrv/kvsrv/internal/txn"
	"github.com/kvsrv/kvsrv/internal/waiter"
)

// Deps are the shared, connection-independent collaborators every command
// operates against.
type Deps struct {
	KS      *store.Keyspace
	Waiters *waiter.Registry
}

// Conn is the subset of per-connection state command implementations may
// need: its transaction context (MULTI/EXEC/DISCARD) and a cancellation
// channel closed when the connection goes away (BLPOP/BRPOP parking,
// spec.md §5).
type Conn struct {
	Txn    *txn.Context
	Cancel <-chan struct{}
}

// Func is the shape of one command implementation.
type Func func(d Deps, c *Conn, argv [][]byte) resp.Reply

// arityCheck reports whether argc (including the command name itself)
// satisfies [min, max]; max < 0 means unbounded.
func arityCheck(argc, min, max int) bool {
	if argc < min {
		return false
	}
	if max >= 0 && argc > max {
		return false
	}
	return true
}
