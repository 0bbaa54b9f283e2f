package command

import (
	"github.com/kvsrv/kvsrv/internal/cmderr"
	"github.com/kvsrv/kvsrv/internal/resp"
)

// Multi implements MULTI: sets the connection to queuing state. Nested
// MULTI leaves state unchanged and replies with NestedMulti.
func Multi(d Deps, c *Conn, argv [][]byte) resp.Reply {
	if c.Txn.IsQueuing() {
		return wrapErr(cmderr.NestedMulti())
	}
	c.Txn.Begin()
	return resp.SimpleString("OK")
}

// Discard implements DISCARD: clears the queue and returns to normal state.
func Discard(d Deps, c *Conn, argv [][]byte) resp.Reply {
	if !c.Txn.IsQueuing() {
		return wrapErr(cmderr.DiscardWithoutMulti())
	}
	c.Txn.Discard()
	return resp.SimpleString("OK")
}

// Exec implements EXEC: runs the queued batch sequentially against the
// shared Deps, one reply element per queued command; a per-command error
// contributes an error element and does not abort the remaining batch
// (spec.md §4.6). Queued commands were already validated (known command,
// arity) at queue time by Dispatch, so every queue entry resolves here.
func Exec(d Deps, c *Conn, argv [][]byte) resp.Reply {
	if !c.Txn.IsQueuing() {
		return wrapErr(cmderr.ExecWithoutMulti())
	}
	if c.Txn.HasError() {
		c.Txn.Drain()
		return wrapErr(cmderr.ExecAborted())
	}

	queue := c.Txn.Drain()
	elems := make([]resp.Reply, len(queue))
	for i, op := range queue {
		spec := table[op.Name]
		elems[i] = spec.Fn(d, c, op.Argv)
	}
	return resp.NewArray(elems...)
}
