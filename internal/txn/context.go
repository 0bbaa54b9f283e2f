// Package txn implements the per-connection transaction context (C7):
// MULTI's queuing state, the queued-command sequence, and the queue-time
// error flag EXEC checks before running (spec.md §4.7).
package txn

// QueuedOp is one command captured during queuing: its name (for dispatch)
// and a copy of its argv.
type QueuedOp struct {
	Name string
	Argv [][]byte
}

type state int

const (
	stateNormal state = iota
	stateQueuing
)

// Context is the per-connection transaction state described in spec.md §3
// and §4.7. The zero value is ready to use (normal state, empty queue).
type Context struct {
	st        state
	queue     []QueuedOp
	errorFlag bool
}

// IsQueuing reports whether the connection is between a successful MULTI
// and the terminal EXEC/DISCARD.
func (c *Context) IsQueuing() bool { return c.st == stateQueuing }

// Begin transitions to queuing state. Callers must check IsQueuing first;
// Begin itself does not reject a nested MULTI (that is the command layer's
// job, since only it knows how to render the NestedMulti error).
func (c *Context) Begin() { c.st = stateQueuing }

// Enqueue appends a command to the queue. Valid only while IsQueuing.
func (c *Context) Enqueue(name string, argv [][]byte) {
	c.queue = append(c.queue, QueuedOp{Name: name, Argv: argv})
}

// SetError marks the queue as containing a queue-time error (e.g. unknown
// command, arity violation) observed while queuing; EXEC will abort with
// EXECABORT rather than run anything.
func (c *Context) SetError() { c.errorFlag = true }

// HasError reports whether SetError has been called since the last Begin.
func (c *Context) HasError() bool { return c.errorFlag }

// Drain returns the queued commands and resets to normal state, clearing
// the queue and error flag. Used by EXEC (to take the batch it then runs, or
// to drop it on EXECABORT) and by DISCARD.
func (c *Context) Drain() []QueuedOp {
	q := c.queue
	c.queue = nil
	c.errorFlag = false
	c.st = stateNormal
	return q
}

// Discard is Drain without using the returned queue; kept as a distinct
// method so command code reads as "DISCARD discards", not "DISCARD drains
// and ignores".
func (c *Context) Discard() { c.Drain() }
