package command

import (
	"strings"

	"github.com/kvsrv/kvsrv/internal/cmderr"
	"github.com/kvsrv/kvsrv/internal/resp"
)

// Spec pairs a command's implementation with the arity bounds (argc
// includes the command name) the dispatcher enforces before running it, or
// before queuing it during MULTI (spec.md §4.7's "arity check the
// dispatcher can perform").
type Spec struct {
	Fn      Func
	MinArgc int
	MaxArgc int // -1 means unbounded
}

var table = map[string]*Spec{
	"set":     {Fn: Set, MinArgc: 3, MaxArgc: 7},
	"get":     {Fn: Get, MinArgc: 2, MaxArgc: 2},
	"incr":    {Fn: Incr, MinArgc: 2, MaxArgc: 2},
	"del":     {Fn: Del, MinArgc: 2, MaxArgc: -1},
	"type":    {Fn: Type, MinArgc: 2, MaxArgc: 2},
	"ping":    {Fn: Ping, MinArgc: 1, MaxArgc: 2},
	"lpush":   {Fn: Lpush, MinArgc: 3, MaxArgc: -1},
	"rpush":   {Fn: Rpush, MinArgc: 3, MaxArgc: -1},
	"lpop":    {Fn: Lpop, MinArgc: 2, MaxArgc: 3},
	"rpop":    {Fn: Rpop, MinArgc: 2, MaxArgc: 3},
	"llen":    {Fn: Llen, MinArgc: 2, MaxArgc: 2},
	"lrange":  {Fn: Lrange, MinArgc: 4, MaxArgc: 4},
	"blpop":   {Fn: Blpop, MinArgc: 3, MaxArgc: -1},
	"brpop":   {Fn: Brpop, MinArgc: 3, MaxArgc: -1},
	"xadd":    {Fn: Xadd, MinArgc: 5, MaxArgc: -1},
	"xrange":  {Fn: Xrange, MinArgc: 4, MaxArgc: 6},
	"xread":   {Fn: Xread, MinArgc: 4, MaxArgc: -1},
	"multi":   {Fn: Multi, MinArgc: 1, MaxArgc: 1},
	"exec":    {Fn: Exec, MinArgc: 1, MaxArgc: 1},
	"discard": {Fn: Discard, MinArgc: 1, MaxArgc: 1},
}

// Lookup returns the Spec for a case-insensitive command name.
func Lookup(name string) (*Spec, bool) {
	s, ok := table[strings.ToLower(name)]
	return s, ok
}

// Dispatch is the single entry point internal/server calls per parsed
// command. argv[0] is the command name. It enforces the name/arity check,
// honors MULTI queuing (spec.md §4.7: any command besides MULTI/EXEC/
// DISCARD is enqueued and replied to with +QUEUED while queuing), and
// otherwise runs the command immediately.
func Dispatch(d Deps, c *Conn, argv [][]byte) resp.Reply {
	name := strings.ToLower(string(argv[0]))
	spec, ok := table[name]
	if !ok {
		if c.Txn.IsQueuing() {
			c.Txn.SetError()
		}
		return wrapErr(cmderr.UnknownCommand(name))
	}
	if !arityCheck(len(argv), spec.MinArgc, spec.MaxArgc) {
		if c.Txn.IsQueuing() {
			c.Txn.SetError()
		}
		return wrapErr(cmderr.WrongArgs(name))
	}

	if c.Txn.IsQueuing() && name != "multi" && name != "exec" && name != "discard" {
		c.Txn.Enqueue(name, argv)
		return resp.SimpleString("QUEUED")
	}

	return spec.Fn(d, c, argv)
}
