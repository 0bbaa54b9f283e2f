package command

import (
	"strconv"
	"time"

	"github.com/kvsrv/kvsrv/internal/cmderr"
	"github.com/kvsrv/kvsrv/internal/resp"
	"github.com/kvsrv/kvsrv/internal/types"
	"github.com/kvsrv/kvsrv/internal/waiter"
)

// Lpush implements LPUSH key v....
func Lpush(d Deps, c *Conn, argv [][]byte) resp.Reply { return push(d, argv, "lpush", true) }

// Rpush implements RPUSH key v....
func Rpush(d Deps, c *Conn, argv [][]byte) resp.Reply { return push(d, argv, "rpush", false) }

func push(d Deps, argv [][]byte, name string, left bool) resp.Reply {
	if len(argv) < 3 {
		return wrapErr(cmderr.WrongArgs(name))
	}
	key := string(argv[1])
	values := argv[2:]

	var length int
	_, err := d.KS.Compute(key, func(current *types.Value) (*types.Value, error) {
		var v *types.Value
		if current == nil {
			v = types.NewList()
		} else {
			if current.Kind() != types.KindList {
				return nil, cmderr.WrongType()
			}
			v = current.Clone()
		}
		l, _ := v.AsList()
		if left {
			l.PushLeft(values...)
		} else {
			l.PushRight(values...)
		}
		length = l.Len()
		return v, nil
	})
	if err != nil {
		return wrapErr(err)
	}
	return resp.Integer(length)
}

// Lpop implements LPOP key [count].
func Lpop(d Deps, c *Conn, argv [][]byte) resp.Reply { return pop(d, argv, "lpop", true) }

// Rpop implements RPOP key [count].
func Rpop(d Deps, c *Conn, argv [][]byte) resp.Reply { return pop(d, argv, "rpop", false) }

func pop(d Deps, argv [][]byte, name string, left bool) resp.Reply {
	if len(argv) < 2 || len(argv) > 3 {
		return wrapErr(cmderr.WrongArgs(name))
	}
	key := string(argv[1])
	hasCount := len(argv) == 3
	count := 1
	if hasCount {
		n, err := strconv.Atoi(string(argv[2]))
		if err != nil || n < 0 {
			return wrapErr(cmderr.NotInteger())
		}
		count = n
	}

	var existed bool
	var popped [][]byte
	_, err := d.KS.Compute(key, func(current *types.Value) (*types.Value, error) {
		if current == nil {
			return nil, nil
		}
		if current.Kind() != types.KindList {
			return nil, cmderr.WrongType()
		}
		existed = true
		v := current.Clone()
		l, _ := v.AsList()
		if left {
			popped = l.PopLeft(count)
		} else {
			popped = l.PopRight(count)
		}
		return v, nil
	})
	if err != nil {
		return wrapErr(err)
	}

	if !existed {
		if hasCount {
			return resp.NewArray()
		}
		return resp.NilBulk()
	}
	if !hasCount {
		return resp.NewBulk(popped[0])
	}
	elems := make([]resp.Reply, len(popped))
	for i, p := range popped {
		elems[i] = resp.NewBulk(p)
	}
	return resp.NewArray(elems...)
}

// Llen implements LLEN key.
func Llen(d Deps, c *Conn, argv [][]byte) resp.Reply {
	if len(argv) != 2 {
		return wrapErr(cmderr.WrongArgs("llen"))
	}
	v, ok := d.KS.Get(string(argv[1]))
	if !ok {
		return resp.Integer(0)
	}
	l, err := v.AsList()
	if err != nil {
		return wrapErr(cmderr.WrongType())
	}
	return resp.Integer(l.Len())
}

// Lrange implements LRANGE key start stop.
func Lrange(d Deps, c *Conn, argv [][]byte) resp.Reply {
	if len(argv) != 4 {
		return wrapErr(cmderr.WrongArgs("lrange"))
	}
	start, err1 := strconv.Atoi(string(argv[2]))
	stop, err2 := strconv.Atoi(string(argv[3]))
	if err1 != nil || err2 != nil {
		return wrapErr(cmderr.NotInteger())
	}
	v, ok := d.KS.Get(string(argv[1]))
	if !ok {
		return resp.NewArray()
	}
	l, err := v.AsList()
	if err != nil {
		return wrapErr(cmderr.WrongType())
	}
	elems := l.Range(start, stop)
	out := make([]resp.Reply, len(elems))
	for i, e := range elems {
		out[i] = resp.NewBulk(e)
	}
	return resp.NewArray(out...)
}

// Blpop implements BLPOP key... timeout.
func Blpop(d Deps, c *Conn, argv [][]byte) resp.Reply {
	return bpop(d, c, argv, "blpop", waiter.Left)
}

// Brpop implements BRPOP key... timeout.
func Brpop(d Deps, c *Conn, argv [][]byte) resp.Reply {
	return bpop(d, c, argv, "brpop", waiter.Right)
}

func bpop(d Deps, c *Conn, argv [][]byte, name string, side waiter.Side) resp.Reply {
	if len(argv) < 3 {
		return wrapErr(cmderr.WrongArgs(name))
	}
	keys := make([]string, 0, len(argv)-2)
	for _, k := range argv[1 : len(argv)-1] {
		keys = append(keys, string(k))
	}

	secs, err := strconv.ParseFloat(string(argv[len(argv)-1]), 64)
	if err != nil || secs < 0 {
		return wrapErr(cmderr.NotInteger())
	}
	var deadline time.Time
	if secs > 0 {
		deadline = time.Now().Add(time.Duration(secs * float64(time.Second)))
	}

	var cancel <-chan struct{}
	if c != nil {
		cancel = c.Cancel
	}
	res := d.Waiters.Pop(keys, side, deadline, cancel)
	if res.TimedOut || res.Element == nil {
		return resp.NilArray()
	}
	return resp.NewArray(resp.NewBulk([]byte(res.Key)), resp.NewBulk(res.Element))
}
