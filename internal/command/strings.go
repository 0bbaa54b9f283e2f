package command

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/kvsrv/kvsrv/internal/cmderr"
	"github.com/kvsrv/kvsrv/internal/resp"
	"github.com/kvsrv/kvsrv/internal/types"
)

// Set implements SET key value [EX s | PX ms] [NX | XX] (spec.md §4.6). The
// TTL decision is made here, not inherited from any prior entry, so it runs
// under store.Keyspace.ComputeTTL rather than the plain Compute every other
// mutator uses.
func Set(d Deps, c *Conn, argv [][]byte) resp.Reply {
	if len(argv) < 3 {
		return wrapErr(cmderr.WrongArgs("set"))
	}
	key := string(argv[1])
	value := argv[2]

	var exSet, pxSet, nxSet, xxSet bool
	var ttl time.Duration
	i := 3
	for i < len(argv) {
		switch strings.ToUpper(string(argv[i])) {
		case "EX":
			if i+1 >= len(argv) || pxSet || exSet {
				return wrapErr(cmderr.SyntaxError(""))
			}
			secs, err := strconv.ParseInt(string(argv[i+1]), 10, 64)
			if err != nil {
				return wrapErr(cmderr.NotInteger())
			}
			ttl = time.Duration(secs) * time.Second
			exSet = true
			i += 2
		case "PX":
			if i+1 >= len(argv) || pxSet || exSet {
				return wrapErr(cmderr.SyntaxError(""))
			}
			ms, err := strconv.ParseInt(string(argv[i+1]), 10, 64)
			if err != nil {
				return wrapErr(cmderr.NotInteger())
			}
			ttl = time.Duration(ms) * time.Millisecond
			pxSet = true
			i += 2
		case "NX":
			if xxSet || nxSet {
				return wrapErr(cmderr.SyntaxError(""))
			}
			nxSet = true
			i++
		case "XX":
			if xxSet || nxSet {
				return wrapErr(cmderr.SyntaxError(""))
			}
			xxSet = true
			i++
		default:
			return wrapErr(cmderr.SyntaxError(""))
		}
	}

	hasTTL := exSet || pxSet
	var deadline time.Time
	if hasTTL {
		deadline = time.Now().Add(ttl)
	}

	stored := false
	_, err := d.KS.ComputeTTL(key, func(current *types.Value, hadDeadline bool, curDeadline time.Time) (*types.Value, time.Time, error) {
		unchanged := func() (*types.Value, time.Time, error) {
			if hadDeadline {
				return current, curDeadline, nil
			}
			return current, time.Time{}, nil
		}
		if nxSet && current != nil {
			return unchanged()
		}
		if xxSet && (current == nil || current.Kind() != types.KindString) {
			return unchanged()
		}
		stored = true
		return types.NewString(value), deadline, nil
	})
	if err != nil {
		return wrapErr(err)
	}
	if !stored {
		return resp.NilBulk()
	}
	return resp.SimpleString("OK")
}

// Get implements GET key.
func Get(d Deps, c *Conn, argv [][]byte) resp.Reply {
	if len(argv) != 2 {
		return wrapErr(cmderr.WrongArgs("get"))
	}
	v, ok := d.KS.Get(string(argv[1]))
	if !ok {
		return resp.NilBulk()
	}
	s, err := v.AsString()
	if err != nil {
		return wrapErr(cmderr.WrongType())
	}
	return resp.NewBulk(s)
}

// Incr implements INCR key: absent keys start at 0 before incrementing;
// overflow at math.MaxInt64 is rejected as NotInteger with no mutation
// (spec.md §9's preserved-observable-effect decision).
func Incr(d Deps, c *Conn, argv [][]byte) resp.Reply {
	if len(argv) != 2 {
		return wrapErr(cmderr.WrongArgs("incr"))
	}
	key := string(argv[1])
	var result int64
	_, err := d.KS.Compute(key, func(current *types.Value) (*types.Value, error) {
		var n int64
		if current != nil {
			s, err := current.AsString()
			if err != nil {
				return nil, err
			}
			n, err = strconv.ParseInt(string(s), 10, 64)
			if err != nil {
				return nil, cmderr.NotInteger()
			}
		}
		if n == math.MaxInt64 {
			return nil, cmderr.NotInteger()
		}
		n++
		result = n
		return types.NewString([]byte(strconv.FormatInt(n, 10))), nil
	})
	if err != nil {
		return wrapErr(err)
	}
	return resp.Integer(result)
}
