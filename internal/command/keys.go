package command

import (
	"github.com/kvsrv/kvsrv/internal/cmderr"
	"github.com/kvsrv/kvsrv/internal/resp"
)

// Del implements DEL key..., returning the count of keys that existed.
func Del(d Deps, c *Conn, argv [][]byte) resp.Reply {
	if len(argv) < 2 {
		return wrapErr(cmderr.WrongArgs("del"))
	}
	keys := make([]string, 0, len(argv)-1)
	for _, k := range argv[1:] {
		keys = append(keys, string(k))
	}
	return resp.Integer(d.KS.RemoveMany(keys))
}

// Type implements TYPE key: string|list|set|zset|hash|stream|none.
func Type(d Deps, c *Conn, argv [][]byte) resp.Reply {
	if len(argv) != 2 {
		return wrapErr(cmderr.WrongArgs("type"))
	}
	v, ok := d.KS.Get(string(argv[1]))
	if !ok {
		return resp.SimpleString("none")
	}
	return resp.SimpleString(v.Kind().String())
}

// Ping implements PING [message]. More than one argument is a usage error,
// preserved from the source rather than Redis's own single-message
// semantics (spec.md §9).
func Ping(d Deps, c *Conn, argv [][]byte) resp.Reply {
	if len(argv) == 1 {
		return resp.SimpleString("PONG")
	}
	if len(argv) > 2 {
		return wrapErr(cmderr.WrongArgs("ping"))
	}
	return resp.NewBulk(argv[1])
}
