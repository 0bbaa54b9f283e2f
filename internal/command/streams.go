package command

import (
	"strconv"
	"strings"
	"time"

	"github.com/kvsrv/kvsrv/internal/cmderr"
	"github.com/kvsrv/kvsrv/internal/resp"
	"github.com/kvsrv/kvsrv/internal/streamid"
	"github.com/kvsrv/kvsrv/internal/types"
)

func encodeEntry(e types.StreamEntry) resp.Reply {
	fieldElems := make([]resp.Reply, 0, len(e.Fields)*2)
	for _, f := range e.Fields {
		fieldElems = append(fieldElems, resp.NewBulk([]byte(f.Name)), resp.NewBulk(f.Value))
	}
	return resp.NewArray(resp.NewBulk([]byte(e.ID.String())), resp.NewArray(fieldElems...))
}

// Xadd implements XADD key id field value... (spec.md §4.6), including the
// "*"/"ms-*"/explicit auto-generation rules.
func Xadd(d Deps, c *Conn, argv [][]byte) resp.Reply {
	if len(argv) < 5 || (len(argv)-3)%2 != 0 {
		return wrapErr(cmderr.WrongArgs("xadd"))
	}
	key := string(argv[1])
	idStr := string(argv[2])
	fieldsArgv := argv[3:]
	fields := make([]types.Field, 0, len(fieldsArgv)/2)
	for i := 0; i < len(fieldsArgv); i += 2 {
		fields = append(fields, types.Field{Name: string(fieldsArgv[i]), Value: fieldsArgv[i+1]})
	}

	id, autoMs, autoSeq, perr := streamid.Parse(idStr, streamid.LowerBound, true)
	if perr != nil {
		return resp.Error(streamid.ErrSyntax.Error())
	}

	var assigned streamid.ID
	_, cerr := d.KS.Compute(key, func(current *types.Value) (*types.Value, error) {
		var v *types.Value
		if current == nil {
			v = types.NewStream()
		} else {
			if current.Kind() != types.KindStream {
				return nil, cmderr.WrongType()
			}
			v = current.Clone()
		}
		st, _ := v.AsStream()
		last, hasLast := st.LastID()

		var resolved streamid.ID
		switch {
		case autoMs && autoSeq:
			now := uint64(time.Now().UnixMilli())
			if !hasLast || now > last.Ms {
				resolved = streamid.ID{Ms: now, Seq: 0}
			} else {
				resolved = streamid.ID{Ms: last.Ms, Seq: last.Seq + 1}
			}
		case autoSeq:
			if hasLast && id.Ms < last.Ms {
				return nil, cmderr.IdTooSmall()
			}
			if hasLast && id.Ms == last.Ms {
				resolved = streamid.ID{Ms: id.Ms, Seq: last.Seq + 1}
			} else {
				resolved = streamid.ID{Ms: id.Ms, Seq: 0}
			}
		default:
			resolved = id
			if hasLast && !last.Less(resolved) {
				return nil, cmderr.IdTooSmall()
			}
		}

		if resolved == streamid.Zero {
			return nil, cmderr.IdZero()
		}
		if err := st.Append(resolved, fields); err != nil {
			return nil, cmderr.IdTooSmall()
		}
		assigned = resolved
		return v, nil
	})
	if cerr != nil {
		return wrapErr(cerr)
	}
	return resp.NewBulk([]byte(assigned.String()))
}

// Xrange implements XRANGE key start end [COUNT n].
func Xrange(d Deps, c *Conn, argv [][]byte) resp.Reply {
	if len(argv) != 4 && len(argv) != 6 {
		return wrapErr(cmderr.WrongArgs("xrange"))
	}
	count := -1
	if len(argv) == 6 {
		if !strings.EqualFold(string(argv[4]), "COUNT") {
			return wrapErr(cmderr.SyntaxError(""))
		}
		n, err := strconv.Atoi(string(argv[5]))
		if err != nil || n < 0 {
			return wrapErr(cmderr.NotInteger())
		}
		count = n
	}

	start, _, _, err := streamid.Parse(string(argv[2]), streamid.LowerBound, false)
	if err != nil {
		return resp.Error(streamid.ErrSyntax.Error())
	}
	end, _, _, err := streamid.Parse(string(argv[3]), streamid.UpperBound, false)
	if err != nil {
		return resp.Error(streamid.ErrSyntax.Error())
	}

	v, ok := d.KS.Get(string(argv[1]))
	if !ok {
		return resp.NewArray()
	}
	st, err := v.AsStream()
	if err != nil {
		return wrapErr(cmderr.WrongType())
	}

	entries := st.Range(start, end, count)
	out := make([]resp.Reply, len(entries))
	for i, e := range entries {
		out[i] = encodeEntry(e)
	}
	return resp.NewArray(out...)
}

// Xread implements XREAD STREAMS k... id..., synchronous-only (spec.md
// §4.6: the blocking variant is a non-goal).
func Xread(d Deps, c *Conn, argv [][]byte) resp.Reply {
	if len(argv) < 4 || !strings.EqualFold(string(argv[1]), "STREAMS") {
		return wrapErr(cmderr.WrongArgs("xread"))
	}
	rest := argv[2:]
	if len(rest)%2 != 0 {
		return wrapErr(cmderr.SyntaxError(""))
	}
	n := len(rest) / 2
	keys := rest[:n]
	ids := rest[n:]

	type streamResult struct {
		key     string
		entries []types.StreamEntry
	}
	var results []streamResult
	for i := 0; i < n; i++ {
		after, _, _, err := streamid.Parse(string(ids[i]), streamid.LowerBound, false)
		if err != nil {
			return resp.Error(streamid.ErrSyntax.Error())
		}
		v, ok := d.KS.Get(string(keys[i]))
		if !ok {
			continue
		}
		st, err := v.AsStream()
		if err != nil {
			return wrapErr(cmderr.WrongType())
		}
		entries := st.After(after)
		if len(entries) > 0 {
			results = append(results, streamResult{key: string(keys[i]), entries: entries})
		}
	}
	if len(results) == 0 {
		return resp.NilArray()
	}

	out := make([]resp.Reply, len(results))
	for i, r := range results {
		entryElems := make([]resp.Reply, len(r.entries))
		for j, e := range r.entries {
			entryElems[j] = encodeEntry(e)
		}
		out[i] = resp.NewArray(resp.NewBulk([]byte(r.key)), resp.NewArray(entryElems...))
	}
	return resp.NewArray(out...)
}
