package command

import (
	"errors"

	"github.com/kvsrv/kvsrv/internal/cmderr"
	"github.com/kvsrv/kvsrv/internal/resp"
	"github.com/kvsrv/kvsrv/internal/types"
)

// wrapErr renders any error a command closure can produce as a RESP error
// reply: a *cmderr.Error carries its own code-prefixed message; a bare
// types.ErrWrongType (returned directly by Value accessors) is promoted to
// the same WrongType message; anything else is an unreachable-invariant
// Internal error (spec.md §7).
func wrapErr(err error) resp.Reply {
	if ce, ok := cmderr.As(err); ok {
		return resp.Error(ce.Msg)
	}
	if errors.Is(err, types.ErrWrongType) {
		return resp.Error(cmderr.WrongType().Msg)
	}
	return resp.Error(cmderr.Internal(err.Error()).Msg)
}
