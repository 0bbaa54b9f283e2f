// Package fmtt dumps command errors for diagnostics: DumpInternal, the
// zap-integrated helper used in production to fully dump Internal command
// errors (spec.md §7) at Debug level.
package fmtt

import (
	"go.uber.org/zap"

	"github.com/davecgh/go-spew/spew"

	"github.com/kvsrv/kvsrv/internal/cmderr"
)

// DumpInternal logs a full spew dump of err at Debug level, but only when
// err is a cmderr.Error of KindInternal (spec.md §7: Internal errors mark
// an unreachable invariant violation, the one class severe enough to
// warrant a full diagnostic dump). Any other error kind is a no-op, since
// command errors are an expected, protocol-visible outcome, not a bug.
func DumpInternal(log *zap.Logger, err error) {
	ce, ok := cmderr.As(err)
	if !ok || ce.Kind != cmderr.KindInternal {
		return
	}
	log.Debug("internal command error", zap.String("dump", spew.Sdump(ce)))
}
