// Package cmderr defines the closed set of command-level error kinds from
// spec.md §7, each a sentinel wrapped with a RESP-ready message so command
// implementations return values, never panics, for protocol-visible
// failures.
package cmderr

import "errors"

// Kind tags which of the closed error kinds (spec.md §7) a command error
// is, so the RESP encoder can pick the correct error code prefix
// (ERR / WRONGTYPE / EXECABORT).
type Kind int

const (
	KindWrongArgs Kind = iota
	KindWrongType
	KindNotInteger
	KindSyntaxError
	KindIdTooSmall
	KindIdZero
	KindNestedMulti
	KindExecWithoutMulti
	KindDiscardWithoutMulti
	KindExecAborted
	KindUnknownCommand
	KindInternal
)

// Error is a command-level error carrying its Kind and a RESP-safe message.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// Code returns the RESP error-code prefix for this error (spec.md §6):
// ERR, WRONGTYPE, or EXECABORT.
func (e *Error) Code() string {
	switch e.Kind {
	case KindWrongType:
		return "WRONGTYPE"
	case KindExecAborted:
		return "EXECABORT"
	default:
		return "ERR"
	}
}

func newErr(k Kind, msg string) *Error { return &Error{Kind: k, Msg: msg} }

// WrongArgs reports a wrong number of arguments for cmd.
func WrongArgs(cmd string) *Error {
	return newErr(KindWrongArgs, "ERR wrong number of arguments for '"+cmd+"' command")
}

// WrongType is the protocol-facing command error for a kind mismatch, with
// the same message as types.ErrWrongType. It does not wrap that sentinel:
// errors.Is(WrongType(), types.ErrWrongType) is false.
func WrongType() *Error {
	return newErr(KindWrongType, "WRONGTYPE Operation against a key holding the wrong kind of value")
}

// NotInteger reports that a value could not be parsed as a signed 64-bit
// integer, or that INCR would overflow (design note §9: the observable
// effect — no mutation, an error — is preserved; message text is not
// contractual).
func NotInteger() *Error {
	return newErr(KindNotInteger, "ERR value is not an integer or out of range")
}

// SyntaxError reports a malformed command, including ambiguous SET option
// combinations (EX+PX, NX+XX) per design note §9.
func SyntaxError(msg string) *Error {
	if msg == "" {
		msg = "ERR syntax error"
	}
	return newErr(KindSyntaxError, msg)
}

// IdTooSmall reports an XADD id not strictly greater than the stream's last
// id.
func IdTooSmall() *Error {
	return newErr(KindIdTooSmall, "ERR The ID specified in XADD is equal or smaller than the target stream top item")
}

// IdZero reports an XADD id equal to (0,0).
func IdZero() *Error {
	return newErr(KindIdZero, "ERR The ID specified in XADD must be greater than 0-0")
}

// NestedMulti reports MULTI called while already queuing.
func NestedMulti() *Error {
	return newErr(KindNestedMulti, "ERR MULTI calls can not be nested")
}

// ExecWithoutMulti reports EXEC called outside a transaction.
func ExecWithoutMulti() *Error {
	return newErr(KindExecWithoutMulti, "ERR EXEC without MULTI")
}

// DiscardWithoutMulti reports DISCARD called outside a transaction.
func DiscardWithoutMulti() *Error {
	return newErr(KindDiscardWithoutMulti, "ERR DISCARD without MULTI")
}

// ExecAborted reports EXEC aborting because a queue-time error was recorded.
func ExecAborted() *Error {
	return newErr(KindExecAborted, "EXECABORT Transaction discarded because of previous errors.")
}

// UnknownCommand reports a command name not present in the dispatch table.
func UnknownCommand(cmd string) *Error {
	return newErr(KindUnknownCommand, "ERR unknown command '"+cmd+"'")
}

// Internal reports an unreachable-invariant violation. Per spec.md §7,
// Internal errors are the one command-error class severe enough to be
// logged with a full diagnostic dump (see pkg/fmtt).
func Internal(msg string) *Error {
	return newErr(KindInternal, "ERR internal error: "+msg)
}

// As is a convenience wrapper over errors.As for *Error.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
