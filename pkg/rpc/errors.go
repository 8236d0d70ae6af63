package rpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/decikv/decikv/pkg/codec"
	"github.com/decikv/decikv/pkg/decimal"
	"github.com/decikv/decikv/pkg/store"
)

// Wire error codes. The -327xx block follows JSON-RPC, the -3200x block
// covers storage and arithmetic failures. The mapping from component
// errors is total: every failure a handler can produce lands on exactly
// one code.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603

	CodeStorageFailure = -32000
	CodeNotFound       = -32001
	CodeAlreadyExists  = -32002
	CodeConflict       = -32003
	CodeCorrupted      = -32004
	CodeTruncated      = -32005
	CodeDivisionByZero = -32006
	CodeTimeout        = -32007
)

// Error is the wire form of a failed call.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// invalidParams builds a CodeInvalidParams error.
func invalidParams(format string, args ...interface{}) *Error {
	return &Error{Code: CodeInvalidParams, Message: fmt.Sprintf(format, args...)}
}

// errorFor maps a component error onto its wire code. Unrecognized errors
// are backend failures and map to CodeStorageFailure.
func errorFor(err error) *Error {
	var code int
	switch {
	case errors.Is(err, store.ErrInvalidKey),
		errors.Is(err, decimal.ErrMalformed),
		errors.Is(err, decimal.ErrInvalidScale):
		code = CodeInvalidParams
	case errors.Is(err, decimal.ErrDivisionByZero):
		code = CodeDivisionByZero
	case errors.Is(err, store.ErrNotFound):
		code = CodeNotFound
	case errors.Is(err, store.ErrAlreadyExists):
		code = CodeAlreadyExists
	case errors.Is(err, store.ErrConflict):
		code = CodeConflict
	case errors.Is(err, codec.ErrTruncated):
		code = CodeTruncated
	case errors.Is(err, store.ErrCorrupted):
		code = CodeCorrupted
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		code = CodeTimeout
	default:
		code = CodeStorageFailure
	}
	return &Error{Code: code, Message: err.Error()}
}
