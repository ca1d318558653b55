package callbacks

import (
	"errors"
	"fmt"
)

// Bridge faults. They mean the native library and the bridge disagree about
// which calls are in flight.
var (
	ErrHandleNotPending = errors.New("handle is not pending")
	ErrHandleInUse      = errors.New("handle is already pending")
	ErrShapeMismatch    = errors.New("completion shape mismatch")
)

var ErrTimeout = errors.New("native call timed out")

// Decoding failures of a completion payload.
var (
	ErrInvalidUTF8   = errors.New("invalid utf-8")
	ErrInvalidBase58 = errors.New("invalid base58")
)

// DecodeError reports a completion whose payload could not be turned into an
// owned value. The call fails; nothing is truncated or substituted.
type DecodeError struct {
	Shape string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s completion: %s", e.Shape, e.Err.Error())
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
