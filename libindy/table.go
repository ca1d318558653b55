package libindy

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/fulldump/indyctl/callbacks"
	"github.com/fulldump/indyctl/indy"
)

// callTable maps a command handle to the Go callback waiting for it. libindy
// only hands the handle back, so this table is what reaches the Go side.
type callTable struct {
	calls  sync.Map
	logger *slog.Logger
	fault  func(err error)
}

type Option func(t *callTable)

func WithLogger(logger *slog.Logger) Option {
	return func(t *callTable) {
		t.logger = logger
	}
}

// WithFaultHandler replaces the default fault handler, which logs and panics.
// Bootstrap hands it the registry's, so both sides of the bridge escalate the
// same way.
func WithFaultHandler(f func(err error)) Option {
	return func(t *callTable) {
		t.fault = f
	}
}

func newCallTable(options ...Option) *callTable {
	t := &callTable{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	t.fault = t.defaultFault
	t.configure(options...)
	return t
}

func (t *callTable) configure(options ...Option) {
	for _, option := range options {
		option(t)
	}
}

func (t *callTable) defaultFault(err error) {
	t.logger.Error("libindy bridge fault", "error", err)
	panic(err)
}

// call parks cb under handle for the duration of the native call. A call
// libindy did not accept will never complete, so its entry is dropped.
func (t *callTable) call(handle indy.Handle, cb any, invoke func() indy.ErrorCode) indy.ErrorCode {
	_, loaded := t.calls.LoadOrStore(handle, cb)
	if loaded {
		t.fault(fmt.Errorf("call %d: %w", handle, callbacks.ErrHandleInUse))
		return indy.CommonInvalidState
	}

	code := invoke()
	if code != indy.Success {
		t.calls.Delete(handle)
	}
	return code
}

func (t *callTable) len() int {
	n := 0
	t.calls.Range(func(key, value any) bool {
		n++
		return true
	})
	return n
}

// take removes the callback of a completed handle. A handle nobody waits for
// or a callback of another shape is a fault.
func take[T any](t *callTable, handle indy.Handle) (T, bool) {
	var zero T

	value, found := t.calls.LoadAndDelete(handle)
	if !found {
		t.fault(fmt.Errorf("complete %d: %w", handle, callbacks.ErrHandleNotPending))
		return zero, false
	}

	cb, ok := value.(T)
	if !ok {
		t.fault(fmt.Errorf("complete %d: %w: want %T, got %T", handle, callbacks.ErrShapeMismatch, zero, value))
		return zero, false
	}
	return cb, true
}
