package callbacks

import (
	"fmt"
	"time"

	"github.com/fulldump/indyctl/indy"
)

// Result is what a trampoline delivers: the native status plus the decoded
// payload, or the decoding failure.
type Result[T any] struct {
	Code  indy.ErrorCode
	Value T
	Err   error
}

// Receiver is the blocking end of one call.
type Receiver[T any] struct {
	handle   indy.Handle
	registry *Registry
	results  chan Result[T]
}

// newCall registers a one-shot action for a payload of type T. The channel is
// buffered so the trampoline never blocks on a receiver that went away.
func newCall[T any](r *Registry) (*Receiver[T], indy.Handle) {
	results := make(chan Result[T], 1)

	receiver := &Receiver[T]{
		registry: r,
		results:  results,
	}

	receiver.handle = r.issue(func(payload any) {
		result, ok := payload.(Result[T])
		if !ok {
			err := fmt.Errorf("%w: want %T, got %T", ErrShapeMismatch, result, payload)
			results <- Result[T]{Err: err}
			r.Fault(err)
			return
		}
		results <- result
	})

	return receiver, receiver.handle
}

func (r *Receiver[T]) Handle() indy.Handle {
	return r.handle
}

// Recv blocks until the completion arrives. A timeout <= 0 waits forever.
func (r *Receiver[T]) Recv(timeout time.Duration) (Result[T], error) {
	if timeout <= 0 {
		return <-r.results, nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case result := <-r.results:
		return result, nil
	case <-timer.C:
	}

	if !r.registry.Abandon(r.handle) {
		// Completed while the timer fired.
		return <-r.results, nil
	}
	return Result[T]{}, fmt.Errorf("handle %d after %s: %w", r.handle, timeout, ErrTimeout)
}

// Wait returns the payload of a successful completion, or the failure.
func (r *Receiver[T]) Wait(timeout time.Duration) (T, error) {
	var zero T

	result, err := r.Recv(timeout)
	if err != nil {
		return zero, err
	}
	if result.Err != nil {
		return zero, result.Err
	}
	if result.Code != indy.Success {
		return zero, &indy.Error{Code: result.Code}
	}
	return result.Value, nil
}

// Resolve takes the immediate status of the entry point. A call the native
// library did not accept will never complete, so it is cancelled right away.
func (r *Receiver[T]) Resolve(accepted indy.ErrorCode, timeout time.Duration) (T, error) {
	if accepted != indy.Success {
		r.registry.Cancel(r.handle)
		var zero T
		return zero, &indy.Error{Code: accepted}
	}
	return r.Wait(timeout)
}
