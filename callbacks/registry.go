// Package callbacks bridges blocking Go code and the asynchronous native ABI.
//
// A call is issued by asking the Registry for a receiver of the right shape:
//
//	receiver, handle, cb := registry.Base58Message()
//	accepted := native.CryptoAnonCrypt(handle, theirVk, msg, cb)
//	encrypted, err := receiver.Resolve(accepted, timeout)
//
// The callback is a trampoline shared by every call of the same shape. It only
// knows the handle, so it takes the pending action out of the Registry, copies
// and decodes the borrowed arguments and hands the result to the one receiver
// waiting for it.
package callbacks

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/btree"

	"github.com/fulldump/indyctl/indy"
	"github.com/fulldump/indyctl/sequence"
)

// Action delivers exactly one completion payload.
type Action func(payload any)

type pendingEntry struct {
	handle indy.Handle
	action Action
	issued time.Time
}

func lessPending(a, b *pendingEntry) bool {
	return a.handle < b.handle
}

// PendingCall describes an outstanding call.
type PendingCall struct {
	Handle indy.Handle
	Issued time.Time
}

type Registry struct {
	sequence *sequence.Sequence
	mutex    *sync.Mutex
	pending  *btree.BTreeG[*pendingEntry]
	logger   *slog.Logger
	fault    func(err error)

	cbEc               indy.CallbackEc
	cbEcI32            indy.CallbackEcI32
	cbEcString         indy.CallbackEcString
	cbEcStringString   indy.CallbackEcStringString
	cbEcMessage58      indy.CallbackEcMessage
	cbEcMessage        indy.CallbackEcMessage
	cbEcMessageWithKey indy.CallbackEcMessageWithKey
}

type Option func(r *Registry)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithFaultHandler replaces the default fault handler, which logs and panics.
func WithFaultHandler(f func(err error)) Option {
	return func(r *Registry) {
		r.fault = f
	}
}

func WithSequence(s *sequence.Sequence) Option {
	return func(r *Registry) {
		r.sequence = s
	}
}

func NewRegistry(options ...Option) *Registry {
	r := &Registry{
		sequence: sequence.New(),
		mutex:    &sync.Mutex{},
		pending:  btree.NewG[*pendingEntry](16, lessPending),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	r.fault = r.defaultFault

	for _, option := range options {
		option(r)
	}

	r.bindTrampolines()

	return r
}

func (r *Registry) defaultFault(err error) {
	r.logger.Error("callback bridge fault", "error", err)
	panic(err)
}

// Fault reports a broken correlation invariant.
func (r *Registry) Fault(err error) {
	r.fault(err)
}

func (r *Registry) lockBlock(f func() error) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return f()
}

// Register stores action under handle. The handle must not be pending.
func (r *Registry) Register(handle indy.Handle, action Action) error {
	return r.lockBlock(func() error {
		key := &pendingEntry{handle: handle}
		if r.pending.Has(key) {
			return fmt.Errorf("register %d: %w", handle, ErrHandleInUse)
		}
		key.action = action
		key.issued = time.Now()
		r.pending.ReplaceOrInsert(key)
		return nil
	})
}

// issue allocates a fresh handle and registers action under it. Handles still
// pending after a wraparound are skipped.
func (r *Registry) issue(action Action) indy.Handle {
	for {
		handle := r.sequence.Next()
		err := r.Register(handle, action)
		if err == nil {
			return handle
		}
	}
}

// Take removes and returns the action pending for handle.
func (r *Registry) Take(handle indy.Handle) (Action, error) {
	var action Action
	err := r.lockBlock(func() error {
		entry, found := r.pending.Delete(&pendingEntry{handle: handle})
		if !found {
			return fmt.Errorf("complete %d: %w", handle, ErrHandleNotPending)
		}
		action = entry.action
		return nil
	})
	return action, err
}

// Complete removes the action for handle and invokes it with payload. The
// action runs outside the lock.
func (r *Registry) Complete(handle indy.Handle, payload any) error {
	action, err := r.Take(handle)
	if err != nil {
		return err
	}
	action(payload)
	return nil
}

// Cancel forgets a pending handle. Used when the native library did not
// accept the call, so no completion will ever arrive.
func (r *Registry) Cancel(handle indy.Handle) bool {
	_, err := r.Take(handle)
	return err == nil
}

// Abandon keeps handle pending but swaps its action for one that discards a
// late completion. Used when the caller stopped waiting.
func (r *Registry) Abandon(handle indy.Handle) bool {
	abandoned := false
	r.lockBlock(func() error {
		entry, found := r.pending.Get(&pendingEntry{handle: handle})
		if !found {
			return nil
		}
		issued := entry.issued
		entry.action = func(payload any) {
			r.logger.Warn("late completion discarded",
				"handle", handle,
				"after", time.Since(issued).String())
		}
		abandoned = true
		return nil
	})
	return abandoned
}

func (r *Registry) Len() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.pending.Len()
}

// Pending lists outstanding calls ordered by handle.
func (r *Registry) Pending() []PendingCall {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	result := make([]PendingCall, 0, r.pending.Len())
	r.pending.Ascend(func(entry *pendingEntry) bool {
		result = append(result, PendingCall{
			Handle: entry.handle,
			Issued: entry.issued,
		})
		return true
	})
	return result
}
