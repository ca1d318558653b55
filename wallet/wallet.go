// Package wallet keeps track of the wallet the client is working with and
// hands its handle to the commands that need one.
package wallet

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/fulldump/indyctl/callbacks"
	"github.com/fulldump/indyctl/indy"
)

var ErrNoWalletOpened = errors.New("no wallet opened")

// Session is an opened wallet.
type Session struct {
	Name   string
	Handle indy.WalletHandle
	Opened time.Time
}

type Wallets struct {
	registry *callbacks.Registry
	native   indy.WalletAPI
	timeout  time.Duration
	logger   *slog.Logger

	mutex   *sync.Mutex
	current *Session
}

type Option func(w *Wallets)

func WithTimeout(timeout time.Duration) Option {
	return func(w *Wallets) {
		w.timeout = timeout
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Wallets) {
		w.logger = logger
	}
}

func New(registry *callbacks.Registry, native indy.WalletAPI, options ...Option) *Wallets {
	w := &Wallets{
		registry: registry,
		native:   native,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		mutex:    &sync.Mutex{},
	}
	for _, option := range options {
		option(w)
	}
	return w
}

func (w *Wallets) Create(name, key string) error {
	receiver, handle, cb := w.registry.Status()
	_, err := receiver.Resolve(w.native.CreateWallet(handle, name, key, cb), w.timeout)
	if err != nil {
		return fmt.Errorf("create wallet '%s': %w", name, err)
	}
	w.logger.Info("wallet created", "wallet", name)
	return nil
}

// Open opens the wallet and makes it the current one. A wallet opened before
// is closed first.
func (w *Wallets) Open(name, key string) (*Session, error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.current != nil {
		err := w.close(w.current)
		if err != nil {
			return nil, err
		}
	}

	receiver, handle, cb := w.registry.Int32()
	value, err := receiver.Resolve(w.native.OpenWallet(handle, name, key, cb), w.timeout)
	if err != nil {
		return nil, fmt.Errorf("open wallet '%s': %w", name, err)
	}

	w.current = &Session{
		Name:   name,
		Handle: indy.WalletHandle(value),
		Opened: time.Now(),
	}
	w.logger.Info("wallet opened", "wallet", name, "wallet_handle", value)

	return w.current, nil
}

// Close closes the current wallet and returns it.
func (w *Wallets) Close() (*Session, error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.current == nil {
		return nil, ErrNoWalletOpened
	}

	session := w.current
	err := w.close(session)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// close must be called with the mutex held.
func (w *Wallets) close(session *Session) error {
	receiver, handle, cb := w.registry.Status()
	_, err := receiver.Resolve(w.native.CloseWallet(handle, session.Handle, cb), w.timeout)
	if err != nil {
		return fmt.Errorf("close wallet '%s': %w", session.Name, err)
	}
	w.current = nil
	w.logger.Info("wallet closed", "wallet", session.Name)
	return nil
}

// Current returns the session handle of the opened wallet.
func (w *Wallets) Current() (indy.WalletHandle, error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.current == nil {
		return 0, ErrNoWalletOpened
	}
	return w.current.Handle, nil
}

func (w *Wallets) CurrentSession() *Session {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.current
}
