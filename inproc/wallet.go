package inproc

import (
	"crypto/subtle"

	"github.com/google/btree"
	"github.com/google/uuid"

	"github.com/fulldump/indyctl/indy"
)

type wallet struct {
	id     string
	name   string
	key    []byte
	handle indy.WalletHandle
	keys   *btree.BTreeG[*keyPair]
}

func newWallet(name, key string) *wallet {
	return &wallet{
		id:   uuid.New().String(),
		name: name,
		key:  []byte(key),
		keys: btree.NewG[*keyPair](8, lessKeyPair),
	}
}

func (w *wallet) unlocks(key string) bool {
	return subtle.ConstantTimeCompare(w.key, []byte(key)) == 1
}

// openedWallet must be called inside lockBlock.
func (s *Service) openedWallet(handle indy.WalletHandle) (*wallet, indy.ErrorCode) {
	w, ok := s.opened[handle]
	if !ok {
		return nil, indy.WalletInvalidHandle
	}
	return w, indy.Success
}

// withWallet runs f holding the service lock with the wallet opened under
// handle.
func (s *Service) withWallet(handle indy.WalletHandle, f func(w *wallet) indy.ErrorCode) indy.ErrorCode {
	code := indy.Success
	s.lockBlock(func() error {
		var w *wallet
		w, code = s.openedWallet(handle)
		if code != indy.Success {
			return nil
		}
		code = f(w)
		return nil
	})
	return code
}

func (s *Service) CreateWallet(handle indy.Handle, name, key string, cb indy.CallbackEc) indy.ErrorCode {
	switch {
	case name == "":
		return indy.InvalidParam(2)
	case key == "":
		return indy.InvalidParam(3)
	case cb == nil:
		return indy.InvalidParam(4)
	}

	return s.statusResult("create wallet", handle, cb, func() indy.ErrorCode {
		code := indy.Success
		s.lockBlock(func() error {
			if _, exists := s.wallets[name]; exists {
				code = indy.WalletAlreadyExistsError
				return nil
			}
			w := newWallet(name, key)
			s.wallets[name] = w
			s.logger.Info("wallet created", "wallet", name, "wallet_id", w.id)
			return nil
		})
		return code
	})
}

func (s *Service) OpenWallet(handle indy.Handle, name, key string, cb indy.CallbackEcI32) indy.ErrorCode {
	switch {
	case name == "":
		return indy.InvalidParam(2)
	case key == "":
		return indy.InvalidParam(3)
	case cb == nil:
		return indy.InvalidParam(4)
	}

	return s.int32Result("open wallet", handle, cb, func() (indy.ErrorCode, int32) {
		code := indy.Success
		opened := indy.WalletHandle(0)
		s.lockBlock(func() error {
			w, exists := s.wallets[name]
			switch {
			case !exists:
				code = indy.WalletNotFoundError
			case !w.unlocks(key):
				code = indy.WalletAccessFailed
			case w.handle != 0:
				code = indy.WalletAlreadyOpenedError
			default:
				s.lastWallet++
				w.handle = s.lastWallet
				s.opened[w.handle] = w
				opened = w.handle
				s.logger.Info("wallet opened", "wallet", name, "wallet_handle", w.handle)
			}
			return nil
		})
		return code, int32(opened)
	})
}

func (s *Service) CloseWallet(handle indy.Handle, walletHandle indy.WalletHandle, cb indy.CallbackEc) indy.ErrorCode {
	if cb == nil {
		return indy.InvalidParam(3)
	}

	return s.statusResult("close wallet", handle, cb, func() indy.ErrorCode {
		return s.withWallet(walletHandle, func(w *wallet) indy.ErrorCode {
			delete(s.opened, w.handle)
			w.handle = 0
			s.logger.Info("wallet closed", "wallet", w.name)
			return indy.Success
		})
	})
}
