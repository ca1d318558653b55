package inproc

import (
	"errors"
	"testing"
	"time"

	"github.com/fulldump/biff"

	"github.com/fulldump/indyctl/callbacks"
	"github.com/fulldump/indyctl/indy"
)

const testSeed = "000000000000000000000000Trustee1"

func newTestService(workers int) (*Service, *callbacks.Registry) {
	s := NewService(&Config{Workers: workers})
	go s.Start()
	return s, callbacks.NewRegistry()
}

func codeOf(err error) indy.ErrorCode {
	indyErr := &indy.Error{}
	if errors.As(err, &indyErr) {
		return indyErr.Code
	}
	return indy.Success
}

func createWallet(s *Service, r *callbacks.Registry, name, key string) error {
	receiver, handle, cb := r.Status()
	_, err := receiver.Resolve(s.CreateWallet(handle, name, key, cb), time.Second)
	return err
}

func openWallet(s *Service, r *callbacks.Registry, name, key string) (indy.WalletHandle, error) {
	receiver, handle, cb := r.Int32()
	value, err := receiver.Resolve(s.OpenWallet(handle, name, key, cb), time.Second)
	return indy.WalletHandle(value), err
}

func closeWallet(s *Service, r *callbacks.Registry, w indy.WalletHandle) error {
	receiver, handle, cb := r.Status()
	_, err := receiver.Resolve(s.CloseWallet(handle, w, cb), time.Second)
	return err
}

func createKey(s *Service, r *callbacks.Registry, w indy.WalletHandle, keyJSON string) (string, error) {
	receiver, handle, cb := r.CString()
	return receiver.Resolve(s.CreateKey(handle, w, keyJSON, cb), time.Second)
}

func TestService_Wallets(t *testing.T) {
	biff.Alternative("Wallets", func(a *biff.A) {

		s, r := newTestService(2)
		defer s.Stop()

		biff.AssertNil(createWallet(s, r, "alice", "secret"))

		a.Alternative("Create twice", func(a *biff.A) {
			err := createWallet(s, r, "alice", "other")
			biff.AssertEqual(codeOf(err), indy.WalletAlreadyExistsError)
		})

		a.Alternative("Open unknown", func(a *biff.A) {
			_, err := openWallet(s, r, "bob", "secret")
			biff.AssertEqual(codeOf(err), indy.WalletNotFoundError)
		})

		a.Alternative("Open with wrong key", func(a *biff.A) {
			_, err := openWallet(s, r, "alice", "wrong")
			biff.AssertEqual(codeOf(err), indy.WalletAccessFailed)
		})

		a.Alternative("Open", func(a *biff.A) {
			w, err := openWallet(s, r, "alice", "secret")
			biff.AssertNil(err)
			biff.AssertTrue(w != 0)

			a.Alternative("Open twice", func(a *biff.A) {
				_, err := openWallet(s, r, "alice", "secret")
				biff.AssertEqual(codeOf(err), indy.WalletAlreadyOpenedError)
			})

			a.Alternative("Close", func(a *biff.A) {
				biff.AssertNil(closeWallet(s, r, w))

				err := closeWallet(s, r, w)
				biff.AssertEqual(codeOf(err), indy.WalletInvalidHandle)

				a.Alternative("Keys survive reopening", func(a *biff.A) {
					w1, err := openWallet(s, r, "alice", "secret")
					biff.AssertNil(err)
					_, err = createKey(s, r, w1, `{"seed":"`+testSeed+`"}`)
					biff.AssertNil(err)
					biff.AssertNil(closeWallet(s, r, w1))

					w2, err := openWallet(s, r, "alice", "secret")
					biff.AssertNil(err)
					biff.AssertTrue(w2 != w1)
					_, err = createKey(s, r, w2, `{"seed":"`+testSeed+`"}`)
					biff.AssertEqual(codeOf(err), indy.WalletItemAlreadyExists)
				})
			})

			a.Alternative("Key on unknown wallet", func(a *biff.A) {
				_, err := createKey(s, r, w+100, "")
				biff.AssertEqual(codeOf(err), indy.WalletInvalidHandle)
			})
		})

		biff.AssertEqual(r.Len(), 0)
	})
}

func TestService_RejectsInvalidParams(t *testing.T) {

	s, r := newTestService(1)
	defer s.Stop()

	receiver, handle, cb := r.Status()
	_, err := receiver.Resolve(s.CreateWallet(handle, "", "secret", cb), time.Second)
	biff.AssertEqual(codeOf(err), indy.CommonInvalidParam2)

	receiver, handle, cb = r.Status()
	_, err = receiver.Resolve(s.CreateWallet(handle, "alice", "", cb), time.Second)
	biff.AssertEqual(codeOf(err), indy.CommonInvalidParam3)

	biff.AssertEqual(s.CreateWallet(handle, "alice", "secret", nil), indy.CommonInvalidParam4)

	message, handle, messageCb := r.TextMessage()
	_, err = message.Resolve(s.CryptoAnonDecrypt(handle, 1, "vk", nil, messageCb), time.Second)
	biff.AssertEqual(codeOf(err), indy.CommonInvalidParam4)

	biff.AssertEqual(r.Len(), 0)
}

func TestService_Keys(t *testing.T) {

	s, r := newTestService(2)
	defer s.Stop()

	biff.AssertNil(createWallet(s, r, "keys", "secret"))
	w, err := openWallet(s, r, "keys", "secret")
	biff.AssertNil(err)

	t.Run("Seeded keys are deterministic", func(t *testing.T) {
		receiver, handle, cb := r.CStringPair()
		pair, err := receiver.Resolve(s.CreateAndStoreMyDid(handle, w, `{"seed":"`+testSeed+`"}`, cb), time.Second)
		biff.AssertNil(err)
		biff.AssertEqual(pair.First, "V4SGRU86Z58d6TV7PBUe6f")
		biff.AssertEqual(pair.Second, "GJ1SzoWzavQYfNL9XkaJdrQejfztN4XqdsiV4ct3LXKL")
	})

	t.Run("Bad seed", func(t *testing.T) {
		_, err := createKey(s, r, w, `{"seed":"short"}`)
		biff.AssertEqual(codeOf(err), indy.CommonInvalidStructure)
	})

	t.Run("Unknown crypto type", func(t *testing.T) {
		_, err := createKey(s, r, w, `{"crypto_type":"secp256k1"}`)
		biff.AssertEqual(codeOf(err), indy.UnknownCryptoTypeError)
	})

	t.Run("Metadata", func(t *testing.T) {
		verkey, err := createKey(s, r, w, "")
		biff.AssertNil(err)

		receiver, handle, cb := r.Status()
		_, err = receiver.Resolve(s.SetKeyMetadata(handle, w, verkey, "alice key", cb), time.Second)
		biff.AssertNil(err)

		getReceiver, handle, getCb := r.CString()
		metadata, err := getReceiver.Resolve(s.GetKeyMetadata(handle, w, verkey, getCb), time.Second)
		biff.AssertNil(err)
		biff.AssertEqual(metadata, "alice key")

		getReceiver, handle, getCb = r.CString()
		_, err = getReceiver.Resolve(s.GetKeyMetadata(handle, w, "unknown", getCb), time.Second)
		biff.AssertEqual(codeOf(err), indy.WalletItemNotFound)
	})

	t.Run("List", func(t *testing.T) {
		receiver, handle, cb := r.CString()
		list, err := receiver.Resolve(s.ListMyKeys(handle, w, cb), time.Second)
		biff.AssertNil(err)
		biff.AssertTrue(len(list) > 2)
		biff.AssertEqual(list[0], byte('['))
	})

	biff.AssertEqual(r.Len(), 0)
}

func TestService_MessageBuffersAreWiped(t *testing.T) {

	s, r := newTestService(1)
	defer s.Stop()

	type delivery struct {
		code indy.ErrorCode
		data []byte
	}
	delivered := make(chan delivery, 1)
	accepted := s.CryptoAnonCrypt(1, "GJ1SzoWzavQYfNL9XkaJdrQejfztN4XqdsiV4ct3LXKL", []byte("hello"),
		func(handle indy.Handle, code indy.ErrorCode, data []byte) {
			delivered <- delivery{code: code, data: data}
		})
	biff.AssertEqual(accepted, indy.Success)
	borrowed := <-delivered
	biff.AssertEqual(borrowed.code, indy.Success)
	biff.AssertTrue(len(borrowed.data) > 0)

	// A single worker runs jobs in order, so once the next one completes the
	// previous buffer has been wiped.
	biff.AssertNil(createWallet(s, r, "sync", "secret"))

	biff.AssertEqual(borrowed.data, make([]byte, len(borrowed.data)))
}

func TestService_Stop(t *testing.T) {

	t.Run("Calls after stop are rejected", func(t *testing.T) {
		s, r := newTestService(1)
		s.Stop()
		biff.AssertEqual(s.GetStatus(), StatusClosing)

		err := createWallet(s, r, "late", "secret")
		biff.AssertEqual(codeOf(err), indy.CommonInvalidState)
		biff.AssertEqual(r.Len(), 0)
	})

	t.Run("Queued calls fail on stop", func(t *testing.T) {
		s := NewService(&Config{Workers: 1})
		r := callbacks.NewRegistry()

		receiver, handle, cb := r.Status()
		accepted := s.CreateWallet(handle, "queued", "secret", cb)
		biff.AssertEqual(accepted, indy.Success)
		biff.AssertEqual(s.GetStatus(), StatusOpening)

		s.Stop()

		_, err := receiver.Resolve(accepted, time.Second)
		biff.AssertEqual(codeOf(err), indy.CommonInvalidState)
	})
}
