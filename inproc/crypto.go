package inproc

import (
	"crypto/ed25519"
	"crypto/rand"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/nacl/box"

	"github.com/fulldump/indyctl/indy"
)

// envelope is a DH message. Both parties are named, so either of them can
// rebuild the shared key and open it.
type envelope struct {
	Sender     string `cbor:"1,keyasint"`
	Recipient  string `cbor:"2,keyasint"`
	Nonce      []byte `cbor:"3,keyasint"`
	Ciphertext []byte `cbor:"4,keyasint"`
}

// peer returns the other party of the envelope as seen by verkey.
func (e *envelope) peer(verkey string) (string, bool) {
	switch verkey {
	case e.Recipient:
		return e.Sender, true
	case e.Sender:
		return e.Recipient, true
	}
	return "", false
}

func (s *Service) privateKey(walletHandle indy.WalletHandle, verkey string) (*keyPair, indy.ErrorCode) {
	var found *keyPair
	code := s.withWallet(walletHandle, func(w *wallet) indy.ErrorCode {
		k, code := w.findKey(verkey)
		found = k
		return code
	})
	return found, code
}

func (s *Service) CryptoSign(handle indy.Handle, walletHandle indy.WalletHandle, signerVk string, msg []byte, cb indy.CallbackEcMessage) indy.ErrorCode {
	switch {
	case signerVk == "":
		return indy.InvalidParam(3)
	case cb == nil:
		return indy.InvalidParam(5)
	}
	msg = append([]byte{}, msg...)

	return s.messageResult("sign", handle, cb, func() (indy.ErrorCode, []byte) {
		k, code := s.privateKey(walletHandle, signerVk)
		if code != indy.Success {
			return code, nil
		}
		return indy.Success, ed25519.Sign(k.private, msg)
	})
}

func (s *Service) CryptoVerify(handle indy.Handle, signerVk string, msg, signature []byte, cb indy.CallbackEcI32) indy.ErrorCode {
	switch {
	case signerVk == "":
		return indy.InvalidParam(2)
	case len(signature) == 0:
		return indy.InvalidParam(4)
	case cb == nil:
		return indy.InvalidParam(5)
	}
	msg = append([]byte{}, msg...)
	signature = append([]byte{}, signature...)

	return s.int32Result("verify", handle, cb, func() (indy.ErrorCode, int32) {
		public, ok := parseVerkey(signerVk)
		if !ok {
			return indy.CommonInvalidStructure, 0
		}
		if ed25519.Verify(public, msg, signature) {
			return indy.Success, 1
		}
		return indy.Success, 0
	})
}

func (s *Service) CryptoAnonCrypt(handle indy.Handle, theirVk string, msg []byte, cb indy.CallbackEcMessage) indy.ErrorCode {
	switch {
	case theirVk == "":
		return indy.InvalidParam(2)
	case cb == nil:
		return indy.InvalidParam(4)
	}
	msg = append([]byte{}, msg...)

	return s.messageResult("anon crypt", handle, cb, func() (indy.ErrorCode, []byte) {
		recipient, ok := boxPublic(theirVk)
		if !ok {
			return indy.CommonInvalidStructure, nil
		}
		sealed, err := box.SealAnonymous(nil, msg, recipient, rand.Reader)
		if err != nil {
			return indy.CommonIOError, nil
		}
		return indy.Success, sealed
	})
}

func (s *Service) CryptoAnonDecrypt(handle indy.Handle, walletHandle indy.WalletHandle, myVk string, encrypted []byte, cb indy.CallbackEcMessage) indy.ErrorCode {
	switch {
	case myVk == "":
		return indy.InvalidParam(3)
	case len(encrypted) == 0:
		return indy.InvalidParam(4)
	case cb == nil:
		return indy.InvalidParam(5)
	}
	encrypted = append([]byte{}, encrypted...)

	return s.messageResult("anon decrypt", handle, cb, func() (indy.ErrorCode, []byte) {
		k, code := s.privateKey(walletHandle, myVk)
		if code != indy.Success {
			return code, nil
		}
		public, ok := boxPublic(myVk)
		if !ok {
			return indy.CommonInvalidStructure, nil
		}
		opened, ok := box.OpenAnonymous(nil, encrypted, public, k.boxSecret())
		if !ok {
			return indy.CommonInvalidStructure, nil
		}
		return indy.Success, opened
	})
}

func (s *Service) CryptoAuthCrypt(handle indy.Handle, walletHandle indy.WalletHandle, myVk, theirVk string, msg []byte, cb indy.CallbackEcMessage) indy.ErrorCode {
	switch {
	case myVk == "":
		return indy.InvalidParam(3)
	case theirVk == "":
		return indy.InvalidParam(4)
	case cb == nil:
		return indy.InvalidParam(6)
	}
	msg = append([]byte{}, msg...)

	return s.messageResult("auth crypt", handle, cb, func() (indy.ErrorCode, []byte) {
		k, code := s.privateKey(walletHandle, myVk)
		if code != indy.Success {
			return code, nil
		}
		recipient, ok := boxPublic(theirVk)
		if !ok {
			return indy.CommonInvalidStructure, nil
		}

		nonce := new([24]byte)
		_, err := rand.Read(nonce[:])
		if err != nil {
			return indy.CommonIOError, nil
		}

		sealed, err := cbor.Marshal(envelope{
			Sender:     myVk,
			Recipient:  theirVk,
			Nonce:      nonce[:],
			Ciphertext: box.Seal(nil, msg, nonce, recipient, k.boxSecret()),
		})
		if err != nil {
			return indy.CommonInvalidStructure, nil
		}
		return indy.Success, sealed
	})
}

func (s *Service) CryptoAuthDecrypt(handle indy.Handle, walletHandle indy.WalletHandle, myVk string, encrypted []byte, cb indy.CallbackEcMessageWithKey) indy.ErrorCode {
	switch {
	case myVk == "":
		return indy.InvalidParam(3)
	case len(encrypted) == 0:
		return indy.InvalidParam(4)
	case cb == nil:
		return indy.InvalidParam(5)
	}
	encrypted = append([]byte{}, encrypted...)

	return s.keyedMessageResult("auth decrypt", handle, cb, func() (indy.ErrorCode, string, []byte) {
		k, code := s.privateKey(walletHandle, myVk)
		if code != indy.Success {
			return code, "", nil
		}

		e := envelope{}
		err := cbor.Unmarshal(encrypted, &e)
		if err != nil || len(e.Nonce) != 24 {
			return indy.CommonInvalidStructure, "", nil
		}
		remoteKey, ok := e.peer(myVk)
		if !ok {
			return indy.CommonInvalidStructure, "", nil
		}
		remote, ok := boxPublic(remoteKey)
		if !ok {
			return indy.CommonInvalidStructure, "", nil
		}

		nonce := new([24]byte)
		copy(nonce[:], e.Nonce)
		message, ok := box.Open(nil, e.Ciphertext, nonce, remote, k.boxSecret())
		if !ok {
			return indy.CommonInvalidStructure, "", nil
		}
		return indy.Success, remoteKey, message
	})
}
