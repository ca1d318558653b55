package inproc

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha512"

	"filippo.io/edwards25519"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/go-json-experiment/json"

	"github.com/fulldump/indyctl/indy"
)

const cryptoTypeEd25519 = "ed25519"

// didLength is how many leading verkey bytes form a did.
const didLength = 16

type keyPair struct {
	verkey   string
	did      string
	private  ed25519.PrivateKey
	metadata string
}

func lessKeyPair(a, b *keyPair) bool {
	return a.verkey < b.verkey
}

type keySpec struct {
	Seed       string `json:"seed"`
	CryptoType string `json:"crypto_type"`
}

type keyListItem struct {
	Verkey   string `json:"verkey"`
	Metadata string `json:"metadata,omitempty"`
}

// newKeyPair derives a key from a 32 byte seed, or a random one if the seed is
// empty.
func newKeyPair(specJSON string) (*keyPair, indy.ErrorCode) {
	spec := keySpec{}
	if specJSON != "" {
		err := json.Unmarshal([]byte(specJSON), &spec)
		if err != nil {
			return nil, indy.CommonInvalidStructure
		}
	}

	if spec.CryptoType != "" && spec.CryptoType != cryptoTypeEd25519 {
		return nil, indy.UnknownCryptoTypeError
	}

	var private ed25519.PrivateKey
	switch len(spec.Seed) {
	case 0:
		_, generated, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, indy.CommonIOError
		}
		private = generated
	case ed25519.SeedSize:
		private = ed25519.NewKeyFromSeed([]byte(spec.Seed))
	default:
		return nil, indy.CommonInvalidStructure
	}

	public := private.Public().(ed25519.PublicKey)
	return &keyPair{
		verkey:  base58.Encode(public),
		did:     base58.Encode(public[:didLength]),
		private: private,
	}, indy.Success
}

// boxSecret is the x25519 private key matching the ed25519 key.
func (k *keyPair) boxSecret() *[32]byte {
	h := sha512.Sum512(k.private.Seed())
	secret := new([32]byte)
	copy(secret[:], h[:32])
	secret[0] &= 248
	secret[31] &= 127
	secret[31] |= 64
	return secret
}

// parseVerkey decodes a base58 ed25519 public key.
func parseVerkey(verkey string) (ed25519.PublicKey, bool) {
	public := base58.Decode(verkey)
	if len(public) != ed25519.PublicKeySize {
		return nil, false
	}
	return ed25519.PublicKey(public), true
}

// boxPublic converts a verkey into the x25519 public key of the same pair.
func boxPublic(verkey string) (*[32]byte, bool) {
	public, ok := parseVerkey(verkey)
	if !ok {
		return nil, false
	}
	point, err := new(edwards25519.Point).SetBytes(public)
	if err != nil {
		return nil, false
	}
	result := new([32]byte)
	copy(result[:], point.BytesMontgomery())
	return result, true
}

// findKey must be called inside lockBlock.
func (w *wallet) findKey(verkey string) (*keyPair, indy.ErrorCode) {
	k, found := w.keys.Get(&keyPair{verkey: verkey})
	if !found {
		return nil, indy.WalletItemNotFound
	}
	return k, indy.Success
}

func (s *Service) storeKey(walletHandle indy.WalletHandle, specJSON string) (*keyPair, indy.ErrorCode) {
	k, code := newKeyPair(specJSON)
	if code != indy.Success {
		return nil, code
	}

	code = s.withWallet(walletHandle, func(w *wallet) indy.ErrorCode {
		if w.keys.Has(k) {
			return indy.WalletItemAlreadyExists
		}
		w.keys.ReplaceOrInsert(k)
		return indy.Success
	})
	if code != indy.Success {
		return nil, code
	}
	return k, indy.Success
}

func (s *Service) CreateKey(handle indy.Handle, walletHandle indy.WalletHandle, keyJSON string, cb indy.CallbackEcString) indy.ErrorCode {
	if cb == nil {
		return indy.InvalidParam(4)
	}

	return s.stringResult("create key", handle, cb, func() (indy.ErrorCode, string) {
		k, code := s.storeKey(walletHandle, keyJSON)
		if code != indy.Success {
			return code, ""
		}
		return indy.Success, k.verkey
	})
}

func (s *Service) CreateAndStoreMyDid(handle indy.Handle, walletHandle indy.WalletHandle, didJSON string, cb indy.CallbackEcStringString) indy.ErrorCode {
	if cb == nil {
		return indy.InvalidParam(4)
	}

	return s.stringPairResult("create did", handle, cb, func() (indy.ErrorCode, string, string) {
		k, code := s.storeKey(walletHandle, didJSON)
		if code != indy.Success {
			return code, "", ""
		}
		return indy.Success, k.did, k.verkey
	})
}

func (s *Service) SetKeyMetadata(handle indy.Handle, walletHandle indy.WalletHandle, verkey, metadata string, cb indy.CallbackEc) indy.ErrorCode {
	switch {
	case verkey == "":
		return indy.InvalidParam(3)
	case cb == nil:
		return indy.InvalidParam(5)
	}

	return s.statusResult("set key metadata", handle, cb, func() indy.ErrorCode {
		return s.withWallet(walletHandle, func(w *wallet) indy.ErrorCode {
			k, code := w.findKey(verkey)
			if code != indy.Success {
				return code
			}
			k.metadata = metadata
			return indy.Success
		})
	})
}

func (s *Service) GetKeyMetadata(handle indy.Handle, walletHandle indy.WalletHandle, verkey string, cb indy.CallbackEcString) indy.ErrorCode {
	switch {
	case verkey == "":
		return indy.InvalidParam(3)
	case cb == nil:
		return indy.InvalidParam(4)
	}

	return s.stringResult("get key metadata", handle, cb, func() (indy.ErrorCode, string) {
		metadata := ""
		code := s.withWallet(walletHandle, func(w *wallet) indy.ErrorCode {
			k, code := w.findKey(verkey)
			if code != indy.Success {
				return code
			}
			metadata = k.metadata
			return indy.Success
		})
		return code, metadata
	})
}

// ListMyKeys completes with a JSON array of {verkey, metadata} ordered by
// verkey.
func (s *Service) ListMyKeys(handle indy.Handle, walletHandle indy.WalletHandle, cb indy.CallbackEcString) indy.ErrorCode {
	if cb == nil {
		return indy.InvalidParam(3)
	}

	return s.stringResult("list keys", handle, cb, func() (indy.ErrorCode, string) {
		items := []keyListItem{}
		code := s.withWallet(walletHandle, func(w *wallet) indy.ErrorCode {
			w.keys.Ascend(func(k *keyPair) bool {
				items = append(items, keyListItem{
					Verkey:   k.verkey,
					Metadata: k.metadata,
				})
				return true
			})
			return indy.Success
		})
		if code != indy.Success {
			return code, ""
		}

		data, err := json.Marshal(items)
		if err != nil {
			return indy.CommonInvalidStructure, ""
		}
		return indy.Success, string(data)
	})
}
