package crypto

import (
	"errors"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/fulldump/biff"

	"github.com/fulldump/indyctl/callbacks"
	"github.com/fulldump/indyctl/indy"
	"github.com/fulldump/indyctl/inproc"
	"github.com/fulldump/indyctl/wallet"
)

const (
	trusteeSeed   = "000000000000000000000000Trustee1"
	trusteeDid    = "V4SGRU86Z58d6TV7PBUe6f"
	trusteeVerkey = "GJ1SzoWzavQYfNL9XkaJdrQejfztN4XqdsiV4ct3LXKL"
)

type fixture struct {
	native   *inproc.Service
	registry *callbacks.Registry
	crypto   *Crypto
	wallet   indy.WalletHandle
}

func newFixture() *fixture {
	native := inproc.NewService(&inproc.Config{Workers: 4})
	go native.Start()

	registry := callbacks.NewRegistry()

	wallets := wallet.New(registry, native)
	biff.AssertNil(wallets.Create("test", "secret"))
	session, err := wallets.Open("test", "secret")
	biff.AssertNil(err)

	return &fixture{
		native:   native,
		registry: registry,
		crypto:   New(registry, native, WithTimeout(5*time.Second)),
		wallet:   session.Handle,
	}
}

func codeOf(err error) indy.ErrorCode {
	indyErr := &indy.Error{}
	if errors.As(err, &indyErr) {
		return indyErr.Code
	}
	return indy.Success
}

func TestComposeKey(t *testing.T) {

	did := "Th7MpTaRZVRYnPiabds81Y"
	ver := "~7TYfekw4GUagBnBVCqPjiC"

	full, err := ComposeKey(did, ver)
	biff.AssertNil(err)
	biff.AssertEqual(full, "FYmoFw55GeQH7SRFa37dkx1d2dZ3zUF8ckg7wmL7ofN4")

	didBytes := base58.Decode(did)
	verBytes := base58.Decode(ver[1:])
	decoded := base58.Decode(full)
	biff.AssertEqual(len(decoded), len(didBytes)+len(verBytes))
	biff.AssertEqual(decoded[:len(didBytes)], didBytes)
	biff.AssertEqual(decoded[len(didBytes):], verBytes)

	t.Run("Without sigil", func(t *testing.T) {
		same, err := ComposeKey(did, ver[1:])
		biff.AssertNil(err)
		biff.AssertEqual(same, full)
	})

	t.Run("Invalid base58", func(t *testing.T) {
		_, err := ComposeKey("0OIl", ver)
		biff.AssertTrue(errors.Is(err, callbacks.ErrInvalidBase58))

		_, err = ComposeKey(did, "~not base58!")
		biff.AssertTrue(errors.Is(err, callbacks.ErrInvalidBase58))
	})
}

func TestAbbreviateKey(t *testing.T) {

	abbreviated := AbbreviateKey(trusteeDid, trusteeVerkey)
	biff.AssertEqual(abbreviated, "~CoRER63DVYnWZtK8uAzNbx")

	full, err := ComposeKey(trusteeDid, abbreviated)
	biff.AssertNil(err)
	biff.AssertEqual(full, trusteeVerkey)

	// not a prefix
	biff.AssertEqual(AbbreviateKey("Th7MpTaRZVRYnPiabds81Y", trusteeVerkey), trusteeVerkey)
}

func TestCrypto_AnonRoundTrip(t *testing.T) {

	f := newFixture()
	defer f.native.Stop()

	verkey, err := f.crypto.CreateKey(f.wallet, "", "")
	biff.AssertNil(err)

	messages := []string{
		"hello world",
		"",
		"ñandú ✓ 日本語",
		"before\x00after",
		"\x01\x00\x7f",
	}
	for _, message := range messages {
		encrypted, err := f.crypto.AnonEncrypt(verkey, message)
		biff.AssertNil(err)
		biff.AssertNotEqual(encrypted, "")

		decrypted, err := f.crypto.AnonDecrypt(f.wallet, verkey, encrypted)
		biff.AssertNil(err)
		biff.AssertEqual(decrypted, message)
	}

	biff.AssertEqual(f.registry.Len(), 0)
}

func TestCrypto_DHRoundTrip(t *testing.T) {

	f := newFixture()
	defer f.native.Stop()

	alice, err := f.crypto.CreateKey(f.wallet, "", "")
	biff.AssertNil(err)
	bob, err := f.crypto.CreateKey(f.wallet, "", "")
	biff.AssertNil(err)

	for _, message := range []string{"hello bob", "", "ünïcödé ✓"} {
		encrypted, err := f.crypto.EncryptDH(f.wallet, alice, bob, message)
		biff.AssertNil(err)

		decrypted, remoteKey, err := f.crypto.DecryptDH(f.wallet, bob, encrypted)
		biff.AssertNil(err)
		biff.AssertEqual(decrypted, message)
		biff.AssertEqual(remoteKey, alice)
	}

	t.Run("Sender opens its own message", func(t *testing.T) {
		encrypted, err := f.crypto.EncryptDH(f.wallet, alice, bob, "for bob")
		biff.AssertNil(err)

		decrypted, remoteKey, err := f.crypto.DecryptDH(f.wallet, alice, encrypted)
		biff.AssertNil(err)
		biff.AssertEqual(decrypted, "for bob")
		biff.AssertEqual(remoteKey, bob)
	})

	t.Run("Third key cannot open", func(t *testing.T) {
		carol, err := f.crypto.CreateKey(f.wallet, "", "")
		biff.AssertNil(err)

		encrypted, err := f.crypto.EncryptDH(f.wallet, alice, bob, "for bob")
		biff.AssertNil(err)

		_, _, err = f.crypto.DecryptDH(f.wallet, carol, encrypted)
		biff.AssertEqual(codeOf(err), indy.CommonInvalidStructure)
	})

	t.Run("Tampered ciphertext", func(t *testing.T) {
		encrypted, err := f.crypto.EncryptDH(f.wallet, alice, bob, "for bob")
		biff.AssertNil(err)

		data := base58.Decode(encrypted)
		data[len(data)-1] ^= 0xff

		_, _, err = f.crypto.DecryptDH(f.wallet, bob, base58.Encode(data))
		biff.AssertEqual(codeOf(err), indy.CommonInvalidStructure)
	})

	biff.AssertEqual(f.registry.Len(), 0)
}

func TestCrypto_Failures(t *testing.T) {
	biff.Alternative("Failures", func(a *biff.A) {

		f := newFixture()
		defer f.native.Stop()

		a.Alternative("Invalid base58 is rejected before the native call", func(a *biff.A) {
			_, err := f.crypto.AnonDecrypt(f.wallet, trusteeVerkey, "not base58 0OIl")
			biff.AssertTrue(errors.Is(err, callbacks.ErrInvalidBase58))

			_, _, err = f.crypto.DecryptDH(f.wallet, trusteeVerkey, "0")
			biff.AssertTrue(errors.Is(err, callbacks.ErrInvalidBase58))
		})

		a.Alternative("Rejected call leaves no pending entry", func(a *biff.A) {
			_, err := f.crypto.AnonEncrypt("", "hello")
			biff.AssertEqual(codeOf(err), indy.CommonInvalidParam2)
			biff.AssertEqual(f.registry.Len(), 0)
		})

		a.Alternative("Unknown key", func(a *biff.A) {
			encrypted, err := f.crypto.AnonEncrypt(trusteeVerkey, "hello")
			biff.AssertNil(err)

			_, err = f.crypto.AnonDecrypt(f.wallet, trusteeVerkey, encrypted)
			biff.AssertEqual(codeOf(err), indy.WalletItemNotFound)
		})

		a.Alternative("Garbage ciphertext", func(a *biff.A) {
			verkey, err := f.crypto.CreateKey(f.wallet, "", "")
			biff.AssertNil(err)

			_, err = f.crypto.AnonDecrypt(f.wallet, verkey, base58.Encode([]byte("definitely not a sealed box at all")))
			biff.AssertEqual(codeOf(err), indy.CommonInvalidStructure)
		})

		biff.AssertEqual(f.registry.Len(), 0)
	})
}

func TestCrypto_Keys(t *testing.T) {

	f := newFixture()
	defer f.native.Stop()

	did, verkey, err := f.crypto.CreateDid(f.wallet, trusteeSeed)
	biff.AssertNil(err)
	biff.AssertEqual(did, trusteeDid)
	biff.AssertEqual(verkey, trusteeVerkey)

	composed, err := ComposeKey(did, AbbreviateKey(did, verkey))
	biff.AssertNil(err)
	biff.AssertEqual(composed, verkey)

	alice, err := f.crypto.CreateKey(f.wallet, "", "alice")
	biff.AssertNil(err)

	metadata, err := f.crypto.GetKeyMetadata(f.wallet, alice)
	biff.AssertNil(err)
	biff.AssertEqual(metadata, "alice")

	biff.AssertNil(f.crypto.SetKeyMetadata(f.wallet, verkey, "trustee"))

	t.Run("List all", func(t *testing.T) {
		keys, err := f.crypto.ListKeys(f.wallet, nil)
		biff.AssertNil(err)
		biff.AssertEqual(len(keys), 2)
	})

	t.Run("List filtered", func(t *testing.T) {
		keys, err := f.crypto.ListKeys(f.wallet, map[string]any{"metadata": "alice"})
		biff.AssertNil(err)
		biff.AssertEqual(keys, []KeyInfo{{Verkey: alice, Metadata: "alice"}})
	})

	t.Run("Sign and verify", func(t *testing.T) {
		signature, err := f.crypto.Sign(f.wallet, verkey, "message")
		biff.AssertNil(err)

		valid, err := f.crypto.Verify(verkey, "message", signature)
		biff.AssertNil(err)
		biff.AssertTrue(valid)

		valid, err = f.crypto.Verify(verkey, "tampered", signature)
		biff.AssertNil(err)
		biff.AssertFalse(valid)

		valid, err = f.crypto.Verify(alice, "message", signature)
		biff.AssertNil(err)
		biff.AssertFalse(valid)
	})
}
