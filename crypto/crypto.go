// Package crypto exposes blocking cryptographic operations over the native
// asynchronous entry points.
package crypto

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/btcsuite/btcd/btcutil/base58"

	"github.com/fulldump/indyctl/callbacks"
	"github.com/fulldump/indyctl/indy"
)

// Native is the subset of the native service used by Crypto.
type Native interface {
	indy.KeysAPI
	indy.CryptoAPI
}

type Crypto struct {
	registry *callbacks.Registry
	native   Native
	timeout  time.Duration
	logger   *slog.Logger
}

type Option func(c *Crypto)

// WithTimeout bounds every wait for a native completion. Zero waits forever.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Crypto) {
		c.timeout = timeout
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Crypto) {
		c.logger = logger
	}
}

func New(registry *callbacks.Registry, native Native, options ...Option) *Crypto {
	c := &Crypto{
		registry: registry,
		native:   native,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// resolve waits for the completion of an issued call and names the operation
// in the returned error.
func resolve[T any](c *Crypto, operation string, receiver *callbacks.Receiver[T], accepted indy.ErrorCode) (T, error) {
	c.logger.Debug("native call issued",
		"operation", operation,
		"handle", receiver.Handle(),
		"accepted", accepted.String())

	value, err := receiver.Resolve(accepted, c.timeout)
	if err != nil {
		c.logger.Debug("native call failed",
			"operation", operation,
			"handle", receiver.Handle(),
			"error", err)
		return value, fmt.Errorf("%s: %w", operation, err)
	}

	c.logger.Debug("native call completed",
		"operation", operation,
		"handle", receiver.Handle())
	return value, nil
}

// AnonEncrypt encrypts message to theirVk without any sender key material.
// The ciphertext is returned base58 encoded.
func (c *Crypto) AnonEncrypt(theirVk, message string) (string, error) {
	receiver, handle, cb := c.registry.Base58Message()
	accepted := c.native.CryptoAnonCrypt(handle, theirVk, []byte(message), cb)
	return resolve(c, "anon encrypt", receiver, accepted)
}

// AnonDecrypt opens a base58 encoded anonymous ciphertext with the private
// key of myVk held by wallet.
func (c *Crypto) AnonDecrypt(wallet indy.WalletHandle, myVk, encrypted string) (string, error) {
	data, err := decodeBase58(encrypted)
	if err != nil {
		return "", fmt.Errorf("anon decrypt: encrypted message: %w", err)
	}

	receiver, handle, cb := c.registry.TextMessage()
	accepted := c.native.CryptoAnonDecrypt(handle, wallet, myVk, data, cb)
	return resolve(c, "anon decrypt", receiver, accepted)
}

// EncryptDH encrypts message with the secret shared by myVk and theirVk. The
// ciphertext is returned base58 encoded.
func (c *Crypto) EncryptDH(wallet indy.WalletHandle, myVk, theirVk, message string) (string, error) {
	receiver, handle, cb := c.registry.Base58Message()
	accepted := c.native.CryptoAuthCrypt(handle, wallet, myVk, theirVk, []byte(message), cb)
	return resolve(c, "dh encrypt", receiver, accepted)
}

// DecryptDH opens a ciphertext produced by EncryptDH and reports the sender
// key the native library recovered.
func (c *Crypto) DecryptDH(wallet indy.WalletHandle, myVk, encrypted string) (message, remoteKey string, err error) {
	data, err := decodeBase58(encrypted)
	if err != nil {
		return "", "", fmt.Errorf("dh decrypt: encrypted message: %w", err)
	}

	receiver, handle, cb := c.registry.KeyedTextMessage()
	accepted := c.native.CryptoAuthDecrypt(handle, wallet, myVk, data, cb)
	result, err := resolve(c, "dh decrypt", receiver, accepted)
	if err != nil {
		return "", "", err
	}
	return result.Message, result.Key, nil
}

// Sign signs message with the key of signerVk. The signature is returned
// base58 encoded.
func (c *Crypto) Sign(wallet indy.WalletHandle, signerVk, message string) (string, error) {
	receiver, handle, cb := c.registry.Base58Message()
	accepted := c.native.CryptoSign(handle, wallet, signerVk, []byte(message), cb)
	return resolve(c, "sign", receiver, accepted)
}

func (c *Crypto) Verify(signerVk, message, signature string) (bool, error) {
	data, err := decodeBase58(signature)
	if err != nil {
		return false, fmt.Errorf("verify: signature: %w", err)
	}

	receiver, handle, cb := c.registry.Int32()
	accepted := c.native.CryptoVerify(handle, signerVk, []byte(message), data, cb)
	valid, err := resolve(c, "verify", receiver, accepted)
	if err != nil {
		return false, err
	}
	return valid != 0, nil
}

// decodeBase58 rejects text outside the base58 alphabet. The decoder reports
// that case as an empty result, which only the empty text may produce.
func decodeBase58(s string) ([]byte, error) {
	data := base58.Decode(s)
	if len(data) == 0 && s != "" {
		return nil, fmt.Errorf("%q: %w", s, callbacks.ErrInvalidBase58)
	}
	return data, nil
}
