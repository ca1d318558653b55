package crypto

import (
	"fmt"

	"github.com/SierraSoftworks/connor"
	"github.com/go-json-experiment/json"

	"github.com/fulldump/indyctl/indy"
	"github.com/fulldump/indyctl/utils"
)

// KeySpec is the key_json accepted by the key creation entry points.
type KeySpec struct {
	Seed       string `json:"seed,omitempty"`
	CryptoType string `json:"crypto_type,omitempty"`
}

// KeyInfo is one entry of the key list returned by the native library.
type KeyInfo struct {
	Verkey   string `json:"verkey"`
	Metadata string `json:"metadata,omitempty"`
}

// CreateKey creates a key pair in wallet and returns its verkey. When metadata
// is not empty it is stored along with the key.
func (c *Crypto) CreateKey(wallet indy.WalletHandle, seed, metadata string) (string, error) {
	keyJSON, err := json.Marshal(KeySpec{Seed: seed})
	if err != nil {
		return "", fmt.Errorf("create key: %w", err)
	}

	receiver, handle, cb := c.registry.CString()
	accepted := c.native.CreateKey(handle, wallet, string(keyJSON), cb)
	verkey, err := resolve(c, "create key", receiver, accepted)
	if err != nil {
		return "", err
	}

	if metadata != "" {
		err = c.SetKeyMetadata(wallet, verkey, metadata)
		if err != nil {
			return verkey, err
		}
	}

	return verkey, nil
}

// CreateDid creates a key pair in wallet and returns the did derived from it
// together with the verkey.
func (c *Crypto) CreateDid(wallet indy.WalletHandle, seed string) (did, verkey string, err error) {
	didJSON, err := json.Marshal(KeySpec{Seed: seed})
	if err != nil {
		return "", "", fmt.Errorf("create did: %w", err)
	}

	receiver, handle, cb := c.registry.CStringPair()
	accepted := c.native.CreateAndStoreMyDid(handle, wallet, string(didJSON), cb)
	pair, err := resolve(c, "create did", receiver, accepted)
	if err != nil {
		return "", "", err
	}
	return pair.First, pair.Second, nil
}

func (c *Crypto) SetKeyMetadata(wallet indy.WalletHandle, verkey, metadata string) error {
	receiver, handle, cb := c.registry.Status()
	accepted := c.native.SetKeyMetadata(handle, wallet, verkey, metadata, cb)
	_, err := resolve(c, "set key metadata", receiver, accepted)
	return err
}

func (c *Crypto) GetKeyMetadata(wallet indy.WalletHandle, verkey string) (string, error) {
	receiver, handle, cb := c.registry.CString()
	accepted := c.native.GetKeyMetadata(handle, wallet, verkey, cb)
	return resolve(c, "get key metadata", receiver, accepted)
}

// ListKeys returns the keys stored in wallet. A non empty filter keeps only
// the keys whose {verkey, metadata} document matches it, for example
// {"metadata": {"$contains": "alice"}}.
func (c *Crypto) ListKeys(wallet indy.WalletHandle, filter map[string]any) ([]KeyInfo, error) {
	receiver, handle, cb := c.registry.CString()
	accepted := c.native.ListMyKeys(handle, wallet, cb)
	listJSON, err := resolve(c, "list keys", receiver, accepted)
	if err != nil {
		return nil, err
	}

	keys := []KeyInfo{}
	err = json.Unmarshal([]byte(listJSON), &keys)
	if err != nil {
		return nil, fmt.Errorf("list keys: decode: %w", err)
	}

	if len(filter) == 0 {
		return keys, nil
	}

	result := []KeyInfo{}
	for _, key := range keys {
		document := map[string]any{}
		err := utils.Remarshal(key, &document)
		if err != nil {
			return nil, fmt.Errorf("list keys: %w", err)
		}
		match, err := connor.Match(filter, document)
		if err != nil {
			return nil, fmt.Errorf("list keys: match: %w", err)
		}
		if match {
			result = append(result, key)
		}
	}

	return result, nil
}
