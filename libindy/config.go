package libindy

import (
	"github.com/go-json-experiment/json"
)

type walletConfig struct {
	ID string `json:"id"`
}

type walletCredentials struct {
	Key string `json:"key"`
}

// walletJSON builds the config and credentials documents of a wallet.
func walletJSON(name, key string) (config, credentials string, err error) {
	c, err := json.Marshal(walletConfig{ID: name})
	if err != nil {
		return "", "", err
	}
	k, err := json.Marshal(walletCredentials{Key: key})
	if err != nil {
		return "", "", err
	}
	return string(c), string(k), nil
}
