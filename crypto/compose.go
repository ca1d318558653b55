package crypto

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
)

// AbbreviationMark prefixes the version part of an abbreviated verkey.
const AbbreviationMark = "~"

// ComposeKey rebuilds a full verkey from a did and the version part of a key,
// abbreviated or not: base58(decode(did) ++ decode(version)).
func ComposeKey(did, version string) (string, error) {
	didBytes, err := decodeBase58(did)
	if err != nil {
		return "", fmt.Errorf("compose key: did: %w", err)
	}

	versionBytes, err := decodeBase58(strings.TrimPrefix(version, AbbreviationMark))
	if err != nil {
		return "", fmt.Errorf("compose key: verkey: %w", err)
	}

	full := make([]byte, 0, len(didBytes)+len(versionBytes))
	full = append(full, didBytes...)
	full = append(full, versionBytes...)
	return base58.Encode(full), nil
}

// AbbreviateKey returns "~" plus the part of verkey that follows did, when did
// is a strict prefix of verkey in decoded form. Any other verkey is returned
// unchanged.
func AbbreviateKey(did, verkey string) string {
	didBytes, err := decodeBase58(did)
	if err != nil || len(didBytes) == 0 {
		return verkey
	}
	verkeyBytes, err := decodeBase58(verkey)
	if err != nil {
		return verkey
	}
	if len(didBytes) >= len(verkeyBytes) || !bytes.HasPrefix(verkeyBytes, didBytes) {
		return verkey
	}
	return AbbreviationMark + base58.Encode(verkeyBytes[len(didBytes):])
}
