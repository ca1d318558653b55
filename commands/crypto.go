package commands

import (
	"fmt"

	"github.com/go-json-experiment/json"

	"github.com/fulldump/indyctl/crypto"
)

func CryptoGroup() *Group {
	return NewGroup("crypto", "Crypto management commands",
		&Command{
			Name:        "comp",
			Description: "Compose the key from its two base58 parts",
			Params: []Param{
				{Name: "did", Description: "First part", Required: true},
				{Name: "ver", Description: "Second part", Required: true},
			},
			Examples: []string{"crypto comp did=Th7MpTaRZVRYnPiabds81Y ver=~7TYfekw4GUagBnBVCqPjiC"},
			Run:      composeKey,
		},
		&Command{
			Name:        "enc",
			Description: "Encrypt anonymously",
			Params: []Param{
				{Name: "key", Description: "Validation key to encrypt with", Required: true},
				{Name: "msg", Description: "Message text", Required: true},
			},
			Examples: []string{`crypto enc key=GJ1SzoWzavQYfNL9XkaJdrQejfztN4XqdsiV4ct3LXKL msg="hello world"`},
			Run:      anonEncrypt,
		},
		&Command{
			Name:        "dec",
			Description: "Decrypt anonymously",
			Params: []Param{
				{Name: "key", Description: "The validation key to fetch the secret", Required: true},
				{Name: "msg", Description: "Cipher text", Required: true},
			},
			Examples: []string{"crypto dec key=GJ1SzoWzavQYfNL9XkaJdrQejfztN4XqdsiV4ct3LXKL msg=..."},
			Run:      anonDecrypt,
		},
		&Command{
			Name:        "encdh",
			Description: "Encrypt using DH common secret algorithm",
			Params: []Param{
				{Name: "mykey", Description: "Local validation key to use", Required: true},
				{Name: "theirkey", Description: "Remote validation key to use", Required: true},
				{Name: "msg", Description: "Message text", Required: true},
			},
			Examples: []string{`crypto encdh mykey=...fullkey... theirkey=...fullkey... msg="hello"`},
			Run:      encryptDH,
		},
		&Command{
			Name:        "decdh",
			Description: "Decrypt using DH common secret algorithm",
			Params: []Param{
				{Name: "key", Description: "Local validation key to use", Required: true},
				{Name: "msg", Description: "Cipher text", Required: true},
			},
			Examples: []string{"crypto decdh key=...fullkey... msg=...cipher..."},
			Run:      decryptDH,
		},
		&Command{
			Name:        "newkey",
			Description: "Create a key in the opened wallet",
			Params: []Param{
				{Name: "seed", Description: "32 characters seed, random if missing"},
				{Name: "metadata", Description: "Metadata stored with the key"},
			},
			Examples: []string{
				"crypto newkey",
				"crypto newkey seed=000000000000000000000000Trustee1 metadata=trustee",
			},
			Run: newKey,
		},
		&Command{
			Name:        "newdid",
			Description: "Create a did and its key in the opened wallet",
			Params: []Param{
				{Name: "seed", Description: "32 characters seed, random if missing"},
			},
			Examples: []string{"crypto newdid seed=000000000000000000000000Trustee1"},
			Run:      newDid,
		},
		&Command{
			Name:        "setmeta",
			Description: "Store metadata for a key",
			Params: []Param{
				{Name: "key", Description: "Verkey", Required: true},
				{Name: "metadata", Description: "Metadata text", Required: true},
			},
			Examples: []string{`crypto setmeta key=...fullkey... metadata="alice's key"`},
			Run:      setMetadata,
		},
		&Command{
			Name:        "getmeta",
			Description: "Print the metadata of a key",
			Params: []Param{
				{Name: "key", Description: "Verkey", Required: true},
			},
			Examples: []string{"crypto getmeta key=...fullkey..."},
			Run:      getMetadata,
		},
		&Command{
			Name:        "keys",
			Description: "List the keys of the opened wallet",
			Params: []Param{
				{Name: "filter", Description: "JSON filter on verkey and metadata"},
			},
			Examples: []string{
				"crypto keys",
				`crypto keys filter="{\"metadata\":\"trustee\"}"`,
			},
			Run: listKeys,
		},
		&Command{
			Name:        "sign",
			Description: "Sign a message",
			Params: []Param{
				{Name: "key", Description: "Signer verkey", Required: true},
				{Name: "msg", Description: "Message text", Required: true},
			},
			Examples: []string{`crypto sign key=...fullkey... msg="hello"`},
			Run:      sign,
		},
		&Command{
			Name:        "verify",
			Description: "Verify a signature",
			Params: []Param{
				{Name: "key", Description: "Signer verkey", Required: true},
				{Name: "msg", Description: "Message text", Required: true},
				{Name: "signature", Description: "Base58 signature", Required: true},
			},
			Examples: []string{`crypto verify key=...fullkey... msg="hello" signature=...`},
			Run:      verify,
		},
	)
}

func composeKey(ctx *Context, params Params) error {
	did := params["did"]
	ver := params["ver"]

	fullKey, err := crypto.ComposeKey(did, ver)
	if err != nil {
		return err
	}

	ctx.Out.Success("\n%s\n", fullKey)
	return nil
}

func anonEncrypt(ctx *Context, params Params) error {
	key := params["key"]
	msg := params["msg"]

	encrypted, err := ctx.Crypto.AnonEncrypt(key, msg)
	if err != nil {
		return err
	}

	ctx.Out.Success("message encrypted \n\n%s\n", encrypted)
	return nil
}

func anonDecrypt(ctx *Context, params Params) error {
	key := params["key"]
	msg := params["msg"]

	session, err := ctx.Session()
	if err != nil {
		return err
	}

	decrypted, err := ctx.Crypto.AnonDecrypt(session, key, msg)
	if err != nil {
		return err
	}

	ctx.Out.Success("message decrypted \n\n%s\n", decrypted)
	return nil
}

func encryptDH(ctx *Context, params Params) error {
	myKey := params["mykey"]
	theirKey := params["theirkey"]
	msg := params["msg"]

	session, err := ctx.Session()
	if err != nil {
		return err
	}

	encrypted, err := ctx.Crypto.EncryptDH(session, myKey, theirKey, msg)
	if err != nil {
		return err
	}

	ctx.Out.Success("message encrypted \n\n%s\n", encrypted)
	return nil
}

func decryptDH(ctx *Context, params Params) error {
	key := params["key"]
	msg := params["msg"]

	session, err := ctx.Session()
	if err != nil {
		return err
	}

	decrypted, theirKey, err := ctx.Crypto.DecryptDH(session, key, msg)
	if err != nil {
		return err
	}

	ctx.Out.Success("message decrypted \n\n%s\nremote key used %s\n", decrypted, theirKey)
	return nil
}

func newKey(ctx *Context, params Params) error {
	seed := params["seed"]
	metadata := params["metadata"]

	session, err := ctx.Session()
	if err != nil {
		return err
	}

	verkey, err := ctx.Crypto.CreateKey(session, seed, metadata)
	if err != nil {
		return err
	}

	ctx.Out.Success("Key \"%s\" has been created", verkey)
	return nil
}

func newDid(ctx *Context, params Params) error {
	seed := params["seed"]

	session, err := ctx.Session()
	if err != nil {
		return err
	}

	did, verkey, err := ctx.Crypto.CreateDid(session, seed)
	if err != nil {
		return err
	}

	ctx.Out.Success("Did \"%s\" has been created with \"%s\" verkey", did, crypto.AbbreviateKey(did, verkey))
	return nil
}

func setMetadata(ctx *Context, params Params) error {
	key := params["key"]
	metadata := params["metadata"]

	session, err := ctx.Session()
	if err != nil {
		return err
	}

	err = ctx.Crypto.SetKeyMetadata(session, key, metadata)
	if err != nil {
		return err
	}

	ctx.Out.Success("Metadata has been saved for key \"%s\"", key)
	return nil
}

func getMetadata(ctx *Context, params Params) error {
	key := params["key"]

	session, err := ctx.Session()
	if err != nil {
		return err
	}

	metadata, err := ctx.Crypto.GetKeyMetadata(session, key)
	if err != nil {
		return err
	}

	if metadata == "" {
		ctx.Out.Warning("Key \"%s\" has no metadata", key)
		return nil
	}
	ctx.Out.Success("Metadata:\n%s", metadata)
	return nil
}

func listKeys(ctx *Context, params Params) error {
	filter := map[string]any{}
	if raw, ok := params.Get("filter"); ok && raw != "" {
		err := json.Unmarshal([]byte(raw), &filter)
		if err != nil {
			return fmt.Errorf("filter: %w", err)
		}
	}

	session, err := ctx.Session()
	if err != nil {
		return err
	}

	keys, err := ctx.Crypto.ListKeys(session, filter)
	if err != nil {
		return err
	}

	if len(keys) == 0 {
		ctx.Out.Warning("There are no keys")
		return nil
	}

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{key.Verkey, key.Metadata})
	}
	ctx.Out.Table([]string{"Verkey", "Metadata"}, rows)
	return nil
}

func sign(ctx *Context, params Params) error {
	key := params["key"]
	msg := params["msg"]

	session, err := ctx.Session()
	if err != nil {
		return err
	}

	signature, err := ctx.Crypto.Sign(session, key, msg)
	if err != nil {
		return err
	}

	ctx.Out.Success("message signed \n\n%s\n", signature)
	return nil
}

func verify(ctx *Context, params Params) error {
	key := params["key"]
	msg := params["msg"]
	signature := params["signature"]

	valid, err := ctx.Crypto.Verify(key, msg, signature)
	if err != nil {
		return err
	}

	if !valid {
		ctx.Out.Warning("Signature is not valid")
		return nil
	}
	ctx.Out.Success("Signature is valid")
	return nil
}
