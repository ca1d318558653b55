//go:build libindy

package libindy

/*
#cgo LDFLAGS: -lindy
#include <stdbool.h>
#include <stdint.h>
#include <stdlib.h>

typedef int32_t indy_handle_t;
typedef int32_t indy_error_t;

extern indy_error_t indy_create_wallet(indy_handle_t, char*, char*, void (*)(indy_handle_t, indy_error_t));
extern indy_error_t indy_open_wallet(indy_handle_t, char*, char*, void (*)(indy_handle_t, indy_error_t, indy_handle_t));
extern indy_error_t indy_close_wallet(indy_handle_t, indy_handle_t, void (*)(indy_handle_t, indy_error_t));

extern indy_error_t indy_create_key(indy_handle_t, indy_handle_t, char*, void (*)(indy_handle_t, indy_error_t, char*));
extern indy_error_t indy_create_and_store_my_did(indy_handle_t, indy_handle_t, char*, void (*)(indy_handle_t, indy_error_t, char*, char*));
extern indy_error_t indy_set_key_metadata(indy_handle_t, indy_handle_t, char*, char*, void (*)(indy_handle_t, indy_error_t));
extern indy_error_t indy_get_key_metadata(indy_handle_t, indy_handle_t, char*, void (*)(indy_handle_t, indy_error_t, char*));
extern indy_error_t indy_list_my_dids_with_meta(indy_handle_t, indy_handle_t, void (*)(indy_handle_t, indy_error_t, char*));

extern indy_error_t indy_crypto_sign(indy_handle_t, indy_handle_t, char*, uint8_t*, uint32_t, void (*)(indy_handle_t, indy_error_t, uint8_t*, uint32_t));
extern indy_error_t indy_crypto_verify(indy_handle_t, char*, uint8_t*, uint32_t, uint8_t*, uint32_t, void (*)(indy_handle_t, indy_error_t, bool));
extern indy_error_t indy_crypto_anon_crypt(indy_handle_t, char*, uint8_t*, uint32_t, void (*)(indy_handle_t, indy_error_t, uint8_t*, uint32_t));
extern indy_error_t indy_crypto_anon_decrypt(indy_handle_t, indy_handle_t, char*, uint8_t*, uint32_t, void (*)(indy_handle_t, indy_error_t, uint8_t*, uint32_t));
extern indy_error_t indy_crypto_auth_crypt(indy_handle_t, indy_handle_t, char*, char*, uint8_t*, uint32_t, void (*)(indy_handle_t, indy_error_t, uint8_t*, uint32_t));
extern indy_error_t indy_crypto_auth_decrypt(indy_handle_t, indy_handle_t, char*, uint8_t*, uint32_t, void (*)(indy_handle_t, indy_error_t, char*, uint8_t*, uint32_t));

extern void goCbEc(indy_handle_t, indy_error_t);
extern void goCbEcHandle(indy_handle_t, indy_error_t, indy_handle_t);
extern void goCbEcBool(indy_handle_t, indy_error_t, bool);
extern void goCbEcString(indy_handle_t, indy_error_t, char*);
extern void goCbEcStringString(indy_handle_t, indy_error_t, char*, char*);
extern void goCbEcMessage(indy_handle_t, indy_error_t, uint8_t*, uint32_t);
extern void goCbEcMessageWithKey(indy_handle_t, indy_error_t, char*, uint8_t*, uint32_t);
*/
import "C"

import (
	"unsafe"

	"github.com/fulldump/indyctl/indy"
)

// table is package level: the exported callbacks below cannot close over
// any state.
var table = newCallTable()

type Library struct{}

// Open binds libindy. The shared library is loaded by the dynamic linker at
// startup, so there is nothing that can fail here.
func Open(options ...Option) (Backend, error) {
	table.configure(options...)
	return &Library{}, nil
}

func (l *Library) Start() error {
	return nil
}

func (l *Library) Stop() error {
	return nil
}

func cString(s string) *C.char {
	return C.CString(s)
}

func free(s *C.char) {
	C.free(unsafe.Pointer(s))
}

// cBytes points at data for the duration of a call. libindy copies its
// inputs before returning.
func cBytes(data []byte) (*C.uint8_t, C.uint32_t) {
	if len(data) == 0 {
		return nil, 0
	}
	return (*C.uint8_t)(unsafe.Pointer(&data[0])), C.uint32_t(len(data))
}

// borrowed wraps a buffer owned by libindy, valid until the callback
// returns.
func borrowed(data *C.uint8_t, length C.uint32_t) []byte {
	if data == nil || length == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(data)), int(length))
}

//export goCbEc
func goCbEc(handle C.indy_handle_t, code C.indy_error_t) {
	if cb, ok := take[indy.CallbackEc](table, indy.Handle(handle)); ok {
		cb(indy.Handle(handle), indy.ErrorCode(code))
	}
}

//export goCbEcHandle
func goCbEcHandle(handle C.indy_handle_t, code C.indy_error_t, value C.indy_handle_t) {
	if cb, ok := take[indy.CallbackEcI32](table, indy.Handle(handle)); ok {
		cb(indy.Handle(handle), indy.ErrorCode(code), int32(value))
	}
}

//export goCbEcBool
func goCbEcBool(handle C.indy_handle_t, code C.indy_error_t, value C.bool) {
	if cb, ok := take[indy.CallbackEcI32](table, indy.Handle(handle)); ok {
		valid := int32(0)
		if value {
			valid = 1
		}
		cb(indy.Handle(handle), indy.ErrorCode(code), valid)
	}
}

//export goCbEcString
func goCbEcString(handle C.indy_handle_t, code C.indy_error_t, value *C.char) {
	if cb, ok := take[indy.CallbackEcString](table, indy.Handle(handle)); ok {
		cb(indy.Handle(handle), indy.ErrorCode(code), goString(value))
	}
}

//export goCbEcStringString
func goCbEcStringString(handle C.indy_handle_t, code C.indy_error_t, first, second *C.char) {
	if cb, ok := take[indy.CallbackEcStringString](table, indy.Handle(handle)); ok {
		cb(indy.Handle(handle), indy.ErrorCode(code), goString(first), goString(second))
	}
}

//export goCbEcMessage
func goCbEcMessage(handle C.indy_handle_t, code C.indy_error_t, data *C.uint8_t, length C.uint32_t) {
	if cb, ok := take[indy.CallbackEcMessage](table, indy.Handle(handle)); ok {
		cb(indy.Handle(handle), indy.ErrorCode(code), borrowed(data, length))
	}
}

//export goCbEcMessageWithKey
func goCbEcMessageWithKey(handle C.indy_handle_t, code C.indy_error_t, key *C.char, data *C.uint8_t, length C.uint32_t) {
	if cb, ok := take[indy.CallbackEcMessageWithKey](table, indy.Handle(handle)); ok {
		cb(indy.Handle(handle), indy.ErrorCode(code), goString(key), borrowed(data, length))
	}
}

func goString(s *C.char) string {
	if s == nil {
		return ""
	}
	return C.GoString(s)
}

func (l *Library) CreateWallet(handle indy.Handle, name, key string, cb indy.CallbackEc) indy.ErrorCode {
	config, credentials, err := walletJSON(name, key)
	if err != nil {
		return indy.CommonInvalidStructure
	}
	cConfig, cCredentials := cString(config), cString(credentials)
	defer free(cConfig)
	defer free(cCredentials)

	return table.call(handle, cb, func() indy.ErrorCode {
		return indy.ErrorCode(C.indy_create_wallet(C.indy_handle_t(handle), cConfig, cCredentials, (*[0]byte)(C.goCbEc)))
	})
}

func (l *Library) OpenWallet(handle indy.Handle, name, key string, cb indy.CallbackEcI32) indy.ErrorCode {
	config, credentials, err := walletJSON(name, key)
	if err != nil {
		return indy.CommonInvalidStructure
	}
	cConfig, cCredentials := cString(config), cString(credentials)
	defer free(cConfig)
	defer free(cCredentials)

	return table.call(handle, cb, func() indy.ErrorCode {
		return indy.ErrorCode(C.indy_open_wallet(C.indy_handle_t(handle), cConfig, cCredentials, (*[0]byte)(C.goCbEcHandle)))
	})
}

func (l *Library) CloseWallet(handle indy.Handle, wallet indy.WalletHandle, cb indy.CallbackEc) indy.ErrorCode {
	return table.call(handle, cb, func() indy.ErrorCode {
		return indy.ErrorCode(C.indy_close_wallet(C.indy_handle_t(handle), C.indy_handle_t(wallet), (*[0]byte)(C.goCbEc)))
	})
}

func (l *Library) CreateKey(handle indy.Handle, wallet indy.WalletHandle, keyJSON string, cb indy.CallbackEcString) indy.ErrorCode {
	cKeyJSON := cString(keyJSON)
	defer free(cKeyJSON)

	return table.call(handle, cb, func() indy.ErrorCode {
		return indy.ErrorCode(C.indy_create_key(C.indy_handle_t(handle), C.indy_handle_t(wallet), cKeyJSON, (*[0]byte)(C.goCbEcString)))
	})
}

func (l *Library) CreateAndStoreMyDid(handle indy.Handle, wallet indy.WalletHandle, didJSON string, cb indy.CallbackEcStringString) indy.ErrorCode {
	cDidJSON := cString(didJSON)
	defer free(cDidJSON)

	return table.call(handle, cb, func() indy.ErrorCode {
		return indy.ErrorCode(C.indy_create_and_store_my_did(C.indy_handle_t(handle), C.indy_handle_t(wallet), cDidJSON, (*[0]byte)(C.goCbEcStringString)))
	})
}

func (l *Library) SetKeyMetadata(handle indy.Handle, wallet indy.WalletHandle, verkey, metadata string, cb indy.CallbackEc) indy.ErrorCode {
	cVerkey, cMetadata := cString(verkey), cString(metadata)
	defer free(cVerkey)
	defer free(cMetadata)

	return table.call(handle, cb, func() indy.ErrorCode {
		return indy.ErrorCode(C.indy_set_key_metadata(C.indy_handle_t(handle), C.indy_handle_t(wallet), cVerkey, cMetadata, (*[0]byte)(C.goCbEc)))
	})
}

func (l *Library) GetKeyMetadata(handle indy.Handle, wallet indy.WalletHandle, verkey string, cb indy.CallbackEcString) indy.ErrorCode {
	cVerkey := cString(verkey)
	defer free(cVerkey)

	return table.call(handle, cb, func() indy.ErrorCode {
		return indy.ErrorCode(C.indy_get_key_metadata(C.indy_handle_t(handle), C.indy_handle_t(wallet), cVerkey, (*[0]byte)(C.goCbEcString)))
	})
}

// ListMyKeys lists the dids of the wallet. Every entry carries the verkey and
// metadata fields read by the key list.
func (l *Library) ListMyKeys(handle indy.Handle, wallet indy.WalletHandle, cb indy.CallbackEcString) indy.ErrorCode {
	return table.call(handle, cb, func() indy.ErrorCode {
		return indy.ErrorCode(C.indy_list_my_dids_with_meta(C.indy_handle_t(handle), C.indy_handle_t(wallet), (*[0]byte)(C.goCbEcString)))
	})
}

func (l *Library) CryptoSign(handle indy.Handle, wallet indy.WalletHandle, signerVk string, msg []byte, cb indy.CallbackEcMessage) indy.ErrorCode {
	cSigner := cString(signerVk)
	defer free(cSigner)
	data, length := cBytes(msg)

	return table.call(handle, cb, func() indy.ErrorCode {
		return indy.ErrorCode(C.indy_crypto_sign(C.indy_handle_t(handle), C.indy_handle_t(wallet), cSigner, data, length, (*[0]byte)(C.goCbEcMessage)))
	})
}

func (l *Library) CryptoVerify(handle indy.Handle, signerVk string, msg, signature []byte, cb indy.CallbackEcI32) indy.ErrorCode {
	cSigner := cString(signerVk)
	defer free(cSigner)
	data, length := cBytes(msg)
	sig, sigLength := cBytes(signature)

	return table.call(handle, cb, func() indy.ErrorCode {
		return indy.ErrorCode(C.indy_crypto_verify(C.indy_handle_t(handle), cSigner, data, length, sig, sigLength, (*[0]byte)(C.goCbEcBool)))
	})
}

func (l *Library) CryptoAnonCrypt(handle indy.Handle, theirVk string, msg []byte, cb indy.CallbackEcMessage) indy.ErrorCode {
	cTheir := cString(theirVk)
	defer free(cTheir)
	data, length := cBytes(msg)

	return table.call(handle, cb, func() indy.ErrorCode {
		return indy.ErrorCode(C.indy_crypto_anon_crypt(C.indy_handle_t(handle), cTheir, data, length, (*[0]byte)(C.goCbEcMessage)))
	})
}

func (l *Library) CryptoAnonDecrypt(handle indy.Handle, wallet indy.WalletHandle, myVk string, encrypted []byte, cb indy.CallbackEcMessage) indy.ErrorCode {
	cMine := cString(myVk)
	defer free(cMine)
	data, length := cBytes(encrypted)

	return table.call(handle, cb, func() indy.ErrorCode {
		return indy.ErrorCode(C.indy_crypto_anon_decrypt(C.indy_handle_t(handle), C.indy_handle_t(wallet), cMine, data, length, (*[0]byte)(C.goCbEcMessage)))
	})
}

func (l *Library) CryptoAuthCrypt(handle indy.Handle, wallet indy.WalletHandle, myVk, theirVk string, msg []byte, cb indy.CallbackEcMessage) indy.ErrorCode {
	cMine, cTheir := cString(myVk), cString(theirVk)
	defer free(cMine)
	defer free(cTheir)
	data, length := cBytes(msg)

	return table.call(handle, cb, func() indy.ErrorCode {
		return indy.ErrorCode(C.indy_crypto_auth_crypt(C.indy_handle_t(handle), C.indy_handle_t(wallet), cMine, cTheir, data, length, (*[0]byte)(C.goCbEcMessage)))
	})
}

func (l *Library) CryptoAuthDecrypt(handle indy.Handle, wallet indy.WalletHandle, myVk string, encrypted []byte, cb indy.CallbackEcMessageWithKey) indy.ErrorCode {
	cMine := cString(myVk)
	defer free(cMine)
	data, length := cBytes(encrypted)

	return table.call(handle, cb, func() indy.ErrorCode {
		return indy.ErrorCode(C.indy_crypto_auth_decrypt(C.indy_handle_t(handle), C.indy_handle_t(wallet), cMine, data, length, (*[0]byte)(C.goCbEcMessageWithKey)))
	})
}
