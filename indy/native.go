// Package indy describes the asynchronous ABI of the native library: every
// entry point receives a command handle and a completion callback, returns
// immediately with an "accepted" status and later invokes the callback, on a
// goroutine (or OS thread) the caller does not control, with the final status
// and the operation result.
//
// Callback arguments are borrowed: byte slices handed to a callback are only
// valid while the callback runs and must be copied before it returns.
package indy

// Handle correlates an issued call with its completion.
type Handle int32

// WalletHandle identifies an opened wallet (the session).
type WalletHandle int32

// Completion shapes. One per native callback signature.
type (
	CallbackEc               func(handle Handle, code ErrorCode)
	CallbackEcI32            func(handle Handle, code ErrorCode, value int32)
	CallbackEcString         func(handle Handle, code ErrorCode, value string)
	CallbackEcStringString   func(handle Handle, code ErrorCode, first, second string)
	CallbackEcMessage        func(handle Handle, code ErrorCode, data []byte)
	CallbackEcMessageWithKey func(handle Handle, code ErrorCode, key string, data []byte)
)

// WalletAPI groups wallet lifecycle entry points.
type WalletAPI interface {
	CreateWallet(handle Handle, name, key string, cb CallbackEc) ErrorCode
	OpenWallet(handle Handle, name, key string, cb CallbackEcI32) ErrorCode
	CloseWallet(handle Handle, wallet WalletHandle, cb CallbackEc) ErrorCode
}

// KeysAPI groups key management entry points scoped to a wallet.
type KeysAPI interface {
	CreateKey(handle Handle, wallet WalletHandle, keyJSON string, cb CallbackEcString) ErrorCode
	CreateAndStoreMyDid(handle Handle, wallet WalletHandle, didJSON string, cb CallbackEcStringString) ErrorCode
	SetKeyMetadata(handle Handle, wallet WalletHandle, verkey, metadata string, cb CallbackEc) ErrorCode
	GetKeyMetadata(handle Handle, wallet WalletHandle, verkey string, cb CallbackEcString) ErrorCode
	ListMyKeys(handle Handle, wallet WalletHandle, cb CallbackEcString) ErrorCode
}

// CryptoAPI groups signing and encryption entry points.
type CryptoAPI interface {
	CryptoSign(handle Handle, wallet WalletHandle, signerVk string, msg []byte, cb CallbackEcMessage) ErrorCode
	CryptoVerify(handle Handle, signerVk string, msg, signature []byte, cb CallbackEcI32) ErrorCode
	CryptoAnonCrypt(handle Handle, theirVk string, msg []byte, cb CallbackEcMessage) ErrorCode
	CryptoAnonDecrypt(handle Handle, wallet WalletHandle, myVk string, encrypted []byte, cb CallbackEcMessage) ErrorCode
	CryptoAuthCrypt(handle Handle, wallet WalletHandle, myVk, theirVk string, msg []byte, cb CallbackEcMessage) ErrorCode
	CryptoAuthDecrypt(handle Handle, wallet WalletHandle, myVk string, encrypted []byte, cb CallbackEcMessageWithKey) ErrorCode
}

// Native is the full native service.
type Native interface {
	WalletAPI
	KeysAPI
	CryptoAPI
}
