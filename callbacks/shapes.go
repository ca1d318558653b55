package callbacks

import (
	"strings"
	"unicode/utf8"

	"github.com/btcsuite/btcd/btcutil/base58"

	"github.com/fulldump/indyctl/indy"
)

// StringPair is the payload of a two string completion.
type StringPair struct {
	First  string
	Second string
}

// KeyedMessage is the payload of a key plus text completion.
type KeyedMessage struct {
	Key     string
	Message string
}

// Shape names, used in decoding errors.
const (
	ShapeStatus        = "status"
	ShapeInt32         = "status+int32"
	ShapeString        = "status+string"
	ShapeStringPair    = "status+string+string"
	ShapeBase58Message = "status+base58"
	ShapeTextMessage   = "status+utf8"
	ShapeKeyedText     = "status+string+utf8"
)

// trampoline is the skeleton every shape shares: take the action, decode the
// borrowed arguments into owned data, deliver. Payloads of failed calls are
// not decoded; the native library passes nothing meaningful there.
func trampoline[T any](r *Registry, handle indy.Handle, code indy.ErrorCode, shape string, decode func() (T, error)) {
	action, err := r.Take(handle)
	if err != nil {
		r.Fault(err)
		return
	}

	result := Result[T]{Code: code}
	if code == indy.Success {
		result.Value, err = decode()
		if err != nil {
			result.Value = *new(T)
			result.Err = &DecodeError{Shape: shape, Err: err}
		}
	}

	action(result)
}

func (r *Registry) bindTrampolines() {
	r.cbEc = func(handle indy.Handle, code indy.ErrorCode) {
		trampoline(r, handle, code, ShapeStatus, func() (struct{}, error) {
			return struct{}{}, nil
		})
	}
	r.cbEcI32 = func(handle indy.Handle, code indy.ErrorCode, value int32) {
		trampoline(r, handle, code, ShapeInt32, func() (int32, error) {
			return value, nil
		})
	}
	r.cbEcString = func(handle indy.Handle, code indy.ErrorCode, value string) {
		trampoline(r, handle, code, ShapeString, func() (string, error) {
			return ownedString(value)
		})
	}
	r.cbEcStringString = func(handle indy.Handle, code indy.ErrorCode, first, second string) {
		trampoline(r, handle, code, ShapeStringPair, func() (StringPair, error) {
			a, err := ownedString(first)
			if err != nil {
				return StringPair{}, err
			}
			b, err := ownedString(second)
			if err != nil {
				return StringPair{}, err
			}
			return StringPair{First: a, Second: b}, nil
		})
	}
	r.cbEcMessage58 = func(handle indy.Handle, code indy.ErrorCode, data []byte) {
		trampoline(r, handle, code, ShapeBase58Message, func() (string, error) {
			return base58.Encode(data), nil
		})
	}
	r.cbEcMessage = func(handle indy.Handle, code indy.ErrorCode, data []byte) {
		trampoline(r, handle, code, ShapeTextMessage, func() (string, error) {
			return ownedText(data)
		})
	}
	r.cbEcMessageWithKey = func(handle indy.Handle, code indy.ErrorCode, key string, data []byte) {
		trampoline(r, handle, code, ShapeKeyedText, func() (KeyedMessage, error) {
			k, err := ownedString(key)
			if err != nil {
				return KeyedMessage{}, err
			}
			m, err := ownedText(data)
			if err != nil {
				return KeyedMessage{}, err
			}
			return KeyedMessage{Key: k, Message: m}, nil
		})
	}
}

func ownedString(s string) (string, error) {
	if !utf8.ValidString(s) {
		return "", ErrInvalidUTF8
	}
	return strings.Clone(s), nil
}

// ownedText copies a borrowed buffer into a string.
func ownedText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", ErrInvalidUTF8
	}
	return string(data), nil
}

// Status issues a call completing with a status only.
func (r *Registry) Status() (*Receiver[struct{}], indy.Handle, indy.CallbackEc) {
	receiver, handle := newCall[struct{}](r)
	return receiver, handle, r.cbEc
}

// Int32 issues a call completing with a status and an integer.
func (r *Registry) Int32() (*Receiver[int32], indy.Handle, indy.CallbackEcI32) {
	receiver, handle := newCall[int32](r)
	return receiver, handle, r.cbEcI32
}

// CString issues a call completing with a status and a C string.
func (r *Registry) CString() (*Receiver[string], indy.Handle, indy.CallbackEcString) {
	receiver, handle := newCall[string](r)
	return receiver, handle, r.cbEcString
}

// CStringPair issues a call completing with a status and two C strings.
func (r *Registry) CStringPair() (*Receiver[StringPair], indy.Handle, indy.CallbackEcStringString) {
	receiver, handle := newCall[StringPair](r)
	return receiver, handle, r.cbEcStringString
}

// Base58Message issues a call completing with a binary buffer, delivered
// base58 encoded.
func (r *Registry) Base58Message() (*Receiver[string], indy.Handle, indy.CallbackEcMessage) {
	receiver, handle := newCall[string](r)
	return receiver, handle, r.cbEcMessage58
}

// TextMessage issues a call completing with a buffer holding UTF-8 text.
func (r *Registry) TextMessage() (*Receiver[string], indy.Handle, indy.CallbackEcMessage) {
	receiver, handle := newCall[string](r)
	return receiver, handle, r.cbEcMessage
}

// KeyedTextMessage issues a call completing with a key and a buffer holding
// UTF-8 text.
func (r *Registry) KeyedTextMessage() (*Receiver[KeyedMessage], indy.Handle, indy.CallbackEcMessageWithKey) {
	receiver, handle := newCall[KeyedMessage](r)
	return receiver, handle, r.cbEcMessageWithKey
}
