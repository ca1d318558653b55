package callbacks

import (
	"errors"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/fulldump/biff"

	"github.com/fulldump/indyctl/indy"
)

func TestShapes(t *testing.T) {
	biff.Alternative("Shapes", func(a *biff.A) {

		r, faults := newTestRegistry()

		a.Alternative("Status", func(a *biff.A) {
			receiver, handle, cb := r.Status()
			go cb(handle, indy.Success)
			_, err := receiver.Wait(time.Second)
			biff.AssertNil(err)
		})

		a.Alternative("Status failure", func(a *biff.A) {
			receiver, handle, cb := r.Status()
			go cb(handle, indy.WalletNotFoundError)
			_, err := receiver.Wait(time.Second)
			indyErr := &indy.Error{}
			biff.AssertTrue(errors.As(err, &indyErr))
			biff.AssertEqual(indyErr.Code, indy.WalletNotFoundError)
		})

		a.Alternative("Int32", func(a *biff.A) {
			receiver, handle, cb := r.Int32()
			go cb(handle, indy.Success, 42)
			value, err := receiver.Wait(time.Second)
			biff.AssertNil(err)
			biff.AssertEqual(value, int32(42))
		})

		a.Alternative("CString", func(a *biff.A) {
			receiver, handle, cb := r.CString()
			go cb(handle, indy.Success, "GjZWsBLgZCR18aL468JAT7w9CZRiBnpxUPPgyQxh4voa")
			value, err := receiver.Wait(time.Second)
			biff.AssertNil(err)
			biff.AssertEqual(value, "GjZWsBLgZCR18aL468JAT7w9CZRiBnpxUPPgyQxh4voa")
		})

		a.Alternative("CString invalid utf-8", func(a *biff.A) {
			receiver, handle, cb := r.CString()
			go cb(handle, indy.Success, "\xff\xfe")
			_, err := receiver.Wait(time.Second)
			decodeErr := &DecodeError{}
			biff.AssertTrue(errors.As(err, &decodeErr))
			biff.AssertEqual(decodeErr.Shape, ShapeString)
			biff.AssertTrue(errors.Is(err, ErrInvalidUTF8))
		})

		a.Alternative("CStringPair", func(a *biff.A) {
			receiver, handle, cb := r.CStringPair()
			go cb(handle, indy.Success, "did", "verkey")
			value, err := receiver.Wait(time.Second)
			biff.AssertNil(err)
			biff.AssertEqual(value, StringPair{First: "did", Second: "verkey"})
		})

		a.Alternative("Base58Message", func(a *biff.A) {
			data := []byte{0, 1, 2, 250, 251, 255}
			receiver, handle, cb := r.Base58Message()
			go cb(handle, indy.Success, data)
			value, err := receiver.Wait(time.Second)
			biff.AssertNil(err)
			biff.AssertEqual(value, base58.Encode(data))
			biff.AssertEqual(base58.Decode(value), data)
		})

		a.Alternative("TextMessage", func(a *biff.A) {
			receiver, handle, cb := r.TextMessage()
			go cb(handle, indy.Success, []byte("hola señor ✓"))
			value, err := receiver.Wait(time.Second)
			biff.AssertNil(err)
			biff.AssertEqual(value, "hola señor ✓")
		})

		a.Alternative("TextMessage empty", func(a *biff.A) {
			receiver, handle, cb := r.TextMessage()
			go cb(handle, indy.Success, nil)
			value, err := receiver.Wait(time.Second)
			biff.AssertNil(err)
			biff.AssertEqual(value, "")
		})

		a.Alternative("TextMessage invalid utf-8", func(a *biff.A) {
			receiver, handle, cb := r.TextMessage()
			go cb(handle, indy.Success, []byte{0xc3, 0x28})
			_, err := receiver.Wait(time.Second)
			biff.AssertTrue(errors.Is(err, ErrInvalidUTF8))
			biff.AssertEqual(r.Len(), 0)
			biff.AssertEqual(len(faults.list()), 0)
		})

		a.Alternative("Payload of failed call is not decoded", func(a *biff.A) {
			receiver, handle, cb := r.TextMessage()
			go cb(handle, indy.CommonInvalidStructure, []byte{0xff})
			result, err := receiver.Recv(time.Second)
			biff.AssertNil(err)
			biff.AssertNil(result.Err)
			biff.AssertEqual(result.Code, indy.CommonInvalidStructure)
			biff.AssertEqual(result.Value, "")
		})

		a.Alternative("KeyedTextMessage", func(a *biff.A) {
			receiver, handle, cb := r.KeyedTextMessage()
			go cb(handle, indy.Success, "senderVk", []byte("secret"))
			value, err := receiver.Wait(time.Second)
			biff.AssertNil(err)
			biff.AssertEqual(value, KeyedMessage{Key: "senderVk", Message: "secret"})
		})

		a.Alternative("Borrowed buffer is copied", func(a *biff.A) {
			buffer := []byte("original")
			receiver, handle, cb := r.TextMessage()
			cb(handle, indy.Success, buffer)
			for i := range buffer {
				buffer[i] = 0
			}
			value, err := receiver.Wait(time.Second)
			biff.AssertNil(err)
			biff.AssertEqual(value, "original")
		})

		a.Alternative("Timeout", func(a *biff.A) {
			receiver, handle, cb := r.Int32()
			_, err := receiver.Wait(10 * time.Millisecond)
			biff.AssertTrue(errors.Is(err, ErrTimeout))
			biff.AssertEqual(r.Len(), 1)

			a.Alternative("Late completion is discarded", func(a *biff.A) {
				cb(handle, indy.Success, 1)
				biff.AssertEqual(r.Len(), 0)
				biff.AssertEqual(len(faults.list()), 0)
			})
		})

		a.Alternative("Resolve rejected call", func(a *biff.A) {
			receiver, handle, cb := r.Status()
			_, err := receiver.Resolve(indy.CommonInvalidParam3, time.Second)
			indyErr := &indy.Error{}
			biff.AssertTrue(errors.As(err, &indyErr))
			biff.AssertEqual(indyErr.Code, indy.CommonInvalidParam3)
			biff.AssertEqual(r.Len(), 0)

			a.Alternative("Stray completion faults", func(a *biff.A) {
				cb(handle, indy.Success)
				biff.AssertEqual(len(faults.list()), 1)
			})
		})

		a.Alternative("Resolve accepted call", func(a *biff.A) {
			receiver, handle, cb := r.CString()
			go cb(handle, indy.Success, "ok")
			value, err := receiver.Resolve(indy.Success, time.Second)
			biff.AssertNil(err)
			biff.AssertEqual(value, "ok")
		})

		a.Alternative("Shape mismatch", func(a *biff.A) {
			receiver, handle, _ := r.Int32()
			biff.AssertNil(r.Complete(handle, "not an int32 result"))
			_, err := receiver.Wait(time.Second)
			biff.AssertTrue(errors.Is(err, ErrShapeMismatch))
			biff.AssertEqual(len(faults.list()), 1)
			biff.AssertTrue(errors.Is(faults.list()[0], ErrShapeMismatch))
		})
	})
}
