package indy

import "fmt"

// ErrorCode is the status returned by the native library, both as the
// immediate "accepted" answer of an entry point and inside every completion.
type ErrorCode int32

const (
	Success ErrorCode = 0

	CommonInvalidParam1    ErrorCode = 100
	CommonInvalidParam2    ErrorCode = 101
	CommonInvalidParam3    ErrorCode = 102
	CommonInvalidParam4    ErrorCode = 103
	CommonInvalidParam5    ErrorCode = 104
	CommonInvalidParam6    ErrorCode = 105
	CommonInvalidParam7    ErrorCode = 106
	CommonInvalidParam8    ErrorCode = 107
	CommonInvalidState     ErrorCode = 112
	CommonInvalidStructure ErrorCode = 113
	CommonIOError          ErrorCode = 114

	WalletInvalidHandle      ErrorCode = 200
	WalletAlreadyExistsError ErrorCode = 203
	WalletNotFoundError      ErrorCode = 204
	WalletAlreadyOpenedError ErrorCode = 206
	WalletAccessFailed       ErrorCode = 207
	WalletItemNotFound       ErrorCode = 212
	WalletItemAlreadyExists  ErrorCode = 213

	UnknownCryptoTypeError ErrorCode = 500
)

var errorCodeNames = map[ErrorCode]string{
	Success:                  "Success",
	CommonInvalidParam1:      "CommonInvalidParam1",
	CommonInvalidParam2:      "CommonInvalidParam2",
	CommonInvalidParam3:      "CommonInvalidParam3",
	CommonInvalidParam4:      "CommonInvalidParam4",
	CommonInvalidParam5:      "CommonInvalidParam5",
	CommonInvalidParam6:      "CommonInvalidParam6",
	CommonInvalidParam7:      "CommonInvalidParam7",
	CommonInvalidParam8:      "CommonInvalidParam8",
	CommonInvalidState:       "CommonInvalidState",
	CommonInvalidStructure:   "CommonInvalidStructure",
	CommonIOError:            "CommonIOError",
	WalletInvalidHandle:      "WalletInvalidHandle",
	WalletAlreadyExistsError: "WalletAlreadyExistsError",
	WalletNotFoundError:      "WalletNotFoundError",
	WalletAlreadyOpenedError: "WalletAlreadyOpenedError",
	WalletAccessFailed:       "WalletAccessFailed",
	WalletItemNotFound:       "WalletItemNotFound",
	WalletItemAlreadyExists:  "WalletItemAlreadyExists",
	UnknownCryptoTypeError:   "UnknownCryptoTypeError",
}

func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ErrorCode(%d)", int32(c))
}

// InvalidParam returns the CommonInvalidParamN code for the n-th (1 based)
// argument of an entry point.
func InvalidParam(n int) ErrorCode {
	if n < 1 || n > 8 {
		return CommonInvalidStructure
	}
	return CommonInvalidParam1 + ErrorCode(n-1)
}

// Error is a non-success status surfaced as a Go error.
type Error struct {
	Code ErrorCode
}

func (e *Error) Error() string {
	return fmt.Sprintf("indy error %d: %s", int32(e.Code), e.Code)
}

// Check converts a status into an error, nil on Success.
func Check(code ErrorCode) error {
	if code == Success {
		return nil
	}
	return &Error{Code: code}
}
