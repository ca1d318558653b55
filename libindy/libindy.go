// Package libindy binds the native service to the libindy shared library.
// The binding needs cgo and is only compiled with the libindy build tag:
//
//	go build -tags libindy ./cmd/indyctl
package libindy

import (
	"errors"

	"github.com/fulldump/indyctl/indy"
)

var ErrUnavailable = errors.New("libindy backend not built in, rebuild with -tags libindy")

// Backend is a native service with a lifecycle.
type Backend interface {
	indy.Native
	Start() error
	Stop() error
}
