//go:build !libindy

package libindy

func Open(options ...Option) (Backend, error) {
	return nil, ErrUnavailable
}
