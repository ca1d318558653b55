package sequence

import (
	"sync/atomic"

	"github.com/fulldump/indyctl/indy"
)

// Sequence hands out command handles. Zero is never returned: the native
// library treats it as "no handle".
type Sequence struct {
	last atomic.Int32
}

func New() *Sequence {
	return &Sequence{}
}

// Next returns a handle not returned before until the counter wraps around.
func (s *Sequence) Next() indy.Handle {
	for {
		n := s.last.Add(1)
		if n != 0 {
			return indy.Handle(n)
		}
	}
}

var defaultSequence = New()

// Next uses the process wide sequence.
func Next() indy.Handle {
	return defaultSequence.Next()
}
