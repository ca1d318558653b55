// Package inproc is a native service implemented in Go. It honors the
// asynchronous contract of the real library: arguments are checked when the
// call is issued, the work runs later on a worker goroutine and the result is
// delivered through the callback.
package inproc

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/fulldump/indyctl/indy"
)

const (
	StatusOpening   = "opening"
	StatusOperating = "operating"
	StatusClosing   = "closing"
)

type Config struct {
	Workers   int
	QueueSize int
	Logger    *slog.Logger
}

type job struct {
	name string
	run  func()
	fail func(code indy.ErrorCode)
}

type Service struct {
	config *Config
	logger *slog.Logger

	statusMutex *sync.RWMutex
	status      string
	started     bool

	jobs   chan *job
	ctx    context.Context
	cancel context.CancelFunc
	exit   chan struct{}

	mutex      *sync.Mutex
	wallets    map[string]*wallet
	opened     map[indy.WalletHandle]*wallet
	lastWallet indy.WalletHandle
}

func NewService(config *Config) *Service {
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.QueueSize <= 0 {
		config.QueueSize = 64
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Service{
		config:      config,
		logger:      logger,
		statusMutex: &sync.RWMutex{},
		status:      StatusOpening,
		jobs:        make(chan *job, config.QueueSize),
		ctx:         ctx,
		cancel:      cancel,
		exit:        make(chan struct{}),
		mutex:       &sync.Mutex{},
		wallets:     map[string]*wallet{},
		opened:      map[indy.WalletHandle]*wallet{},
	}
}

func (s *Service) GetStatus() string {
	s.statusMutex.RLock()
	defer s.statusMutex.RUnlock()
	return s.status
}

// Start runs the workers and blocks until Stop.
func (s *Service) Start() error {

	s.statusMutex.Lock()
	if s.status != StatusOpening {
		s.statusMutex.Unlock()
		return nil
	}
	s.status = StatusOperating
	s.started = true
	s.statusMutex.Unlock()

	defer close(s.exit)

	g, ctx := errgroup.WithContext(s.ctx)
	for i := 0; i < s.config.Workers; i++ {
		i := i
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case j := <-s.jobs:
					s.logger.Debug("job running", "job", j.name, "worker", i)
					j.run()
				}
			}
		})
	}
	s.logger.Info("native service operating", "workers", s.config.Workers)

	return g.Wait()
}

// Stop rejects new calls, waits for the running ones and fails the queued
// ones with CommonInvalidState.
func (s *Service) Stop() error {
	s.cancel()

	s.statusMutex.Lock()
	started := s.started
	s.status = StatusClosing
	s.statusMutex.Unlock()

	if started {
		<-s.exit
	}

	for {
		select {
		case j := <-s.jobs:
			j.fail(indy.CommonInvalidState)
		default:
			s.logger.Info("native service stopped")
			return nil
		}
	}
}

// submit queues a job. Calls are accepted while the service is opening too,
// they wait in the queue for the workers.
func (s *Service) submit(j *job) indy.ErrorCode {
	s.statusMutex.RLock()
	defer s.statusMutex.RUnlock()

	if s.status == StatusClosing || s.ctx.Err() != nil {
		return indy.CommonInvalidState
	}

	select {
	case s.jobs <- j:
		return indy.Success
	case <-s.ctx.Done():
		return indy.CommonInvalidState
	}
}

func (s *Service) lockBlock(f func() error) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return f()
}

// wipe clears a buffer once its callback returned. Whoever needs the data
// must have copied it.
func wipe(data []byte) {
	for i := range data {
		data[i] = 0
	}
}

func (s *Service) statusResult(name string, handle indy.Handle, cb indy.CallbackEc, run func() indy.ErrorCode) indy.ErrorCode {
	return s.submit(&job{
		name: name,
		run: func() {
			cb(handle, run())
		},
		fail: func(code indy.ErrorCode) {
			cb(handle, code)
		},
	})
}

func (s *Service) int32Result(name string, handle indy.Handle, cb indy.CallbackEcI32, run func() (indy.ErrorCode, int32)) indy.ErrorCode {
	return s.submit(&job{
		name: name,
		run: func() {
			code, value := run()
			cb(handle, code, value)
		},
		fail: func(code indy.ErrorCode) {
			cb(handle, code, 0)
		},
	})
}

func (s *Service) stringResult(name string, handle indy.Handle, cb indy.CallbackEcString, run func() (indy.ErrorCode, string)) indy.ErrorCode {
	return s.submit(&job{
		name: name,
		run: func() {
			code, value := run()
			cb(handle, code, value)
		},
		fail: func(code indy.ErrorCode) {
			cb(handle, code, "")
		},
	})
}

func (s *Service) stringPairResult(name string, handle indy.Handle, cb indy.CallbackEcStringString, run func() (indy.ErrorCode, string, string)) indy.ErrorCode {
	return s.submit(&job{
		name: name,
		run: func() {
			code, first, second := run()
			cb(handle, code, first, second)
		},
		fail: func(code indy.ErrorCode) {
			cb(handle, code, "", "")
		},
	})
}

func (s *Service) messageResult(name string, handle indy.Handle, cb indy.CallbackEcMessage, run func() (indy.ErrorCode, []byte)) indy.ErrorCode {
	return s.submit(&job{
		name: name,
		run: func() {
			code, data := run()
			cb(handle, code, data)
			wipe(data)
		},
		fail: func(code indy.ErrorCode) {
			cb(handle, code, nil)
		},
	})
}

func (s *Service) keyedMessageResult(name string, handle indy.Handle, cb indy.CallbackEcMessageWithKey, run func() (indy.ErrorCode, string, []byte)) indy.ErrorCode {
	return s.submit(&job{
		name: name,
		run: func() {
			code, key, data := run()
			cb(handle, code, key, data)
			wipe(data)
		},
		fail: func(code indy.ErrorCode) {
			cb(handle, code, "", nil)
		},
	})
}
