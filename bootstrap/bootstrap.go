package bootstrap

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fulldump/indyctl/callbacks"
	"github.com/fulldump/indyctl/commands"
	"github.com/fulldump/indyctl/configuration"
	"github.com/fulldump/indyctl/crypto"
	"github.com/fulldump/indyctl/inproc"
	"github.com/fulldump/indyctl/libindy"
	"github.com/fulldump/indyctl/wallet"
)

var VERSION = "dev"

// Backend builds the native service named by c. Faults of the libindy side
// table go to the registry fault handler.
func Backend(c *configuration.Configuration, logger *slog.Logger, registry *callbacks.Registry) (libindy.Backend, error) {
	switch c.Backend {
	case "", "inproc":
		return inproc.NewService(&inproc.Config{
			Workers: c.Workers,
			Logger:  logger,
		}), nil
	case "libindy":
		return libindy.Open(
			libindy.WithLogger(logger),
			libindy.WithFaultHandler(registry.Fault),
		)
	}
	return nil, fmt.Errorf("unknown backend '%s'", c.Backend)
}

func Bootstrap(c *configuration.Configuration) (start, stop func(), err error) {

	level := slog.LevelWarn
	if c.LogLevel != "" {
		err = level.UnmarshalText([]byte(c.LogLevel))
		if err != nil {
			return nil, nil, fmt.Errorf("log level: %w", err)
		}
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	timeout, err := time.ParseDuration(c.CallTimeout)
	if err != nil {
		return nil, nil, fmt.Errorf("call timeout: %w", err)
	}

	var input io.ReadCloser = os.Stdin
	if c.Script != "" {
		input, err = os.Open(c.Script)
		if err != nil {
			return nil, nil, fmt.Errorf("script: %w", err)
		}
	}

	registry := callbacks.NewRegistry(callbacks.WithLogger(logger))

	native, err := Backend(c, logger, registry)
	if err != nil {
		return nil, nil, err
	}

	out := commands.NewOutput(os.Stdout)
	if c.NoColor {
		out.DisableColor()
	}

	executor := commands.NewExecutor(&commands.Context{
		Out:      out,
		Crypto:   crypto.New(registry, native, crypto.WithTimeout(timeout), crypto.WithLogger(logger)),
		Wallets:  wallet.New(registry, native, wallet.WithTimeout(timeout), wallet.WithLogger(logger)),
		Registry: registry,
		Logger:   logger,
	})
	executor.RegisterGroup(commands.CryptoGroup())
	executor.RegisterGroup(commands.WalletGroup())
	executor.RegisterCommand(commands.PendingCommand())

	once := &sync.Once{}
	stop = func() {
		once.Do(func() {
			err := native.Stop()
			if err != nil {
				logger.Error("stopping backend", "err", err)
			}
			input.Close()
		})
	}

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-signalChan
		fmt.Println("Signal received", sig.String())
		stop()
		os.Exit(1)
	}()

	start = func() {

		wg := &sync.WaitGroup{}

		wg.Add(1)
		go func() {
			defer wg.Done()
			err := native.Start()
			if err != nil {
				fmt.Println(err.Error())
			}
		}()

		err := executor.Run(input)
		if err != nil {
			fmt.Println(err.Error())
		}

		stop()
		wg.Wait()
	}

	return
}
