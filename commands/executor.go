// Package commands turns command lines into calls to the crypto and wallet
// facades and reports the outcome.
package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/fulldump/indyctl/callbacks"
	"github.com/fulldump/indyctl/crypto"
	"github.com/fulldump/indyctl/indy"
	"github.com/fulldump/indyctl/utils"
	"github.com/fulldump/indyctl/wallet"
)

var ErrNoWalletOpened = wallet.ErrNoWalletOpened

var ErrLineTooLong = errors.New("command line too long")

// MaxLineSize bounds a command line, terminator included. Ciphertexts of
// large messages travel inline, so it is far above the bufio defaults.
const MaxLineSize = 16 * 1024 * 1024

// Context is what a command can work with.
type Context struct {
	Out      *Output
	Crypto   *crypto.Crypto
	Wallets  *wallet.Wallets
	Registry *callbacks.Registry
	Logger   *slog.Logger
}

// Session returns the handle of the opened wallet.
func (c *Context) Session() (indy.WalletHandle, error) {
	return c.Wallets.Current()
}

type Command struct {
	Name        string
	Description string
	Params      []Param
	Examples    []string
	Run         func(ctx *Context, params Params) error
}

type Group struct {
	Name        string
	Description string
	Commands    map[string]*Command
}

func NewGroup(name, description string, commands ...*Command) *Group {
	g := &Group{
		Name:        name,
		Description: description,
		Commands:    map[string]*Command{},
	}
	for _, c := range commands {
		g.Commands[c.Name] = c
	}
	return g
}

type Executor struct {
	context  *Context
	groups   map[string]*Group
	commands map[string]*Command
	exited   bool

	maxLineSize int
}

func NewExecutor(ctx *Context) *Executor {
	if ctx.Logger == nil {
		ctx.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	e := &Executor{
		context:  ctx,
		groups:   map[string]*Group{},
		commands: map[string]*Command{},

		maxLineSize: MaxLineSize,
	}

	e.RegisterCommand(&Command{
		Name:        "help",
		Description: "Print help",
		Params: []Param{
			{Name: "group", Description: "Group to describe", Main: true},
		},
		Run: e.help,
	})
	e.RegisterCommand(&Command{
		Name:        "exit",
		Description: "Exit",
		Run: func(ctx *Context, params Params) error {
			e.exited = true
			return nil
		},
	})

	return e
}

func (e *Executor) RegisterGroup(g *Group) {
	e.groups[g.Name] = g
}

// RegisterCommand adds a command outside any group.
func (e *Executor) RegisterCommand(c *Command) {
	e.commands[c.Name] = c
}

func (e *Executor) Exited() bool {
	return e.exited
}

// Execute runs one command line. Failures are reported to the output and
// returned.
func (e *Executor) Execute(line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	commandID := uuid.New().String()
	logger := e.context.Logger.With("command_id", commandID)

	err := e.execute(logger, line)
	if err != nil {
		logger.Debug("command failed", "error", err)
		e.report(err)
		return err
	}

	logger.Debug("command done")
	return nil
}

func (e *Executor) execute(logger *slog.Logger, line string) error {
	tokens, err := tokenize(line)
	if err != nil {
		return err
	}

	command, args, err := e.lookup(tokens)
	if err != nil {
		return err
	}
	logger.Debug("command", "name", strings.Join(tokens[:len(tokens)-len(args)], " "))

	if len(args) == 1 && args[0] == "help" {
		e.commandHelp(strings.Join(tokens[:len(tokens)-1], " "), command)
		return nil
	}

	params, err := parseParams(command.Params, args)
	if err != nil {
		return err
	}

	ctx := *e.context
	ctx.Logger = logger
	return command.Run(&ctx, params)
}

func (e *Executor) lookup(tokens []string) (*Command, []string, error) {
	if command, ok := e.commands[tokens[0]]; ok {
		return command, tokens[1:], nil
	}

	group, ok := e.groups[tokens[0]]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownCommand, tokens[0])
	}
	if len(tokens) < 2 {
		return nil, nil, fmt.Errorf("%w: %s needs a command, see 'help %s'", ErrUnknownCommand, group.Name, group.Name)
	}

	command, ok := group.Commands[tokens[1]]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s %s", ErrUnknownCommand, group.Name, tokens[1])
	}
	return command, tokens[2:], nil
}

func (e *Executor) report(err error) {
	out := e.context.Out

	indyErr := &indy.Error{}
	switch {
	case errors.Is(err, ErrNoWalletOpened):
		out.Failure("No wallets opened")
	case errors.As(err, &indyErr):
		out.Failure("Indy SDK error occurred %s", indyErr.Code)
	case errors.Is(err, callbacks.ErrTimeout):
		out.Failure("Indy SDK did not answer in time: %s", err)
	default:
		out.Failure("%s", err)
	}
}

// Run executes every line of r until it ends or an exit command. A line
// over the size limit is reported and skipped.
func (e *Executor) Run(r io.Reader) error {
	reader := bufio.NewReader(r)
	for !e.exited {
		line, err := e.readLine(reader)
		if errors.Is(err, ErrLineTooLong) {
			e.report(err)
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		e.Execute(line)
	}
	return nil
}

// readLine returns the next line without its terminator. The rest of a line
// longer than maxLineSize is consumed and dropped.
func (e *Executor) readLine(reader *bufio.Reader) (string, error) {
	line := []byte{}
	tooLong := false

	for {
		chunk, err := reader.ReadSlice('\n')
		if !tooLong {
			line = append(line, chunk...)
			if len(line) > e.maxLineSize {
				tooLong = true
				line = nil
			}
		}
		if err == bufio.ErrBufferFull {
			continue
		}

		if tooLong {
			return "", fmt.Errorf("%w: over %d bytes", ErrLineTooLong, e.maxLineSize)
		}
		if err == io.EOF && len(line) > 0 {
			err = nil
		}
		if err != nil {
			return "", err
		}
		return strings.TrimRight(string(line), "\r\n"), nil
	}
}

func (e *Executor) help(ctx *Context, params Params) error {
	out := ctx.Out

	if name, ok := params.Get("group"); ok {
		group, ok := e.groups[name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
		}
		out.Println(group.Description)
		out.Println()
		for _, commandName := range utils.GetKeys(group.Commands) {
			c := group.Commands[commandName]
			out.Println(fmt.Sprintf("    %-10s %s", c.Name, c.Description))
		}
		out.Println()
		out.Println(fmt.Sprintf("Type '%s <command> help' for details of a command.", group.Name))
		return nil
	}

	out.Println("Groups:")
	for _, name := range utils.GetKeys(e.groups) {
		out.Println(fmt.Sprintf("    %-10s %s", name, e.groups[name].Description))
	}
	out.Println()
	out.Println("Commands:")
	for _, name := range utils.GetKeys(e.commands) {
		out.Println(fmt.Sprintf("    %-10s %s", name, e.commands[name].Description))
	}
	out.Println()
	out.Println("Type 'help <group>' to list the commands of a group.")
	return nil
}

func (e *Executor) commandHelp(fullName string, c *Command) {
	out := e.context.Out

	out.Println(c.Description)
	out.Println()

	usage := fullName
	for _, p := range c.Params {
		param := p.Name + "=<" + p.Name + "-value>"
		if p.Main {
			param = "<" + p.Name + "-value>"
		}
		if !p.Required {
			param = "[" + param + "]"
		}
		usage += " " + param
	}
	out.Println("Usage:")
	out.Println("    " + usage)

	if len(c.Params) > 0 {
		out.Println()
		out.Println("Parameters:")
		for _, p := range c.Params {
			out.Println(fmt.Sprintf("    %-10s %s", p.Name, p.Description))
		}
	}

	if len(c.Examples) > 0 {
		out.Println()
		out.Println("Examples:")
		for _, example := range c.Examples {
			out.Println("    " + example)
		}
	}
}
