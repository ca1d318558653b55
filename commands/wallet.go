package commands

import (
	"strconv"
	"time"
)

func WalletGroup() *Group {
	return NewGroup("wallet", "Wallet management commands",
		&Command{
			Name:        "create",
			Description: "Create new wallet",
			Params: []Param{
				{Name: "name", Description: "Identifier of the wallet", Required: true, Main: true},
				{Name: "key", Description: "Key or passphrase used for wallet key derivation", Required: true},
			},
			Examples: []string{"wallet create wallet1 key=secret"},
			Run:      createWallet,
		},
		&Command{
			Name:        "open",
			Description: "Open wallet. Also close previously opened",
			Params: []Param{
				{Name: "name", Description: "Identifier of the wallet", Required: true, Main: true},
				{Name: "key", Description: "Key or passphrase used for wallet key derivation", Required: true},
			},
			Examples: []string{"wallet open wallet1 key=secret"},
			Run:      openWallet,
		},
		&Command{
			Name:        "close",
			Description: "Close opened wallet",
			Examples:    []string{"wallet close"},
			Run:         closeWallet,
		},
	)
}

func createWallet(ctx *Context, params Params) error {
	name := params["name"]
	key := params["key"]

	err := ctx.Wallets.Create(name, key)
	if err != nil {
		return err
	}

	ctx.Out.Success("Wallet \"%s\" has been created", name)
	return nil
}

func openWallet(ctx *Context, params Params) error {
	name := params["name"]
	key := params["key"]

	previous := ctx.Wallets.CurrentSession()

	session, err := ctx.Wallets.Open(name, key)
	if err != nil {
		return err
	}

	if previous != nil {
		ctx.Out.Success("Wallet \"%s\" has been closed", previous.Name)
	}
	ctx.Out.Success("Wallet \"%s\" has been opened", session.Name)
	return nil
}

func closeWallet(ctx *Context, params Params) error {
	session, err := ctx.Wallets.Close()
	if err != nil {
		return err
	}

	ctx.Out.Success("Wallet \"%s\" has been closed", session.Name)
	return nil
}

// PendingCommand lists the native calls still waiting for a completion.
func PendingCommand() *Command {
	return &Command{
		Name:        "pending",
		Description: "List native calls waiting for completion",
		Run: func(ctx *Context, params Params) error {
			pending := ctx.Registry.Pending()
			if len(pending) == 0 {
				ctx.Out.Warning("There are no pending calls")
				return nil
			}

			rows := make([][]string, 0, len(pending))
			for _, p := range pending {
				rows = append(rows, []string{
					strconv.Itoa(int(p.Handle)),
					time.Since(p.Issued).Round(time.Millisecond).String(),
				})
			}
			ctx.Out.Table([]string{"Handle", "Waiting"}, rows)
			return nil
		},
	}
}
