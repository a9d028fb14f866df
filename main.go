package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/pryvon/tempmail-cli/actions/account"
	"github.com/pryvon/tempmail-cli/actions/cachecmd"
	"github.com/pryvon/tempmail-cli/actions/domains"
	"github.com/pryvon/tempmail-cli/actions/messages"
)

func main() {
	cmd := &cli.Command{
		Name:    "tempmail",
		Usage:   "Disposable email from the command line",
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to a config file",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Action: func(context.Context, *cli.Command) error {
			fmt.Println("tempmail - Use 'tempmail help' for available commands")
			return nil
		},
		Commands: []*cli.Command{
			account.CreateCommand,
			account.LoginCommand,
			account.LogoutCommand,
			account.StatusCommand,
			account.StatsCommand,
			account.DeleteAccountCommand,
			messages.ListCommand,
			messages.ViewCommand,
			messages.MarkReadCommand,
			messages.DeleteCommand,
			messages.RefreshCommand,
			domains.Command,
			cachecmd.ClearCommand,
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
