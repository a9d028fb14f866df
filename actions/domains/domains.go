// Package domains implements the domains listing command.
package domains

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/pryvon/tempmail-cli/internal/app"
)

// Command lists the domains available for new accounts.
var Command = &cli.Command{
	Name:  "domains",
	Usage: "List domains available for new accounts",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "no-cache",
			Usage: "Bypass the local cache",
		},
		&cli.BoolFlag{
			Name:  "all",
			Usage: "Include inactive domains",
		},
	},
	Action: domainsAction,
}

func domainsAction(ctx context.Context, cmd *cli.Command) error {
	a, err := app.Bootstrap(app.Options{ConfigFile: cmd.String("config"), Debug: cmd.Bool("debug")})
	if err != nil {
		return err
	}

	domains, err := a.Client.Domains(ctx, !cmd.Bool("no-cache"))
	if err != nil {
		return fmt.Errorf("failed to fetch domains: %w", err)
	}

	shown := 0
	for _, d := range domains {
		if !d.IsActive && !cmd.Bool("all") {
			continue
		}
		status := "active"
		if !d.IsActive {
			status = "inactive"
		}
		fmt.Printf("  %s (%s)\n", d.Domain, status)
		shown++
	}

	if shown == 0 {
		fmt.Println("No domains available")
	}

	return nil
}
