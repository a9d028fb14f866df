// Package cachecmd implements the clear-cache command.
package cachecmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/pryvon/tempmail-cli/internal/app"
)

// ClearCommand wipes the local response cache.
var ClearCommand = &cli.Command{
	Name:   "clear-cache",
	Usage:  "Clear all cached API responses",
	Action: clearAction,
}

func clearAction(ctx context.Context, cmd *cli.Command) error {
	a, err := app.Bootstrap(app.Options{ConfigFile: cmd.String("config"), Debug: cmd.Bool("debug")})
	if err != nil {
		return err
	}

	before := a.Client.CacheStats()
	a.Client.ClearCache()

	fmt.Printf("✓ Cache cleared (%d entries removed)\n", before.TotalEntries)
	return nil
}
