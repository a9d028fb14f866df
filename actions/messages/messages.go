// Package messages implements the mailbox commands: list, view, mark-read,
// delete and refresh.
package messages

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/pryvon/tempmail-cli/internal/app"
	"github.com/pryvon/tempmail-cli/internal/mailtm"
)

const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

// ListCommand lists messages in the current mailbox.
var ListCommand = &cli.Command{
	Name:    "list",
	Aliases: []string{"ls"},
	Usage:   "List messages in the mailbox",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "page",
			Aliases: []string{"p"},
			Usage:   "Page number",
			Value:   1,
		},
		&cli.IntFlag{
			Name:    "limit",
			Aliases: []string{"l"},
			Usage:   "Messages per page (0 uses the configured default)",
		},
		&cli.BoolFlag{
			Name:  "unread-only",
			Usage: "Show only unread messages",
		},
		&cli.BoolFlag{
			Name:  "no-cache",
			Usage: "Bypass the local cache",
		},
	},
	Action: listAction,
}

// ViewCommand shows a single message in full.
var ViewCommand = &cli.Command{
	Name:      "view",
	Aliases:   []string{"read"},
	Usage:     "View a message",
	ArgsUsage: "<message-id>",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "no-cache",
			Usage: "Bypass the local cache",
		},
		&cli.BoolFlag{
			Name:  "keep-unread",
			Usage: "Do not mark the message as read",
		},
	},
	Action: viewAction,
}

// MarkReadCommand marks a message as read without displaying it.
var MarkReadCommand = &cli.Command{
	Name:      "mark-read",
	Usage:     "Mark a message as read",
	ArgsUsage: "<message-id>",
	Action:    markReadAction,
}

// DeleteCommand deletes a message.
var DeleteCommand = &cli.Command{
	Name:      "delete",
	Aliases:   []string{"rm"},
	Usage:     "Delete a message",
	ArgsUsage: "<message-id>",
	Action:    deleteAction,
}

// RefreshCommand force-refreshes the first page of the mailbox.
var RefreshCommand = &cli.Command{
	Name:   "refresh",
	Usage:  "Refresh the mailbox, bypassing the cache",
	Action: refreshAction,
}

func listAction(ctx context.Context, cmd *cli.Command) error {
	a, err := app.Bootstrap(app.Options{ConfigFile: cmd.String("config"), Debug: cmd.Bool("debug")})
	if err != nil {
		return err
	}

	msgs, err := a.Client.Messages(ctx, int(cmd.Int("page")), int(cmd.Int("limit")), !cmd.Bool("no-cache"))
	if err != nil {
		return describeError(err)
	}

	if cmd.Bool("unread-only") {
		unread := msgs[:0]
		for _, m := range msgs {
			if !m.Seen {
				unread = append(unread, m)
			}
		}
		msgs = unread
	}

	printMessageTable(msgs, a.Config.MaxMessagesDisplay)
	return nil
}

func viewAction(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("message id is required")
	}

	a, err := app.Bootstrap(app.Options{ConfigFile: cmd.String("config"), Debug: cmd.Bool("debug")})
	if err != nil {
		return err
	}

	detail, err := a.Client.Message(ctx, id, !cmd.Bool("no-cache"))
	if err != nil {
		return describeError(err)
	}

	printMessageDetail(detail)

	if !detail.Seen && !cmd.Bool("keep-unread") {
		if err := a.Client.MarkMessageSeen(ctx, id); err != nil {
			fmt.Printf("%s⚠ Failed to mark message as read: %v%s\n", colorYellow, err, colorReset)
		}
	}

	return nil
}

func markReadAction(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("message id is required")
	}

	a, err := app.Bootstrap(app.Options{ConfigFile: cmd.String("config"), Debug: cmd.Bool("debug")})
	if err != nil {
		return err
	}

	if err := a.Client.MarkMessageSeen(ctx, id); err != nil {
		return describeError(err)
	}

	fmt.Printf("%s✓ Message marked as read%s\n", colorGreen, colorReset)
	return nil
}

func deleteAction(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("message id is required")
	}

	a, err := app.Bootstrap(app.Options{ConfigFile: cmd.String("config"), Debug: cmd.Bool("debug")})
	if err != nil {
		return err
	}

	if err := a.Client.DeleteMessage(ctx, id); err != nil {
		return describeError(err)
	}

	fmt.Printf("%s✓ Message deleted%s\n", colorGreen, colorReset)
	return nil
}

func refreshAction(ctx context.Context, cmd *cli.Command) error {
	a, err := app.Bootstrap(app.Options{ConfigFile: cmd.String("config"), Debug: cmd.Bool("debug")})
	if err != nil {
		return err
	}

	msgs, err := a.Client.RefreshMailbox(ctx)
	if err != nil {
		return describeError(err)
	}

	fmt.Printf("%s✓ Mailbox refreshed%s\n", colorGreen, colorReset)
	printMessageTable(msgs, a.Config.MaxMessagesDisplay)
	return nil
}

func printMessageTable(msgs []mailtm.Message, limit int) {
	if len(msgs) == 0 {
		fmt.Printf("%sNo messages%s\n", colorDim, colorReset)
		return
	}

	if limit > 0 && len(msgs) > limit {
		msgs = msgs[:limit]
	}

	unread := 0
	for _, m := range msgs {
		if !m.Seen {
			unread++
		}
	}

	fmt.Printf("%s%d message(s), %d unread%s\n\n", colorBold, len(msgs), unread, colorReset)

	for _, m := range msgs {
		marker := fmt.Sprintf("%s●%s", colorCyan, colorReset)
		subjectColor := colorBold
		if m.Seen {
			marker = " "
			subjectColor = ""
		}

		attach := ""
		if m.HasAttachments {
			attach = " 📎"
		}

		fmt.Printf("%s %s%s%s%s\n", marker, subjectColor, truncate(m.Subject, 60), colorReset, attach)
		fmt.Printf("  %sFrom %s · %s · %s · id %s%s\n",
			colorDim, m.FromAddress, formatTime(m.CreatedAt), formatSize(m.Size), m.ID, colorReset)
	}
}

func printMessageDetail(d *mailtm.MessageDetail) {
	fmt.Printf("%s%s%s\n", colorBold, d.Subject, colorReset)
	fmt.Printf("%sFrom: %s%s\n", colorDim, d.FromAddress, colorReset)
	fmt.Printf("%sTo:   %s%s\n", colorDim, d.ToAddress, colorReset)
	fmt.Printf("%sDate: %s · %s%s\n", colorDim, formatTime(d.CreatedAt), formatSize(d.Size), colorReset)
	if d.HasAttachments {
		fmt.Printf("%sHas attachments (download: %s)%s\n", colorYellow, d.DownloadURL, colorReset)
	}
	fmt.Println(strings.Repeat("─", 60))

	switch {
	case d.Text != "":
		fmt.Println(d.Text)
	case len(d.HTML) > 0:
		fmt.Printf("%s[HTML-only message, raw markup follows]%s\n", colorYellow, colorReset)
		for _, part := range d.HTML {
			fmt.Println(part)
		}
	default:
		fmt.Printf("%s[empty message body]%s\n", colorDim, colorReset)
	}
}

func describeError(err error) error {
	switch {
	case errors.Is(err, mailtm.ErrAuthentication):
		fmt.Printf("%s✗ Not logged in. Please run 'tempmail login' first.%s\n", colorRed, colorReset)
		return nil
	case errors.Is(err, mailtm.ErrAccountNotFound):
		return fmt.Errorf("message not found")
	case errors.Is(err, mailtm.ErrRateLimit):
		return fmt.Errorf("rate limited by the server, try again shortly")
	default:
		return err
	}
}

func truncate(s string, max int) string {
	if s == "" {
		return "(no subject)"
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func formatTime(raw string) string {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return t.Local().Format("2006-01-02 15:04")
}
