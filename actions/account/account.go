// Package account implements the account lifecycle commands: create, login,
// logout, status, stats and delete-account.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/pryvon/tempmail-cli/internal/app"
	"github.com/pryvon/tempmail-cli/internal/mailtm"
)

// CreateCommand creates a new temporary email account.
var CreateCommand = &cli.Command{
	Name:  "create",
	Usage: "Create a new temporary email account",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "username",
			Aliases: []string{"u"},
			Usage:   "Local part of the address (random if omitted)",
		},
		&cli.StringFlag{
			Name:    "domain",
			Aliases: []string{"d"},
			Usage:   "Domain for the address (first active domain if omitted)",
		},
		&cli.StringFlag{
			Name:    "password",
			Aliases: []string{"p"},
			Usage:   "Account password (random if omitted)",
		},
		&cli.BoolFlag{
			Name:  "auto-login",
			Usage: "Log in right after creation",
		},
	},
	Action: createAction,
}

// LoginCommand logs in to an existing account.
var LoginCommand = &cli.Command{
	Name:      "login",
	Usage:     "Login to an existing account",
	ArgsUsage: "[address]",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "password",
			Aliases: []string{"p"},
			Usage:   "Account password (not recommended, use interactive prompt)",
		},
	},
	Action: loginAction,
}

// LogoutCommand logs out and clears the local session.
var LogoutCommand = &cli.Command{
	Name:  "logout",
	Usage: "Logout from the current account",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "clear-credentials",
			Usage: "Also delete saved address/password",
		},
	},
	Action: logoutAction,
}

// StatusCommand shows the current login status.
var StatusCommand = &cli.Command{
	Name:   "status",
	Usage:  "Check current login status",
	Action: statusAction,
}

// StatsCommand shows account and cache statistics.
var StatsCommand = &cli.Command{
	Name:   "stats",
	Usage:  "Show account and cache statistics",
	Action: statsAction,
}

// DeleteAccountCommand permanently deletes the logged-in account.
var DeleteAccountCommand = &cli.Command{
	Name:  "delete-account",
	Usage: "Permanently delete the current account",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    "yes",
			Aliases: []string{"y"},
			Usage:   "Skip the confirmation prompt",
		},
	},
	Action: deleteAccountAction,
}

func createAction(ctx context.Context, cmd *cli.Command) error {
	a, err := app.Bootstrap(app.Options{ConfigFile: cmd.String("config"), Debug: cmd.Bool("debug")})
	if err != nil {
		return err
	}

	domain := cmd.String("domain")
	if domain == "" {
		fmt.Println("Fetching available domains...")
		domains, err := a.Client.Domains(ctx, true)
		if err != nil {
			return fmt.Errorf("failed to fetch domains: %w", err)
		}

		for _, d := range domains {
			if d.IsActive {
				domain = d.Domain
				break
			}
		}
		if domain == "" {
			return fmt.Errorf("no active domains available")
		}
	}

	username := cmd.String("username")
	if username == "" {
		username = randomString(8)
		fmt.Printf("Generated username: %s\n", username)
	}

	password := cmd.String("password")
	if password == "" {
		password = randomString(12)
		fmt.Printf("Generated password: %s\n", password)
	}

	address := fmt.Sprintf("%s@%s", username, domain)

	fmt.Printf("Creating account %s...\n", address)
	account, err := a.Client.CreateAccount(ctx, address, password)
	if err != nil {
		if errors.Is(err, mailtm.ErrAccountCreation) {
			return fmt.Errorf("account %s already exists", address)
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	fmt.Println("✓ Account created successfully!")
	fmt.Printf("  Address:  %s\n", account.Address)
	fmt.Printf("  Password: %s\n", password)

	if cmd.Bool("auto-login") {
		if _, _, err := a.Client.Login(ctx, address, password); err != nil {
			return fmt.Errorf("login after creation failed: %w", err)
		}
		if err := a.SaveSession(); err != nil {
			fmt.Printf("⚠ Warning: failed to save session: %v\n", err)
		}
		fmt.Println("✓ Logged in successfully!")
	}

	return nil
}

func loginAction(ctx context.Context, cmd *cli.Command) error {
	a, err := app.Bootstrap(app.Options{ConfigFile: cmd.String("config"), Debug: cmd.Bool("debug")})
	if err != nil {
		return err
	}

	address := cmd.Args().First()
	password := cmd.String("password")

	if address == "" {
		if saved, err := a.Storage.LoadCredentials(); err == nil && saved != nil && saved.Address != "" {
			fmt.Printf("Saved credentials found for %s\n", saved.Address)
			useSaved, _ := promptInput("Use saved credentials? [Y/n]: ")
			answer := strings.ToLower(useSaved)
			if answer == "" || answer == "y" || answer == "yes" {
				address = saved.Address
				password = saved.Password
			}
		}
	}

	if address == "" {
		address, err = promptInput("Address: ")
		if err != nil {
			return fmt.Errorf("failed to read address: %w", err)
		}
	}

	if password == "" {
		password, err = promptPassword("Password: ")
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
	}

	fmt.Println("Logging in...")
	account, _, err := a.Client.Login(ctx, address, password)
	if err != nil {
		if errors.Is(err, mailtm.ErrInvalidCredentials) {
			return fmt.Errorf("invalid email or password, please check your credentials")
		}
		return fmt.Errorf("login failed: %w", err)
	}

	if err := a.SaveSession(); err != nil {
		fmt.Printf("⚠ Warning: failed to save session: %v\n", err)
	}

	if a.Config.SaveCredentials {
		if err := a.Storage.SaveCredentials(address, password); err != nil {
			fmt.Printf("⚠ Warning: failed to save credentials: %v\n", err)
		}
	}

	fmt.Printf("✓ Login successful, welcome back %s\n", account.Address)

	if stats, err := a.Client.AccountStats(); err == nil {
		fmt.Printf("  Quota: %d/%d bytes (%.2f%%)\n", stats.QuotaUsed, stats.QuotaTotal, stats.QuotaPercentage)
	}

	return nil
}

func logoutAction(ctx context.Context, cmd *cli.Command) error {
	a, err := app.Bootstrap(app.Options{ConfigFile: cmd.String("config"), Debug: cmd.Bool("debug")})
	if err != nil {
		return err
	}

	if !a.Client.IsLoggedIn() {
		fmt.Println("Not currently logged in")
		return nil
	}

	address := a.Client.CurrentAccount().Address
	a.Client.Logout()

	if err := a.Storage.DeleteSession(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	fmt.Printf("✓ Successfully logged out from %s\n", address)

	if cmd.Bool("clear-credentials") {
		if err := a.Storage.DeleteCredentials(); err != nil {
			fmt.Printf("⚠ Warning: failed to delete credentials: %v\n", err)
		} else {
			fmt.Println("  Saved credentials deleted")
		}
	} else if a.Storage.HasCredentials() {
		fmt.Println("  Credentials still saved for quick re-login")
		fmt.Println("  Use 'logout --clear-credentials' to remove them")
	}

	return nil
}

func statusAction(ctx context.Context, cmd *cli.Command) error {
	a, err := app.Bootstrap(app.Options{ConfigFile: cmd.String("config"), Debug: cmd.Bool("debug")})
	if err != nil {
		return err
	}

	if !a.Client.IsLoggedIn() {
		fmt.Println("Status: Not logged in")
		fmt.Println("\nUse 'tempmail login' to authenticate")
		return nil
	}

	account := a.Client.CurrentAccount()
	fmt.Println("Status: Logged in")
	fmt.Printf("  Address: %s\n", account.Address)
	fmt.Printf("  Storage: %s\n", a.Storage.BasePath())
	fmt.Printf("  Cache:   %s\n", a.Cache.Path())

	return nil
}

func statsAction(ctx context.Context, cmd *cli.Command) error {
	a, err := app.Bootstrap(app.Options{ConfigFile: cmd.String("config"), Debug: cmd.Bool("debug")})
	if err != nil {
		return err
	}

	stats, err := a.Client.AccountStats()
	if err != nil {
		if errors.Is(err, mailtm.ErrAuthentication) {
			fmt.Println("Please login first using: tempmail login <address>")
			return nil
		}
		return err
	}

	fmt.Println("Account statistics")
	fmt.Printf("  Address:      %s\n", stats.Address)
	fmt.Printf("  Quota used:   %d / %d bytes\n", stats.QuotaUsed, stats.QuotaTotal)
	fmt.Printf("  Quota usage:  %.2f%%\n", stats.QuotaPercentage)
	fmt.Printf("  Created:      %s\n", stats.CreatedAt)
	fmt.Printf("  API requests: %d\n", stats.RequestCount)

	cacheStats := a.Client.CacheStats()
	fmt.Println("\nCache statistics")
	fmt.Printf("  Total entries:   %d\n", cacheStats.TotalEntries)
	fmt.Printf("  Active entries:  %d\n", cacheStats.ActiveEntries)
	fmt.Printf("  Expired entries: %d\n", cacheStats.ExpiredEntries)
	fmt.Printf("  Size on disk:    %d bytes\n", cacheStats.SizeBytes)

	return nil
}

func deleteAccountAction(ctx context.Context, cmd *cli.Command) error {
	a, err := app.Bootstrap(app.Options{ConfigFile: cmd.String("config"), Debug: cmd.Bool("debug")})
	if err != nil {
		return err
	}

	if !a.Client.IsLoggedIn() {
		fmt.Println("Please login first using: tempmail login <address>")
		return nil
	}

	address := a.Client.CurrentAccount().Address

	if !cmd.Bool("yes") {
		fmt.Printf("This permanently deletes %s and all its messages.\n", address)
		answer, _ := promptInput("Type the address to confirm: ")
		if answer != address {
			fmt.Println("Aborted")
			return nil
		}
	}

	if err := a.Client.DeleteAccount(ctx); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	if err := a.Storage.DeleteSession(); err != nil {
		fmt.Printf("⚠ Warning: failed to delete session: %v\n", err)
	}

	fmt.Printf("✓ Account %s deleted\n", address)
	return nil
}

// randomString returns a lowercase hex string of the given length.
func randomString(n int) string {
	s := strings.ReplaceAll(uuid.New().String(), "-", "")
	if n > len(s) {
		n = len(s)
	}
	return s[:n]
}
