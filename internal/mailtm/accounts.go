package mailtm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// credentials is the request body for account creation and login.
type credentials struct {
	Address  string `json:"address"`
	Password string `json:"password"`
}

// CreateAccount registers a new account. Input is validated before any
// network call. On success the cached domain listing is invalidated, since
// one of its domains may now be associated with an account.
func (c *Client) CreateAccount(ctx context.Context, address, password string) (*Account, error) {
	if address == "" || !strings.Contains(address, "@") {
		return nil, &ValidationError{Field: "address", Reason: "must be a full email address"}
	}
	if len(password) < 6 {
		return nil, &ValidationError{Field: "password", Reason: "must be at least 6 characters long"}
	}

	c.log.Info().Str("address", address).Msg("creating account")

	var account Account
	_, err := c.do(ctx, http.MethodPost, "/accounts", nil, credentials{Address: address, Password: password}, &account)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && strings.Contains(strings.ToLower(apiErr.Message), "already exists") {
			return nil, &AccountCreationError{Address: address, Err: apiErr}
		}
		return nil, err
	}

	c.cache.Delete(domainsKey())

	c.log.Info().Str("address", account.Address).Msg("account created")
	return &account, nil
}

// Login authenticates and stores the session. The token grant is followed
// by a profile fetch so the current account is always known while logged in.
func (c *Client) Login(ctx context.Context, address, password string) (*Account, string, error) {
	c.log.Info().Str("address", address).Msg("logging in")

	var tok tokenResponse
	_, err := c.do(ctx, http.MethodPost, "/token", nil, credentials{Address: address, Password: password}, &tok)
	if err != nil {
		// A rejected token grant means bad credentials, not a stale session.
		if errors.Is(err, ErrAuthentication) {
			return nil, "", fmt.Errorf("%w", ErrInvalidCredentials)
		}
		return nil, "", err
	}

	c.token = tok.Token

	var account Account
	if _, err := c.do(ctx, http.MethodGet, "/me", nil, nil, &account); err != nil {
		c.token = ""
		return nil, "", err
	}

	c.account = &account
	c.log.Info().Str("address", account.Address).Msg("login successful")

	return &account, c.token, nil
}

// DeleteAccount removes the logged-in account. Only an empty 204 response
// counts as success. The local session is cleared afterwards.
func (c *Client) DeleteAccount(ctx context.Context) error {
	if !c.IsLoggedIn() {
		return fmt.Errorf("%w: no account logged in", ErrAuthentication)
	}

	c.log.Warn().Str("address", c.account.Address).Msg("deleting account")

	status, err := c.do(ctx, http.MethodDelete, "/accounts/"+c.account.ID, nil, nil, nil)
	if err != nil {
		return err
	}
	if status != http.StatusNoContent {
		return &APIError{StatusCode: status, Message: "unexpected response to account deletion"}
	}

	c.Logout()
	return nil
}
