package mailtm

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAccount(t *testing.T) {
	c, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/accounts", r.URL.Path)

		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "user@example.test", creds["address"])
		assert.Equal(t, "secret123", creds["password"])

		writeJSON(w, 201, `{"id":"acct-1","address":"user@example.test","quota":40000000}`)
	}))

	store.Set(domainsKey(), []Domain{{Domain: "example.test"}}, time.Minute)

	account, err := c.CreateAccount(context.Background(), "user@example.test", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "acct-1", account.ID)
	assert.Equal(t, "user@example.test", account.Address)

	_, ok := store.Get(domainsKey())
	assert.False(t, ok, "domain listing should be invalidated after account creation")
}

func TestCreateAccountValidation(t *testing.T) {
	tests := []struct {
		name     string
		address  string
		password string
	}{
		{"empty address", "", "secret123"},
		{"address without at sign", "userexample.test", "secret123"},
		{"short password", "user@example.test", "12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("validation failures must not reach the network")
			}))

			_, err := c.CreateAccount(context.Background(), tt.address, tt.password)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)

			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
			assert.Equal(t, int64(0), c.RequestCount())
		})
	}
}

func TestCreateAccountAlreadyExists(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 422, `{"hydra:description":"This address already exists."}`)
	}))

	_, err := c.CreateAccount(context.Background(), "taken@example.test", "secret123")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAccountCreation)

	var cerr *AccountCreationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "taken@example.test", cerr.Address)
}

func TestCreateAccountOtherAPIError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 422, `{"hydra:description":"This value is not a valid email address."}`)
	}))

	_, err := c.CreateAccount(context.Background(), "bad@example.test", "secret123")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAccountCreation)
	assert.ErrorIs(t, err, ErrAPI)
}

func TestLogin(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			require.Equal(t, http.MethodPost, r.Method)
			writeJSON(w, 200, `{"token":"jwt-token","id":"acct-1"}`)
		case "/me":
			require.Equal(t, "Bearer jwt-token", r.Header.Get("Authorization"))
			writeJSON(w, 200, `{"id":"acct-1","address":"user@example.test","quota":40000000,"used":100}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	account, token, err := c.Login(context.Background(), "user@example.test", "secret123")
	require.NoError(t, err)

	assert.Equal(t, "jwt-token", token)
	assert.Equal(t, "user@example.test", account.Address)
	assert.True(t, c.IsLoggedIn())
	assert.Equal(t, account, c.CurrentAccount())
}

func TestLoginRejectedCredentials(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 401, `{"message":"Invalid credentials."}`)
	}))

	_, _, err := c.Login(context.Background(), "user@example.test", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.False(t, c.IsLoggedIn())
}

func TestLoginProfileFetchFailureClearsToken(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			writeJSON(w, 200, `{"token":"jwt-token"}`)
		case "/me":
			writeJSON(w, 404, `{"message":"Not Found"}`)
		}
	}))
	c.maxRetries = 0

	_, _, err := c.Login(context.Background(), "user@example.test", "secret123")
	require.Error(t, err)
	assert.False(t, c.IsLoggedIn())
	assert.Empty(t, c.Token())
}

func TestDeleteAccount(t *testing.T) {
	var deletedPath string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		deletedPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	loginTestClient(t, c)

	require.NoError(t, c.DeleteAccount(context.Background()))
	assert.Equal(t, "/accounts/acct-1", deletedPath)
	assert.False(t, c.IsLoggedIn(), "session is cleared after deletion")
}

func TestDeleteAccountUnexpectedStatus(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{}`)
	}))
	loginTestClient(t, c)

	err := c.DeleteAccount(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAPI)
	assert.True(t, c.IsLoggedIn(), "session survives a failed deletion")
}

func TestDeleteAccountRequiresLogin(t *testing.T) {
	c, _ := newTestClient(t, http.NotFoundHandler())

	err := c.DeleteAccount(context.Background())
	assert.ErrorIs(t, err, ErrAuthentication)
}
