package mailtm

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	messagesPage = `{"hydra:member":[
		{"id":"m1","from":{"address":"sender@example.test","name":"Sender"},
		 "to":[{"address":"user@example.test"}],
		 "subject":"Hello","intro":"Hi there","seen":false,"size":1234,
		 "createdAt":"2026-08-28T10:00:00Z"},
		{"id":"m2","from":{"address":"other@example.test"},
		 "subject":"Second","seen":true,"size":99}
	]}`

	messageDetail = `{"id":"m1","from":{"address":"sender@example.test"},
		"to":[{"address":"user@example.test"}],
		"subject":"Hello","seen":false,
		"text":"Hi there, full body.","html":["<p>Hi there</p>"]}`
)

func TestMessages(t *testing.T) {
	var gotQuery atomic.Value
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/messages", r.URL.Path)
		gotQuery.Store(r.URL.RawQuery)
		writeJSON(w, 200, messagesPage)
	}))
	loginTestClient(t, c)

	msgs, err := c.Messages(context.Background(), 2, 10, false)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, "m1", msgs[0].ID)
	assert.Equal(t, "sender@example.test", msgs[0].FromAddress)
	assert.Equal(t, "user@example.test", msgs[0].ToAddress)
	assert.Equal(t, "Hello", msgs[0].Subject)
	assert.False(t, msgs[0].Seen)
	assert.True(t, msgs[1].Seen)

	assert.Contains(t, gotQuery.Load(), "page=2")
	assert.Contains(t, gotQuery.Load(), "limit=10")
}

func TestMessagesRequiresLogin(t *testing.T) {
	c, _ := newTestClient(t, http.NotFoundHandler())

	_, err := c.Messages(context.Background(), 1, 10, false)
	assert.ErrorIs(t, err, ErrAuthentication)
	assert.Equal(t, int64(0), c.RequestCount())
}

func TestMessagesNormalizesPaging(t *testing.T) {
	var gotQuery atomic.Value
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.RawQuery)
		writeJSON(w, 200, `{"hydra:member":[]}`)
	}))
	loginTestClient(t, c)
	c.defaultPageSize = 50

	_, err := c.Messages(context.Background(), 0, 0, false)
	require.NoError(t, err)
	assert.Contains(t, gotQuery.Load(), "page=1")
	assert.Contains(t, gotQuery.Load(), "limit=50")
}

func TestMessagesServedFromCache(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, 200, messagesPage)
	}))
	loginTestClient(t, c)

	first, err := c.Messages(context.Background(), 1, 10, true)
	require.NoError(t, err)

	second, err := c.Messages(context.Background(), 1, 10, true)
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load(), "second read must be served from cache")
	assert.Equal(t, first, second)
}

func TestMessagesCacheKeyedByPage(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, 200, messagesPage)
	}))
	loginTestClient(t, c)

	_, err := c.Messages(context.Background(), 1, 10, true)
	require.NoError(t, err)
	_, err = c.Messages(context.Background(), 2, 10, true)
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load(), "different pages are cached separately")
}

func TestMessageDetail(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/messages/m1", r.URL.Path)
		writeJSON(w, 200, messageDetail)
	}))
	loginTestClient(t, c)

	detail, err := c.Message(context.Background(), "m1", false)
	require.NoError(t, err)

	assert.Equal(t, "m1", detail.ID)
	assert.Equal(t, "Hi there, full body.", detail.Text)
	require.Len(t, detail.HTML, 1)
	assert.Equal(t, "<p>Hi there</p>", detail.HTML[0])
}

func TestMarkMessageSeenInvalidatesCache(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			calls.Add(1)
			writeJSON(w, 200, messagesPage)
		case http.MethodPatch:
			writeJSON(w, 200, `{"id":"m1","seen":true}`)
		}
	}))
	account := loginTestClient(t, c)

	// Warm the first-page cache at the default page size.
	_, err := c.Messages(context.Background(), 1, 0, true)
	require.NoError(t, err)
	require.Equal(t, int32(1), calls.Load())

	require.NoError(t, c.MarkMessageSeen(context.Background(), "m1"))

	_, ok := c.cache.Get(c.firstPageKey(account.ID))
	assert.False(t, ok, "first page must be invalidated by the update")
	_, ok = c.cache.Get(messageKey("m1"))
	assert.False(t, ok)

	// The next listing goes back to the server rather than the stale cache.
	_, err = c.Messages(context.Background(), 1, 0, true)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDeleteMessage(t *testing.T) {
	c, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/messages/m1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	account := loginTestClient(t, c)

	store.Set(messageKey("m1"), MessageDetail{}, messageTTL)
	store.Set(c.firstPageKey(account.ID), []Message{{ID: "m1"}}, messagesTTL)

	require.NoError(t, c.DeleteMessage(context.Background(), "m1"))

	_, ok := store.Get(messageKey("m1"))
	assert.False(t, ok)
	_, ok = store.Get(c.firstPageKey(account.ID))
	assert.False(t, ok)
}

func TestDeleteMessageUnexpectedStatus(t *testing.T) {
	c, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{}`)
	}))
	loginTestClient(t, c)
	store.Set(messageKey("m1"), MessageDetail{}, messageTTL)

	err := c.DeleteMessage(context.Background(), "m1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAPI)

	_, ok := store.Get(messageKey("m1"))
	assert.True(t, ok, "cache untouched when deletion fails")
}

func TestRefreshMailboxBypassesCache(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, 200, messagesPage)
	}))
	loginTestClient(t, c)

	// Warm the cache, then refresh: the refresh must hit the server.
	_, err := c.Messages(context.Background(), 1, 0, true)
	require.NoError(t, err)

	msgs, err := c.RefreshMailbox(context.Background())
	require.NoError(t, err)
	assert.Len(t, msgs, 2)
	assert.Equal(t, int32(2), calls.Load())
}
