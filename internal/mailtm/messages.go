package mailtm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Messages lists one page of the logged-in account's mailbox. A limit of 0
// uses the configured default page size; a page of 0 means the first page.
// Pages are cached per account/page/limit for five minutes.
func (c *Client) Messages(ctx context.Context, page, limit int, useCache bool) ([]Message, error) {
	if !c.IsLoggedIn() {
		return nil, fmt.Errorf("%w: no account logged in", ErrAuthentication)
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = c.defaultPageSize
	}

	key := messagesKey(c.account.ID, page, limit)

	if useCache {
		if raw, ok := c.cache.Get(key); ok {
			var messages []Message
			if err := json.Unmarshal(raw, &messages); err == nil {
				c.log.Debug().Msg("using cached messages")
				return messages, nil
			}
		}
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))

	var list messageList
	if _, err := c.do(ctx, http.MethodGet, "/messages", query, nil, &list); err != nil {
		return nil, err
	}

	messages := make([]Message, 0, len(list.Member))
	for i := range list.Member {
		messages = append(messages, list.Member[i].toMessage())
	}

	if useCache {
		c.cache.Set(key, messages, messagesTTL)
	}

	c.log.Debug().Int("count", len(messages)).Msg("retrieved messages")
	return messages, nil
}

// Message fetches a full message by ID, including any text or HTML body.
// Cached per message for thirty minutes.
func (c *Client) Message(ctx context.Context, id string, useCache bool) (*MessageDetail, error) {
	if !c.IsLoggedIn() {
		return nil, fmt.Errorf("%w: no account logged in", ErrAuthentication)
	}

	key := messageKey(id)

	if useCache {
		if raw, ok := c.cache.Get(key); ok {
			var detail MessageDetail
			if err := json.Unmarshal(raw, &detail); err == nil {
				c.log.Debug().Str("id", id).Msg("using cached message")
				return &detail, nil
			}
		}
	}

	var wire messageDetailWire
	if _, err := c.do(ctx, http.MethodGet, "/messages/"+id, nil, nil, &wire); err != nil {
		return nil, err
	}

	detail := wire.toDetail()

	if useCache {
		c.cache.Set(key, &detail, messageTTL)
	}

	return &detail, nil
}

// MarkMessageSeen flags a message as read and invalidates the cache entries
// the update makes stale: the message itself and the first mailbox page.
func (c *Client) MarkMessageSeen(ctx context.Context, id string) error {
	if !c.IsLoggedIn() {
		return fmt.Errorf("%w: no account logged in", ErrAuthentication)
	}

	patch := map[string]bool{"seen": true}
	if _, err := c.do(ctx, http.MethodPatch, "/messages/"+id, nil, patch, nil); err != nil {
		return err
	}

	c.invalidateMessage(id)
	c.log.Debug().Str("id", id).Msg("message marked as seen")
	return nil
}

// DeleteMessage removes a message. Only an empty 204 response counts as
// success. Invalidation mirrors MarkMessageSeen.
func (c *Client) DeleteMessage(ctx context.Context, id string) error {
	if !c.IsLoggedIn() {
		return fmt.Errorf("%w: no account logged in", ErrAuthentication)
	}

	status, err := c.do(ctx, http.MethodDelete, "/messages/"+id, nil, nil, nil)
	if err != nil {
		return err
	}
	if status != http.StatusNoContent {
		return &APIError{StatusCode: status, Message: "unexpected response to message deletion"}
	}

	c.invalidateMessage(id)
	c.log.Debug().Str("id", id).Msg("message deleted")
	return nil
}

// RefreshMailbox drops the cached first page and re-reads the mailbox with
// caching bypassed.
func (c *Client) RefreshMailbox(ctx context.Context) ([]Message, error) {
	if !c.IsLoggedIn() {
		return nil, fmt.Errorf("%w: no account logged in", ErrAuthentication)
	}

	c.cache.Delete(c.firstPageKey(c.account.ID))
	return c.Messages(ctx, 1, 0, false)
}

// invalidateMessage drops the cache entries affected by a message mutation.
func (c *Client) invalidateMessage(id string) {
	c.cache.Delete(messageKey(id))
	c.cache.Delete(c.firstPageKey(c.account.ID))
}
