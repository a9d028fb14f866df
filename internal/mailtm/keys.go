package mailtm

import "fmt"

// Cache keys are derived here and nowhere else. Listing reads and the
// invalidations issued by mutations must agree on the exact key format, so
// both sides call these helpers.

// domainsKey is the cache key for the domain listing.
func domainsKey() string {
	return "domains"
}

// messageKey is the cache key for a single full message.
func messageKey(id string) string {
	return "message_" + id
}

// messagesKey is the cache key for one page of an account's mailbox.
func messagesKey(accountID string, page, limit int) string {
	return fmt.Sprintf("messages_%s_%d_%d", accountID, page, limit)
}

// firstPageKey is the key mutations invalidate: the first mailbox page at
// the client's default page size, matching what Messages reads by default.
func (c *Client) firstPageKey(accountID string) string {
	return messagesKey(accountID, 1, c.defaultPageSize)
}
