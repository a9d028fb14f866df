package mailtm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const userAgent = "tempmail-cli/1.0"

// transient reports whether a status code is worth retrying.
func transient(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	}
	return false
}

// retryable reports whether a method may be retried automatically. POST is
// excluded: a transient failure does not prove the server discarded the
// request, and replaying account creation or login can duplicate side
// effects.
func retryable(method string) bool {
	return method != http.MethodPost
}

// backoffDelay returns the delay before retry attempt n (0-based), doubling
// from the base delay and capped.
func (c *Client) backoffDelay(attempt int) time.Duration {
	delay := c.retryBaseDelay << uint(attempt)
	if delay > c.maxRetryDelay {
		delay = c.maxRetryDelay
	}
	return delay
}

// waitTurn blocks until the minimum inter-request spacing has elapsed and
// bumps the request counter.
func (c *Client) waitTurn(ctx context.Context) error {
	if !c.lastRequest.IsZero() {
		if remaining := c.minInterval - c.now().Sub(c.lastRequest); remaining > 0 {
			if err := c.sleep(ctx, remaining); err != nil {
				return err
			}
		}
	}
	c.lastRequest = c.now()
	c.requestCount++
	return nil
}

// do performs one logical API call: rate limiting, bearer injection, retry
// with backoff on transient statuses, and status-to-error mapping. On
// success the response body, if any, is decoded into out. The HTTP status
// of the final response is returned alongside any error.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) (int, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	for attempt := 0; ; attempt++ {
		if err := c.waitTurn(ctx); err != nil {
			return 0, err
		}

		c.log.Debug().Str("method", method).Str("path", path).Int("attempt", attempt).Msg("making request")

		status, respBody, err := c.roundTrip(ctx, method, fullURL, payload)
		if err != nil {
			if retryable(method) && attempt < c.maxRetries {
				if werr := c.sleep(ctx, c.backoffDelay(attempt)); werr != nil {
					return 0, werr
				}
				continue
			}
			return 0, err
		}

		if transient(status) && retryable(method) && attempt < c.maxRetries {
			if werr := c.sleep(ctx, c.backoffDelay(attempt)); werr != nil {
				return 0, werr
			}
			continue
		}

		if status >= 400 {
			return status, parseAPIError(status, respBody)
		}

		if out != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, out); err != nil {
				return status, fmt.Errorf("failed to decode response: %w", err)
			}
		}

		return status, nil
	}
}

// roundTrip issues a single HTTP attempt and reads the full body. Transport
// failures are classified as network errors.
func (c *Client) roundTrip(ctx context.Context, method, fullURL string, payload []byte) (int, []byte, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		if method == http.MethodPatch {
			// Partial updates use JSON merge patch semantics.
			req.Header.Set("Content-Type", "application/merge-patch+json")
		} else {
			req.Header.Set("Content-Type", "application/json")
		}
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, classifyTransportError(err, fullURL)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &NetworkError{Err: fmt.Errorf("failed to read response: %w", err), URL: fullURL}
	}

	return resp.StatusCode, respBody, nil
}

// classifyTransportError maps transport failures onto the network kind.
// Cancellation from the caller's context is surfaced as-is.
func classifyTransportError(err error, fullURL string) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return &NetworkError{Err: fmt.Errorf("request timed out: %w", err), URL: fullURL}
	}
	return &NetworkError{Err: err, URL: fullURL}
}

// parseAPIError builds an APIError from an HTTP error response. When the
// body parses as structured data, its message field (or hydra description)
// becomes the error message; otherwise the raw body does.
func parseAPIError(status int, body []byte) error {
	apiErr := &APIError{StatusCode: status}

	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err == nil && parsed != nil {
		apiErr.Body = parsed
		apiErr.Message = extractMessage(parsed)
	}
	if apiErr.Message == "" {
		apiErr.Message = string(body)
	}

	return apiErr
}

// extractMessage pulls a human-readable message out of a structured error
// payload.
func extractMessage(parsed map[string]any) string {
	for _, field := range []string{"message", "hydra:description", "detail"} {
		if v, ok := parsed[field].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
