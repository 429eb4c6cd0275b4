// Package line pushes text messages through the LINE Messaging API.
package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"notification-hub/relay/pkg/domain"
)

const pushPath = "/v2/bot/message/push"

// APIError is a non-2xx answer from the LINE API. Body is the provider's raw
// response, passed back to the storefront unchanged.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("line api returned %d: %s", e.StatusCode, e.Body)
}

// Client is a single-attempt push client. It is safe for concurrent use.
type Client struct {
	BaseURL     string
	AccessToken string
	HTTPClient  *http.Client
}

// NewClient returns a client for the given API base URL.
func NewClient(baseURL, accessToken string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:     baseURL,
		AccessToken: accessToken,
		HTTPClient:  &http.Client{Timeout: timeout},
	}
}

// Push sends text to the user or group identified by to.
func (c *Client) Push(ctx context.Context, to, text string) error {
	b, err := json.Marshal(domain.NewTextPush(to, text))
	if err != nil {
		return err
	}
	endpoint := strings.TrimRight(c.BaseURL, "/") + pushPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("line push: %w", err)
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("line push: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(out)}
	}
	return nil
}
