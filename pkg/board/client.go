package board

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gridsnap/gridsnap/pkg/errors"
)

// Client implements Board over the gridsnap REST API (see NewHandler for the
// protocol). Transient failures (network errors, 5xx) are retried with
// exponential backoff; 4xx responses fail immediately.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a board API client for the given base URL,
// e.g. "http://localhost:7421".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Selection fetches the currently selected items.
func (c *Client) Selection(ctx context.Context) ([]*Item, error) {
	var items []*Item
	err := c.do(ctx, http.MethodGet, "/api/items?selected=true", nil, &items)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Apply sends one mutation as a PATCH.
func (c *Client) Apply(ctx context.Context, m Mutation) error {
	path := "/api/items/" + m.ID
	if err := c.do(ctx, http.MethodPatch, path, m, nil); err != nil {
		return errors.Wrap(errors.ErrCodeCommitFailed, err, "apply mutation to %s", m.ID)
	}
	return nil
}

// CreateImage adds a new image widget on the remote board.
func (c *Client) CreateImage(ctx context.Context, req CreateImageRequest) (*Item, error) {
	var it Item
	if err := c.do(ctx, http.MethodPost, "/api/items", req, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

// Notify posts a fire-and-forget notification. Failures are swallowed; a
// broken notification channel must not fail an otherwise healthy operation.
func (c *Client) Notify(ctx context.Context, level NotifyLevel, message string) {
	_ = c.do(ctx, http.MethodPost, "/api/notify", Notification{Level: level, Message: message}, nil)
}

// Health checks the /healthz endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

// do runs one API call with retry on transient failures.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return err
		}
	}

	return RetryWithBackoff(ctx, func() error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return err
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "%s %s", method, path))
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return Retryable(errors.New(errors.ErrCodeNetwork, "%s %s: server error %d", method, path, resp.StatusCode))
		}
		if resp.StatusCode >= 400 {
			return decodeAPIError(resp)
		}

		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return fmt.Errorf("decode response for %s %s: %w", method, path, err)
			}
		}
		return nil
	})
}

// decodeAPIError maps the server's error envelope back to a structured error.
func decodeAPIError(resp *http.Response) error {
	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Code == "" {
		return errors.New(errors.ErrCodeInternal, "board API returned status %d", resp.StatusCode)
	}
	return errors.New(body.Code, "%s", body.Message)
}

// Ensure Client implements Board.
var _ Board = (*Client)(nil)
