// Package postgrest implements the remote record store over a PostgREST
// endpoint such as Supabase's REST API.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/dself/internal/core/domain"
	"github.com/custodia-labs/dself/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.RemoteStore = (*Client)(nil)

const restPath = "/rest/v1"

// Client is a PostgREST table client.
type Client struct {
	baseURL    string
	key        string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New creates a client for a project URL (e.g. "https://abc.supabase.co").
// The REST path is appended unless the URL already ends with it.
func New(projectURL, key string, opts ...Option) *Client {
	base := strings.TrimRight(projectURL, "/")
	if !strings.HasSuffix(base, restPath) {
		base += restPath
	}
	c := &Client{
		baseURL:    base,
		key:        key,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Insert implements driven.RemoteStore.
func (c *Client) Insert(ctx context.Context, table string, rows []domain.Record) (int, error) {
	return c.write(ctx, table, rows, nil, "return=representation")
}

// Upsert implements driven.RemoteStore using on_conflict with merge-duplicates.
func (c *Client) Upsert(ctx context.Context, table string, rows []domain.Record, keyColumn string) (int, error) {
	params := url.Values{"on_conflict": {keyColumn}}
	return c.write(ctx, table, rows, params, "resolution=merge-duplicates,return=representation")
}

// Select implements driven.RemoteStore.
func (c *Client) Select(ctx context.Context, table, columns string, limit int) (int, error) {
	params := url.Values{
		"select": {columns},
		"limit":  {strconv.Itoa(limit)},
	}
	var rows []json.RawMessage
	if err := c.do(ctx, http.MethodGet, table, params, nil, "", &rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// Close implements driven.RemoteStore.
func (c *Client) Close() error {
	return nil
}

func (c *Client) write(ctx context.Context, table string, rows []domain.Record, params url.Values, prefer string) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	var returned []json.RawMessage
	if err := c.do(ctx, http.MethodPost, table, params, rows, prefer, &returned); err != nil {
		return 0, err
	}
	return len(returned), nil
}

// do executes a request against a table and decodes the JSON response.
func (c *Client) do(ctx context.Context, method, table string, params url.Values, body any, prefer string, result any) error {
	u := c.baseURL + "/" + url.PathEscape(table)
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return parseAPIError(resp.StatusCode, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
