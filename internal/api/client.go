package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrStatus is wrapped by errors for non-2xx responses.
var ErrStatus = errors.New("unexpected response status")

// DefaultUserHeader carries the user name the catalog filters access by.
const DefaultUserHeader = "X-Bqlab-User"

// maxBody caps how much of a response body is read.
const maxBody = 8 << 20

// Client talks to a catalog server.
type Client struct {
	BaseURL    string
	User       string
	UserHeader string
	HTTPClient *http.Client
}

// NewClient creates a client for baseURL with the given request timeout.
func NewClient(baseURL, user string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		User:       user,
		UserHeader: DefaultUserHeader,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// Get fetches path relative to BaseURL and returns the raw JSON body.
func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return nil, fmt.Errorf("api: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.User != "" {
		header := c.UserHeader
		if header == "" {
			header = DefaultUserHeader
		}
		req.Header.Set(header, c.User)
	}

	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: get %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("api: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e ErrorResponse
		if json.Unmarshal(body, &e) == nil && e.Message != "" {
			return nil, fmt.Errorf("api: get %s: %w %d: %s", path, ErrStatus, resp.StatusCode, e.Message)
		}
		return nil, fmt.Errorf("api: get %s: %w %d", path, ErrStatus, resp.StatusCode)
	}
	return json.RawMessage(body), nil
}

// Read fetches and decodes the catalog list.
func (c *Client) Read(ctx context.Context) (ReadResponse, error) {
	raw, err := c.Get(ctx, ReadPath)
	if err != nil {
		return ReadResponse{}, err
	}
	return DecodeRead(raw)
}

// Endpoint returns the absolute URL for path, for display.
func (c *Client) Endpoint(path string) string {
	return c.url(path)
}

func (c *Client) url(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.BaseURL + path
}
