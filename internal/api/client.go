package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"campusboard/internal/credentials"
)

// SnapshotCache stores the last successful payload of selected GET calls so
// screens can keep showing stale data when a refresh fails.
type SnapshotCache interface {
	Put(key string, payload []byte) error
	Get(key string) (payload []byte, fetchedAt time.Time, err error)
}

// Client is the authorized HTTP client for the campus backend. The bearer
// token comes from the injected credential provider, consumed through the
// standard oauth2.TokenSource interface; a missing token is sent as an empty
// bearer value and rejected server-side.
type Client struct {
	baseURL string
	tokens  oauth2.TokenSource
	http    *http.Client
	cache   SnapshotCache
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client (tests, custom timeouts).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithSnapshotCache attaches a snapshot cache for stale-data fallback.
func WithSnapshotCache(sc SnapshotCache) Option {
	return func(c *Client) { c.cache = sc }
}

// NewClient creates a client for baseURL acting as role.
func NewClient(baseURL, role string, creds credentials.Provider, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  credentials.TokenSource(creds, role),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Error is a non-2xx response from the backend.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server responded %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server responded %d", e.Status)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// newRequest builds a request with bearer auth and a client request id
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}

	token, err := c.tokens.Token()
	if err != nil {
		return nil, err
	}
	// an empty bearer passes through; the server decides
	token.SetAuthHeader(req)
	req.Header.Set("X-Request-ID", uuid.New().String())
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do executes req and decodes a JSON body into out (out may be nil)
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Status: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

// get performs an authorized GET and decodes the JSON response
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// postJSON performs an authorized POST with a JSON body
func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

// putJSON performs an authorized PUT with a JSON body
func (c *Client) putJSON(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPut, path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// delete performs an authorized DELETE
func (c *Client) delete(ctx context.Context, path string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// cachePut stores a snapshot payload, ignoring cache errors; the cache is a
// convenience, never a reason to fail a successful fetch
func (c *Client) cachePut(key string, v any) {
	if c.cache == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.cache.Put(key, data)
}

// cacheGet loads a snapshot payload into out
func (c *Client) cacheGet(key string, out any) (time.Time, error) {
	if c.cache == nil {
		return time.Time{}, errors.New("no snapshot cache configured")
	}
	data, fetchedAt, err := c.cache.Get(key)
	if err != nil {
		return time.Time{}, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return time.Time{}, err
	}
	return fetchedAt, nil
}

// readErrorMessage extracts a server error message from a response body,
// accepting either {"error": "..."} / {"message": "..."} or plain text
func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return strings.TrimSpace(string(data))
}
