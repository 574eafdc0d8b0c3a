package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"FinMerge/pkg/cache"
)

const (
	MethodGet  = http.MethodGet
	MethodPost = http.MethodPost
)

// ClientOption configures HTTPClient.
type ClientOption func(*Client)

// RequestOptions holds HTTP request parameters.
type RequestOptions struct {
	Method      string
	URL         string
	Headers     map[string]string
	QueryParams map[string][]string
	Body        interface{}
	// CacheKey opts a GET into the response cache when the client has one.
	CacheKey string
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
	URL  string
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s: %s", e.Code, e.URL, e.Body)
}

// Client represents an HTTP client with configurable timeout.
type Client struct {
	timeout    time.Duration
	client     *http.Client
	headers    map[string]string
	userAgents []string
	cache      cache.Service
	cacheTTL   time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewClient creates a new HTTP client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		timeout: 30 * time.Second,
		headers: map[string]string{},
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.client == nil {
		c.client = &http.Client{Timeout: c.timeout}
	}
	return c
}

// SendRequest sends an HTTP request and returns response.
func (c *Client) SendRequest(ctx context.Context, opts *RequestOptions) (*http.Response, error) {
	req, err := c.buildRequest(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return resp, nil
}

// Get fetches opts.URL and returns the body, consulting the response cache when opts.CacheKey is set.
func (c *Client) Get(ctx context.Context, opts *RequestOptions) ([]byte, error) {
	if opts.Method == "" {
		opts.Method = MethodGet
	}

	if c.cache != nil && opts.CacheKey != "" {
		if body, err := c.cache.Get(ctx, opts.CacheKey); err == nil {
			return body, nil
		}
	}

	var body []byte
	if err := c.SendAndParse(ctx, opts, &body); err != nil {
		return nil, err
	}

	if c.cache != nil && opts.CacheKey != "" {
		_ = c.cache.Set(ctx, opts.CacheKey, body, c.cacheTTL)
	}
	return body, nil
}

// GetJSON is Get followed by a JSON decode into dest.
func (c *Client) GetJSON(ctx context.Context, opts *RequestOptions, dest interface{}) error {
	body, err := c.Get(ctx, opts)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		if c.cache != nil && opts.CacheKey != "" {
			_ = c.cache.Delete(ctx, opts.CacheKey)
		}
		return &DecodeError{Err: err}
	}
	return nil
}

// DecodeError reports a response body that did not have the expected shape.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "decode json: " + e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

// SendAndParse sends request and parses JSON response.
func (c *Client) SendAndParse(ctx context.Context, opts *RequestOptions, dest interface{}) error {
	resp, err := c.SendRequest(ctx, opts)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Code: resp.StatusCode, URL: opts.URL, Body: string(body)}
	}

	if dest == nil {
		return nil
	}

	switch v := dest.(type) {
	case *[]byte:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		*v = body
	case io.Writer:
		if _, err := io.Copy(v, resp.Body); err != nil {
			return fmt.Errorf("copy body: %w", err)
		}
	default:
		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			return &DecodeError{Err: err}
		}
	}

	return nil
}

// IsDecodeError reports whether err came from an unexpected response shape.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

func (c *Client) buildRequest(ctx context.Context, opts *RequestOptions) (*http.Request, error) {
	body, err := c.createRequestBody(opts)
	if err != nil {
		return nil, fmt.Errorf("create body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, opts.Method, opts.URL, body)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	c.addQueryParams(req, opts.QueryParams)
	c.addHeaders(req, opts.Headers)

	return req, nil
}

func (c *Client) createRequestBody(opts *RequestOptions) (io.Reader, error) {
	if opts.Body == nil {
		return nil, nil
	}

	switch v := opts.Body.(type) {
	case []byte:
		return bytes.NewBuffer(v), nil
	case io.Reader:
		return v, nil
	case string:
		return strings.NewReader(v), nil
	default:
		jsonBody, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal json: %w", err)
		}
		return bytes.NewBuffer(jsonBody), nil
	}
}

func (c *Client) addQueryParams(req *http.Request, params map[string][]string) {
	if len(params) > 0 {
		q := req.URL.Query()
		for key, values := range params {
			for _, value := range values {
				q.Add(key, value)
			}
		}
		req.URL.RawQuery = q.Encode()
	}
}

func (c *Client) addHeaders(req *http.Request, headers map[string]string) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	if ua := c.pickUserAgent(); ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	if req.Header.Get("Content-Type") == "" && req.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
}

func (c *Client) pickUserAgent() string {
	if len(c.userAgents) == 0 {
		return ""
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userAgents[c.rnd.Intn(len(c.userAgents))]
}

// WithTimeout sets client timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.client = hc
	}
}

// WithHeaders sets headers sent on every request unless overridden per request.
func WithHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		for k, v := range headers {
			c.headers[k] = v
		}
	}
}

// WithUserAgents rotates the User-Agent header randomly across the pool.
func WithUserAgents(pool []string) ClientOption {
	return func(c *Client) {
		c.userAgents = append([]string(nil), pool...)
	}
}

// WithCache enables response caching for requests that carry a CacheKey.
func WithCache(svc cache.Service, ttl time.Duration) ClientOption {
	return func(c *Client) {
		c.cache = svc
		c.cacheTTL = ttl
	}
}

// BrowserHeaders are the Accept headers a desktop browser sends for a page load.
func BrowserHeaders() map[string]string {
	return map[string]string{
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.5",
		"Connection":      "keep-alive",
	}
}
