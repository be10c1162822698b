package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// Client calls the ERP HTTP API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	mu    sync.RWMutex
	token string
}

type settings struct {
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration
	timeout      time.Duration
	logger       *slog.Logger
	transport    http.RoundTripper
}

// Option configures a Client.
type Option func(*settings)

// WithRetry sets how often and how long transient failures are retried.
func WithRetry(max int, waitMin, waitMax time.Duration) Option {
	return func(s *settings) {
		s.retryMax = max
		s.retryWaitMin = waitMin
		s.retryWaitMax = waitMax
	}
}

// WithTimeout bounds a single attempt.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) { s.timeout = d }
}

// WithLogger sets the logger used for retries and failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithTransport replaces the underlying round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(s *settings) { s.transport = rt }
}

// New returns a client for the API rooted at baseURL, e.g. "http://localhost:8080/api/v1".
func New(baseURL string, opts ...Option) *Client {
	s := settings{
		retryMax:     3,
		retryWaitMin: 200 * time.Millisecond,
		retryWaitMax: 2 * time.Second,
		timeout:      15 * time.Second,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = &http.Client{Timeout: s.timeout, Transport: s.transport}
	retryClient.RetryMax = s.retryMax
	retryClient.RetryWaitMin = s.retryWaitMin
	retryClient.RetryWaitMax = s.retryWaitMax
	retryClient.Logger = s.logger
	retryClient.CheckRetry = checkRetry
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: retryClient.StandardClient(),
		logger:     s.logger,
	}
}

// checkRetry retries transport failures and responses that say the server
// was briefly unable to answer. A 500 is a definite answer and is not retried.
// Requests that must not be replayed are only retried when the server asked
// to slow down or the connection was never established.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	once := !replayable(ctx)
	if err != nil {
		if once && !isDialError(err) {
			return false, nil
		}
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return true, nil
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return !once, nil
	}
	return false, nil
}

type noReplayKey struct{}

// withoutReplay marks ctx so the request it carries is not sent again after
// it may have reached the server.
func withoutReplay(ctx context.Context) context.Context {
	return context.WithValue(ctx, noReplayKey{}, true)
}

func replayable(ctx context.Context) bool {
	v, _ := ctx.Value(noReplayKey{}).(bool)
	return !v
}

// idempotent reports whether repeating a request with method has no
// additional effect on the server.
func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

func isDialError(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

// SetToken sets the bearer token sent with every request. An empty token logs out.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string { return c.baseURL }

type envelope struct {
	Code       int               `json:"code"`
	Error      string            `json:"error"`
	Message    string            `json:"message"`
	Data       json.RawMessage   `json:"data"`
	Pagination *pageMeta         `json:"pagination"`
	Errors     map[string]string `json:"errors"`
}

type pageMeta struct {
	Total     int64 `json:"total"`
	Page      int   `json:"page"`
	PageSize  int   `json:"pageSize"`
	PageCount int   `json:"pageCount"`
}

// Do sends a JSON request and decodes the data of the response envelope into out.
// out may be nil.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	_, err := c.do(ctx, method, path, query, body, out)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, query, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	if !idempotent(method) {
		ctx = withoutReplay(ctx)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return req, nil
}

func (c *Client) send(req *http.Request, out any) (*envelope, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "method", req.Method, "path", req.URL.Path, "error", err)
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response %s %s: %w", req.Method, req.URL.Path, err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &Error{Status: resp.StatusCode, Code: env.Error, Message: env.Message, Fields: env.Errors}
		if decodeErr != nil || apiErr.Code == "" {
			apiErr.Code = codeForStatus(resp.StatusCode)
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		c.logger.Debug("request rejected", "method", req.Method, "path", req.URL.Path,
			"status", resp.StatusCode, "code", apiErr.Code)
		return nil, apiErr
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response %s %s: %w", req.Method, req.URL.Path, decodeErr)
	}
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decode data %s %s: %w", req.Method, req.URL.Path, err)
		}
	}
	return &env, nil
}

// Session is the result of a login.
type Session struct {
	Token string `json:"token"`
	// ExpiresAt is a Unix timestamp.
	ExpiresAt int64 `json:"expires_at"`
}

// Login exchanges credentials for a token and keeps it for later requests.
func (c *Client) Login(ctx context.Context, account, password string) (Session, error) {
	var s Session
	err := c.Do(ctx, http.MethodPost, "/auth/login", nil, map[string]string{
		"account":  account,
		"password": password,
	}, &s)
	if err != nil {
		return Session{}, err
	}
	c.SetToken(s.Token)
	return s, nil
}

// Uploaded describes a stored file.
type Uploaded struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Upload sends r as the multipart field "file" with PUT.
func (c *Client) Upload(ctx context.Context, path, filename string, r io.Reader) (Uploaded, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return Uploaded{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return Uploaded{}, fmt.Errorf("copy %s: %w", filename, err)
	}
	if err := w.Close(); err != nil {
		return Uploaded{}, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPut, path, nil, &buf)
	if err != nil {
		return Uploaded{}, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var out Uploaded
	if _, err := c.send(req, &out); err != nil {
		return Uploaded{}, err
	}
	return out, nil
}
