package gett

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL = "https://open.ge.tt/1"
	DefaultTimeout = 30 * time.Second

	// Tokens this close to expiry are refreshed before use.
	tokenRefreshSkew = time.Minute
)

// Client is a Ge.tt API client. It logs in lazily on the first call and is
// safe for concurrent use.
type Client struct {
	apiKey   string
	email    string
	password string

	baseURL    string
	timeout    time.Duration
	timeoutSet bool
	httpClient *http.Client
	http       *resty.Client
	logger     logrus.FieldLogger
	metrics    *clientMetrics
	now        func() time.Time

	mu    sync.Mutex
	token *session
}

var _ ClientAPI = (*Client)(nil)

type session struct {
	accessToken  string
	refreshToken string
	expiresAt    time.Time
	user         *User
}

func (s *session) valid(now time.Time) bool {
	return s.expiresAt.IsZero() || now.Before(s.expiresAt.Add(-tokenRefreshSkew))
}

// Option customizes a Client.
type Option func(*Client) error

// WithBaseURL points the client at another API root (a proxy or a test server).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) error {
		u, err := url.ParseRequestURI(baseURL)
		if err != nil || u.Host == "" {
			return &ConfigurationError{Param: "base_url", Reason: "must be an absolute URL"}
		}
		c.baseURL = strings.TrimRight(baseURL, "/")
		return nil
	}
}

// WithTimeout sets the timeout of every HTTP exchange, uploads and downloads included.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) error {
		if timeout < 0 {
			return &ConfigurationError{Param: "timeout", Reason: "must not be negative"}
		}
		c.timeout = timeout
		c.timeoutSet = true
		return nil
	}
}

// WithHTTPClient overrides the underlying HTTP client. Its timeout is kept
// unless WithTimeout is also given.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) error {
		if httpClient == nil {
			return fmt.Errorf("http client cannot be nil")
		}
		c.httpClient = httpClient
		return nil
	}
}

// WithLogger sets the logger used for request tracing. The default discards everything.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Client) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithMetrics registers request counters and latency histograms on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Client) error {
		m, err := newClientMetrics(reg)
		if err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
		c.metrics = m
		return nil
	}
}

// NewClient creates a new Ge.tt client. No request is made until the first call.
func NewClient(apiKey, email, password string, opts ...Option) (*Client, error) {
	if err := validateCredentials(apiKey, email, password); err != nil {
		return nil, err
	}

	c := &Client{
		apiKey:   apiKey,
		email:    email,
		password: password,
		baseURL:  DefaultBaseURL,
		timeout:  DefaultTimeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.logger == nil {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		c.logger = logger
	}

	if c.httpClient != nil {
		c.http = resty.NewWithClient(c.httpClient)
		if c.timeoutSet {
			c.http.SetTimeout(c.timeout)
		}
	} else {
		c.http = resty.New().SetTimeout(c.timeout)
	}
	c.http.
		SetBaseURL(c.baseURL).
		SetHeader("Accept", "application/json").
		SetLogger(c.logger)

	return c, nil
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login exchanges the credentials for a fresh access token and returns the account.
func (c *Client) Login(ctx context.Context) (*User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.loginWithCredentials(ctx)
	if err != nil {
		return nil, err
	}
	c.token = s
	return s.user, nil
}

// Me returns the account of the logged in user, quota included.
func (c *Client) Me(ctx context.Context) (*User, error) {
	req, err := c.authedRequest(ctx)
	if err != nil {
		return nil, err
	}

	var result userJSON
	if err := c.execute("me", req, http.MethodGet, "/users/me", &result); err != nil {
		return nil, err
	}
	return result.toUser(), nil
}

// accessToken returns a usable access token, logging in or refreshing as needed.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != nil && c.token.valid(c.now()) {
		return c.token.accessToken, nil
	}

	if c.token != nil && c.token.refreshToken != "" {
		s, err := c.login(ctx, "refresh", map[string]string{"refreshtoken": c.token.refreshToken})
		if err == nil {
			c.token = s
			return s.accessToken, nil
		}
		if !errors.Is(err, ErrAuthentication) {
			return "", err
		}
		c.logger.Debugf("gett: refresh token rejected, logging in again")
	}

	s, err := c.loginWithCredentials(ctx)
	if err != nil {
		return "", err
	}
	c.token = s
	return s.accessToken, nil
}

func (c *Client) loginWithCredentials(ctx context.Context) (*session, error) {
	s, err := c.login(ctx, "login", map[string]string{
		"apikey":   c.apiKey,
		"email":    c.email,
		"password": c.password,
	})
	if err != nil {
		return nil, err
	}
	c.logger.Infof("gett: logged in as %s", s.user.Email)
	return s, nil
}

func (c *Client) login(ctx context.Context, op string, body map[string]string) (*session, error) {
	req := c.http.R().SetContext(ctx).SetBody(body)

	var result loginResponse
	if err := c.execute(op, req, http.MethodPost, "/users/login", &result); err != nil {
		// Ge.tt answers bad credentials with assorted 4xx codes.
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			apiErr.kind = ErrAuthentication
		}
		return nil, err
	}
	if result.AccessToken == "" {
		return nil, newAPIError(op, http.StatusUnauthorized, "no access token in response")
	}

	s := &session{
		accessToken:  result.AccessToken,
		refreshToken: result.RefreshToken,
		user:         result.User.toUser(),
	}
	if result.Expires > 0 {
		s.expiresAt = c.now().Add(time.Duration(result.Expires) * time.Second)
	}
	return s, nil
}

// authedRequest returns a request carrying a valid access token.
func (c *Client) authedRequest(ctx context.Context) (*resty.Request, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}
	return c.http.R().SetContext(ctx).SetQueryParam("accesstoken", token), nil
}

// execute sends req and decodes a JSON response into out when out is non-nil.
func (c *Client) execute(op string, req *resty.Request, method, path string, out interface{}) error {
	start := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		c.metrics.observe(op, 0, time.Since(start))
		return &NetworkError{Op: op, Err: err}
	}
	c.metrics.observe(op, resp.StatusCode(), time.Since(start))
	c.logger.Debugf("gett: %s %s %s: %s", op, method, path, resp.Status())

	if !resp.IsSuccess() {
		return newAPIError(op, resp.StatusCode(), errorMessage(resp.Body()))
	}

	if out != nil {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return fmt.Errorf("gett: %s: error decoding response: %w", op, err)
		}
	}
	return nil
}

// errorMessage extracts the "error" field of a Ge.tt error body, falling back to the raw text.
func errorMessage(body []byte) string {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

func (c *Client) blobURL(shareName, fileID string) string {
	return fmt.Sprintf("%s/files/%s/%s/blob", c.baseURL, url.PathEscape(shareName), url.PathEscape(fileID))
}
