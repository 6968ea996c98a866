package jsonplaceholder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/regioncheck/domain"
	"github.com/fastygo/regioncheck/internal/infrastructure/monitor"
)

// DefaultBaseURL is the public JSONPlaceholder endpoint.
const DefaultBaseURL = "http://jsonplaceholder.typicode.com"

// Resource names, also used as metric labels.
const (
	ResourceUsers = "users"
	ResourceTodos = "todos"
)

const maxErrorBody = 512

// ClientConfig holds connection settings for the upstream source.
type ClientConfig struct {
	BaseURL   string
	Timeout   time.Duration
	MaxConns  int
	UserAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithObserver reports every fetch to o.
func WithObserver(o monitor.Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient replaces the underlying fasthttp client.
func WithHTTPClient(hc *fasthttp.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// Client fetches JSON collections from a JSONPlaceholder-style API. It is
// safe for concurrent use; the connection pool is shared by all callers.
type Client struct {
	http      *fasthttp.Client
	baseURL   string
	timeout   time.Duration
	userAgent string
	observer  monitor.Observer
	logger    *zap.Logger
}

func NewClient(cfg ClientConfig, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "regioncheck"
	}

	c := &Client{
		http: &fasthttp.Client{
			Name:                cfg.UserAgent,
			MaxConnsPerHost:     cfg.MaxConns,
			ReadTimeout:         cfg.Timeout,
			WriteTimeout:        cfg.Timeout,
			MaxIdleConnDuration: 30 * time.Second,
		},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		timeout:   cfg.Timeout,
		userAgent: cfg.UserAgent,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalised upstream base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ping issues HEAD /users to check the upstream is reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, fasthttp.MethodHead, c.baseURL+"/"+ResourceUsers)
	return err
}

// fetch GETs uri and hands the body to decode. The outcome is reported to the
// observer and failures are logged before being returned unchanged.
func (c *Client) fetch(ctx context.Context, resource, uri string, decode func([]byte) error) error {
	start := time.Now()
	body, err := c.do(ctx, fasthttp.MethodGet, uri)
	if err == nil {
		err = decode(body)
	}
	elapsed := time.Since(start)

	if c.observer != nil {
		c.observer.ObserveFetch(resource, outcome(err), elapsed)
	}
	if err != nil {
		c.logger.Error("upstream fetch failed",
			zap.String("resource", resource),
			zap.String("uri", uri),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return err
	}
	c.logger.Debug("upstream fetch",
		zap.String("resource", resource),
		zap.String("uri", uri),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", elapsed))
	return nil
}

func (c *Client) do(ctx context.Context, method, uri string) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, domain.WrapError(domain.ErrCodeTransport, method+" "+uri, err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(uri)
	req.Header.SetMethod(method)
	req.Header.Set("Accept", "application/json")
	req.Header.SetContentType("application/json")
	req.Header.SetUserAgent(c.userAgent)
	if method == fasthttp.MethodHead {
		resp.SkipBody = true
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return nil, domain.WrapError(domain.ErrCodeTransport, method+" "+uri, err)
	}

	status := resp.StatusCode()
	if status < fasthttp.StatusOK || status >= fasthttp.StatusMultipleChoices {
		body := resp.Body()
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, domain.WrapError(domain.ErrCodeHTTPStatus, method+" "+uri, &StatusError{
			StatusCode: status,
			URL:        uri,
			Body:       string(body),
		})
	}

	// The response is released on return; copy the body out of it.
	return append([]byte(nil), resp.Body()...), nil
}

// StatusError carries a non-2xx upstream response.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func outcome(err error) string {
	if err == nil {
		return monitor.OutcomeOK
	}
	for _, code := range []domain.ErrorCode{domain.ErrCodeTransport, domain.ErrCodeHTTPStatus, domain.ErrCodeDecode} {
		if domain.IsDomainError(err, code) {
			return strings.ToLower(string(code))
		}
	}
	return "error"
}
