// Package client provides the HTTP client façade: a thin wrapper that owns
// a pipeline.InterceptorList and pipeline.Dispatcher and exposes the verb
// methods most callers actually want.
package client

import (
	"context"
	"net/http"
	"time"

	"github.com/deepworx/go-httpclient/pkg/pipeline"
	"github.com/deepworx/go-httpclient/pkg/pipeline/contenttype"
	"github.com/deepworx/go-httpclient/pkg/transport"
)

// Config holds configuration for constructing a Client.
type Config struct {
	// BaseURL, if set, is prepended to every relative URL passed to a verb
	// method.
	BaseURL string

	// Timeout is the default per-request timeout applied when a call site
	// doesn't set RequestOptions.Timeout. Defaults to
	// transport.DefaultTimeout if zero.
	Timeout time.Duration

	// HTTPClient is the underlying *http.Client. Defaults to a fresh
	// &http.Client{} if nil.
	HTTPClient *http.Client

	// Log receives pipeline diagnostics (recovered panics, the built-in
	// content-type interceptor's unrecognized-shape notices). Defaults to
	// pipeline.NoopLogSink.
	Log pipeline.LogSink
}

// Client is the HTTP client façade. The zero value is not usable; construct
// one with New.
type Client struct {
	baseURL    string
	defaultTTL time.Duration

	list       *pipeline.InterceptorList
	dispatcher *pipeline.Dispatcher
}

// New builds a Client with the built-in content-type interceptor installed
// at index 0.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = transport.DefaultTimeout
	}
	if cfg.Log == nil {
		cfg.Log = pipeline.NoopLogSink
	}

	ct := contenttype.New()
	ct.Log = cfg.Log

	list := pipeline.NewInterceptorList(ct)
	tr := transport.New(cfg.HTTPClient)
	dispatcher := pipeline.NewDispatcher(list, tr)
	dispatcher.Log = cfg.Log

	return &Client{
		baseURL:    cfg.BaseURL,
		defaultTTL: cfg.Timeout,
		list:       list,
		dispatcher: dispatcher,
	}
}

// Interceptors exposes the client's interceptor list for registration,
// reordering, and removal.
func (c *Client) Interceptors() *pipeline.InterceptorList {
	return c.list
}

// Do runs opts through the full pipeline and returns its outcome. The
// caller's ctx governs cancellation of the whole dispatch.
func (c *Client) Do(ctx context.Context, opts *pipeline.RequestOptions) (*pipeline.Response, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = c.defaultTTL
	}
	opts.URL = c.resolveURL(opts.URL)
	return c.dispatcher.Dispatch(ctx, opts)
}

func (c *Client) resolveURL(raw string) string {
	if c.baseURL == "" || hasScheme(raw) {
		return raw
	}
	return c.baseURL + raw
}

func hasScheme(raw string) bool {
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case ':':
			return i > 0
		case '/', '?', '#':
			return false
		}
	}
	return false
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, url string) (*pipeline.Response, error) {
	return c.Do(ctx, pipeline.NewRequestOptions(http.MethodGet, url))
}

// Post issues a POST request with body.
func (c *Client) Post(ctx context.Context, url string, body any) (*pipeline.Response, error) {
	opts := pipeline.NewRequestOptions(http.MethodPost, url)
	opts.Body = body
	return c.Do(ctx, opts)
}

// Put issues a PUT request with body.
func (c *Client) Put(ctx context.Context, url string, body any) (*pipeline.Response, error) {
	opts := pipeline.NewRequestOptions(http.MethodPut, url)
	opts.Body = body
	return c.Do(ctx, opts)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, url string) (*pipeline.Response, error) {
	return c.Do(ctx, pipeline.NewRequestOptions(http.MethodDelete, url))
}
