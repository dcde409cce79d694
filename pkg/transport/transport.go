// Package transport adapts net/http into a pipeline.Transport, performing
// the actual network exchange once the request track has run to completion.
package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/deepworx/go-httpclient/pkg/pipeline"
)

// HTTPTransport performs requests with a *http.Client, translating
// RequestOptions into an *http.Request and classifying every failure into a
// pipeline.Kind.
type HTTPTransport struct {
	// Client is the underlying HTTP client. Defaults to
	// http.DefaultClient's transport with no overall deadline; per-request
	// timeouts come from RequestOptions.Timeout and the request's context.
	Client *http.Client
}

// New returns an HTTPTransport. A nil client defaults to &http.Client{}.
func New(client *http.Client) *HTTPTransport {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPTransport{Client: client}
}

// RoundTrip implements pipeline.Transport.
func (t *HTTPTransport) RoundTrip(ctx context.Context, options *pipeline.RequestOptions) (*pipeline.Response, error) {
	if options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}

	body, err := encodeBody(options)
	if err != nil {
		return nil, &classifiedError{kind: pipeline.KindSendTimeout, err: fmt.Errorf("encode request body: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, options.Method, options.URL, body)
	if err != nil {
		return nil, &classifiedError{kind: pipeline.KindConnectionError, err: fmt.Errorf("build request: %w", err)}
	}
	req.Header = options.Header.Clone()
	if options.ContentType != nil {
		req.Header.Set("Content-Type", *options.ContentType)
	}

	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &classifiedError{kind: pipeline.KindReceiveTimeout, err: fmt.Errorf("read response body: %w", err)}
	}

	return &pipeline.Response{
		Request:    options,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

func encodeBody(options *pipeline.RequestOptions) (io.Reader, error) {
	switch body := options.Body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return bytes.NewReader(body), nil
	case string:
		return bytes.NewReader([]byte(body)), nil
	case *pipeline.FormData:
		return encodeFormData(body)
	default:
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(encoded), nil
	}
}

func encodeFormData(form *pipeline.FormData) (io.Reader, error) {
	var buf bytes.Buffer
	values := url.Values{}
	for k, v := range form.Fields {
		values.Set(k, v)
	}
	buf.WriteString(values.Encode())
	return &buf, nil
}

// classifiedError pairs a Go error with a precomputed pipeline.Kind. It
// implements pipeline.KindCoder so the dispatcher doesn't need to know
// anything about net/http's error types.
type classifiedError struct {
	kind pipeline.Kind
	err  error
}

func (c *classifiedError) Error() string      { return c.err.Error() }
func (c *classifiedError) Unwrap() error      { return c.err }
func (c *classifiedError) PipelineKind() pipeline.Kind { return c.kind }

func classifyTransportError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return &classifiedError{kind: pipeline.KindConnectionTimeout, err: err}
		}
		var certErr *tls.CertificateVerificationError
		if errors.As(urlErr.Err, &certErr) {
			return &classifiedError{kind: pipeline.KindBadCertificate, err: err}
		}
		if errors.Is(urlErr.Err, context.Canceled) || errors.Is(urlErr.Err, context.DeadlineExceeded) {
			return &classifiedError{kind: pipeline.KindCancelled, err: err}
		}
	}
	var deadlineErr interface{ Timeout() bool }
	if errors.As(err, &deadlineErr) && deadlineErr.Timeout() {
		return &classifiedError{kind: pipeline.KindConnectionTimeout, err: err}
	}
	return &classifiedError{kind: pipeline.KindConnectionError, err: err}
}

// DefaultTimeout is used by callers composing an http.Client when no other
// timeout policy is supplied.
const DefaultTimeout = 30 * time.Second
