// Package pipeline implements the interceptor pipeline at the heart of the
// HTTP client: the middleware chain that intercepts every outbound request,
// every inbound response, and every error raised along the way.
package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// FormData is the form-data body shape the built-in content-type interceptor
// recognizes. Fields are form values; Files carries named file parts.
type FormData struct {
	Fields map[string]string
	Files  map[string]FormFile

	boundary string
}

// FormFile is a single multipart file part.
type FormFile struct {
	Filename string
	Content  []byte
}

// Boundary returns the multipart boundary assigned to this form, generating
// one on first use.
func (f *FormData) Boundary() string {
	if f.boundary == "" {
		f.boundary = generateBoundary()
	}
	return f.boundary
}

// RequestOptions is the unit of work on the request track. It is owned by the
// dispatcher from request intake until a response or terminal error is
// delivered; interceptors may mutate it in place while it is on the request
// track.
type RequestOptions struct {
	Method      string
	URL         string
	Header      http.Header
	Body        any
	ContentType *string
	Timeout     time.Duration

	// Extras is an opaque mapping interceptors use to pass data to one
	// another across hook invocations (e.g. a retry count, a cache key).
	Extras map[string]any

	ctx    context.Context
	cancel context.CancelFunc
}

// NewRequestOptions builds a RequestOptions with an initialized header map
// and extras mapping, bound to context.Background.
func NewRequestOptions(method, url string) *RequestOptions {
	return &RequestOptions{
		Method: method,
		URL:    url,
		Header: make(http.Header),
		Extras: make(map[string]any),
		ctx:    context.Background(),
	}
}

// Context returns the request's context, defaulting to context.Background
// if none was ever attached.
func (o *RequestOptions) Context() context.Context {
	if o.ctx == nil {
		return context.Background()
	}
	return o.ctx
}

// WithContext returns a shallow copy of o with ctx attached. Mirrors
// net/http.Request.WithContext so callers familiar with the standard
// library feel at home wiring cancellation through the pipeline.
func (o *RequestOptions) WithContext(ctx context.Context) *RequestOptions {
	if ctx == nil {
		panic("pipeline: nil context passed to RequestOptions.WithContext")
	}
	clone := *o
	clone.ctx = ctx
	return &clone
}

// Clone returns a deep-enough copy of o: header, extras, and body reference
// are copied so interceptor mutation of the clone never mutates o.
func (o *RequestOptions) Clone() *RequestOptions {
	clone := *o
	clone.Header = o.Header.Clone()
	clone.Extras = make(map[string]any, len(o.Extras))
	for k, v := range o.Extras {
		clone.Extras[k] = v
	}
	return &clone
}

// Response is the outcome of a successful dispatch. It is created by the
// transport or synthesized by an interceptor via Resolve. Mutation is
// permitted only while it is on the response track.
type Response struct {
	Request    *RequestOptions
	StatusCode int
	Status     string
	Header     http.Header
	Body       any
}

// Err is the pipeline's error type. It is immutable once constructed except
// through WithCause, which returns a new instance.
type Err struct {
	Request  *RequestOptions
	Response *Response
	Kind     Kind
	Cause    any
	Message  string
}

// Error implements the error interface.
func (e *Err) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Cause != nil {
		if causeErr, ok := e.Cause.(error); ok {
			return fmt.Sprintf("pipeline: %s: %v", e.Kind, causeErr)
		}
		return fmt.Sprintf("pipeline: %s: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("pipeline: %s", e.Kind)
}

// Unwrap exposes Cause for errors.Is/As when Cause is itself an error.
func (e *Err) Unwrap() error {
	if causeErr, ok := e.Cause.(error); ok {
		return causeErr
	}
	return nil
}

// WithCause returns a copy of e with Cause replaced. Err is otherwise
// immutable once constructed.
func (e *Err) WithCause(cause any) *Err {
	clone := *e
	clone.Cause = cause
	return &clone
}

// WithMessage returns a copy of e with Message replaced.
func (e *Err) WithMessage(msg string) *Err {
	clone := *e
	clone.Message = msg
	return &clone
}

// WithKind returns a copy of e with Kind replaced.
func (e *Err) WithKind(kind Kind) *Err {
	clone := *e
	clone.Kind = kind
	return &clone
}

// NewErr constructs an Err of the given kind for the given request.
func NewErr(req *RequestOptions, kind Kind, cause any) *Err {
	return &Err{Request: req, Kind: kind, Cause: cause}
}

// LogSink receives diagnostics from pipeline components (the dispatcher,
// the built-in content-type interceptor and the audit interceptor). Its
// zero value is nil, which those components treat as NoopLogSink: one
// diagnostic stream, defaulting to no-op.
type LogSink func(msg string, args ...any)

// NoopLogSink discards every message.
var NoopLogSink LogSink = func(string, ...any) {}
