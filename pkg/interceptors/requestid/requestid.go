// Package requestid stamps every outbound request with a correlation ID,
// generating one when the caller hasn't already set it.
package requestid

import (
	"encoding/hex"

	"github.com/google/uuid"

	"github.com/deepworx/go-httpclient/pkg/ctxutil"
	"github.com/deepworx/go-httpclient/pkg/pipeline"
)

// Config holds configuration for the request ID interceptor.
type Config struct {
	// HeaderName is the HTTP header the request ID is written to.
	HeaderName string `koanf:"header_name"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{HeaderName: "X-Request-ID"}
}

// Interceptor attaches a request ID to both the outbound header and the
// request's context, so later interceptors and logging can pick it up via
// ctxutil.RequestID.
type Interceptor struct {
	pipeline.BaseInterceptor

	headerName string
}

// New builds a request ID interceptor.
func New(cfg Config) *Interceptor {
	headerName := cfg.HeaderName
	if headerName == "" {
		headerName = "X-Request-ID"
	}
	return &Interceptor{headerName: headerName}
}

// OnRequest implements pipeline.Interceptor.
func (i *Interceptor) OnRequest(h *pipeline.RequestHandler, options *pipeline.RequestOptions) {
	id := options.Header.Get(i.headerName)
	if id == "" {
		id = generateID()
		options.Header.Set(i.headerName, id)
	}
	options = options.WithContext(ctxutil.WithRequestID(options.Context(), id))
	h.Next(options)
}

func generateID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}
