// Package deadline enforces per-request timeouts on the pipeline's request
// track by adjusting RequestOptions.Timeout: it fills in a default when the
// caller set none and caps any value above the configured maximum.
package deadline

import (
	"time"

	"github.com/deepworx/go-httpclient/pkg/pipeline"
)

// Config holds configuration for the deadline interceptor.
type Config struct {
	// DefaultTimeout is applied when RequestOptions.Timeout is unset.
	// Must be positive.
	DefaultTimeout time.Duration `koanf:"default_timeout"`

	// MaxTimeout caps an explicitly set RequestOptions.Timeout. Zero means
	// no cap. If positive, must be >= DefaultTimeout.
	MaxTimeout time.Duration `koanf:"max_timeout"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{DefaultTimeout: 30 * time.Second, MaxTimeout: 300 * time.Second}
}

// Interceptor enforces Config's timeout policy on every request.
type Interceptor struct {
	pipeline.BaseInterceptor

	defaultTimeout time.Duration
	maxTimeout     time.Duration
}

// New builds a deadline interceptor.
//
// Panics if:
//   - cfg.DefaultTimeout <= 0
//   - cfg.MaxTimeout > 0 && cfg.MaxTimeout < cfg.DefaultTimeout
func New(cfg Config) *Interceptor {
	if cfg.DefaultTimeout <= 0 {
		panic("deadline: DefaultTimeout must be positive")
	}
	if cfg.MaxTimeout > 0 && cfg.MaxTimeout < cfg.DefaultTimeout {
		panic("deadline: MaxTimeout must be >= DefaultTimeout when set")
	}
	return &Interceptor{defaultTimeout: cfg.DefaultTimeout, maxTimeout: cfg.MaxTimeout}
}

// OnRequest implements pipeline.Interceptor.
func (i *Interceptor) OnRequest(h *pipeline.RequestHandler, options *pipeline.RequestOptions) {
	switch {
	case options.Timeout <= 0:
		options.Timeout = i.defaultTimeout
	case i.maxTimeout > 0 && options.Timeout > i.maxTimeout:
		options.Timeout = i.maxTimeout
	}
	h.Next(options)
}
