// Package tokenrefresh attaches a bearer token to every outbound request,
// refreshing it once it is within Leeway of expiry. It is the pipeline's
// reference queued interceptor: concurrent requests hitting an expired
// token all wait on the same refresh instead of each kicking off their own.
//
// Wrap an *Interceptor in pipeline.NewQueued to get that FIFO guarantee
// across concurrent dispatches; the interceptor's own mutex keeps it
// correct even unwrapped, just without ordering guarantees under load.
package tokenrefresh

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/deepworx/go-httpclient/pkg/pipeline"
)

// Token is a bearer token and when it stops being usable.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Source fetches a fresh Token, typically from an OAuth2 token endpoint or
// a credentials exchange service.
type Source interface {
	Token(ctx context.Context) (Token, error)
}

// SourceFunc adapts a plain function to Source.
type SourceFunc func(ctx context.Context) (Token, error)

// Token implements Source.
func (f SourceFunc) Token(ctx context.Context) (Token, error) { return f(ctx) }

// Config holds configuration for the token-refresh interceptor.
type Config struct {
	// Source fetches a fresh token on expiry. Required.
	Source Source

	// Leeway triggers a refresh this long before the cached token's actual
	// expiry, so in-flight requests don't race a token that expires
	// mid-request. Defaults to 10 seconds if zero.
	Leeway time.Duration

	// HeaderName is the header the token is attached to. Defaults to
	// "Authorization" if empty, in which case the value is prefixed with
	// "Bearer ".
	HeaderName string
}

// Interceptor attaches and transparently refreshes a bearer token.
type Interceptor struct {
	pipeline.BaseInterceptor

	source     Source
	leeway     time.Duration
	headerName string
	bearer     bool

	mu      sync.Mutex
	current Token
}

// New builds a token-refresh interceptor.
func New(cfg Config) *Interceptor {
	if cfg.Source == nil {
		panic("tokenrefresh: Source is required")
	}
	leeway := cfg.Leeway
	if leeway <= 0 {
		leeway = 10 * time.Second
	}
	headerName := cfg.HeaderName
	bearer := false
	if headerName == "" {
		headerName = "Authorization"
		bearer = true
	}
	return &Interceptor{source: cfg.Source, leeway: leeway, headerName: headerName, bearer: bearer}
}

// OnRequest implements pipeline.Interceptor.
func (i *Interceptor) OnRequest(h *pipeline.RequestHandler, options *pipeline.RequestOptions) {
	token, err := i.tokenFor(options.Context())
	if err != nil {
		h.Reject(pipeline.NewErr(options, pipeline.KindUnknown, err).WithMessage(fmt.Sprintf("token refresh: %v", err)), false)
		return
	}
	value := token.Value
	if i.bearer {
		value = "Bearer " + value
	}
	options.Header.Set(i.headerName, value)
	h.Next(options)
}

func (i *Interceptor) tokenFor(ctx context.Context) (Token, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.current.Value != "" && time.Until(i.current.ExpiresAt) > i.leeway {
		return i.current, nil
	}

	token, err := i.source.Token(ctx)
	if err != nil {
		return Token{}, err
	}
	i.current = token
	return token, nil
}
