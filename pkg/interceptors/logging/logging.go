// Package logging provides structured request/response logging for the
// pipeline. Successful responses log at Info, errors log at Warn.
package logging

import (
	"context"
	"log/slog"

	"github.com/deepworx/go-httpclient/pkg/ctxutil"
	"github.com/deepworx/go-httpclient/pkg/pipeline"
)

// Interceptor logs every response and error that reaches it. It never
// short-circuits: both hooks always call Next.
type Interceptor struct {
	pipeline.BaseInterceptor
}

// New builds a logging interceptor.
func New() *Interceptor {
	return &Interceptor{}
}

// OnResponse logs the completed request at Info level.
func (i *Interceptor) OnResponse(h *pipeline.ResponseHandler, resp *pipeline.Response) {
	attrs := baseAttrs(resp.Request)
	attrs = append(attrs, slog.Int("status_code", resp.StatusCode))
	slog.InfoContext(ctx(resp.Request), "http request completed", attrs...)
	h.Next(resp)
}

// OnError logs the failed request at Warn level.
func (i *Interceptor) OnError(h *pipeline.ErrorHandler, err *pipeline.Err) {
	attrs := baseAttrs(err.Request)
	attrs = append(attrs, slog.String("kind", err.Kind.String()), slog.String("error", err.Error()))
	slog.WarnContext(ctx(err.Request), "http request failed", attrs...)
	h.Next(err)
}

func ctx(options *pipeline.RequestOptions) context.Context {
	if options == nil {
		return context.Background()
	}
	return options.Context()
}

func baseAttrs(options *pipeline.RequestOptions) []any {
	if options == nil {
		return nil
	}
	attrs := []any{slog.String("method", options.Method), slog.String("url", options.URL)}
	if reqID, ok := ctxutil.RequestID(options.Context()); ok {
		attrs = append(attrs, slog.String("request_id", reqID))
	}
	return attrs
}
