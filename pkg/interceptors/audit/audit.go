// Package audit persists one row per completed or failed request to
// Postgres via the same UnitOfWork abstraction the rest of the ambient
// stack uses for transactional writes. Pair it with pipeline.NewQueued to
// keep writes ordered and avoid opening one transaction per concurrent
// request.
package audit

import (
	"context"
	"time"

	"github.com/deepworx/go-httpclient/pkg/ctxutil"
	"github.com/deepworx/go-httpclient/pkg/pipeline"
	"github.com/deepworx/go-httpclient/pkg/postgres"
)

// Record is one audit entry. OccurredAt comes from the interceptor's clock
// (time.Now by default), which tests in this package replace to control it
// deterministically.
type Record struct {
	RequestID  string
	Method     string
	URL        string
	StatusCode int
	Kind       string
	Message    string
	OccurredAt time.Time
}

// Interceptor writes a Record for every response and error that reaches it.
type Interceptor struct {
	pipeline.BaseInterceptor

	uow   postgres.UnitOfWork
	clock func() time.Time

	// Log receives a diagnostic when a write fails. The request itself
	// always proceeds regardless; audit logging is best-effort. Defaults
	// to pipeline.NoopLogSink.
	Log pipeline.LogSink
}

// New builds an audit interceptor backed by uow. Pass
// postgres.NewInMemoryUnitOfWork() in tests or when no durable audit trail
// is needed; Execute then becomes a no-op write path exercised without a
// database.
func New(uow postgres.UnitOfWork) *Interceptor {
	return &Interceptor{uow: uow, clock: time.Now, Log: pipeline.NoopLogSink}
}

func (i *Interceptor) log() pipeline.LogSink {
	if i.Log == nil {
		return pipeline.NoopLogSink
	}
	return i.Log
}

// OnResponse implements pipeline.Interceptor.
func (i *Interceptor) OnResponse(h *pipeline.ResponseHandler, resp *pipeline.Response) {
	rec := Record{
		Method:     resp.Request.Method,
		URL:        resp.Request.URL,
		StatusCode: resp.StatusCode,
		Kind:       "ok",
		OccurredAt: i.clock(),
	}
	if id, ok := ctxutil.RequestID(resp.Request.Context()); ok {
		rec.RequestID = id
	}
	i.write(resp.Request.Context(), rec)
	h.Next(resp)
}

// OnError implements pipeline.Interceptor.
func (i *Interceptor) OnError(h *pipeline.ErrorHandler, err *pipeline.Err) {
	rec := Record{
		Method:     err.Request.Method,
		URL:        err.Request.URL,
		Kind:       err.Kind.String(),
		Message:    err.Error(),
		OccurredAt: i.clock(),
	}
	if err.Response != nil {
		rec.StatusCode = err.Response.StatusCode
	}
	if id, ok := ctxutil.RequestID(err.Request.Context()); ok {
		rec.RequestID = id
	}
	i.write(err.Request.Context(), rec)
	h.Next(err)
}

func (i *Interceptor) write(ctx context.Context, rec Record) {
	err := i.uow.Execute(ctx, func(ctx context.Context, tx postgres.Transaction) error {
		pgTx := tx.Tx()
		if pgTx == nil {
			return nil
		}
		_, err := pgTx.Exec(ctx, `
			INSERT INTO http_client_audit_log
				(request_id, method, url, status_code, kind, message, occurred_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, rec.RequestID, rec.Method, rec.URL, rec.StatusCode, rec.Kind, rec.Message, rec.OccurredAt)
		return err
	})
	if err != nil {
		i.log()("audit: failed to persist record", "error", err, "request_id", rec.RequestID)
	}
}
