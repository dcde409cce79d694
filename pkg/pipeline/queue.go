package pipeline

import (
	"context"
	"sync"
)

// QueuedInterceptor wraps another interceptor so that every hook invocation
// — across all three tracks, across every concurrent request — runs one at
// a time, in arrival order, through a single worker goroutine. This is the
// discipline a token-refresh or audit-log interceptor needs: without it, N
// concurrent requests hitting an expired token would each kick off their
// own refresh; with it, the first request's refresh completes and the rest
// simply observe the now-fresh token.
//
// The worker does not move on to the next queued hook until the current
// one's handler has actually been invoked, even if the wrapped hook
// returned immediately and resolves the handler later from a goroutine of
// its own.
type QueuedInterceptor struct {
	inner Interceptor

	startOnce sync.Once
	tasks     chan func()
}

// NewQueued wraps inner so its hooks are serialized.
func NewQueued(inner Interceptor) *QueuedInterceptor {
	return &QueuedInterceptor{inner: inner}
}

func (q *QueuedInterceptor) ensureStarted() {
	q.startOnce.Do(func() {
		q.tasks = make(chan func())
		go q.run()
	})
}

func (q *QueuedInterceptor) run() {
	for task := range q.tasks {
		task()
	}
}

// Close stops the worker goroutine. A queued hook submitted after Close
// returns panics (send on a closed channel); inside Dispatch that panic is
// recovered into an *Err. Callers should only Close once the owning client
// is shutting down.
func (q *QueuedInterceptor) Close() error {
	q.ensureStarted()
	close(q.tasks)
	return nil
}

// Shutdown adapts Close to the shutdown package's Handler signature:
//
//	shutdown.Register(queued.Shutdown)
func (q *QueuedInterceptor) Shutdown(context.Context) error {
	return q.Close()
}

// OnRequest enqueues inner.OnRequest and waits for its turn to run, but
// returns to the caller as soon as the call has been submitted — not once
// it completes. Completion is still observed by the caller through h, since
// the dispatcher always blocks on the handler's result regardless of
// which interceptor produced it.
func (q *QueuedInterceptor) OnRequest(h *RequestHandler, options *RequestOptions) {
	q.ensureStarted()
	q.tasks <- func() {
		q.inner.OnRequest(h, options)
		<-h.settled()
	}
}

// OnResponse is the response-track counterpart of OnRequest.
func (q *QueuedInterceptor) OnResponse(h *ResponseHandler, resp *Response) {
	q.ensureStarted()
	q.tasks <- func() {
		q.inner.OnResponse(h, resp)
		<-h.settled()
	}
}

// OnError is the error-track counterpart of OnRequest.
func (q *QueuedInterceptor) OnError(h *ErrorHandler, err *Err) {
	q.ensureStarted()
	q.tasks <- func() {
		q.inner.OnError(h, err)
		<-h.settled()
	}
}
