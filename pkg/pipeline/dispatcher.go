package pipeline

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/deepworx/go-httpclient/pkg/tracing"
)

// Dispatcher runs a single request through an InterceptorList's three
// tracks and, when nothing short-circuits it, through a Transport.
type Dispatcher struct {
	List      *InterceptorList
	Transport Transport

	// Log receives one line per recovered interceptor panic, including a
	// stack trace. Defaults to NoopLogSink.
	Log LogSink
}

// NewDispatcher builds a Dispatcher over list and transport.
func NewDispatcher(list *InterceptorList, transport Transport) *Dispatcher {
	return &Dispatcher{List: list, Transport: transport, Log: NoopLogSink}
}

func (d *Dispatcher) log() LogSink {
	if d.Log == nil {
		return NoopLogSink
	}
	return d.Log
}

// outcomeKind is the dispatcher's internal state-machine label for what to
// do after a track finishes running.
type outcomeKind int

const (
	outcomeTransport outcomeKind = iota
	outcomeGotoResponse
	outcomeGotoError
	outcomeSuccess
	outcomeFailure
)

type outcome struct {
	kind    outcomeKind
	options *RequestOptions
	resp    *Response
	err     *Err
	start   int
}

// Dispatch runs opts through the pipeline and returns either a Response or
// an *Err (always as the error return, so callers can type-assert it).
//
// ctx governs cancellation for the entire dispatch, independent of
// opts.Context(): Dispatch attaches ctx to opts before the request track
// starts. If ctx is already done, the error track runs immediately with a
// KindCancelled error and no request-track hook runs.
//
// The whole call runs inside a "pipeline.Dispatch" span and reports the
// pipeline.requests_total counter and pipeline.dispatch_duration_seconds
// histogram, tagged with the request method and resulting Kind.
func (d *Dispatcher) Dispatch(ctx context.Context, opts *RequestOptions) (*Response, error) {
	start := time.Now()
	resp, err := tracing.WithSpanResult(ctx, "pipeline.Dispatch", func(ctx context.Context) (*Response, error) {
		return d.dispatch(ctx, opts)
	})

	label := "success"
	if err != nil {
		label = "failure"
		if perr, ok := err.(*Err); ok {
			label = perr.Kind.String()
		}
	}
	recordDispatch(ctx, opts.Method, time.Since(start).Seconds(), label)
	return resp, err
}

func (d *Dispatcher) dispatch(ctx context.Context, opts *RequestOptions) (*Response, error) {
	opts = opts.WithContext(ctx)
	interceptors := d.List.snapshot()

	var out outcome
	if ctx.Err() != nil {
		out = outcome{kind: outcomeGotoError, err: NewErr(opts, KindCancelled, ctx.Err()), start: 0}
	} else {
		out = d.runRequestTrack(ctx, interceptors, 0, opts)
	}

	for {
		switch out.kind {
		case outcomeTransport:
			resp, err := d.Transport.RoundTrip(ctx, out.options)
			if err != nil {
				out = outcome{kind: outcomeGotoError, err: NewErr(out.options, kindOf(err), err), start: 0}
				continue
			}
			out = d.runResponseTrack(ctx, interceptors, 0, resp)
		case outcomeGotoResponse:
			out = d.runResponseTrack(ctx, interceptors, out.start, out.resp)
		case outcomeGotoError:
			out = d.runErrorTrack(ctx, interceptors, out.start, out.err)
		case outcomeSuccess:
			return out.resp, nil
		case outcomeFailure:
			return nil, out.err
		}
	}
}

// runRequestTrack walks the request track from index start. It returns
// outcomeTransport once every interceptor has called Next, or whatever
// short-circuit the first Resolve/Reject produces.
func (d *Dispatcher) runRequestTrack(ctx context.Context, interceptors []Interceptor, start int, opts *RequestOptions) outcome {
	for i := start; i < len(interceptors); i++ {
		env, perr := d.invokeOnRequest(interceptors[i], opts)
		if perr != nil {
			return outcome{kind: outcomeGotoError, err: perr, start: 0}
		}
		if cerr := cancellationOutcome(ctx, opts, env.resp, env); cerr != nil {
			return outcome{kind: outcomeGotoError, err: cerr, start: 0}
		}
		switch env.verdict {
		case verdictNext:
			opts = env.options
		case verdictResolve:
			return outcome{kind: outcomeSuccess, resp: env.resp}
		case verdictResolveCallFollowing:
			return outcome{kind: outcomeGotoResponse, resp: env.resp, start: 0}
		case verdictReject:
			return outcome{kind: outcomeFailure, err: env.err}
		case verdictRejectCallFollowing:
			return outcome{kind: outcomeGotoError, err: env.err, start: 0}
		}
	}
	return outcome{kind: outcomeTransport, options: opts}
}

// runResponseTrack walks the response track from index start.
func (d *Dispatcher) runResponseTrack(ctx context.Context, interceptors []Interceptor, start int, resp *Response) outcome {
	for i := start; i < len(interceptors); i++ {
		env, perr := d.invokeOnResponse(interceptors[i], resp)
		if perr != nil {
			return outcome{kind: outcomeGotoError, err: perr, start: 0}
		}
		if cerr := cancellationOutcome(ctx, resp.Request, env.resp, env); cerr != nil {
			return outcome{kind: outcomeGotoError, err: cerr, start: 0}
		}
		switch env.verdict {
		case verdictNext:
			resp = env.resp
		case verdictResolve:
			return outcome{kind: outcomeSuccess, resp: env.resp}
		case verdictReject, verdictRejectCallFollowing:
			return outcome{kind: outcomeGotoError, err: env.err, start: 0}
		}
	}
	return outcome{kind: outcomeSuccess, resp: resp}
}

// runErrorTrack walks the error track from index start.
func (d *Dispatcher) runErrorTrack(ctx context.Context, interceptors []Interceptor, start int, err *Err) outcome {
	for i := start; i < len(interceptors); i++ {
		env, perr := d.invokeOnError(interceptors[i], err)
		if perr != nil {
			err = perr
			continue
		}
		switch env.verdict {
		case verdictNext:
			err = env.err
		case verdictResolve:
			return outcome{kind: outcomeSuccess, resp: env.resp}
		case verdictReject:
			return outcome{kind: outcomeFailure, err: env.err}
		}
	}
	return outcome{kind: outcomeFailure, err: err}
}

// cancellationOutcome checks ctx after every request- and response-track
// hook invocation (error-track hooks are not checked): on those tracks
// cancellation is observed before the next interceptor runs, never mid-hook. When it
// fires, the interceptor-produced payload (env, plus resp if the verdict
// carried one) is preserved as the rewritten Reject's prior cause rather
// than discarded.
func cancellationOutcome(ctx context.Context, opts *RequestOptions, resp *Response, env any) *Err {
	if ctx.Err() == nil {
		return nil
	}
	err := NewErr(opts, KindCancelled, env)
	err.Response = resp
	return err
}

func (d *Dispatcher) invokeOnRequest(i Interceptor, opts *RequestOptions) (requestEnvelope, *Err) {
	h := newRequestHandler()
	if perr := d.runRecovered(opts, func() { i.OnRequest(h, opts) }); perr != nil {
		return requestEnvelope{}, perr
	}
	return <-h.sink, nil
}

func (d *Dispatcher) invokeOnResponse(i Interceptor, resp *Response) (responseEnvelope, *Err) {
	h := newResponseHandler()
	if perr := d.runRecovered(resp.Request, func() { i.OnResponse(h, resp) }); perr != nil {
		return responseEnvelope{}, perr
	}
	return <-h.sink, nil
}

func (d *Dispatcher) invokeOnError(i Interceptor, err *Err) (errorEnvelope, *Err) {
	h := newErrorHandler()
	if perr := d.runRecovered(err.Request, func() { i.OnError(h, err) }); perr != nil {
		return errorEnvelope{}, perr
	}
	return <-h.sink, nil
}

// runRecovered calls fn, converting any panic into a KindUnknown *Err
// instead of letting it escape. A handler invoked twice reaches this path
// too, since the second call panics from inside fn.
func (d *Dispatcher) runRecovered(opts *RequestOptions, fn func()) (perr *Err) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		d.log()("pipeline: recovered interceptor panic", "panic", r, "stack", string(debug.Stack()))
		e := NewErr(opts, KindUnknown, r)
		if v, ok := r.(invariantViolation); ok {
			e.Message = v.msg
		}
		perr = e
	}()
	fn()
	return nil
}
