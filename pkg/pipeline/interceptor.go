package pipeline

// Interceptor is the unit of extension for the pipeline: an object offering
// up to three hooks, one per track. Each hook must call exactly one method
// on the handler it is given before returning, either synchronously or from
// a goroutine it spawns — the dispatcher suspends on the handler until that
// happens.
type Interceptor interface {
	OnRequest(h *RequestHandler, options *RequestOptions)
	OnResponse(h *ResponseHandler, resp *Response)
	OnError(h *ErrorHandler, err *Err)
}

// BaseInterceptor implements Interceptor with pure pass-through hooks.
// Embed it to implement only the tracks an interceptor cares about, the way
// connectrpc's UnimplementedHandler embeds default behavior.
type BaseInterceptor struct{}

// OnRequest passes the request through unchanged.
func (BaseInterceptor) OnRequest(h *RequestHandler, options *RequestOptions) { h.Next(options) }

// OnResponse passes the response through unchanged.
func (BaseInterceptor) OnResponse(h *ResponseHandler, resp *Response) { h.Next(resp) }

// OnError passes the error through unchanged.
func (BaseInterceptor) OnError(h *ErrorHandler, err *Err) { h.Next(err) }

// FuncInterceptor adapts up to three plain functions into an Interceptor,
// for ad hoc hooks that don't warrant a named type. A nil field behaves as
// BaseInterceptor's pass-through for that track.
type FuncInterceptor struct {
	Request  func(h *RequestHandler, options *RequestOptions)
	Response func(h *ResponseHandler, resp *Response)
	Error    func(h *ErrorHandler, err *Err)
}

// OnRequest calls f.Request, or passes through if nil.
func (f *FuncInterceptor) OnRequest(h *RequestHandler, options *RequestOptions) {
	if f.Request == nil {
		h.Next(options)
		return
	}
	f.Request(h, options)
}

// OnResponse calls f.Response, or passes through if nil.
func (f *FuncInterceptor) OnResponse(h *ResponseHandler, resp *Response) {
	if f.Response == nil {
		h.Next(resp)
		return
	}
	f.Response(h, resp)
}

// OnError calls f.Error, or passes through if nil.
func (f *FuncInterceptor) OnError(h *ErrorHandler, err *Err) {
	if f.Error == nil {
		h.Next(err)
		return
	}
	f.Error(h, err)
}

// Builtin is implemented by interceptors the pipeline installs on a
// client's behalf (currently only the content-type interceptor in
// pkg/pipeline/contenttype). InterceptorList.RemoveBuiltin and Clear use it
// to distinguish library-installed interceptors from user-added ones
// without importing the concrete subpackage.
type Builtin interface {
	PipelineBuiltin() bool
}

func isBuiltin(i Interceptor) bool {
	b, ok := i.(Builtin)
	return ok && b.PipelineBuiltin()
}
