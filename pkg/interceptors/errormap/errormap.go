// Package errormap turns non-2xx responses into pipeline errors and
// classifies domain errors raised elsewhere in the chain into the pipeline's
// Kind taxonomy. The transport itself never treats a status code as
// failure — that judgment call belongs here.
package errormap

import (
	"context"
	"errors"

	"github.com/deepworx/go-httpclient/pkg/pipeline"
)

// Interceptor rejects responses with a status code at or above
// Threshold (default 400) and re-classifies errors that reach the error
// track but don't yet carry a precise Kind.
type Interceptor struct {
	pipeline.BaseInterceptor

	// Threshold is the first status code treated as a failure. Defaults
	// to 400 when zero.
	Threshold int
}

// New builds an error-mapping interceptor with the default threshold.
func New() *Interceptor {
	return &Interceptor{Threshold: 400}
}

func (i *Interceptor) threshold() int {
	if i.Threshold <= 0 {
		return 400
	}
	return i.Threshold
}

// OnResponse implements pipeline.Interceptor.
func (i *Interceptor) OnResponse(h *pipeline.ResponseHandler, resp *pipeline.Response) {
	if resp.StatusCode < i.threshold() {
		h.Next(resp)
		return
	}
	err := pipeline.NewErr(resp.Request, pipeline.KindBadResponse, nil)
	err.Response = resp
	err.Message = resp.Status
	h.Reject(err, false)
}

// OnError implements pipeline.Interceptor. It refines Kind for errors whose
// cause implements pipeline.KindCoder, or whose cause is a context
// cancellation/deadline error, leaving already-precise kinds untouched.
func (i *Interceptor) OnError(h *pipeline.ErrorHandler, err *pipeline.Err) {
	if err.Kind != pipeline.KindUnknown {
		h.Next(err)
		return
	}

	cause, ok := err.Cause.(error)
	if !ok {
		h.Next(err)
		return
	}

	switch {
	case errors.Is(cause, context.Canceled), errors.Is(cause, context.DeadlineExceeded):
		h.Next(err.WithKind(pipeline.KindCancelled))
	default:
		var coder pipeline.KindCoder
		if errors.As(cause, &coder) {
			h.Next(err.WithKind(coder.PipelineKind()))
			return
		}
		h.Next(err)
	}
}
