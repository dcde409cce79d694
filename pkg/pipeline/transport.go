package pipeline

import "context"

// Transport performs the actual network exchange once the request track has
// run to completion without being short-circuited. Implementations should
// classify their failures by implementing KindCoder on the returned error
// so the dispatcher can attach a precise Kind instead of falling back to
// KindConnectionError.
type Transport interface {
	RoundTrip(ctx context.Context, options *RequestOptions) (*Response, error)
}

func kindOf(err error) Kind {
	if coder, ok := err.(KindCoder); ok {
		return coder.PipelineKind()
	}
	return KindConnectionError
}
