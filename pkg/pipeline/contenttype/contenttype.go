// Package contenttype implements the pipeline's one built-in interceptor:
// it looks at a request's body and fills in a Content-Type when the caller
// didn't set one explicitly.
package contenttype

import (
	"fmt"

	"github.com/deepworx/go-httpclient/pkg/pipeline"
)

// Interceptor infers Content-Type from RequestOptions.Body shape. It never
// overrides a Content-Type the caller (or an earlier interceptor) already
// set, and it never touches the response or error tracks.
type Interceptor struct {
	pipeline.BaseInterceptor

	// Log receives a diagnostic when Body's type doesn't match any known
	// shape. Defaults to pipeline.NoopLogSink.
	Log pipeline.LogSink
}

// New returns a ready-to-use content-type interceptor.
func New() *Interceptor {
	return &Interceptor{Log: pipeline.NoopLogSink}
}

// PipelineBuiltin marks this interceptor as library-installed so
// InterceptorList.Remove and RemoveFunc leave it alone; RemoveBuiltin,
// Clear(false) or a Set at its index take it out.
func (i *Interceptor) PipelineBuiltin() bool { return true }

func (i *Interceptor) log() pipeline.LogSink {
	if i.Log == nil {
		return pipeline.NoopLogSink
	}
	return i.Log
}

// OnRequest implements pipeline.Interceptor.
func (i *Interceptor) OnRequest(h *pipeline.RequestHandler, options *pipeline.RequestOptions) {
	if options.Body == nil || options.ContentType != nil {
		h.Next(options)
		return
	}

	switch body := options.Body.(type) {
	case *pipeline.FormData:
		ct := "multipart/form-data; boundary=" + body.Boundary()
		options.ContentType = &ct
	case string:
		ct := "application/json"
		options.ContentType = &ct
	case map[string]any:
		ct := "application/json"
		options.ContentType = &ct
	case []map[string]any:
		ct := "application/json"
		options.ContentType = &ct
	default:
		i.log()("contenttype: no inference rule for body type", "type", fmt.Sprintf("%T", options.Body))
	}

	h.Next(options)
}
