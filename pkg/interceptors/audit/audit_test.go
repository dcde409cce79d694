package audit

import (
	"context"
	"testing"
	"time"

	"github.com/deepworx/go-httpclient/pkg/pipeline"
	"github.com/deepworx/go-httpclient/pkg/postgres"
)

type stubTransport struct {
	resp *pipeline.Response
	err  error
}

func (s stubTransport) RoundTrip(_ context.Context, options *pipeline.RequestOptions) (*pipeline.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	r := *s.resp
	r.Request = options
	return &r, nil
}

func TestInterceptor_OnResponseWritesViaUnitOfWork(t *testing.T) {
	t.Parallel()

	i := New(postgres.NewInMemoryUnitOfWork())
	i.clock = func() time.Time { return time.Unix(0, 0) }

	var executed bool
	i.Log = func(string, ...any) { t.Error("unexpected diagnostic on success path") }

	list := pipeline.NewInterceptorList(nil)
	list.Append(i)
	list.Append(&pipeline.FuncInterceptor{
		Response: func(h *pipeline.ResponseHandler, resp *pipeline.Response) {
			executed = true
			h.Next(resp)
		},
	})
	d := pipeline.NewDispatcher(list, stubTransport{resp: &pipeline.Response{StatusCode: 200}})

	_, err := d.Dispatch(context.Background(), pipeline.NewRequestOptions("GET", "https://example.test"))
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if !executed {
		t.Error("downstream interceptor never ran")
	}
}

func TestInterceptor_OnErrorStillPassesErrorThrough(t *testing.T) {
	t.Parallel()

	i := New(postgres.NewInMemoryUnitOfWork())

	list := pipeline.NewInterceptorList(nil)
	list.Append(i)
	d := pipeline.NewDispatcher(list, stubTransport{err: context.DeadlineExceeded})

	_, err := d.Dispatch(context.Background(), pipeline.NewRequestOptions("GET", "https://example.test"))
	if err == nil {
		t.Fatal("Dispatch() error = nil, want failure to still propagate")
	}
}
