package pipeline

import "testing"

type markerInterceptor struct {
	BaseInterceptor
	name   string
	marker bool
}

func (m *markerInterceptor) PipelineBuiltin() bool { return m.marker }

func TestInterceptorList_AppendAndGet(t *testing.T) {
	t.Parallel()

	l := NewInterceptorList(nil)
	a := &markerInterceptor{name: "a"}
	b := &markerInterceptor{name: "b"}
	l.Append(a)
	l.Append(b)

	if l.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", l.Len())
	}
	if got := l.Get(0).(*markerInterceptor); got.name != "a" {
		t.Errorf("Get(0) = %q, want a", got.name)
	}
	if got := l.Get(1).(*markerInterceptor); got.name != "b" {
		t.Errorf("Get(1) = %q, want b", got.name)
	}
}

func TestInterceptorList_BuiltinSurvivesClearAndRemoveFunc(t *testing.T) {
	t.Parallel()

	builtin := &markerInterceptor{name: "builtin", marker: true}
	l := NewInterceptorList(builtin)
	l.Append(&markerInterceptor{name: "user"})

	l.RemoveFunc(func(Interceptor) bool { return true })
	if l.Len() != 1 {
		t.Fatalf("Len() after RemoveFunc = %d, want 1", l.Len())
	}
	if !isBuiltin(l.Get(0)) {
		t.Error("builtin interceptor was removed by RemoveFunc")
	}

	l.Clear(true)
	if l.Len() != 1 || !isBuiltin(l.Get(0)) {
		t.Error("Clear(true) should keep the builtin interceptor")
	}

	l.Clear(false)
	if l.Len() != 0 {
		t.Errorf("Len() after Clear(false) = %d, want 0", l.Len())
	}
}

func TestInterceptorList_RemoveBuiltin(t *testing.T) {
	t.Parallel()

	builtin := &markerInterceptor{name: "builtin", marker: true}
	l := NewInterceptorList(builtin)
	l.Append(&markerInterceptor{name: "user"})

	l.RemoveBuiltin()
	if l.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", l.Len())
	}
	if isBuiltin(l.Get(0)) {
		t.Error("RemoveBuiltin left the builtin interceptor in place")
	}
}

func TestInterceptorList_InsertShiftsExistingEntries(t *testing.T) {
	t.Parallel()

	l := NewInterceptorList(nil)
	first := &markerInterceptor{name: "first"}
	second := &markerInterceptor{name: "second"}
	l.Append(first)
	l.Insert(0, second)

	if got := l.Get(0).(*markerInterceptor); got.name != "second" {
		t.Errorf("Get(0) = %q, want second", got.name)
	}
	if got := l.Get(1).(*markerInterceptor); got.name != "first" {
		t.Errorf("Get(1) = %q, want first", got.name)
	}
}

func TestInterceptorList_SnapshotIsIndependentOfLaterMutation(t *testing.T) {
	t.Parallel()

	l := NewInterceptorList(nil)
	l.Append(&markerInterceptor{name: "a"})

	snap := l.snapshot()
	l.Append(&markerInterceptor{name: "b"})

	if len(snap) != 1 {
		t.Errorf("snapshot length = %d, want 1 (unaffected by later Append)", len(snap))
	}
}
