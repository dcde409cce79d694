package pipeline

import "sync"

// InterceptorList is the ordered, mutable sequence of interceptors a
// dispatcher consults. It is safe for concurrent mutation and read; each
// Dispatch takes an immutable snapshot at the moment it starts, so
// in-flight requests are never affected by later list edits.
//
// Slot 0 is reserved for the built-in content-type interceptor, installed
// by NewInterceptorList and protected from ordinary Remove/RemoveFunc calls;
// RemoveBuiltin, Clear(false) or a Set at its index take it out.
type InterceptorList struct {
	mu   sync.RWMutex
	list []Interceptor
}

// NewInterceptorList returns a list pre-populated with builtin at index 0.
// Passing a nil builtin yields an empty list with no protected slot.
func NewInterceptorList(builtin Interceptor) *InterceptorList {
	l := &InterceptorList{}
	if builtin != nil {
		l.list = append(l.list, builtin)
	}
	return l
}

// snapshot returns the current ordering as an independent slice, safe for a
// dispatcher to iterate without holding the list's lock.
func (l *InterceptorList) snapshot() []Interceptor {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Interceptor, len(l.list))
	copy(out, l.list)
	return out
}

// Len returns the number of interceptors currently in the list.
func (l *InterceptorList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.list)
}

// Get returns the interceptor at index, or nil if out of range.
func (l *InterceptorList) Get(index int) Interceptor {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if index < 0 || index >= len(l.list) {
		return nil
	}
	return l.list[index]
}

// Append adds interceptor to the end of the list.
func (l *InterceptorList) Append(interceptor Interceptor) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.list = append(l.list, interceptor)
}

// Insert places interceptor at index, shifting later entries right. Index 0
// is permitted even when a builtin occupies that slot: the builtin is
// pushed to index 1, it is not displaced.
func (l *InterceptorList) Insert(index int, interceptor Interceptor) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if index < 0 {
		index = 0
	}
	if index > len(l.list) {
		index = len(l.list)
	}
	l.list = append(l.list, nil)
	copy(l.list[index+1:], l.list[index:])
	l.list[index] = interceptor
}

// Set replaces the interceptor at index, including the builtin slot. It is a
// no-op if index is out of range.
func (l *InterceptorList) Set(index int, interceptor Interceptor) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if index < 0 || index >= len(l.list) {
		return
	}
	l.list[index] = interceptor
}

// Remove deletes the interceptor at index. Removing the builtin slot this
// way is a no-op; use RemoveBuiltin instead.
func (l *InterceptorList) Remove(index int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if index < 0 || index >= len(l.list) {
		return
	}
	if isBuiltin(l.list[index]) {
		return
	}
	l.list = append(l.list[:index], l.list[index+1:]...)
}

// RemoveFunc deletes every non-builtin interceptor for which match returns
// true.
func (l *InterceptorList) RemoveFunc(match func(Interceptor) bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.list[:0:0]
	for _, i := range l.list {
		if isBuiltin(i) || !match(i) {
			kept = append(kept, i)
		}
	}
	l.list = kept
}

// RemoveBuiltin removes the built-in content-type interceptor, if present.
func (l *InterceptorList) RemoveBuiltin() {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.list[:0:0]
	for _, i := range l.list {
		if !isBuiltin(i) {
			kept = append(kept, i)
		}
	}
	l.list = kept
}

// Clear empties the list. When keepBuiltin is true the built-in
// content-type interceptor, if present, survives at index 0.
func (l *InterceptorList) Clear(keepBuiltin bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !keepBuiltin {
		l.list = nil
		return
	}
	kept := l.list[:0:0]
	for _, i := range l.list {
		if isBuiltin(i) {
			kept = append(kept, i)
		}
	}
	l.list = kept
}

// ForEach calls fn for every interceptor in order. fn must not mutate the
// list; use the indexed methods for that.
func (l *InterceptorList) ForEach(fn func(index int, interceptor Interceptor)) {
	for i, interceptor := range l.snapshot() {
		fn(i, interceptor)
	}
}
