package annotation

import "sync/atomic"

// Routine runs in place of a node's own execution.
// It receives the ambient execution context and returns the node to run next.
type Routine[K comparable, C any] func(c C) (K, error)

// Destructor releases an Annotation's payload.
type Destructor[C any] func(c C, payload any)

// Releaser is implemented by payloads that release themselves.
// It is used when an Annotation carries a payload but no Destructor.
type Releaser[C any] interface {
	Release(c C)
}

// Annotation is a single (routine, payload, destructor) binding.
// The payload is owned by the Annotation once constructed; the caller must not release it.
type Annotation[K comparable, C any] struct {
	routine atomic.Pointer[Routine[K, C]]
	payload any
	dtor    Destructor[C]
	freed   atomic.Bool
}

// New creates an Annotation. A nil routine may be assigned later with SetRoutine.
func New[K comparable, C any](routine Routine[K, C], payload any, dtor Destructor[C]) *Annotation[K, C] {
	a := &Annotation[K, C]{
		payload: payload,
		dtor:    dtor,
	}
	a.SetRoutine(routine)
	return a
}

// Routine returns the alternate routine, or nil if none was assigned.
func (a *Annotation[K, C]) Routine() Routine[K, C] {
	if r := a.routine.Load(); r != nil {
		return *r
	}
	return nil
}

// SetRoutine replaces the alternate routine.
func (a *Annotation[K, C]) SetRoutine(r Routine[K, C]) {
	if r == nil {
		a.routine.Store(nil)
		return
	}
	a.routine.Store(&r)
}

// Payload returns the owned payload (may be nil).
func (a *Annotation[K, C]) Payload() any {
	return a.payload
}

// Freed reports whether the Annotation has been destroyed.
func (a *Annotation[K, C]) Freed() bool {
	return a.freed.Load()
}

// Run invokes the alternate routine.
// It returns ErrAnnotationFreed after Free and ErrNoRoutine when no routine is set.
func (a *Annotation[K, C]) Run(c C) (K, error) {
	var zero K
	if a.freed.Load() {
		return zero, ErrAnnotationFreed
	}
	r := a.Routine()
	if r == nil {
		return zero, ErrNoRoutine
	}
	return r(c)
}

// Free destroys the Annotation, releasing its payload.
// The destructor runs at most once and only for a non-nil payload.
// Calling Free again returns ErrAnnotationFreed without running anything.
func (a *Annotation[K, C]) Free(c C) error {
	if !a.freed.CompareAndSwap(false, true) {
		return ErrAnnotationFreed
	}
	if a.payload == nil {
		return nil
	}
	if a.dtor != nil {
		a.dtor(c, a.payload)
		return nil
	}
	if r, ok := a.payload.(Releaser[C]); ok {
		r.Release(c)
	}
	return nil
}
