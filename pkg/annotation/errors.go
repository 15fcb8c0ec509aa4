package annotation

import "errors"

// ErrGroupDestroyed is returned by operations on a Group after Destroy.
var ErrGroupDestroyed = errors.New("annotation group destroyed")

// ErrAnnotationFreed is returned when an Annotation is freed or run after it was freed.
var ErrAnnotationFreed = errors.New("annotation already freed")

// ErrNoRoutine is returned by Run when no routine has been assigned.
var ErrNoRoutine = errors.New("annotation has no routine")
