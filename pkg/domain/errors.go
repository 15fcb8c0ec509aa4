package domain

import "errors"

// ErrNodeNotFound is returned when a node ID does not exist in a program.
var ErrNodeNotFound = errors.New("node not found")

// ErrEmptyProgram is returned when a program has no nodes.
var ErrEmptyProgram = errors.New("program has no nodes")
