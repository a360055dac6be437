package model

import "errors"

var (
	// ErrInvalidConfiguration is returned for unusable container, area or
	// protocol settings. It is never retried.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrNodeNotFound is returned when an operation names an unknown node.
	ErrNodeNotFound = errors.New("node not found")
)
