package repository

import "errors"

var (
	// ErrNotFound is returned by every store when no row matches the requested id.
	ErrNotFound = errors.New("task not found")
	// ErrUnchanged is returned by conditional writes when the row already holds the requested value.
	ErrUnchanged = errors.New("task already in requested state")
)
