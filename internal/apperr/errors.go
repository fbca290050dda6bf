// Package apperr holds sentinel errors shared across layers.
package apperr

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrCorruptData = errors.New("corrupt data")
	ErrInvalidKey  = errors.New("invalid key")
	ErrInvalidName = errors.New("invalid name")
)
