package dict

import "errors"

var (
	// ErrExists is returned by Add when the key is already present.
	ErrExists = errors.New("dict: key already exists")

	// ErrNotFound is returned by Find, Delete and Unlink when no entry
	// matches the key.
	ErrNotFound = errors.New("dict: key not found")

	// ErrResizeRejected is returned by Expand and ShrinkToFit when a resize
	// cannot be performed: a rehash is already in progress, the target is
	// smaller than the live entry count, the next power of two would
	// overflow, or the computed capacity equals the current one.
	ErrResizeRejected = errors.New("dict: resize rejected")
)
