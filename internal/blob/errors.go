package blob

import "errors"

var (
	// ErrNotFound indicates the handle does not exist or was already released.
	ErrNotFound = errors.New("blob: handle not found")

	// ErrInvalidHandle indicates the handle is malformed.
	ErrInvalidHandle = errors.New("blob: invalid handle")

	// ErrReleased is returned when a handle is released a second time.
	ErrReleased = errors.New("blob: handle already released")

	// ErrTooLarge indicates the content exceeds the configured size limit.
	ErrTooLarge = errors.New("blob: content exceeds size limit")
)
