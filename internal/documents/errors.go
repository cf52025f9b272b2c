package documents

import "errors"

var (
	// ErrNotFound indicates the requested document does not exist for the user.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidInput indicates the request was malformed.
	ErrInvalidInput = errors.New("invalid input")
)
