package runs

import "errors"

var (
	ErrNotFound     = errors.New("run not found")
	ErrForbidden    = errors.New("run belongs to another user")
	ErrInvalidInput = errors.New("query is required")
)

const (
	ErrorCodeAgentFailure    = "AGENT_FAILURE"
	ErrorCodeTimeoutExceeded = "TIMEOUT_EXCEEDED"
	ErrorCodeStorage         = "STORAGE_ERROR"
	ErrorCodeInternal        = "INTERNAL_ERROR"
)
