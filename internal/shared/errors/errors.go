package errors

import "errors"

// Domain errors
var (
	// Command errors
	ErrEmptyCommand = errors.New("empty command")

	// Diagnostic errors
	ErrChecksFailed        = errors.New("one or more diagnostic checks failed")
	ErrInvalidPort         = errors.New("port must be between 1 and 65535")
	ErrEmptyService        = errors.New("service name cannot be empty")
	ErrInvalidOutputFormat = errors.New("output format must be text or json")

	// API errors
	ErrRateLimited = errors.New("rate limit exceeded")
)
