package cmd

import (
	"fmt"

	sharedErrors "github.com/khanhnv2901/srvdiag/internal/shared/errors"
)

// ChecksFailedError is returned under --strict when at least one check failed.
type ChecksFailedError struct {
	Failed int
	Total  int
}

func (e *ChecksFailedError) Error() string {
	return fmt.Sprintf("%d of %d diagnostic checks failed", e.Failed, e.Total)
}

func (e *ChecksFailedError) Unwrap() error {
	return sharedErrors.ErrChecksFailed
}

// OutputFormatError signals an unsupported --output value.
type OutputFormatError struct {
	Value string
}

func (e *OutputFormatError) Error() string {
	if e.Value == "" {
		return sharedErrors.ErrInvalidOutputFormat.Error()
	}
	return fmt.Sprintf("%s, got %q", sharedErrors.ErrInvalidOutputFormat.Error(), e.Value)
}

func (e *OutputFormatError) Unwrap() error {
	return sharedErrors.ErrInvalidOutputFormat
}
