package api

import "errors"

var (
	errNotFound         = errors.New("not found")
	errMethodNotAllowed = errors.New("method not allowed")
	errNoDiagnostics    = errors.New("diagnostics service not available")
)
