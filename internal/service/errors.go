package service

import "errors"

// Common service errors
var (
	ErrInvalidInput = errors.New("invalid input")
)

// Match service specific errors
var (
	ErrResultAlreadyReported = errors.New("match result already reported")
)
