package monitor

import "errors"

var (
	// ErrDuplicateExecution is returned when an execution id is started twice
	ErrDuplicateExecution = errors.New("duplicate execution")

	// ErrExecutionNotFound is returned when no record exists for an execution id
	ErrExecutionNotFound = errors.New("execution not found")

	// ErrKindMismatch is returned when a metric is recorded with a kind
	// different from the one established for its key
	ErrKindMismatch = errors.New("metric kind mismatch")

	// ErrInvalidMetric is returned when a metric name or value fails validation
	ErrInvalidMetric = errors.New("invalid metric")

	// ErrInvalidExecution is returned when an execution is started with
	// an unusable id
	ErrInvalidExecution = errors.New("invalid execution")
)
