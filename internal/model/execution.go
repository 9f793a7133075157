package model

import "time"

// ExecutionStatus represents the lifecycle state of a tracked execution
type ExecutionStatus string

const (
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusError     ExecutionStatus = "error"
)

// Terminal reports whether the status ends the execution lifecycle
func (s ExecutionStatus) Terminal() bool {
	return s == ExecutionStatusCompleted || s == ExecutionStatusError
}

// FunctionCall is one timed sub-step within an execution's log
type FunctionCall struct {
	Name       string    `json:"name"`
	DurationMS float64   `json:"duration_ms"`
	Success    bool      `json:"success"`
	RecordedAt time.Time `json:"recorded_at"`
}

// ExecutionReport is the full record of one tracked execution.
// DurationMS is end minus start for terminal executions and
// elapsed-so-far for running ones.
type ExecutionReport struct {
	ExecutionID  string                 `json:"execution_id"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	Status       ExecutionStatus        `json:"status"`
	StartedAt    time.Time              `json:"started_at"`
	CompletedAt  *time.Time             `json:"completed_at,omitempty"`
	DurationMS   float64                `json:"duration_ms"`
	ErrorMessage string                 `json:"error_message,omitempty"`
	Calls        []FunctionCall         `json:"calls"`
}
