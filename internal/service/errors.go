package service

import (
	"errors"
	"fmt"
)

// Service sentinels. Expected conditions are returned as these values so the
// API layer can map them with errors.Is; unexpected failures are wrapped in
// *TaskServiceError.
var (
	// ErrNotGroupMember is returned when the caller has no accepted membership in
	// the group. The API maps it to 403 Forbidden.
	ErrNotGroupMember = errors.New("caller is not a member of the group")

	// ErrTaskNotFound is returned when the task does not exist in the group.
	// The API maps it to 404 Not Found.
	ErrTaskNotFound = errors.New("task not found")

	// ErrNotJoined is returned when the caller has no relation to the task yet.
	// The API maps it to 404 Not Found.
	ErrNotJoined = errors.New("caller has not joined the task")
)

// TaskServiceError wraps unexpected failures of a task service operation.
type TaskServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError creates a new TaskServiceError.
func NewTaskServiceError(operation, message string, err error) *TaskServiceError {
	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
