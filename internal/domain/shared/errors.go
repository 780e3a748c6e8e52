package shared

import "fmt"

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Worker protocol errors

// WorkerError is raised when a worker is asked to do something its current
// state does not allow. The worker is left unchanged.
type WorkerError struct {
	*DomainError
	WorkerID string
	Role     string
}

func NewWorkerError(role, workerID, message string) *WorkerError {
	return &WorkerError{
		DomainError: &DomainError{Message: fmt.Sprintf("%s %s: %s", role, workerID, message)},
		WorkerID:    workerID,
		Role:        role,
	}
}

type NoTaskError struct {
	*WorkerError
}

func NewNoTaskError(role, workerID string) *NoTaskError {
	return &NoTaskError{WorkerError: NewWorkerError(role, workerID, "no task has been assigned")}
}

type AlreadyAssignedError struct {
	*WorkerError
	RequestID int
}

func NewAlreadyAssignedError(role, workerID string, requestID int) *AlreadyAssignedError {
	return &AlreadyAssignedError{
		WorkerError: NewWorkerError(role, workerID, "already working on a task"),
		RequestID:   requestID,
	}
}

type UnsupportedActionError struct {
	*WorkerError
	Action string
}

func NewUnsupportedActionError(role, workerID, action string) *UnsupportedActionError {
	return &UnsupportedActionError{
		WorkerError: NewWorkerError(role, workerID, fmt.Sprintf("cannot %s", action)),
		Action:      action,
	}
}
