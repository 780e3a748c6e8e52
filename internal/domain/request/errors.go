package request

import "fmt"

// ErrInvalidRequest represents validation errors for work requests
type ErrInvalidRequest struct {
	Field  string
	Reason string
}

func (e *ErrInvalidRequest) Error() string {
	return fmt.Sprintf("invalid work request: %s - %s", e.Field, e.Reason)
}
