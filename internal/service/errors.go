package service

import "fmt"

const (
	MsgFieldsRequired = "All fields are required"
	MsgInvalidAge     = "Age must be a number"
	MsgInvalidDOB     = "Invalid date of birth"
	MsgEmailTaken     = "A user with this email already exists"
)

// ValidationError reports input the caller has to fix before retrying.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Fields)
}

// ConflictError reports a create that collides with an existing user.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// StorageError wraps any other persistence failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
