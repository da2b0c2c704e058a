package errors

import (
	"errors"
	"fmt"
)

// NotFoundError is returned when a resource is absent for the given key.
type NotFoundError struct {
	Resource string
	Key      interface{}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Resource, e.Key)
}

func NewNotFoundError(resource string, key interface{}) *NotFoundError {
	return &NotFoundError{Resource: resource, Key: key}
}

// InvalidStateError is returned when an operation targets a resource in the wrong lifecycle state.
type InvalidStateError struct {
	Resource string
	State    string
	Op       string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s %s in state %s", e.Op, e.Resource, e.State)
}

func NewInvalidStateError(resource, state, op string) *InvalidStateError {
	return &InvalidStateError{Resource: resource, State: state, Op: op}
}

type ForbiddenError struct {
	UserID   string
	Resource string
	Action   string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("user %s cannot %s %s", e.UserID, e.Action, e.Resource)
}

func NewForbiddenError(userID, resource, action string) *ForbiddenError {
	return &ForbiddenError{UserID: userID, Resource: resource, Action: action}
}

// PersistenceError wraps a store failure. Its message must never reach a client.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

// ExhaustedError is returned when a bounded retry loop ran out of attempts.
type ExhaustedError struct {
	Op       string
	Attempts int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s: exhausted after %d attempts", e.Op, e.Attempts)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsInvalidState(err error) bool {
	var is *InvalidStateError
	return errors.As(err, &is)
}

func IsForbidden(err error) bool {
	var fe *ForbiddenError
	return errors.As(err, &fe)
}

func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

func IsExhausted(err error) bool {
	var ee *ExhaustedError
	return errors.As(err, &ee)
}

// IsValidation matches both a single ValidationError and a ValidationErrors list.
func IsValidation(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return true
	}
	var ves ValidationErrors
	return errors.As(err, &ves)
}
