package services

import (
	"errors"

	apperrors "github.com/SAP-F-2025/quiz-service/internal/errors"
	"gorm.io/gorm"
)

// ===== CUSTOM ERROR TYPES =====

// Use shared error types from errors package
type (
	ValidationError   = apperrors.ValidationError
	ValidationErrors  = apperrors.ValidationErrors
	NotFoundError     = apperrors.NotFoundError
	InvalidStateError = apperrors.InvalidStateError
	ForbiddenError    = apperrors.ForbiddenError
	PersistenceError  = apperrors.PersistenceError
	ExhaustedError    = apperrors.ExhaustedError
)

const (
	ResourceTest     = "test"
	ResourceQuestion = "question"
	ResourceSession  = "test session"
	ResourceResult   = "test result"
)

// ===== ERROR HELPERS =====

// classifyRepoError turns a repository error into a NotFoundError when the record
// is missing and into a PersistenceError otherwise. Typed errors pass through.
func classifyRepoError(op, resource string, key interface{}, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NewNotFoundError(resource, key)
	}
	if isDomainError(err) {
		return err
	}
	return apperrors.NewPersistenceError(op, err)
}

func isDomainError(err error) bool {
	return IsNotFound(err) || IsValidation(err) || IsInvalidState(err) ||
		IsForbidden(err) || IsExhausted(err) || IsPersistence(err)
}

func newValidationError(field, message string, value interface{}) ValidationErrors {
	return ValidationErrors{*apperrors.NewValidationError(field, message, value)}
}

func newForbidden(userID, resource, action string) error {
	return apperrors.NewForbiddenError(userID, resource, action)
}

func asValidationErrors(err error, target *ValidationErrors) bool {
	return errors.As(err, target)
}

func IsNotFound(err error) bool     { return apperrors.IsNotFound(err) }
func IsValidation(err error) bool   { return apperrors.IsValidation(err) }
func IsInvalidState(err error) bool { return apperrors.IsInvalidState(err) }
func IsForbidden(err error) bool    { return apperrors.IsForbidden(err) }
func IsExhausted(err error) bool    { return apperrors.IsExhausted(err) }
func IsPersistence(err error) bool  { return apperrors.IsPersistence(err) }
