package service

import (
	"errors"
	"strings"

	"github.com/Marga-Ghale/ora-project-tracker/internal/repository"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
)

// ============================================
// Validation Errors
// ============================================

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every field problem found in one request.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap lets callers match on ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func (e *ValidationError) Add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

// Err returns e if any field error was collected, else nil.
func (e *ValidationError) Err() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Field: field, Message: message}}}
}

// ============================================
// Services Container
// ============================================

type Services struct {
	Project ProjectService
}

// ServiceDeps contains all dependencies needed to create services.
// Cache and Events are optional.
type ServiceDeps struct {
	Repos  *repository.Repositories
	Cache  ProjectCache
	Events ProjectEvents
}

func NewServices(deps *ServiceDeps) *Services {
	return &Services{
		Project: NewProjectService(deps.Repos.ProjectRepo, deps.Cache, deps.Events),
	}
}
