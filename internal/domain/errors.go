package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain error so the transport layer can decide how to surface it
type ErrorKind string

const (
	ErrorKindValidation  ErrorKind = "validation"
	ErrorKindNotFound    ErrorKind = "not_found"
	ErrorKindLoad        ErrorKind = "load"
	ErrorKindPersistence ErrorKind = "persistence"
	ErrorKindForbidden   ErrorKind = "forbidden"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches sentinel errors by kind and message so wrapped copies still compare equal
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func NewDomainError(kind ErrorKind, message string) *DomainError {
	return &DomainError{Kind: kind, Message: message}
}

// NewValidationError reports bad user input
func NewValidationError(message string) *DomainError {
	return &DomainError{Kind: ErrorKindValidation, Message: message}
}

// NewLoadError wraps a failure to fetch technicians or work orders
func NewLoadError(err error) *DomainError {
	return &DomainError{Kind: ErrorKindLoad, Message: "failed to load report data", Err: err}
}

// NewPersistenceError wraps a failure of the report store during op
func NewPersistenceError(op string, err error) *DomainError {
	return &DomainError{Kind: ErrorKindPersistence, Message: op + " failed", Err: err}
}

var (
	ErrReportNameRequired = NewValidationError("report name is required")
	ErrInvalidDate        = NewValidationError("invalid date, expected YYYY-MM-DD")
	ErrInvalidPagination  = NewValidationError("page and page size must be positive")
	ErrReportNotFound     = NewDomainError(ErrorKindNotFound, "report not found")
	ErrDatasetNotLoaded   = NewDomainError(ErrorKindLoad, "report data has not been loaded")
	ErrReportsForbidden   = NewDomainError(ErrorKindForbidden, "technicians are not authorized to access reports")
)

func kindOf(err error) (ErrorKind, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return "", false
}

func IsValidation(err error) bool {
	k, ok := kindOf(err)
	return ok && k == ErrorKindValidation
}

func IsNotFound(err error) bool {
	k, ok := kindOf(err)
	return ok && k == ErrorKindNotFound
}

func IsLoad(err error) bool {
	k, ok := kindOf(err)
	return ok && k == ErrorKindLoad
}

func IsPersistence(err error) bool {
	k, ok := kindOf(err)
	return ok && k == ErrorKindPersistence
}

func IsForbidden(err error) bool {
	k, ok := kindOf(err)
	return ok && k == ErrorKindForbidden
}
