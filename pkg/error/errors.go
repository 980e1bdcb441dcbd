package error

import (
	"errors"
	"net/http"

	"github.com/fixora/fieldreports/internal/domain"
)

type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *AppError) Error() string {
	return e.Message
}

var (
	ErrBadRequest     = &AppError{Code: "BAD_REQUEST", Message: "Bad request", Status: http.StatusBadRequest}
	ErrUnauthorized   = &AppError{Code: "UNAUTHORIZED", Message: "Unauthorized", Status: http.StatusUnauthorized}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Not found", Status: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "Internal server error", Status: http.StatusInternalServerError}
)

func NewBadRequest(message string) *AppError {
	return &AppError{Code: "BAD_REQUEST", Message: message, Status: http.StatusBadRequest}
}

func NewUnauthorized(message string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: message, Status: http.StatusUnauthorized}
}

func NewForbidden(message string) *AppError {
	return &AppError{Code: "FORBIDDEN", Message: message, Status: http.StatusForbidden}
}

func NewNotFound(message string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: message, Status: http.StatusNotFound}
}

func NewLoadFailed(message string) *AppError {
	return &AppError{Code: "LOAD_FAILED", Message: message, Status: http.StatusServiceUnavailable}
}

func NewPersistenceFailed(message string) *AppError {
	return &AppError{Code: "PERSISTENCE_FAILED", Message: message, Status: http.StatusBadGateway}
}

func NewInternalServer(message string) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: message, Status: http.StatusInternalServerError}
}

// MapError converts any error into the AppError the HTTP layer answers with
func MapError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var de *domain.DomainError
	if !errors.As(err, &de) {
		return NewInternalServer("An unexpected error occurred")
	}

	switch de.Kind {
	case domain.ErrorKindValidation:
		return NewBadRequest(de.Message)
	case domain.ErrorKindForbidden:
		return NewForbidden(de.Message)
	case domain.ErrorKindNotFound:
		return NewNotFound(de.Message)
	case domain.ErrorKindLoad:
		return NewLoadFailed(de.Message)
	case domain.ErrorKindPersistence:
		return NewPersistenceFailed(de.Message)
	default:
		return NewInternalServer("An unexpected error occurred")
	}
}
