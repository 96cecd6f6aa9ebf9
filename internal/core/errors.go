// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrStorage      = errors.New("storage failure")

	ErrHashing           = errors.New("password hashing failed")
	ErrInvalidHashFormat = errors.New("invalid password hash format")

	ErrSigning      = errors.New("token signing failed")
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = fmt.Errorf("token expired: %w", ErrTokenInvalid)
)

// AppError carries an HTTP status and a client-safe message alongside the
// underlying cause.
type AppError struct {
	Code       string
	Message    string
	StatusCode int
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: status,
		Err:        err,
	}
}

func ValidationError(message string, err error) *AppError {
	return NewAppError("VALIDATION_ERROR", message, http.StatusBadRequest, err)
}

func UnauthorizedError(message string) *AppError {
	return NewAppError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func ForbiddenError(message string) *AppError {
	return NewAppError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func ConflictError(message string) *AppError {
	return NewAppError("CONFLICT", message, http.StatusConflict, nil)
}

func InternalError(err error) *AppError {
	return NewAppError(
		"INTERNAL_ERROR",
		"an internal error occurred",
		http.StatusInternalServerError,
		err,
	)
}

// StorageError tags a driver failure with ErrStorage while keeping the
// original error reachable through errors.Is and errors.As.
func StorageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
