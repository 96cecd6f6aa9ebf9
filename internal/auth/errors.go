// AngelaMos | 2026
// errors.go

package auth

import (
	"errors"

	"github.com/qhub-dev/qhub/internal/core"
)

var (
	ErrValidation         = errors.New("invalid input")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDeactivated = errors.New("account deactivated")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrAuthBusy           = errors.New("authentication already in progress")
)

// UserMessage maps an orchestrator error to the single line shown to the
// user. Storage and internal details are never surfaced.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return err.Error()
	case errors.Is(err, ErrEmailExists):
		return "An account with that email already exists."
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password."
	case errors.Is(err, ErrAccountDeactivated):
		return "This account has been deactivated."
	case errors.Is(err, ErrInvalidSession):
		return "Your session has expired. Please log in again."
	case errors.Is(err, ErrAuthBusy):
		return "Please wait for the current sign-in to finish."
	case errors.Is(err, core.ErrStorage):
		return "The account service is unavailable. Please try again later."
	default:
		return "Something went wrong. Please try again."
	}
}

// HTTPError maps an orchestrator error to an AppError for the REST API.
func HTTPError(err error) error {
	switch {
	case errors.Is(err, ErrValidation):
		return core.ValidationError(err.Error(), err)
	case errors.Is(err, ErrEmailExists):
		return core.ConflictError(UserMessage(err))
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidSession):
		return core.UnauthorizedError(UserMessage(err))
	case errors.Is(err, ErrAccountDeactivated):
		return core.ForbiddenError(UserMessage(err))
	default:
		return core.InternalError(err)
	}
}
