// AngelaMos | 2026
// errors_test.go

package auth

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qhub-dev/qhub/internal/core"
)

func TestHTTPError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: email is required", ErrValidation), http.StatusBadRequest},
		{ErrEmailExists, http.StatusConflict},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{fmt.Errorf("%w: %w", ErrInvalidSession, core.ErrTokenExpired), http.StatusUnauthorized},
		{ErrAccountDeactivated, http.StatusForbidden},
		{core.StorageError("login", errors.New("disk full")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		var appErr *core.AppError
		require.ErrorAs(t, HTTPError(tt.err), &appErr)
		assert.Equal(t, tt.status, appErr.StatusCode, tt.err.Error())
	}
}

func TestUserMessageHidesInternals(t *testing.T) {
	err := core.StorageError("login", errors.New("pq: password authentication failed for db"))
	msg := UserMessage(err)
	assert.NotContains(t, msg, "pq")
	assert.NotContains(t, msg, "password authentication")

	assert.Empty(t, UserMessage(nil))
	assert.Equal(t, "Something went wrong. Please try again.", UserMessage(errors.New("boom")))
}
