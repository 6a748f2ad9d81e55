package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAs_ThroughWrapping(t *testing.T) {
	err := fmt.Errorf("handler: %w", NotFound("Ad not found"))

	appErr, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.True(t, Is(err, KindNotFound))
	assert.False(t, Is(err, KindForbidden))
}

func TestBadRequest_KeepsSentinel(t *testing.T) {
	err := BadRequest("Invalid or expired reset token", ErrTokenAlreadyUsedOrRevoked)

	assert.True(t, errors.Is(err, ErrTokenAlreadyUsedOrRevoked))
	assert.False(t, errors.Is(err, ErrInvalidToken))
	assert.Equal(t, http.StatusBadRequest, err.Status)
}

func TestConflictIsBadRequest(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, Conflict("User already exists with this email").Status)
}

func TestAs_PlainError(t *testing.T) {
	_, ok := As(errors.New("boom"))
	assert.False(t, ok)
}
