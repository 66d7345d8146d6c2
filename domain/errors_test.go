package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_IsMatchesKind(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		status int
	}{
		{"not found", NotFound("getUser", "user %s", "x"), ErrNotFound, http.StatusNotFound},
		{"invalid reference", InvalidReference("toggleFollow", "self"), ErrInvalidReference, http.StatusBadRequest},
		{"conflict", Conflict("createUser", "email taken"), ErrConflict, http.StatusConflict},
		{"internal", Internal("find", errors.New("boom")), ErrInternal, http.StatusInternalServerError},
		{"upload", Upload("upload", errors.New("boom")), ErrUpload, http.StatusBadGateway},
		{"validation", Validation("createUser", errors.New("email: required")), ErrValidation, http.StatusUnprocessableEntity},
		{"unauthorized", Unauthorized("login", "bad password"), ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", Forbidden("deletePost", "not the author"), ErrForbidden, http.StatusForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := fmt.Errorf("handler: %w", tc.err)
			assert.ErrorIs(t, wrapped, tc.target)
			assert.Equal(t, tc.status, StatusCode(wrapped))
		})
	}
}

func TestPartialFailure_IsAlsoInternal(t *testing.T) {
	cause := errors.New("connection reset")
	err := PartialFailure("deleteInvestor", cause, "investor %s survived", "abc")

	assert.ErrorIs(t, err, ErrPartialFailure)
	assert.ErrorIs(t, err, ErrInternal)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
	assert.Equal(t, "deleteInvestor: investor abc survived: connection reset", err.Error())
}

func TestKindOf_ForeignError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.Equal(t, KindConflict, KindOf(Conflict("op", "dup")))
}

func TestParseRefs(t *testing.T) {
	refs, err := ParseRefs("createStartup", "founders", []string{"64b7f0f0f0f0f0f0f0f0f0f0", "64b7f0f0f0f0f0f0f0f0f0f1"})
	require.NoError(t, err)
	assert.Len(t, refs, 2)

	_, err = ParseRefs("createStartup", "founders", []string{"64b7f0f0f0f0f0f0f0f0f0f0", "nope"})
	require.ErrorIs(t, err, ErrInvalidReference)
	assert.Contains(t, err.Error(), "founders[1]")
}
