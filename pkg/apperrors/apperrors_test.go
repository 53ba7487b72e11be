package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("bad input"), http.StatusBadRequest},
		{Forbidden("nope"), http.StatusForbidden},
		{InvalidTransition("already approved"), http.StatusConflict},
		{Conflict("already on site"), http.StatusConflict},
		{NotFound("gone"), http.StatusNotFound},
		{errors.New("plain"), http.StatusInternalServerError},
		{nil, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(tc.err))
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := NotFound("appointment %s not found", "abc")
	wrapped := fmt.Errorf("loading appointment: %w", inner)

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindNotFound))
	assert.False(t, IsKind(wrapped, KindConflict))
}

func TestWrapKeepsKindAndCause(t *testing.T) {
	cause := errors.New("db down")
	err := Validation("failed to hash password").Wrap(cause)

	assert.Equal(t, KindValidation, KindOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "db down")
}

func TestMessageFormatting(t *testing.T) {
	err := InvalidTransition("appointment is %s, cannot move %s -> %s", "APPROVED", "PENDING", "REJECTED")
	assert.Equal(t, "appointment is APPROVED, cannot move PENDING -> REJECTED", err.Error())
}
