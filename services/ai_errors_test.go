package services

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAIErrorHTTPStatus(t *testing.T) {
	cases := []struct {
		code AIErrorCode
		want int
	}{
		{CodeUnauthenticated, http.StatusUnauthorized},
		{CodeInvalidArgument, http.StatusBadRequest},
		{CodePermissionDenied, http.StatusForbidden},
		{CodeResourceExhausted, http.StatusTooManyRequests},
		{CodeFailedPrecondition, http.StatusPreconditionFailed},
		{CodeInternal, http.StatusInternalServerError},
		{AIErrorCode("something-new"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			err := newAIError(tc.code, "msg", nil)
			assert.Equal(t, tc.want, err.HTTPStatus())
		})
	}
}

func TestAIErrorUnwrap(t *testing.T) {
	cause := errors.New("provider exploded")
	err := newAIError(CodeInternal, "AI processing failed, please try again", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "internal: AI processing failed, please try again", err.Error())
}
