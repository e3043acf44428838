package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("missing"), http.StatusBadRequest},
		{AuthRequired(), http.StatusUnauthorized},
		{Forbidden("no"), http.StatusForbidden},
		{NotFound("gone"), http.StatusNotFound},
		{Conflict("dup"), http.StatusConflict},
		{Store(errors.New("boom"), "failed"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", NotFound("post")), http.StatusNotFound},
	}
	for i, c := range cases {
		assert.Equal(t, c.want, Status(c.err), "case %d", i)
	}
}

func TestStoreHidesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Store(cause, "댓글 저장 실패")

	assert.Equal(t, "댓글 저장 실패", Message(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "서버 오류", Message(cause))
}
