package apperror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{Unauthorized("who"), http.StatusUnauthorized},
		{Forbidden("no"), http.StatusForbidden},
		{NotFound("gone"), http.StatusNotFound},
		{Conflict("taken"), http.StatusNotFound},
		{Duplicate("exists"), http.StatusConflict},
		{Unavailable("down"), http.StatusServiceUnavailable},
		{Dependency("db", errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.err.Status(), tc.err.Kind.String())
	}
}

func TestFrom(t *testing.T) {
	assert.Nil(t, From(nil))

	wrapped := fmt.Errorf("outer: %w", Forbidden("not eligible"))
	assert.Equal(t, KindForbidden, From(wrapped).Kind)
	assert.Equal(t, "not eligible", From(wrapped).Message)

	assert.Equal(t, KindNotFound, From(gorm.ErrRecordNotFound).Kind)
	assert.Equal(t, KindDependency, From(context.DeadlineExceeded).Kind)

	raw := From(errors.New("connection refused"))
	assert.Equal(t, KindDependency, raw.Kind)
	assert.Equal(t, "internal server error", raw.Message)
	assert.Contains(t, raw.Error(), "connection refused")
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("accept: %w", Conflict("already accepted"))
	assert.True(t, Is(err, KindConflict))
	assert.False(t, Is(err, KindNotFound))
	assert.False(t, Is(errors.New("plain"), KindConflict))
}
