package utils

import (
	"errors"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := NewError(ErrNotFound, "user %s not found", "abc")
	assert.Equal(t, ErrNotFound, KindOf(err))
	assert.Equal(t, "user abc not found", err.Error())

	wrapped := pkgerrors.Wrap(err, "get user")
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.Equal(t, ErrNotFound, KindOf(wrapped))

	assert.Equal(t, ErrInternal, KindOf(errors.New("boom")))
}

func TestClientMessage(t *testing.T) {
	assert.Equal(t, "Password is missing", ClientMessage(NewError(ErrValidation, "Password is missing")))
	assert.Equal(t, "internal server error", ClientMessage(errors.New("pq: connection refused")))
	assert.Equal(t, "internal server error", ClientMessage(NewError(ErrInternal, "disk full")))
}
