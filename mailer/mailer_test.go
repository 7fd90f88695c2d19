package mailer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderResetPassword(t *testing.T) {
	msg, err := RenderResetPassword("alice@x.com", "Alice", "https://app.example.com/reset/abc.def", 15)
	require.Nil(t, err)
	assert.Equal(t, "alice@x.com", msg.To)
	assert.Equal(t, resetPasswordSubject, msg.Subject)
	assert.True(t, strings.Contains(msg.Body, `href="https://app.example.com/reset/abc.def"`))
	assert.True(t, strings.Contains(msg.Body, "Hi Alice"))
	assert.True(t, strings.Contains(msg.Body, "15 minutes"))
}

func TestRenderResetPasswordEscapesName(t *testing.T) {
	msg, err := RenderResetPassword("a@x.com", "<script>", "https://x.com/r/t", 15)
	require.Nil(t, err)
	assert.False(t, strings.Contains(msg.Body, "<script>"))
}

func TestFakeMailer(t *testing.T) {
	f := &FakeMailer{}
	_, ok := f.Last()
	assert.False(t, ok)

	require.Nil(t, f.Send(context.Background(), Message{To: "a@x.com"}))
	last, ok := f.Last()
	assert.True(t, ok)
	assert.Equal(t, "a@x.com", last.To)

	f.Err = errors.New("smtp down")
	assert.NotNil(t, f.Send(context.Background(), Message{To: "b@x.com"}))
	assert.Len(t, f.Messages, 1)
}

func TestStdErrMailer(t *testing.T) {
	assert.Nil(t, NewStdErrMailer().Send(context.Background(), Message{To: "a@x.com", Subject: "s", Body: "b"}))
}

func TestNewSesMailerRequiresSender(t *testing.T) {
	_, err := NewSesMailer("us-west-1", "")
	assert.NotNil(t, err)
}
