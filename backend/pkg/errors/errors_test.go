package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfileErrors_Messages(t *testing.T) {
	nf := NewProfileNotFound("John", "Doe")
	assert.Equal(t, `"John Doe" not registered`, nf.UserMessage())
	assert.Equal(t, `[graph] "John Doe" not registered`, nf.Error())

	ae := NewProfileAlreadyExists("John", "Doe")
	assert.Equal(t, `"John Doe" already registered`, ae.UserMessage())
	assert.Equal(t, "John", ae.Firstname)
	assert.Equal(t, "Doe", ae.Lastname)
}

func TestIsErrorType_ThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("add friend: %w", NewProfileNotFound("Jane", "Doe"))

	assert.True(t, IsErrorType(wrapped, ErrorTypeGraph))
	assert.False(t, IsErrorType(wrapped, ErrorTypeStorage))
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsAlreadyExists(wrapped))
	assert.True(t, IsUserError(wrapped))
	assert.Equal(t, `"Jane Doe" not registered`, UserMessage(wrapped))
}

func TestStorageInitFailed_UnwrapsCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := NewStorageInitFailed("profiles.sqlite", cause)

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsErrorType(err, ErrorTypeStorage))
	assert.False(t, IsUserError(err))
	assert.False(t, IsRetryable(err))
}

func TestValidationErrors(t *testing.T) {
	assert.True(t, IsUserError(NewUnsupportedField("email")))
	assert.True(t, IsUserError(NewInvalidValue("phone", "too long")))
	assert.True(t, IsUserError(NewSelfFriendship("John", "Doe")))
	assert.Equal(t, "plain", UserMessage(stderrors.New("plain")))
	assert.False(t, IsErrorType(stderrors.New("plain"), ErrorTypeGraph))
}
