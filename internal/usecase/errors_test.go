package usecase

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestError_Message(t *testing.T) {
	require.Equal(t, "usecase: NOT_FOUND (coffee_not_found)", NewError(ErrorNotFound, "coffee_not_found", nil).Error())

	err := NewError(ErrorInternal, "dynamodb_error", errors.New("boom"))
	require.Equal(t, "usecase: INTERNAL_ERROR (dynamodb_error): boom", err.Error())
	require.ErrorContains(t, err, "boom")

	var nilErr *Error
	require.Equal(t, "", nilErr.Error())
	require.Nil(t, nilErr.Unwrap())
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("cause")
	err := fmt.Errorf("wrapped: %w", NewError(ErrorConflict, "email_exists", cause))
	require.ErrorIs(t, err, cause)
	require.Equal(t, ErrorConflict, CodeOf(err))
}

func TestCodeOf_Unknown(t *testing.T) {
	require.Equal(t, ErrorInternal, CodeOf(errors.New("plain")))
}
