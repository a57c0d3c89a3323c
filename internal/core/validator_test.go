package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipeclub/internal/types"
)

type validatorTestDTO struct {
	Email       string `validate:"required,email"`
	NewPassword string `validate:"required,min=6"`
}

func TestValidator_Valid(t *testing.T) {
	v := NewValidator(nil)

	err := v.ValidateStruct(validatorTestDTO{
		Email:       "ana@example.com",
		NewPassword: "novasenha",
	})
	require.NoError(t, err)
}

func TestValidator_MissingRequiredField(t *testing.T) {
	v := NewValidator(nil)

	err := v.ValidateStruct(validatorTestDTO{NewPassword: "novasenha"})
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeValidationMissingField, appErr.Code)
	assert.Equal(t, "required", appErr.Details["email"])
}

func TestValidator_InvalidEmail(t *testing.T) {
	v := NewValidator(nil)

	err := v.ValidateStruct(validatorTestDTO{
		Email:       "not-an-email",
		NewPassword: "novasenha",
	})
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeValidationInvalidEmail, appErr.Code)
}

func TestValidator_ShortPasswordGetsDedicatedCode(t *testing.T) {
	v := NewValidator(nil)

	err := v.ValidateStruct(validatorTestDTO{
		Email:       "ana@example.com",
		NewPassword: "12345",
	})
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeValidationPasswordTooShort, appErr.Code)
	assert.Contains(t, appErr.Message, "at least 6")
}

func TestValidator_CollectsAllViolations(t *testing.T) {
	v := NewValidator(nil)

	err := v.ValidateStruct(validatorTestDTO{})
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Len(t, appErr.Details, 2)
}

func TestValidator_NonStructInput(t *testing.T) {
	v := NewValidator(nil)

	err := v.ValidateStruct("not a struct")
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeInternalUnexpected, appErr.Code)
}
