package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/oralrisk/pkg/errors"
)

func TestRound(t *testing.T) {
	assert.Equal(t, 0.67, Round(0.6666, 2))
	assert.Equal(t, 0.333, Round(1.0/3.0, 3))
	assert.Equal(t, 1.0, Round(0.9999, 2))
	assert.Equal(t, 0.5, Round(0.5, 2))
}

func TestMasking(t *testing.T) {
	assert.Equal(t, "a****@example.com", MaskEmail("alice@example.com"))
	assert.Equal(t, "******1234", MaskPhoneNumber("5550001234"))
	assert.Equal(t, "***", MaskPhoneNumber("123"))
}

type signup struct {
	Username string `validate:"required"`
	Email    string `validate:"omitempty,email"`
}

func TestValidateStruct(t *testing.T) {
	assert.Nil(t, ValidateStruct(signup{Username: "bob"}))

	err := ValidateStruct(signup{Email: "not-an-email"})
	require.NotNil(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
	assert.Equal(t, "is required", err.Metadata()["username"])
	assert.Equal(t, "must be a valid email address", err.Metadata()["email"])
}
