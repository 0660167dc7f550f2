package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Role string `json:"role" validate:"required,oneof=user model"`
}

type payload struct {
	Message string `json:"message" validate:"required"`
	Items   []item `json:"items" validate:"dive"`
}

func TestFieldErrorsUseJSONNames(t *testing.T) {
	v := New()

	err := v.Struct(payload{Items: []item{{Role: "user"}, {Role: "system"}}})
	require.Error(t, err)

	got := FieldErrors(err)
	assert.ElementsMatch(t, []FieldError{
		{Field: "message", Rule: "required"},
		{Field: "items[1].role", Rule: "oneof", Param: "user model"},
	}, got)
}

func TestFieldErrorsIgnoresOtherErrors(t *testing.T) {
	assert.Nil(t, FieldErrors(errors.New("plain")))
	assert.Nil(t, FieldErrors(nil))
}
