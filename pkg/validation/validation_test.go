package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "tickethub/pkg/domain-errors"
)

type cardRequest struct {
	CardNumber string `validate:"required,min=8" message:"Please enter a valid Ghana Card number."`
	Method     string `validate:"omitempty,oneof=momo visa"`
	Email      string `validate:"omitempty,email"`
}

func TestValidate(t *testing.T) {
	t.Run("valid request", func(t *testing.T) {
		require.NoError(t, Validate(&cardRequest{CardNumber: "GHA-123456789-0", Method: "momo"}))
	})

	t.Run("tagged message wins for its field", func(t *testing.T) {
		err := Validate(&cardRequest{CardNumber: "GHA-1"})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Equal(t, "Please enter a valid Ghana Card number.", err.Error())
	})

	t.Run("generated message for untagged fields", func(t *testing.T) {
		err := Validate(&cardRequest{CardNumber: "GHA-123456789-0", Method: "cash"})
		require.Error(t, err)
		assert.Equal(t, "method must be one of [momo visa]", err.Error())
	})

	t.Run("email message", func(t *testing.T) {
		err := Validate(cardRequest{CardNumber: "GHA-123456789-0", Email: "nope"})
		require.Error(t, err)
		assert.Equal(t, "email must be a valid email", err.Error())
	})
}

func TestToSnakeCase(t *testing.T) {
	assert.Equal(t, "card_number", ToSnakeCase("CardNumber"))
	assert.Equal(t, "ticket_type_id", ToSnakeCase("TicketTypeID"))
	assert.Equal(t, "method", ToSnakeCase("Method"))
}
