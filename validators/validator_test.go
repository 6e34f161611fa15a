package validators

import (
	"testing"

	"github.com/anonto42/foodgram/backend/internal/apperrors"
	"github.com/anonto42/foodgram/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidUsername(t *testing.T) {
	for _, name := range []string{"alice", "bob.smith", "x@y", "a+b-c_d"} {
		assert.True(t, ValidUsername(name), name)
	}
	for _, name := range []string{"me", "Me", "ME", "", "with space", "semi;colon"} {
		assert.False(t, ValidUsername(name), name)
	}
}

func TestValidHexColor(t *testing.T) {
	assert.True(t, ValidHexColor("#E26C2D"))
	assert.True(t, ValidHexColor("#00ff00"))
	assert.False(t, ValidHexColor("E26C2D"))
	assert.False(t, ValidHexColor("#FFF"))
	assert.False(t, ValidHexColor("#GGGGGG"))
}

func TestValidateReportsFieldDetails(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&models.CreateUserRequest{
		Email:     "not-an-email",
		Username:  "me",
		FirstName: "Ann",
		LastName:  "Lee",
		Password:  "short",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	details, ok := appErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "username")
	assert.Contains(t, details, "password")
	assert.NotContains(t, details, "first_name")
}

func TestValidateAcceptsGoodPayload(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&models.CreateUserRequest{
		Email:     "ann@example.com",
		Username:  "ann",
		FirstName: "Ann",
		LastName:  "Lee",
		Password:  "correct-horse",
	})
	assert.NoError(t, err)
}
