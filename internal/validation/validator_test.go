package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/pmemoapp/pmemo-server/internal/errors"
)

type registerForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required,max=100"`
}

func TestValidate(t *testing.T) {
	v := New()

	err := v.Validate(registerForm{
		Email:    "alice@example.com",
		Password: "correct horse battery",
		FullName: "Alice",
	})
	assert.NoError(t, err)
}

func TestValidate_FieldErrors(t *testing.T) {
	v := New()

	err := v.Validate(registerForm{
		Email:    "not-an-email",
		Password: "short",
	})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)

	// Details are keyed by JSON tag name.
	details, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "password")
	assert.Contains(t, details, "full_name")
	assert.Equal(t, "must be a valid email address", details["email"])
	assert.Equal(t, "must be at least 8 characters", details["password"])
	assert.Equal(t, "is required", details["full_name"])
}

func TestValidate_TagColor(t *testing.T) {
	v := New()

	type tagForm struct {
		Color string `json:"color" validate:"omitempty,tagcolor"`
	}

	assert.NoError(t, v.Validate(tagForm{Color: "#1abc9c"}))
	assert.NoError(t, v.Validate(tagForm{}))

	// Only the six-digit form is a tag color.
	for _, bad := range []string{"teal", "#fff", "#ffff", "#1abc9c00", "1abc9c", "#1abc9g"} {
		assert.Errorf(t, v.Validate(tagForm{Color: bad}), "color %q", bad)
	}
}
