package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

type registerForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	IMEI     string `json:"imei,omitempty" validate:"omitempty,len=15,numeric"`
}

func TestFromBindError(t *testing.T) {
	v := validator.New()

	form := registerForm{Email: "not-an-email", Password: "short", IMEI: "123"}
	err := v.Struct(form)
	require.Error(t, err)

	fields := FromBindError(err, &form)
	require.Equal(t, "Enter a valid email address.", fields["email"])
	require.Equal(t, "Must be at least 8 characters.", fields["password"])
	require.Equal(t, "Must be exactly 15 characters.", fields["imei"])
}

func TestFromBindErrorNonValidation(t *testing.T) {
	var form registerForm
	fields := FromBindError(assertAnError(), &form)
	require.Equal(t, "Request body is invalid.", fields["_"])
}

func assertAnError() error {
	return &jsonSyntaxError{}
}

type jsonSyntaxError struct{}

func (*jsonSyntaxError) Error() string { return "invalid character '}'" }
