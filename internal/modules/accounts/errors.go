package accounts

import "errors"

var (
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrTokenNotFound      = errors.New("token not found")
	ErrCodeInvalid        = errors.New("verification code is invalid")
	ErrCodeExpired        = errors.New("verification code has expired")
	ErrTooManyAttempts    = errors.New("too many verification attempts")
	ErrTooManyRequests    = errors.New("too many verification requests, try again later")
	ErrAlreadyVerified    = errors.New("email is already verified")
)
