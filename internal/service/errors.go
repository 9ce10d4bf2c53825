package service

import "errors"

// Errores de negocio. Los handlers los traducen a status HTTP con errors.Is.
var (
	ErrRateLimited      = errors.New("too many otp requests, please try again later")
	ErrEmailTaken       = errors.New("email already registered")
	ErrUsernameTaken    = errors.New("username already registered")
	ErrEmailNotVerified = errors.New("email not verified")
	ErrOTPInvalid       = errors.New("invalid otp")
	ErrOTPExpired       = errors.New("otp has expired")
	ErrConflict         = errors.New("username or email already exists")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrTokenPayload       = errors.New("invalid token payload")

	ErrSelfAction         = errors.New("cannot perform this action on your own account")
	ErrAdminConfirmation  = errors.New("admin deletion requires confirmation")
	ErrInvalidID          = errors.New("invalid user id")
	ErrInput              = errors.New("invalid input")
	ErrUpstream           = errors.New("language model request failed")
	ErrServiceUnavailable = errors.New("service not configured")
)

// InputError describe una entrada invalida con un mensaje apto para el cliente.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string { return e.Msg }

// Is permite errors.Is(err, ErrInput).
func (e *InputError) Is(target error) bool { return target == ErrInput }

func inputErr(msg string) error {
	return &InputError{Msg: msg}
}
