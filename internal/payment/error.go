package payment

import "errors"

var (
	ErrValidation           = errors.New("validation error")
	ErrGateway              = errors.New("payment gateway error")
	ErrServiceMisconfigured = errors.New("payment service misconfigured")
)

// ValidationError carries a message that is safe to show to the caller.
type ValidationError struct {
	Field   string
	Message string
}

func newValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
