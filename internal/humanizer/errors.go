package humanizer

import "errors"

const (
	MessageNoText      = "No text provided"
	MessageTextTooLong = "Text too long. Maximum 10,000 characters allowed."
)

// ValidationError is an input problem that is reported verbatim to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidationError reports whether err, or an error it wraps, is a ValidationError.
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}
