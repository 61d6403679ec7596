package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserExists         = errors.New("user already exists")
	ErrProviderFailure    = errors.New("provider failure")
	ErrGenerationFailed   = errors.New("generation returned no image")
	ErrUpload             = errors.New("upload failed")
	ErrPersistence        = errors.New("persistence failure")
)

// Validation failures for generation input. Each one also matches ErrValidation.
var (
	ErrInvalidStyle       = validationError("unknown style")
	ErrInvalidColorScheme = validationError("unknown color scheme")
	ErrInvalidAspectRatio = validationError("unsupported aspect ratio")
	ErrInvalidTitle       = validationError("title is required")
)

// ValidationError carries a message that is safe to show to the client.
type ValidationError struct {
	Message string
}

func validationError(msg string) error { return &ValidationError{Message: msg} }

// NewValidationError builds a client-facing validation failure.
func NewValidationError(msg string) error { return validationError(msg) }

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }
