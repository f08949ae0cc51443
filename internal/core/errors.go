package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownSubmission is returned when an id was never issued by the registry.
	ErrUnknownSubmission = errors.New("unknown upload id")

	// ErrAlreadyBound is returned when a submission already has an accepted upload.
	ErrAlreadyBound = errors.New("upload already completed for this id")

	// ErrInvalidPayload is returned when a multipart stream closes without
	// exactly one valid file part.
	ErrInvalidPayload = errors.New("invalid upload payload")

	// ErrMalformedStream is returned on multipart framing or transport errors.
	ErrMalformedStream = errors.New("malformed multipart stream")

	// ErrPayloadTooLarge is returned when the request body exceeds the
	// configured limit. It matches ErrMalformedStream as well.
	ErrPayloadTooLarge = fmt.Errorf("%w: payload too large", ErrMalformedStream)
)

// FieldError is a single metadata constraint violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports malformed submission metadata.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid submission"
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "invalid submission: " + strings.Join(parts, "; ")
}

// IsValidationError reports whether err is (or wraps) a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
