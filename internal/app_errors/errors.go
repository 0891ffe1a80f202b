package app_errors

import (
	"errors"
	"fmt"
)

var ErrCourseNotFound = errors.New("course not found")
var ErrContentNotFound = errors.New("content item not found")
var ErrEnrollmentNotFound = errors.New("enrollment not found")
var ErrValidation = errors.New("validation error")
var ErrUpload = errors.New("upload error")
var ErrFileSize = fmt.Errorf("%w: file size exceeds limit", ErrUpload)
var ErrUnsupportedMedia = fmt.Errorf("%w: unsupported media type", ErrUpload)
var ErrEmptyFile = fmt.Errorf("%w: empty file", ErrUpload)
var ErrForbidden = errors.New("forbidden")
var ErrTokenExpired = errors.New("token expired")
var ErrInvalidToken = errors.New("invalid token")

// ValidationError describes one rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Reason
	}
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrCourseNotFound) ||
		errors.Is(err, ErrContentNotFound) ||
		errors.Is(err, ErrEnrollmentNotFound)
}
