package application

import (
	"errors"
	"strings"

	"github.com/oksasatya/mavrick-auth/pkg/helpers"
)

var (
	ErrValidation            = errors.New("validation failed")
	ErrUnauthorized          = errors.New("invalid email or password")
	ErrConflict              = errors.New("user already exists with this email")
	ErrInvalidOrExpiredToken = helpers.ErrInvalidOrExpiredToken
	ErrInvalidCode           = errors.New("invalid or expired verification code")
	ErrCodeExpired           = errors.New("verification code has expired")
	ErrNotFound              = errors.New("user not found")
	ErrUnknownProvider       = errors.New("unknown social login provider")
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError carries per-field details and matches ErrValidation with errors.Is.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

type fieldErrors []FieldError

func (f *fieldErrors) add(field, msg string) { *f = append(*f, FieldError{Field: field, Message: msg}) }

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}
