package errors

import (
	"errors"
	"fmt"
)

var (
	ErrDecoding           = errors.New("invalid transport encoding")
	ErrLengthMismatch     = errors.New("encapsulated key length mismatch")
	ErrGeneration         = errors.New("kem generation failed")
	ErrNotFound           = errors.New("user not found")
	ErrAmbiguousScheme    = errors.New("kem ciphertext and shared secret have the same length")
	ErrUnknownScheme      = errors.New("unknown kem scheme")
	ErrUserAlreadyExists  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrTokenGeneration    = errors.New("token generation failed")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrIdentityMismatch   = errors.New("sender does not match authenticated user")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrWorkerPanic        = errors.New("worker panic")
)

// DecodingError reports a field that could not be decoded from base64.
type DecodingError struct {
	Field string
	Err   error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("%s is not valid base64: %v", e.Field, e.Err)
}

func (e *DecodingError) Unwrap() error { return e.Err }

func (e *DecodingError) Is(target error) bool { return target == ErrDecoding }

// LengthMismatchError carries both lengths so the caller can correct the request.
type LengthMismatchError struct {
	Expected int
	Actual   int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("invalid ciphertext length: expected %d bytes, got %d", e.Expected, e.Actual)
}

func (e *LengthMismatchError) Is(target error) bool { return target == ErrLengthMismatch }

// GenerationError is a server fault raised by the KEM primitive.
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func (e *GenerationError) Is(target error) bool { return target == ErrGeneration }

type NotFoundError struct {
	Username string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("user %q not found", e.Username)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Is and As are re-exported so callers importing this package under the
// name "errors" keep access to the standard helpers.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }

func New(text string) error { return errors.New(text) }
