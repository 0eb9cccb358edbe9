// Package apperror defines the domain error kinds the service layer returns
// and the GraphQL layer surfaces to clients.
//
// Each error carries a machine-readable code that ends up in the GraphQL
// error's extensions object, so clients can branch on extensions.code instead
// of parsing human-readable messages.
package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks across the error chain.
var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("not authenticated")
	ErrBadCredentials  = errors.New("invalid credentials")
	ErrInternal        = errors.New("internal error")
)

// GraphQL extension codes. BAD_USER_INPUT and INTERNAL_SERVER_ERROR follow
// the Apollo conventions most GraphQL clients already understand.
const (
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeNotFound        = "NOT_FOUND"
	CodeBadUserInput    = "BAD_USER_INPUT"
	CodeInternal        = "INTERNAL_SERVER_ERROR"
)

// AppError is a structured application error.
//
// It wraps one of the sentinel errors above (so callers can use errors.Is),
// carries a human-readable message, and optionally records which argument
// value caused the failure (surfaced as extensions.invalidArgs).
type AppError struct {
	Err         error  // sentinel, for errors.Is
	Code        string // machine-readable extensions.code
	Message     string // human-readable error message
	InvalidArgs any    // optional: the offending argument value
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Extensions returns the GraphQL error extensions for this error.
// graphql-go checks for this method on resolver errors and merges the result
// into the response's errors[i].extensions object.
func (e *AppError) Extensions() map[string]interface{} {
	ext := map[string]interface{}{"code": e.Code}
	if e.InvalidArgs != nil {
		ext["invalidArgs"] = e.InvalidArgs
	}
	return ext
}

// Unauthenticated indicates an operation that requires a logged-in user was
// called without one (no token, invalid token, or the token's user is gone).
func Unauthenticated(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Code:    CodeUnauthenticated,
		Message: message,
	}
}

// NotFound indicates a referenced entity does not exist.
func NotFound(resource, key string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, key),
	}
}

// ValidationFailed indicates a constraint violation on user-supplied input.
// invalidArgs records the offending value for the client.
func ValidationFailed(message string, invalidArgs any) *AppError {
	return &AppError{
		Err:         ErrValidation,
		Code:        CodeBadUserInput,
		Message:     message,
		InvalidArgs: invalidArgs,
	}
}

// BadCredentials indicates a password mismatch during login.
func BadCredentials() *AppError {
	return &AppError{
		Err:     ErrBadCredentials,
		Code:    CodeBadUserInput,
		Message: "invalid username or password",
	}
}

// Internal indicates an unexpected failure (persistence, hashing, signing).
// The message is generic on purpose — raw error detail is logged server-side,
// not sent to clients.
func Internal(message string) *AppError {
	return &AppError{
		Err:     ErrInternal,
		Code:    CodeInternal,
		Message: message,
	}
}
