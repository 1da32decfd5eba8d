// Package apperr defines the error taxonomy shared by all handlers.
// Handlers return these instead of writing status codes themselves; the
// echo error handler in this package translates them at the boundary.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

type Kind int

const (
	KindValidation Kind = iota // malformed or out-of-range input
	KindAuth                   // missing or invalid session/credentials
	KindNotFound               // referenced entity absent
	KindConfiguration          // required configuration missing
	KindConnection             // infrastructure failure
)

// Error is a kinded error with a user-facing message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func Auth(message string) *Error {
	return &Error{Kind: KindAuth, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Configuration(message string) *Error {
	return &Error{Kind: KindConfiguration, Message: message}
}

func Connection(message string, cause error) *Error {
	return &Error{Kind: KindConnection, Message: message, Err: cause}
}

// Status maps an error to its HTTP status code. Echo's own HTTPErrors keep
// the code the error handler will write; unknown errors are 500.
func Status(err error) int {
	var appErr *Error
	if !errors.As(err, &appErr) {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return httpErr.Code
		}
		return http.StatusInternalServerError
	}
	switch appErr.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConfiguration:
		return http.StatusInternalServerError
	case KindConnection:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// HTTPErrorHandler translates taxonomy errors into {"error": message} JSON
// bodies. Echo's own HTTPErrors (404 on unknown routes, bind failures) pass
// through with their status; anything else becomes an opaque 500.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"

	var appErr *Error
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
		status = Status(appErr)
		message = appErr.Message
	case errors.As(err, &httpErr):
		status = httpErr.Code
		message = fmt.Sprintf("%v", httpErr.Message)
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
	}

	if err := c.JSON(status, map[string]string{"error": message}); err != nil {
		log.Error().Err(err).Msg("failed to write error response")
	}
}
