package gql

import (
	"context"
	"errors"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

// Error codes reported in extensions.code.
const (
	CodeValidation    = "VALIDATION"
	CodeInvalidCursor = "INVALID_CURSOR"
	CodeNotFound      = "NOT_FOUND"
	CodeServer        = "SERVER"
	CodeCancelled     = "CANCELLED"
)

const serverErrorMessage = "internal server error"

// Error is a resolver error with a client-facing code. graphql-go copies
// Extensions into the response.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Extensions implements gqlerrors.ExtendedError.
func (e *Error) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.Code}
}

// Classify maps err to a coded Error. Server errors are logged with their
// cause and reported with a generic message.
func Classify(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr
	}

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &Error{Code: CodeCancelled, Message: err.Error(), Err: err}
	case errors.Is(err, core.ErrInvalidCursor):
		return &Error{Code: CodeInvalidCursor, Message: err.Error(), Err: err}
	case errors.Is(err, core.ErrValidation):
		return &Error{Code: CodeValidation, Message: err.Error(), Err: err}
	case errors.Is(err, core.ErrNotFound):
		return &Error{Code: CodeNotFound, Message: err.Error(), Err: err}
	}

	applog.NewStructuredLogger(applog.FromContext(ctx)).LogError(ctx, "Resolver failed", err,
		applog.ComponentGraphQL, applog.OpResolve, applog.NewFields().WithErrorType(applog.ErrorTypeInternal))
	return &Error{Code: CodeServer, Message: serverErrorMessage, Err: err}
}

// errorType maps a code to the log package's error categories.
func errorType(code string) string {
	switch code {
	case CodeValidation, CodeInvalidCursor:
		return applog.ErrorTypeValidation
	case CodeNotFound:
		return applog.ErrorTypeNotFound
	case CodeCancelled:
		return applog.ErrorTypeTimeout
	default:
		return applog.ErrorTypeInternal
	}
}
