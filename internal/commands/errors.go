package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes a command attaches to errors it did not classify itself.
const (
	TextCodeInvalid  = "PETPASSPORT_COMMAND_INVALID"
	TextCodeCanceled = "PETPASSPORT_COMMAND_CANCELED"
	TextCodeTimeout  = "PETPASSPORT_COMMAND_TIMEOUT"
	TextCodeFailed   = "PETPASSPORT_COMMAND_FAILED"
)

// TextCode returns the go-errors text code carried by err, or "".
func TextCode(err error) string {
	var tagged *goerrors.Error
	if errors.As(err, &tagged) {
		return tagged.TextCode
	}
	return ""
}

func wrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid command").
		WithTextCode(TextCodeInvalid)
}

// wrapContextError tags cancellation and deadline errors, including the ones a
// collaborator already wrapped, so callers can tell an aborted run apart.
func wrapContextError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command deadline exceeded").
			WithTextCode(TextCodeTimeout)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command cancelled").
			WithTextCode(TextCodeCanceled)
	}
}

func wrapExecuteError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return wrapContextError(err)
	case goerrors.IsWrapped(err):
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "command failed").
		WithTextCode(TextCodeFailed)
}
