// Package usererr pairs an error with a display message for end users.
// Domain packages keep returning technical sentinels; the command layer and
// the notification sink extract the attached message instead of formatting
// chat text themselves.
package usererr

import "errors"

// UserFacingError carries a technical error alongside a message safe to
// show to an end user. Error() always returns the technical text, so logs
// and wrapped chains stay unchanged.
type UserFacingError struct {
	err     error
	message string
}

// New builds a sentinel-style error from a technical text and its display
// message. The result behaves like errors.New(technical) under errors.Is.
func New(technical, message string) *UserFacingError {
	return &UserFacingError{
		err:     errors.New(technical),
		message: message,
	}
}

// Wrap attaches a display message to an existing error, preserving it for
// errors.Is and errors.As through Unwrap.
func Wrap(err error, message string) *UserFacingError {
	return &UserFacingError{
		err:     err,
		message: message,
	}
}

func (e *UserFacingError) Error() string {
	return e.err.Error()
}

func (e *UserFacingError) Unwrap() error {
	return e.err
}

// UserMessage returns the display text.
func (e *UserFacingError) UserMessage() string {
	return e.message
}

// Message extracts the display message from anywhere in err's chain,
// returning fallback when none is attached.
func Message(err error, fallback string) string {
	var ufe *UserFacingError
	if errors.As(err, &ufe) {
		return ufe.message
	}
	return fallback
}
