package service

import (
	"errors"
)

// InputError is returned when a request is rejected before reaching storage.
// Handlers answer it with 400 and its message.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string {
	return e.Msg
}

func invalidInput(err error) error {
	return &InputError{Msg: err.Error()}
}

func inputErrorf(msg string) error {
	return &InputError{Msg: msg}
}

// AsInputError reports whether err carries an InputError and returns its message.
func AsInputError(err error) (string, bool) {
	var inputErr *InputError
	if errors.As(err, &inputErr) {
		return inputErr.Msg, true
	}
	return "", false
}
