// Package apierr attaches an HTTP status and a stable error code to an error
// without losing the wrapped cause.
package apierr

import (
	"errors"
	"fmt"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("api error (%d)", e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// StatusOf returns the status and code of the first *Error in err's chain.
func StatusOf(err error) (int, string, bool) {
	var e *Error
	if !errors.As(err, &e) || e.Status == 0 {
		return 0, "", false
	}
	return e.Status, e.Code, true
}
