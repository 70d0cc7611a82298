// Package apierr carries an HTTP status and a stable machine-readable code
// alongside an error so handlers can build uniform error responses without
// inspecting error strings.
package apierr

import "fmt"

type Error struct {
	Status int
	Code   string
	Err    error
}

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Err != nil:
		return e.Err.Error()
	case e.Code != "":
		return e.Code
	default:
		return fmt.Sprintf("api error (status %d)", e.Status)
	}
}

func (e *Error) Unwrap() error { return e.Err }
