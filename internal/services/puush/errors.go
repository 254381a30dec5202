package puush

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package is an *Error whose Kind is
// one of these, so callers can branch with errors.Is.
var (
	ErrTransport    = errors.New("transport error")
	ErrParse        = errors.New("malformed response")
	ErrInvalidInput = errors.New("invalid input")
	// ErrAuthentication wraps ErrInvalidInput: a rejected key or password is
	// bad input from the caller's point of view.
	ErrAuthentication = fmt.Errorf("%w: authentication failed", ErrInvalidInput)
	ErrUpload         = errors.New("upload failed")
	ErrHashMismatch   = errors.New("hash didn't match the file the server received")
	ErrDeletion       = errors.New("deletion failed")
	ErrThumbnail      = errors.New("thumbnail retrieval failed")
	ErrHistory        = errors.New("history retrieval failed")
	ErrPremiumUnknown = errors.New("premium status is unavailable for accounts created from an API key")
)

// Error describes a failed puush operation.
type Error struct {
	Op   string // endpoint or operation name, e.g. "up"
	Kind error  // one of the Err* kinds above
	Msg  string
	Err  error // underlying cause, may be nil
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Msg != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return fmt.Sprintf("puush %s: %s", e.Op, msg)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(op string, kind error, msg string, cause error) *Error {
	return &Error{Op: op, Kind: kind, Msg: msg, Err: cause}
}
