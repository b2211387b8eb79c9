package object

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedHeader    = errors.New("malformed object header")
	ErrMalformedSignature = errors.New("malformed signature")
	ErrMalformedCommit    = errors.New("malformed commit")
	ErrOutOfRange         = errors.New("index out of range")
)

// ErrInvalidField is returned by NewCommit for values that ParseCommit would not
// read back unchanged from Encode.
var ErrInvalidField = errors.New("invalid commit field")

// ParseError reports where in a buffer parsing stopped. Kind is one of the
// ErrMalformed* sentinels; Err, when set, is the error that caused it.
type ParseError struct {
	Kind   error
	Offset int
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("%v at offset %d: %s", e.Kind, e.Offset, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func headerError(offset int, reason string) error {
	return &ParseError{Kind: ErrMalformedHeader, Offset: offset, Reason: reason}
}

func signatureError(offset int, reason string) error {
	return &ParseError{Kind: ErrMalformedSignature, Offset: offset, Reason: reason}
}

func commitError(offset int, reason string, cause error) error {
	return &ParseError{Kind: ErrMalformedCommit, Offset: offset, Reason: reason, Err: cause}
}
