package jsonstream

import (
	"errors"
	"fmt"
)

// ErrParse is the sentinel every parse-time *Error wraps, mirroring
// mcvoid/json's ErrParse/ErrType split: callers that only care "did
// parsing fail" use errors.Is(err, ErrParse); callers that need the
// precise cause switch on (*Error).Kind.
var ErrParse = errors.New("jsonstream: parse error")

// ErrUsage wraps misuse of the public API (calling Parse, Reset, or
// Close from inside a handler, or calling Parse after the final chunk)
// as opposed to a defect in the input bytes.
var ErrUsage = errors.New("jsonstream: usage error")

// ErrorKind is the closed set of error kinds a Parser can report.
type ErrorKind int8

const (
	ErrNone ErrorKind = iota
	ErrOutOfMemory
	ErrAbortedByHandler
	ErrBOMNotAllowed
	ErrInvalidEncodingSequence
	ErrUnknownToken
	ErrUnexpectedToken
	ErrIncompleteToken
	ErrMoreTokensExpected
	ErrUnescapedControlCharacter
	ErrInvalidEscapeSequence
	ErrUnpairedSurrogateEscapeSequence
	ErrTooLongString
	ErrInvalidNumber
	ErrTooLongNumber
	ErrDuplicateObjectMember
)

var errorKindMessages = [...]string{
	ErrNone:                            "no error",
	ErrOutOfMemory:                     "out of memory",
	ErrAbortedByHandler:                "aborted by handler",
	ErrBOMNotAllowed:                   "byte order mark not allowed",
	ErrInvalidEncodingSequence:         "invalid encoding sequence",
	ErrUnknownToken:                    "unknown token",
	ErrUnexpectedToken:                 "unexpected token",
	ErrIncompleteToken:                 "incomplete token",
	ErrMoreTokensExpected:              "more tokens expected",
	ErrUnescapedControlCharacter:       "unescaped control character",
	ErrInvalidEscapeSequence:           "invalid escape sequence",
	ErrUnpairedSurrogateEscapeSequence: "unpaired surrogate escape sequence",
	ErrTooLongString:                   "string exceeds maximum length",
	ErrInvalidNumber:                   "invalid number",
	ErrTooLongNumber:                   "number exceeds maximum length",
	ErrDuplicateObjectMember:           "duplicate object member",
}

// String returns a stable, human-readable message for a Kind.
func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(errorKindMessages) {
		return "unknown error"
	}
	return errorKindMessages[k]
}

// Error is the sticky, parse-terminating error the facade reports via
// GetError/GetErrorLocation. It always wraps ErrParse so
// errors.Is(err, ErrParse) is true for every parse-time failure.
type Error struct {
	Kind     ErrorKind
	Location Location
	Depth    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %s", e.Kind, e.Location)
}

func (e *Error) Unwrap() error { return ErrParse }

func newParseError(kind ErrorKind, loc Location, depth int) *Error {
	return &Error{Kind: kind, Location: loc, Depth: depth}
}
