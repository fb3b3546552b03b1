package document

import (
	"errors"
	"fmt"
)

// Code identifies why a document was rejected.
type Code string

const (
	CodeMalformed     Code = "MALFORMED"
	CodeDuplicateName Code = "DUPLICATE_NAME"
	CodeDanglingEdge  Code = "DANGLING_EDGE"
)

// Error is an import failure with a machine readable code.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func newError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func wrapError(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether err carries code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Describe returns the message shown to a user for code.
func Describe(code Code) string {
	switch code {
	case CodeMalformed:
		return "The document is not a valid graph."
	case CodeDuplicateName:
		return "The document declares the same node name twice."
	case CodeDanglingEdge:
		return "An edge refers to a node that does not exist."
	case "":
		return ""
	}
	return "The document could not be imported."
}
