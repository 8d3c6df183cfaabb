package taskdef

import (
	"github.com/pkg/errors"
)

const (
	// ErrFileNotFound is returned when the task definition file doesn't exist
	ErrFileNotFound = "FileNotFound"
	// ErrInvalidFormat is returned when a required section is missing or has the wrong type
	ErrInvalidFormat = "InvalidFormat"
	// ErrNotFound is returned when a named container, volume or sub-object can't be found
	ErrNotFound = "NotFound"
	// ErrParse is returned for environment variables that can't be parsed
	ErrParse = "ParseError"
)

// Error is a task definition rendering error.  Message is user facing and is
// reported verbatim as the reason for the failure.
type Error struct {
	Kind    string
	Message string
}

func (e Error) Error() string {
	return e.Message
}

// KindOf returns the Kind of the Error at the root of err, or an empty string
func KindOf(err error) string {
	if terr, ok := errors.Cause(err).(Error); ok {
		return terr.Kind
	}
	return ""
}

// FileNotFound creates a FileNotFound error for the path as given by the user
func FileNotFound(path string) error {
	return Error{Kind: ErrFileNotFound, Message: "Task definition file does not exist: " + path}
}

// InvalidFormat creates an InvalidFormat error
func InvalidFormat(msg string) error {
	return Error{Kind: ErrInvalidFormat, Message: "Invalid task definition format: " + msg}
}

// NotFound creates a NotFound error
func NotFound(msg string) error {
	return Error{Kind: ErrNotFound, Message: "Invalid task definition: " + msg}
}

func parseError(msg string) error {
	return Error{Kind: ErrParse, Message: msg}
}

