package storage

import "fmt"

// ErrorKind classifies store failures for the transport layer.
type ErrorKind int

const (
	// InvalidArgument indicates a missing or malformed project ID,
	// variable name, or value.
	InvalidArgument ErrorKind = iota
	// ValueTooLarge indicates the value exceeds MaxValueBytes.
	ValueTooLarge
	// Conflict indicates a stale write rejected under the strict
	// ordering policy.
	Conflict
	// Internal indicates an unexpected failure.
	Internal
)

// String returns the string representation of an ErrorKind.
func (k ErrorKind) String() string {
	switch k {
	case InvalidArgument:
		return "INVALID_ARGUMENT"
	case ValueTooLarge:
		return "VALUE_TOO_LARGE"
	case Conflict:
		return "CONFLICT"
	case Internal:
		return "INTERNAL"
	default:
		return "UNKNOWN"
	}
}

// Error is a store failure with a machine-readable kind. ValueTooLarge
// and Conflict errors carry the server's current value (and, for
// Conflict, its token) so the caller can resynchronize.
type Error struct {
	Kind            ErrorKind
	Message         string
	ServerValue     string
	ServerTimestamp int64
}

// Error returns the human-readable message.
func (e *Error) Error() string {
	return e.Message
}

// invalidArgf builds an InvalidArgument error.
func invalidArgf(format string, args ...any) *Error {
	return &Error{
		Kind:    InvalidArgument,
		Message: fmt.Sprintf(format, args...),
	}
}
