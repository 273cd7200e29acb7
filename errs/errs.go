// Package errs defines the error kinds PACKR returns from encode and decode
// operations, so callers can branch on failure category rather than message text.
package errs

import "fmt"

// Kind classifies why an encode or decode call failed.
type Kind uint8

const (
	// MalformedInput covers truncated data, missing bytes, and varint overflow.
	MalformedInput Kind = iota + 1
	// InvalidFrame covers bad magic, unsupported version, and CRC mismatch.
	InvalidFrame
	// UnknownToken covers a token byte not defined in any recognized range.
	UnknownToken
	// DictionaryMiss covers a reference to a dictionary slot never populated in this frame.
	DictionaryMiss
	// DeltaWithoutContext covers a delta token with no field in scope or no prior absolute.
	DeltaWithoutContext
	// InvalidValue covers a value that fails validation, e.g. a non-MAC string on the MAC path.
	InvalidValue
)

func (k Kind) String() string {
	switch k {
	case MalformedInput:
		return "malformed input"
	case InvalidFrame:
		return "invalid frame"
	case UnknownToken:
		return "unknown token"
	case DictionaryMiss:
		return "dictionary miss"
	case DeltaWithoutContext:
		return "delta without context"
	case InvalidValue:
		return "invalid value"
	default:
		return "unknown error"
	}
}

// Error is the concrete error type returned by the core. Callers can recover
// the Kind with errors.As and branch on it without parsing the message.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("packr: %s: %s", e.Kind, e.Msg)
}

// New creates an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Is allows errors.Is(err, errs.ErrMalformedInput) style checks against the
// sentinel values below by matching on Kind equality rather than identity.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e.Kind == t.Kind
}

// Sentinel kind markers usable with errors.Is via (&errs.Error{Kind: errs.X}).
var (
	ErrMalformedInput      = &Error{Kind: MalformedInput}
	ErrInvalidFrame        = &Error{Kind: InvalidFrame}
	ErrUnknownToken        = &Error{Kind: UnknownToken}
	ErrDictionaryMiss      = &Error{Kind: DictionaryMiss}
	ErrDeltaWithoutContext = &Error{Kind: DeltaWithoutContext}
	ErrInvalidValue        = &Error{Kind: InvalidValue}
)
