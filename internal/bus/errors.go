package bus

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error codes. These are the numeric codes from the error handling design:
// every failure the core can raise is reported through one of these.
const (
	CodeMappingConflict             = 301
	CodeInvalidAddressRange         = 310
	CodeIllegalROMWrite             = 400
	CodeInvalidROMFile              = 510
	CodeUnsupportedMapper           = 511
	CodeROMLoadFailure              = 550
	CodeUnsupportedFormat           = 560
	CodeNametableMirrorUnsupported  = 620
	CodeUnsupportedVideoMode        = 630
	CodeFramebufferOutOfBounds      = 666
	CodeIncompatibleAudioBufferSize = 710
)

// Error is the single error type used across the core. It carries a
// human-readable message and the numeric code identifying its kind, and
// preserves any underlying cause for Unwrap/errors.Is chains.
type Error struct {
	Code    int
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s (code %d): %v", e.Message, e.Code, e.cause)
	}
	return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New builds a bare Error of the given kind.
func New(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches code/message to an underlying cause, capturing a stack trace
// on the cause via pkg/errors so the original failure site survives the wrap.
func Wrap(err error, code int, message string) *Error {
	return &Error{Code: code, Message: message, cause: errors.WithStack(err)}
}
