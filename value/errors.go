package value

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrParse classifies every *ParseError.
	ErrParse = errors.New("parse error")
	// ErrType classifies every *TypeError.
	ErrType = errors.New("type error")
	// ErrNotFound classifies every *LookupError.
	ErrNotFound = errors.New("not found")

	// ErrUnsupportedOpcode is the cause of a ParseError raised for a pickle
	// opcode that reconstructs host-language objects.
	ErrUnsupportedOpcode = errors.New("unsupported opcode")
	// ErrTrailingData is the cause of a ParseError raised when a complete
	// document is followed by more input.
	ErrTrailingData = errors.New("trailing data")
	// ErrOverflow is the cause of a ParseError raised when a number does
	// not fit in 64 bits.
	ErrOverflow = errors.New("numeric overflow")
	// ErrUnexpectedEOF is the cause of a ParseError raised when the input
	// ends in the middle of a construct.
	ErrUnexpectedEOF = errors.New("unexpected end of input")
	// ErrTooDeep is the cause of a ParseError raised when containers nest
	// deeper than MaxDepth.
	ErrTooDeep = errors.New("nesting too deep")
)

// MaxDepth is the deepest container nesting the parsers accept and the
// pickle writer emits. A top-level list has depth 1.
const MaxDepth = 1024

// ParseError reports malformed input at a byte offset.
//
// The cause (if any) can be accessed via errors.Unwrap.
type ParseError struct {
	Offset int
	Msg    string
	Err    error
}

// NewParseError returns a ParseError without a specific cause.
func NewParseError(offset int, format string, args ...any) *ParseError {
	return &ParseError{Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

// WrapParseError returns a ParseError with the given cause.
func WrapParseError(offset int, cause error, format string, args ...any) *ParseError {
	return &ParseError{Offset: offset, Msg: fmt.Sprintf(format, args...), Err: cause}
}

func (e *ParseError) Error() string {
	return "parse error at offset " + strconv.Itoa(e.Offset) + ": " + e.Msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is makes every ParseError match ErrParse.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// TypeError reports that a Value was accessed as the wrong variant.
type TypeError struct {
	Want Kind
	Got  Kind
	// Op names the operation, e.g. "len" or "index". Empty for accessors.
	Op string
}

func (e *TypeError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("type error: %s not supported on %s", e.Op, e.Got)
	}
	return fmt.Sprintf("type error: expected %s, got %s", e.Want, e.Got)
}

// Is makes every TypeError match ErrType.
func (e *TypeError) Is(target error) bool { return target == ErrType }

// LookupError reports a missing dict key or an out-of-range list index.
type LookupError struct {
	// Key is set for dict lookups.
	Key string
	// Index is set for list lookups; Len is the list length.
	Index int
	Len   int
	// IsIndex distinguishes list lookups from dict lookups.
	IsIndex bool
}

func (e *LookupError) Error() string {
	if e.IsIndex {
		return fmt.Sprintf("index %d out of range (len %d)", e.Index, e.Len)
	}
	return fmt.Sprintf("key %q not found", e.Key)
}

// Is makes every LookupError match ErrNotFound.
func (e *LookupError) Is(target error) bool { return target == ErrNotFound }
