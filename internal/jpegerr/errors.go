// Package jpegerr defines the error taxonomy shared by every codec
// package in this module.
package jpegerr

import "fmt"

// Code categorizes a failure the way the core's callers need to branch on,
// not the way a human would phrase the message.
type Code int

const (
	Unknown Code = iota
	MissingSOI
	MissingSOF
	UnknownMarker
	TruncatedSegment
	UnsupportedMode
	InvalidSamplingFactor
	InvalidHuffmanCode
	HuffmanOverflow
	HuffmanMalformed
	UnexpectedEOF
	ResourceLimitExceeded
	InsufficientCapacity
	ExtractionIncomplete
	InvalidUTF8
)

func (c Code) String() string {
	switch c {
	case MissingSOI:
		return "MissingSOI"
	case MissingSOF:
		return "MissingSOF"
	case UnknownMarker:
		return "UnknownMarker"
	case TruncatedSegment:
		return "TruncatedSegment"
	case UnsupportedMode:
		return "UnsupportedMode"
	case InvalidSamplingFactor:
		return "InvalidSamplingFactor"
	case InvalidHuffmanCode:
		return "InvalidHuffmanCode"
	case HuffmanOverflow:
		return "HuffmanOverflow"
	case HuffmanMalformed:
		return "HuffmanMalformed"
	case UnexpectedEOF:
		return "UnexpectedEOF"
	case ResourceLimitExceeded:
		return "ResourceLimitExceeded"
	case InsufficientCapacity:
		return "InsufficientCapacity"
	case ExtractionIncomplete:
		return "ExtractionIncomplete"
	case InvalidUTF8:
		return "InvalidUTF8"
	default:
		return fmt.Sprintf("Code(%d)", int(c))
	}
}

// Error is the single error type returned by every codec package.
// Offset and Marker are set by parser-side failures; BytesDone is set by
// InsufficientCapacity/ExtractionIncomplete so the caller can report how
// far the operation got before failing.
type Error struct {
	Code      Code
	Message   string
	Offset    int64
	Marker    uint8
	BytesDone int
	cause     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Code.String()
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a bare taxonomy error with no extra context.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a taxonomy code to an underlying cause, preserving it for
// errors.Unwrap/errors.Is/errors.As.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// AtOffset annotates the error with the byte offset it was detected at.
func (e *Error) AtOffset(off int64) *Error {
	e.Offset = off
	return e
}

// AtMarker annotates the error with the offending marker byte.
func (e *Error) AtMarker(m uint8) *Error {
	e.Marker = m
	return e
}

// WithBytesDone annotates a partial-progress count (bytes embedded or
// extracted before the failure).
func (e *Error) WithBytesDone(n int) *Error {
	e.BytesDone = n
	return e
}

// Is allows errors.Is(err, jpegerr.New(Code, "")) style code comparisons
// when only the code matters.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}
