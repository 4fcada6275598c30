package scanner

import (
	"errors"
	"fmt"
)

// Error codes reported by ScanError.Code
const (
	CodeNoPrefixMatch     = "NIC_NO_PREFIX_MATCH"
	CodeUnterminatedQuote = "NIC_UNTERMINATED_QUOTE"
	CodeInvalidOptions    = "NIC_INVALID_OPTIONS"
)

var (
	// ErrNoPrefixMatch is returned when a message does not start with any
	// configured prefix.
	ErrNoPrefixMatch = errors.New("message does not start with a configured prefix")

	// ErrUnterminatedQuotedString is returned when a quoted string is not
	// closed before the end of the message.
	ErrUnterminatedQuotedString = errors.New("unterminated quoted string")

	// ErrInvalidOptions is returned for unusable parsing options.
	ErrInvalidOptions = errors.New("invalid parsing options")
)

// ScanError describes why a message could not be scanned
type ScanError struct {
	Err error // One of the sentinel errors above
	Pos int   // Byte offset where the problem was detected, -1 if none
}

// Error implements the error interface
func (e *ScanError) Error() string {
	if e.Pos < 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v at position %d", e.Err, e.Pos)
}

// Unwrap returns the sentinel error
func (e *ScanError) Unwrap() error { return e.Err }

// Code returns the stable error code
func (e *ScanError) Code() string {
	switch {
	case errors.Is(e.Err, ErrNoPrefixMatch):
		return CodeNoPrefixMatch
	case errors.Is(e.Err, ErrUnterminatedQuotedString):
		return CodeUnterminatedQuote
	case errors.Is(e.Err, ErrInvalidOptions):
		return CodeInvalidOptions
	default:
		return "NIC_SCAN_ERROR"
	}
}
