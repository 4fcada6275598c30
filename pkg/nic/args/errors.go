package args

import (
	"errors"
	"fmt"
)

// Error codes
const (
	CodeMissingArgument  = "NIC_MISSING_ARGUMENT"
	CodeConversionFailed = "NIC_CONVERSION_FAILED"
	CodeInvalidSchema    = "NIC_INVALID_SCHEMA"
)

var (
	// ErrMissingRequiredArgument is returned when the tokens run out before a
	// required argument is bound.
	ErrMissingRequiredArgument = errors.New("missing required argument")

	// ErrConversion is returned when a strategy rejects a raw value.
	ErrConversion = errors.New("argument conversion failed")

	// ErrInvalidSchema is the parent of all schema construction errors.
	ErrInvalidSchema = errors.New("invalid argument schema")

	ErrInvalidSignature  = fmt.Errorf("%w: invalid signature", ErrInvalidSchema)
	ErrDuplicateArgument = fmt.Errorf("%w: duplicate argument", ErrInvalidSchema)
	ErrMissingDefault    = fmt.Errorf("%w: optional argument without default", ErrInvalidSchema)
	ErrUnknownKind       = fmt.Errorf("%w: unknown argument kind", ErrInvalidSchema)
)

// MissingArgumentError names the required argument that could not be bound
type MissingArgumentError struct {
	Argument string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("missing required argument %q", e.Argument)
}

func (e *MissingArgumentError) Unwrap() error { return ErrMissingRequiredArgument }

// Code returns the stable error code
func (e *MissingArgumentError) Code() string { return CodeMissingArgument }

// ConversionError names the argument and the raw value a strategy rejected
type ConversionError struct {
	Argument string
	Raw      string
	Err      error // Error returned by the strategy
}

func (e *ConversionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("argument %q: cannot convert %q", e.Argument, e.Raw)
	}
	return fmt.Sprintf("argument %q: cannot convert %q: %v", e.Argument, e.Raw, e.Err)
}

// Unwrap exposes both ErrConversion and the strategy's own error
func (e *ConversionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrConversion}
	}
	return []error{ErrConversion, e.Err}
}

// Code returns the stable error code
func (e *ConversionError) Code() string { return CodeConversionFailed }

// SchemaError reports the argument spec that made schema construction fail
type SchemaError struct {
	Index     int    // Position of the spec
	Signature string // Signature as declared
	Err       error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("argument %d (%q): %v", e.Index, e.Signature, e.Err)
}

func (e *SchemaError) Unwrap() []error { return []error{ErrInvalidSchema, e.Err} }

// Code returns the stable error code
func (e *SchemaError) Code() string { return CodeInvalidSchema }
