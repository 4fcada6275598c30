package command

import (
	"errors"
	"fmt"

	"github.com/msto63/nic/pkg/nic/scanner"
)

// Error codes
const (
	CodeUnknownCommand    = "NIC_UNKNOWN_COMMAND"
	CodeEmptyInvocation   = "NIC_EMPTY_INVOCATION"
	CodeMessageTooLong    = "NIC_MESSAGE_TOO_LONG"
	CodeChainTooLong      = "NIC_CHAIN_TOO_LONG"
	CodeDuplicateCommand  = "NIC_DUPLICATE_COMMAND"
	CodeInvalidDefinition = "NIC_INVALID_DEFINITION"
	CodePermissionDenied  = "NIC_PERMISSION_DENIED"
	CodeHandlerFailed     = "NIC_HANDLER_FAILED"
	CodeInternal          = "NIC_INTERNAL"
)

var (
	ErrUnknownCommand    = errors.New("unknown command")
	ErrEmptyInvocation   = errors.New("message contains no command")
	ErrMessageTooLong    = errors.New("message too long")
	ErrChainTooLong      = errors.New("too many chained commands")
	ErrDuplicateCommand  = errors.New("command identifier already registered")
	ErrInvalidDefinition = errors.New("invalid command definition")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrHandlerFailed     = errors.New("command handler failed")
)

// InvocationError reports the chained invocation that failed
type InvocationError struct {
	Index      int      // Position in the chain, starting at 0
	Identifier string   // Identifier as typed by the user
	Command    *Command // Resolved command, nil if the lookup failed
	Err        error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("invocation %d (%s): %v", e.Index+1, e.Identifier, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

// Code returns the code of the underlying error
func (e *InvocationError) Code() string { return Code(e.Err) }

// coder is implemented by all coded errors of the nic packages
type coder interface {
	Code() string
}

// Code returns the stable error code for err, or "" for a nil error
func Code(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrHandlerFailed):
		return CodeHandlerFailed
	case errors.Is(err, ErrPermissionDenied):
		return CodePermissionDenied
	case errors.Is(err, ErrUnknownCommand):
		return CodeUnknownCommand
	case errors.Is(err, ErrEmptyInvocation):
		return CodeEmptyInvocation
	case errors.Is(err, ErrMessageTooLong):
		return CodeMessageTooLong
	case errors.Is(err, ErrChainTooLong):
		return CodeChainTooLong
	case errors.Is(err, ErrDuplicateCommand):
		return CodeDuplicateCommand
	case errors.Is(err, ErrInvalidDefinition):
		return CodeInvalidDefinition
	}

	var inv *InvocationError
	if errors.As(err, &inv) {
		return Code(inv.Err)
	}

	var c coder
	if errors.As(err, &c) {
		return c.Code()
	}
	return CodeInternal
}

// IsIgnorable reports whether err only means that the message was not a
// command for this dispatcher. Chat adapters usually drop such messages
// silently.
func IsIgnorable(err error) bool {
	return errors.Is(err, scanner.ErrNoPrefixMatch) ||
		errors.Is(err, ErrEmptyInvocation) ||
		errors.Is(err, ErrUnknownCommand)
}
