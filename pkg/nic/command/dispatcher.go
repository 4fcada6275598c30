// ============================================================================
// nic - Chat-Kommando-Framework
// ============================================================================
//
// Package:     command
// Description: Dispatcher turning chat messages into command invocations
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

package command

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/msto63/nic/pkg/core/logging"
	"github.com/msto63/nic/pkg/nic/args"
	"github.com/msto63/nic/pkg/nic/scanner"
)

// Defaults for Options
const (
	DefaultMaxMessageLength = 2000
	DefaultMaxChainLength   = 10
)

// PermissionChecker decides whether a message author may run a command
type PermissionChecker interface {
	HasPermission(ctx context.Context, msg Message, cmd *Command) bool
}

// AuditLogger records executed and failed invocations
type AuditLogger interface {
	// LogExecution is called once per invocation. result is nil when err is
	// set.
	LogExecution(ctx context.Context, inv *Invocation, result *Result, err error)
}

// Options configures a Dispatcher
type Options struct {
	// Logger for dispatch operations (optional, defaults to a no-op logger)
	Logger *zap.Logger

	// Parsing holds prefixes and chain lexeme (defaults to scanner.DefaultOptions)
	Parsing scanner.Options

	// MaxMessageLength limits the message length in characters.
	// Zero selects DefaultMaxMessageLength, a negative value disables the check.
	MaxMessageLength int

	// MaxChainLength limits the number of chained invocations.
	// Zero selects DefaultMaxChainLength, a negative value disables the check.
	MaxChainLength int

	// HandlerTimeout bounds each handler call (optional)
	HandlerTimeout time.Duration

	// PermissionChecker validates authors before execution (optional)
	PermissionChecker PermissionChecker

	// AuditLogger records all invocations (optional)
	AuditLogger AuditLogger
}

// Dispatcher scans, binds and executes chat messages against a registry.
// It holds no per-message state and is safe for concurrent use.
type Dispatcher struct {
	registry *Registry
	logger   *zap.Logger
	options  Options
}

// NewDispatcher creates a dispatcher for the given registry
func NewDispatcher(registry *Registry, opts Options) (*Dispatcher, error) {
	if registry == nil {
		return nil, errors.New("registry cannot be nil")
	}

	if len(opts.Parsing.Prefixes) == 0 && opts.Parsing.ChainLexeme == 0 {
		opts.Parsing = scanner.DefaultOptions()
	}
	if err := opts.Parsing.Validate(); err != nil {
		return nil, err
	}

	if opts.MaxMessageLength == 0 {
		opts.MaxMessageLength = DefaultMaxMessageLength
	}
	if opts.MaxChainLength == 0 {
		opts.MaxChainLength = DefaultMaxChainLength
	}

	d := &Dispatcher{
		registry: registry,
		logger:   logging.Component(opts.Logger, "dispatcher"),
		options:  opts,
	}

	d.logger.Info("Dispatcher initialized",
		zap.Strings("prefixes", opts.Parsing.Prefixes),
		zap.String("chainLexeme", string(opts.Parsing.ChainLexeme)),
		zap.Int("maxMessageLength", opts.MaxMessageLength),
		zap.Int("maxChainLength", opts.MaxChainLength),
		zap.Int("commandCount", registry.Len()))

	return d, nil
}

// Registry returns the registry commands are resolved against
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Options returns the effective options
func (d *Dispatcher) Options() Options {
	return d.options
}

// Parse scans the message and binds every chained invocation without
// executing anything. Either all invocations bind or an error is returned.
func (d *Dispatcher) Parse(msg Message) ([]*Invocation, error) {
	if limit := d.options.MaxMessageLength; limit > 0 {
		if n := utf8.RuneCountInString(msg.Content); n > limit {
			return nil, fmt.Errorf("%w: %d characters, limit is %d", ErrMessageTooLong, n, limit)
		}
	}

	tokens, err := scanner.Scan(msg.Content, d.options.Parsing)
	if err != nil {
		return nil, err
	}

	segments := scanner.Segments(tokens)
	if len(segments) == 0 {
		return nil, ErrEmptyInvocation
	}
	if limit := d.options.MaxChainLength; limit > 0 && len(segments) > limit {
		return nil, fmt.Errorf("%w: %d invocations, limit is %d", ErrChainTooLong, len(segments), limit)
	}

	// the scanner always emits the prefix first
	prefix := tokens[0].Value

	invocations := make([]*Invocation, 0, len(segments))
	for i, segment := range segments {
		identifier := segment[0].Value

		cmd, ok := d.registry.Lookup(identifier)
		if !ok {
			return nil, &InvocationError{Index: i, Identifier: identifier, Err: ErrUnknownCommand}
		}

		bound, err := args.Bind(segment[1:], cmd.Schema)
		if err != nil {
			return nil, &InvocationError{Index: i, Identifier: identifier, Command: cmd, Err: err}
		}

		invocations = append(invocations, &Invocation{
			ID:         uuid.NewString(),
			Command:    cmd,
			Prefix:     prefix,
			Identifier: identifier,
			Args:       bound,
			Message:    msg,
			Index:      i,
		})
	}

	return invocations, nil
}

// Dispatch parses the message and runs its invocations in order. Each
// invocation sees the result of its predecessor. The first failure aborts
// the chain and only the error is returned.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) ([]*Result, error) {
	invocations, err := d.Parse(msg)
	if err != nil {
		d.auditParseFailure(ctx, msg, err)
		if !IsIgnorable(err) {
			d.logger.Debug("Message rejected",
				zap.String("author", msg.Author),
				zap.String("code", Code(err)),
				zap.Error(err))
		}
		return nil, err
	}

	results := make([]*Result, 0, len(invocations))
	var previous *Result

	for _, inv := range invocations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		inv.Previous = previous

		result, err := d.execute(ctx, inv)
		if err != nil {
			return nil, &InvocationError{Index: inv.Index, Identifier: inv.Identifier, Command: inv.Command, Err: err}
		}

		results = append(results, result)
		previous = result
	}

	return results, nil
}

// execute runs a single bound invocation
func (d *Dispatcher) execute(ctx context.Context, inv *Invocation) (*Result, error) {
	if d.options.PermissionChecker != nil && !d.options.PermissionChecker.HasPermission(ctx, inv.Message, inv.Command) {
		err := fmt.Errorf("%w: %s may not run %s", ErrPermissionDenied, inv.Message.Author, inv.Command.Name)
		d.audit(ctx, inv, nil, err)
		return nil, err
	}

	if d.options.HandlerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.options.HandlerTimeout)
		defer cancel()
	}

	start := time.Now()
	output, err := inv.Command.Handler(ctx, inv)
	duration := time.Since(start)

	if err != nil {
		err = fmt.Errorf("%w: %w", ErrHandlerFailed, err)
		d.logger.Warn("Command failed",
			zap.String("invocation", inv.ID),
			zap.String("command", inv.Command.Name),
			zap.Duration("duration", duration),
			zap.Error(err))
		d.audit(ctx, inv, nil, err)
		return nil, err
	}

	result := &Result{Invocation: inv, Output: output, Duration: duration}

	d.logger.Debug("Command executed",
		zap.String("invocation", inv.ID),
		zap.String("command", inv.Command.Name),
		zap.Int("index", inv.Index),
		zap.Duration("duration", duration))
	d.audit(ctx, inv, result, nil)

	return result, nil
}

// auditParseFailure records binding failures of resolved commands. Messages
// that never named a known command are not audited.
func (d *Dispatcher) auditParseFailure(ctx context.Context, msg Message, err error) {
	var invErr *InvocationError
	if !errors.As(err, &invErr) || invErr.Command == nil {
		return
	}

	d.audit(ctx, &Invocation{
		ID:         uuid.NewString(),
		Command:    invErr.Command,
		Identifier: invErr.Identifier,
		Message:    msg,
		Index:      invErr.Index,
	}, nil, err)
}

func (d *Dispatcher) audit(ctx context.Context, inv *Invocation, result *Result, err error) {
	if d.options.AuditLogger != nil {
		d.options.AuditLogger.LogExecution(ctx, inv, result, err)
	}
}
