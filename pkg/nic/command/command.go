// ============================================================================
// nic - Chat-Kommando-Framework
// ============================================================================
//
// Package:     command
// Description: Command definitions, registry and message dispatch
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/msto63/nic/pkg/nic/args"
)

// Handler executes one invocation and returns the reply text
type Handler func(ctx context.Context, inv *Invocation) (string, error)

// Definition declares a command. The first identifier is the command name,
// the remaining identifiers are aliases.
type Definition struct {
	Identifiers []string
	Description string
	Arguments   []args.Spec
	Handler     Handler
}

// Command is a compiled, immutable command
type Command struct {
	Name        string
	Aliases     []string
	Description string
	Schema      *args.Schema
	Handler     Handler
}

// Compile validates the definition and compiles its argument schema
func (d Definition) Compile() (*Command, error) {
	if len(d.Identifiers) == 0 {
		return nil, fmt.Errorf("%w: at least one identifier is required", ErrInvalidDefinition)
	}

	for _, id := range d.Identifiers {
		if id == "" || strings.ContainsAny(id, " \t\"") {
			return nil, fmt.Errorf("%w: invalid identifier %q", ErrInvalidDefinition, id)
		}
	}

	if d.Handler == nil {
		return nil, fmt.Errorf("%w: command %s has no handler", ErrInvalidDefinition, d.Identifiers[0])
	}

	schema, err := args.NewSchema(d.Arguments...)
	if err != nil {
		return nil, fmt.Errorf("%w: command %s: %w", ErrInvalidDefinition, d.Identifiers[0], err)
	}

	aliases := make([]string, len(d.Identifiers)-1)
	copy(aliases, d.Identifiers[1:])

	return &Command{
		Name:        d.Identifiers[0],
		Aliases:     aliases,
		Description: d.Description,
		Schema:      schema,
		Handler:     d.Handler,
	}, nil
}

// Identifiers returns the name followed by the aliases
func (c *Command) Identifiers() []string {
	return append([]string{c.Name}, c.Aliases...)
}

// Usage renders the usage line with the given prefix, e.g. "!echo <text>"
func (c *Command) Usage(prefix string) string {
	usage := prefix + c.Name
	if s := c.Schema.Usage(); s != "" {
		usage += " " + s
	}
	return usage
}

// Message is the raw chat message handed to the dispatcher
type Message struct {
	Content string `json:"content"`
	Author  string `json:"author,omitempty"`
	Channel string `json:"channel,omitempty"`
}

// Invocation is one bound command of a (possibly chained) message
type Invocation struct {
	ID         string         // Unique invocation ID
	Command    *Command       // Resolved command
	Prefix     string         // Prefix the message was opened with
	Identifier string         // Identifier as typed by the user
	Args       args.BoundList // Bound arguments in schema order
	Message    Message        // Originating message
	Index      int            // Position in the chain, starting at 0
	Previous   *Result        // Result of the preceding invocation in the chain
}

// Result is the outcome of one executed invocation
type Result struct {
	Invocation *Invocation
	Output     string
	Duration   time.Duration
}
