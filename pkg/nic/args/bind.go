// ============================================================================
// nic - Chat-Kommando-Framework
// ============================================================================
//
// Package:     args
// Description: Positional binding of scanned tokens to an argument schema
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

package args

import (
	"fmt"

	"github.com/msto63/nic/pkg/nic/scanner"
)

// Bound is one argument bound to its value
type Bound struct {
	Name  string
	Value any
}

// BoundList holds bound arguments in schema order
type BoundList []Bound

// Get returns the value bound to name
func (l BoundList) Get(name string) (any, bool) {
	for _, b := range l {
		if b.Name == name {
			return b.Value, true
		}
	}
	return nil, false
}

// String returns the value bound to name formatted as text, or "" if the
// name is not bound.
func (l BoundList) String(name string) string {
	v, ok := l.Get(name)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Map returns the bound values keyed by argument name
func (l BoundList) Map() map[string]any {
	m := make(map[string]any, len(l))
	for _, b := range l {
		m[b.Name] = b.Value
	}
	return m
}

// Bind aligns the content tokens with the schema's arguments by position.
// Prefix and Chain tokens carry no content and are skipped. Tokens beyond the
// last argument are ignored. On error no partial list is returned.
func Bind(tokens []scanner.Token, schema *Schema) (BoundList, error) {
	bound := make(BoundList, 0, schema.Len())
	next := 0

	for _, arg := range schema.Arguments() {
		tok, rest, ok := nextContent(tokens, next)
		next = rest

		if !ok {
			if !arg.Optional {
				return nil, &MissingArgumentError{Argument: arg.Name}
			}
			bound = append(bound, Bound{Name: arg.Name, Value: arg.Default})
			continue
		}

		value, err := arg.Strategy.Convert(tok.Value)
		if err != nil {
			return nil, &ConversionError{Argument: arg.Name, Raw: tok.Value, Err: err}
		}
		bound = append(bound, Bound{Name: arg.Name, Value: value})
	}

	return bound, nil
}

// nextContent returns the first content token at or after index from and the
// index following it.
func nextContent(tokens []scanner.Token, from int) (scanner.Token, int, bool) {
	for i := from; i < len(tokens); i++ {
		switch tokens[i].Kind {
		case scanner.KindWord, scanner.KindQuotedString:
			return tokens[i], i + 1, true
		case scanner.KindPrefix, scanner.KindChain:
			// no argument content
		}
	}
	return scanner.Token{}, len(tokens), false
}
