// ============================================================================
// nic - Chat-Kommando-Framework
// ============================================================================
//
// Package:     scanner
// Description: Token types produced by the message scanner
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

package scanner

import (
	"fmt"
	"strings"
)

// Kind represents the type of a lexical token
type Kind int

const (
	KindPrefix       Kind = iota // !
	KindWord                     // echo, x-val
	KindQuotedString             // "a b"
	KindChain                    // >
)

// String returns a string representation of the token kind
func (k Kind) String() string {
	switch k {
	case KindPrefix:
		return "PREFIX"
	case KindWord:
		return "WORD"
	case KindQuotedString:
		return "QUOTED_STRING"
	case KindChain:
		return "CHAIN"
	default:
		return "UNKNOWN"
	}
}

// Token represents a lexical token with position information
type Token struct {
	Kind  Kind   // Token kind
	Value string // Token text (empty for Chain)
	Pos   int    // Byte offset in the source
}

// String returns a string representation of the token
func (t Token) String() string {
	if t.Kind == KindChain {
		return t.Kind.String()
	}
	return fmt.Sprintf("%s(%s)", t.Kind, t.Value)
}

// IsContent reports whether the token carries argument content
func (t Token) IsContent() bool {
	return t.Kind == KindWord || t.Kind == KindQuotedString
}

// Content returns the content-bearing tokens of a sequence in order.
func Content(tokens []Token) []Token {
	content := make([]Token, 0, len(tokens))
	for _, tok := range tokens {
		if tok.IsContent() {
			content = append(content, tok)
		}
	}
	return content
}

// Segments splits a token sequence at Chain tokens. Each segment holds the
// content tokens of one chained invocation; empty segments are dropped.
func Segments(tokens []Token) [][]Token {
	var (
		segments [][]Token
		current  []Token
	)

	for _, tok := range tokens {
		switch tok.Kind {
		case KindChain:
			if len(current) > 0 {
				segments = append(segments, current)
			}
			current = nil
		case KindWord, KindQuotedString:
			current = append(current, tok)
		case KindPrefix:
			// the prefix opens the message, it never belongs to a segment
		}
	}

	if len(current) > 0 {
		segments = append(segments, current)
	}

	return segments
}

// Join re-joins the values of Word tokens with single spaces
func Join(tokens []Token) string {
	words := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Kind == KindWord {
			words = append(words, tok.Value)
		}
	}
	return strings.Join(words, " ")
}
