// ============================================================================
// nic - Chat-Kommando-Framework
// ============================================================================
//
// Package:     scanner
// Description: Single-pass scanner turning chat messages into tokens
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

package scanner

import (
	"strings"
	"unicode/utf8"
)

// scanState holds the cursor of one Scan call. It never outlives the call.
type scanState struct {
	source  string  // Message text
	opts    Options // Parsing options (read-only)
	start   int     // Start of the token being scanned
	current int     // Current byte position
	tokens  []Token // Tokens produced so far
}

// Scan converts a message into its token sequence. The first token is always
// the matched prefix. On error no tokens are returned.
func Scan(source string, opts Options) ([]Token, error) {
	if err := opts.Validate(); err != nil {
		return nil, &ScanError{Err: err, Pos: -1}
	}

	s := &scanState{source: source, opts: opts}

	if !s.removePrefix() {
		return nil, &ScanError{Err: ErrNoPrefixMatch}
	}

	for !s.isAtEnd() {
		s.start = s.current
		if err := s.scanToken(); err != nil {
			return nil, err
		}
	}

	return s.tokens, nil
}

// removePrefix consumes the first configured prefix the source starts with
func (s *scanState) removePrefix() bool {
	for _, prefix := range s.opts.Prefixes {
		if strings.HasPrefix(s.source, prefix) {
			s.add(KindPrefix, prefix)
			s.current = len(prefix)
			return true
		}
	}
	return false
}

// scanToken scans the token starting at s.start
func (s *scanState) scanToken() error {
	r := s.advance()

	switch {
	case isWhitespace(r):
		return nil
	case r == s.opts.ChainLexeme:
		s.add(KindChain, "")
		return nil
	case r == '"':
		return s.quotedString()
	default:
		s.word()
		return nil
	}
}

// quotedString reads up to the closing quote; the opening quote is consumed
func (s *scanState) quotedString() error {
	for {
		r, ok := s.peek()
		if !ok {
			return &ScanError{Err: ErrUnterminatedQuotedString, Pos: s.start}
		}
		if r == '"' {
			break
		}
		s.advance()
	}

	s.advance() // closing quote

	s.add(KindQuotedString, s.source[s.start+1:s.current-1])
	return nil
}

// word reads a bare word up to the next whitespace or end of input
func (s *scanState) word() {
	for {
		r, ok := s.peek()
		if !ok || isWhitespace(r) {
			break
		}
		if s.opts.DelimitWordsOnChain && r == s.opts.ChainLexeme {
			break
		}
		s.advance()
	}

	s.add(KindWord, s.source[s.start:s.current])
}

func (s *scanState) isAtEnd() bool {
	return s.current >= len(s.source)
}

// advance consumes one rune and returns it
func (s *scanState) advance() rune {
	r, size := utf8.DecodeRuneInString(s.source[s.current:])
	s.current += size
	return r
}

// peek returns the next rune without consuming it
func (s *scanState) peek() (rune, bool) {
	if s.isAtEnd() {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(s.source[s.current:])
	return r, true
}

func (s *scanState) add(kind Kind, value string) {
	s.tokens = append(s.tokens, Token{Kind: kind, Value: value, Pos: s.start})
}

func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t'
}
