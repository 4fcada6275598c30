package scanner

import (
	"fmt"
	"strings"
)

// Options configures the scanner
type Options struct {
	// Prefixes lists the literals that open a command, tried in order
	Prefixes []string

	// ChainLexeme separates chained invocations within one message
	ChainLexeme rune

	// DelimitWordsOnChain ends a bare word at the chain lexeme as well.
	// By default the lexeme is literal content once a word has started.
	DelimitWordsOnChain bool
}

// DefaultOptions returns the default parsing options
func DefaultOptions() Options {
	return Options{
		Prefixes:    []string{"!"},
		ChainLexeme: '>',
	}
}

// Validate checks that the options can be used for scanning
func (o Options) Validate() error {
	if len(o.Prefixes) == 0 {
		return fmt.Errorf("%w: at least one prefix is required", ErrInvalidOptions)
	}

	for i, p := range o.Prefixes {
		if strings.TrimLeft(p, " \t") == "" {
			return fmt.Errorf("%w: prefix %d is empty or whitespace", ErrInvalidOptions, i)
		}
	}

	switch o.ChainLexeme {
	case 0:
		return fmt.Errorf("%w: chain lexeme is not set", ErrInvalidOptions)
	case ' ', '\t':
		return fmt.Errorf("%w: chain lexeme cannot be whitespace", ErrInvalidOptions)
	case '"':
		return fmt.Errorf("%w: chain lexeme cannot be the quote character", ErrInvalidOptions)
	}

	return nil
}
