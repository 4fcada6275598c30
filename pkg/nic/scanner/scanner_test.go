package scanner

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prefixTok(p string) Token { return Token{Kind: KindPrefix, Value: p, Pos: 0} }
func word(v string, pos int) Token {
	return Token{Kind: KindWord, Value: v, Pos: pos}
}
func quoted(v string, pos int) Token {
	return Token{Kind: KindQuotedString, Value: v, Pos: pos}
}
func chain(pos int) Token { return Token{Kind: KindChain, Pos: pos} }

func TestScan_ValidMessages(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		opts     Options
		expected []Token
	}{
		{
			name:     "Prefix only",
			input:    "!",
			opts:     DefaultOptions(),
			expected: []Token{prefixTok("!")},
		},
		{
			name:     "Single word",
			input:    "!parser",
			opts:     DefaultOptions(),
			expected: []Token{prefixTok("!"), word("parser", 1)},
		},
		{
			name:  "Quoted string between words",
			input: `!cmd "a b" c`,
			opts:  DefaultOptions(),
			expected: []Token{
				prefixTok("!"), word("cmd", 1), quoted("a b", 5), word("c", 11),
			},
		},
		{
			name:  "Chained commands",
			input: "!a > b",
			opts:  DefaultOptions(),
			expected: []Token{
				prefixTok("!"), word("a", 1), chain(3), word("b", 5),
			},
		},
		{
			name:     "Chain lexeme inside a word is content",
			input:    "!a>b",
			opts:     DefaultOptions(),
			expected: []Token{prefixTok("!"), word("a>b", 1)},
		},
		{
			name:  "Chain lexeme delimits words when enabled",
			input: "!a>b",
			opts: Options{
				Prefixes:            []string{"!"},
				ChainLexeme:         '>',
				DelimitWordsOnChain: true,
			},
			expected: []Token{
				prefixTok("!"), word("a", 1), chain(2), word("b", 3),
			},
		},
		{
			name:  "Quote inside a word is content",
			input: `!a"b c"`,
			opts:  DefaultOptions(),
			expected: []Token{
				prefixTok("!"), word(`a"b`, 1), word(`c"`, 5),
			},
		},
		{
			name:  "Word directly after quoted string",
			input: `!say "x"y`,
			opts:  DefaultOptions(),
			expected: []Token{
				prefixTok("!"), word("say", 1), quoted("x", 5), word("y", 8),
			},
		},
		{
			name:  "Adjacent whitespace produces no empty words",
			input: "!a  \t b",
			opts:  DefaultOptions(),
			expected: []Token{
				prefixTok("!"), word("a", 1), word("b", 6),
			},
		},
		{
			name:  "Chain followed by whitespace",
			input: "!a >  b",
			opts:  DefaultOptions(),
			expected: []Token{
				prefixTok("!"), word("a", 1), chain(3), word("b", 6),
			},
		},
		{
			name:  "Empty quoted string",
			input: `!a ""`,
			opts:  DefaultOptions(),
			expected: []Token{
				prefixTok("!"), word("a", 1), quoted("", 3),
			},
		},
		{
			name:  "Whitespace inside quotes is kept",
			input: "!a \" x\ty \"",
			opts:  DefaultOptions(),
			expected: []Token{
				prefixTok("!"), word("a", 1), quoted(" x\ty ", 3),
			},
		},
		{
			name:  "First declared prefix wins",
			input: "!!x",
			opts:  Options{Prefixes: []string{"!", "!!"}, ChainLexeme: '>'},
			expected: []Token{
				prefixTok("!"), word("!x", 1),
			},
		},
		{
			name:  "Longer prefix declared first",
			input: "!!x",
			opts:  Options{Prefixes: []string{"!!", "!"}, ChainLexeme: '>'},
			expected: []Token{
				prefixTok("!!"), word("x", 2),
			},
		},
		{
			name:  "Second prefix matches",
			input: "nic: ping",
			opts:  Options{Prefixes: []string{"!", "nic:"}, ChainLexeme: '>'},
			expected: []Token{
				prefixTok("nic:"), word("ping", 5),
			},
		},
		{
			name:  "Multi-byte prefix and chain lexeme",
			input: "§a → b",
			opts:  Options{Prefixes: []string{"§"}, ChainLexeme: '→'},
			expected: []Token{
				prefixTok("§"), word("a", 2), chain(4), word("b", 8),
			},
		},
		{
			name:  "Prefix directly followed by quoted string",
			input: `!"hello there"`,
			opts:  DefaultOptions(),
			expected: []Token{
				prefixTok("!"), quoted("hello there", 1),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Scan(tt.input, tt.opts)
			require.NoError(t, err)

			if diff := cmp.Diff(tt.expected, tokens); diff != "" {
				t.Errorf("Scan(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestScan_NoPrefixMatch(t *testing.T) {
	sources := []string{"", " ", "\t", "   \t ", "cmd", "?cmd", " !cmd", "hello ! world"}

	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			tokens, err := Scan(src, DefaultOptions())

			assert.Nil(t, tokens)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrNoPrefixMatch)

			var scanErr *ScanError
			require.True(t, errors.As(err, &scanErr))
			assert.Equal(t, CodeNoPrefixMatch, scanErr.Code())
		})
	}
}

func TestScan_PrefixFollowedByWhitespace(t *testing.T) {
	for _, src := range []string{"!", "! ", "!\t", "!   \t  "} {
		tokens, err := Scan(src, DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, []Token{prefixTok("!")}, tokens, "source %q", src)
	}
}

func TestScan_UnterminatedQuotedString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		pos   int
	}{
		{"Open quote with content", `!cmd "a b`, 5},
		{"Lone quote", `!"`, 1},
		{"Second quoted string open", `!cmd "a" "b`, 9},
		{"Open quote after chain", `!a > "b`, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Scan(tt.input, DefaultOptions())

			assert.Nil(t, tokens, "no partial token sequence on error")
			require.ErrorIs(t, err, ErrUnterminatedQuotedString)

			var scanErr *ScanError
			require.True(t, errors.As(err, &scanErr))
			assert.Equal(t, tt.pos, scanErr.Pos)
			assert.Equal(t, CodeUnterminatedQuote, scanErr.Code())
		})
	}
}

func TestScan_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"No prefixes", Options{ChainLexeme: '>'}},
		{"Empty prefix", Options{Prefixes: []string{"!", ""}, ChainLexeme: '>'}},
		{"Whitespace prefix", Options{Prefixes: []string{" \t"}, ChainLexeme: '>'}},
		{"Missing chain lexeme", Options{Prefixes: []string{"!"}}},
		{"Whitespace chain lexeme", Options{Prefixes: []string{"!"}, ChainLexeme: ' '}},
		{"Quote chain lexeme", Options{Prefixes: []string{"!"}, ChainLexeme: '"'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Scan("!a", tt.opts)
			require.ErrorIs(t, err, ErrInvalidOptions)

			var scanErr *ScanError
			require.True(t, errors.As(err, &scanErr))
			assert.Equal(t, CodeInvalidOptions, scanErr.Code())
		})
	}
}

func TestScan_RoundTrip(t *testing.T) {
	sentences := [][]string{
		{"ping"},
		{"echo", "hello", "world"},
		{"roll", "2d6", "+3"},
		{"x-val", "y_val", "ü", "日本"},
	}

	for _, words := range sentences {
		source := "!" + strings.Join(words, " ")

		tokens, err := Scan(source, DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, strings.Join(words, " "), Join(tokens))
	}
}

func TestScan_Deterministic(t *testing.T) {
	src := `!a "b c" > d e`

	first, err := Scan(src, DefaultOptions())
	require.NoError(t, err)
	second, err := Scan(src, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSegments(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected [][]string
	}{
		{"Single invocation", "!a b c", [][]string{{"a", "b", "c"}}},
		{"Two invocations", "!a b > c d", [][]string{{"a", "b"}, {"c", "d"}}},
		{"Empty segments dropped", "!> a > > b >", [][]string{{"a"}, {"b"}}},
		{"Prefix only", "!", nil},
		{"Quoted content kept", `!a "x y" > b`, [][]string{{"a", "x y"}, {"b"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Scan(tt.input, DefaultOptions())
			require.NoError(t, err)

			var got [][]string
			for _, seg := range Segments(tokens) {
				values := make([]string, len(seg))
				for i, tok := range seg {
					values[i] = tok.Value
				}
				got = append(got, values)
			}

			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestContent(t *testing.T) {
	tokens, err := Scan(`!a "b" > c`, DefaultOptions())
	require.NoError(t, err)

	content := Content(tokens)
	require.Len(t, content, 3)
	for _, tok := range content {
		assert.True(t, tok.IsContent())
	}
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{KindPrefix, "PREFIX"},
		{KindWord, "WORD"},
		{KindQuotedString, "QUOTED_STRING"},
		{KindChain, "CHAIN"},
		{Kind(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.expected {
				t.Errorf("Kind.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestToken_String(t *testing.T) {
	assert.Equal(t, "WORD(echo)", word("echo", 1).String())
	assert.Equal(t, "CHAIN", chain(3).String())
}

func BenchmarkScan(b *testing.B) {
	src := `!remind "stand-up meeting" 10m > echo done`
	opts := DefaultOptions()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Scan(src, opts); err != nil {
			b.Fatal(err)
		}
	}
}
