/*
Package scanner splits chat messages into command tokens.

A message is a command invocation when it starts with one of the configured
prefixes. The remainder is scanned left to right into bare words, quoted
strings and chain separators:

	!echo "hello world" > shout again

	PREFIX(!) WORD(echo) QUOTED_STRING(hello world) CHAIN WORD(shout) WORD(again)

Whitespace (space, tab) only separates tokens. A bare word runs until the next
whitespace, so quote characters and the chain lexeme inside a word are
content unless Options.DelimitWordsOnChain is set. Quoted strings have no
escape sequences and cannot nest.

Scan is a pure function of its inputs and may be called concurrently as long
as the Options are not modified during the call. Errors carry a stable code:

	NIC_NO_PREFIX_MATCH     message does not start with a prefix
	NIC_UNTERMINATED_QUOTE  quoted string not closed before end of input
	NIC_INVALID_OPTIONS     options failed validation
*/
package scanner
