/*
Package args binds scanned command tokens to declared arguments.

A command declares its arguments as a Schema compiled from Specs:

	schema := args.MustSchema(
		args.Required("text"),
		args.Optional("times", "1"),
	)

Binding is positional. The n-th content token (Word or QuotedString) is
converted by the n-th argument's Strategy. When the tokens run out, optional
arguments receive their default, which was converted once when the schema
was built, and a missing required argument fails with a MissingArgumentError.
Surplus tokens are ignored.

Required arguments must precede optional ones, argument names are unique and
every optional argument carries a default.

Schemas are immutable after construction; Bind may be called concurrently
with the same schema.
*/
package args
