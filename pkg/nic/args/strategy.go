package args

import "sort"

// Strategy is a named conversion from a raw token value to a bound value.
// New argument kinds are added as new Strategy values.
type Strategy struct {
	Name    string
	Convert func(raw string) (any, error)
}

// Built-in strategies
var (
	// Any passes the raw token text through unchanged
	Any = Strategy{
		Name:    "any",
		Convert: func(raw string) (any, error) { return raw, nil },
	}

	// String binds the raw token text as a string
	String = Strategy{
		Name:    "string",
		Convert: func(raw string) (any, error) { return raw, nil },
	}
)

var strategies = map[string]Strategy{
	Any.Name:    Any,
	String.Name: String,
}

// LookupStrategy resolves a kind name. The empty name resolves to Any.
func LookupStrategy(name string) (Strategy, bool) {
	if name == "" {
		return Any, true
	}
	s, ok := strategies[name]
	return s, ok
}

// Kinds returns the names of all built-in strategies in sorted order
func Kinds() []string {
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s Strategy) valid() bool {
	return s.Name != "" && s.Convert != nil
}
