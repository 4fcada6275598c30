package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/msto63/nic/pkg/nic/command"
)

// maxRepeat bounds the repeat template function
const maxRepeat = 50

// reply is a parsed reply template
type reply struct {
	tmpl *template.Template
}

// staticFuncs are available in every reply template
var staticFuncs = template.FuncMap{
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
	"trim":  strings.TrimSpace,
	"repeat": func(count any, s string) (string, error) {
		n, err := strconv.Atoi(fmt.Sprint(count))
		if err != nil {
			return "", fmt.Errorf("repeat: %q is not a number", count)
		}
		if n < 0 || n > maxRepeat {
			return "", fmt.Errorf("repeat: count must be between 0 and %d", maxRepeat)
		}
		return strings.Repeat(s, n), nil
	},
}

// invocationFuncs returns the functions bound to one invocation. The
// placeholders registered at parse time are replaced on a clone.
func invocationFuncs(inv *command.Invocation) template.FuncMap {
	return template.FuncMap{
		"author":  func() string { return inv.Message.Author },
		"channel": func() string { return inv.Message.Channel },
		"command": func() string { return inv.Command.Name },
		"args": func() string {
			values := make([]string, len(inv.Args))
			for i, b := range inv.Args {
				values[i] = fmt.Sprint(b.Value)
			}
			return strings.Join(values, " ")
		},
		"previous": func() string {
			if inv.Previous == nil {
				return ""
			}
			return inv.Previous.Output
		},
	}
}

func parseReply(name, text string) (*reply, error) {
	tmpl, err := template.New(name).
		Option("missingkey=error").
		Funcs(staticFuncs).
		Funcs(invocationFuncs(&command.Invocation{Command: &command.Command{}})).
		Parse(text)
	if err != nil {
		return nil, fmt.Errorf("invalid reply template: %w", err)
	}
	return &reply{tmpl: tmpl}, nil
}

// render executes the template with the bound arguments as data
func (r *reply) render(inv *command.Invocation) (string, error) {
	tmpl, err := r.tmpl.Clone()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if err := tmpl.Funcs(invocationFuncs(inv)).Execute(&b, inv.Args.Map()); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (r *reply) handler() command.Handler {
	return func(ctx context.Context, inv *command.Invocation) (string, error) {
		return r.render(inv)
	}
}
