package command

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/msto63/nic/pkg/core/logging"
	"github.com/msto63/nic/pkg/nic/args"
)

// HelpCommand is the name of the built-in help command
const HelpCommand = "help"

// RegistryOptions configures a Registry
type RegistryOptions struct {
	// Logger for registry operations (optional, defaults to a no-op logger)
	Logger *zap.Logger

	// CaseSensitive disables case folding of identifiers
	CaseSensitive bool

	// EnableHelp registers the built-in help command
	EnableHelp bool
}

// Registry maps identifiers to commands. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]*Command // by normalized name
	index    map[string]*Command // by normalized identifier
	logger   *zap.Logger
	options  RegistryOptions
}

// NewRegistry creates an empty registry, holding only the built-in help
// command if enabled.
func NewRegistry(opts RegistryOptions) *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		index:    make(map[string]*Command),
		logger:   logging.Component(opts.Logger, "command-registry"),
		options:  opts,
	}

	if opts.EnableHelp {
		if err := r.add(r.commands, r.index, r.helpCommand()); err != nil {
			// the registry is empty, a collision cannot happen
			panic(err)
		}
	}

	return r
}

// Register compiles and registers a command definition
func (r *Registry) Register(def Definition) error {
	cmd, err := def.Compile()
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.add(r.commands, r.index, cmd); err != nil {
		return err
	}

	r.logger.Debug("Command registered",
		zap.String("command", cmd.Name),
		zap.Strings("aliases", cmd.Aliases),
		zap.Int("arguments", cmd.Schema.Len()))

	return nil
}

// MustRegister is like Register but panics on error
func (r *Registry) MustRegister(def Definition) {
	if err := r.Register(def); err != nil {
		panic(err)
	}
}

// Unregister removes a command and its aliases. The built-in help command
// cannot be removed.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := r.normalize(name)
	cmd, ok := r.commands[key]
	if !ok || (r.options.EnableHelp && key == r.normalize(HelpCommand)) {
		return false
	}

	delete(r.commands, key)
	for _, id := range cmd.Identifiers() {
		delete(r.index, r.normalize(id))
	}

	r.logger.Debug("Command unregistered", zap.String("command", cmd.Name))
	return true
}

// Lookup resolves a command by name or alias
func (r *Registry) Lookup(identifier string) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cmd, ok := r.index[r.normalize(identifier)]
	return cmd, ok
}

// Commands returns all registered commands sorted by name
func (r *Registry) Commands() []*Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cmds := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

// Len returns the number of registered commands
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

// Replace swaps the complete command set. On any error the registry keeps
// its current commands. Replace and Register are linearized: a Register that
// completes before Replace takes the lock is discarded with the old set, one
// that starts after is kept.
func (r *Registry) Replace(defs []Definition) error {
	compiled := make([]*Command, 0, len(defs))
	for _, def := range defs {
		cmd, err := def.Compile()
		if err != nil {
			return err
		}
		compiled = append(compiled, cmd)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	commands := make(map[string]*Command, len(compiled)+1)
	index := make(map[string]*Command, len(compiled)+1)

	if r.options.EnableHelp {
		if err := r.add(commands, index, r.helpCommand()); err != nil {
			return err
		}
	}
	for _, cmd := range compiled {
		if err := r.add(commands, index, cmd); err != nil {
			return err
		}
	}

	r.commands = commands
	r.index = index

	r.logger.Info("Command set replaced", zap.Int("commandCount", len(commands)))
	return nil
}

// add inserts cmd into the given maps. Callers hold the lock or own the maps.
func (r *Registry) add(commands, index map[string]*Command, cmd *Command) error {
	ids := cmd.Identifiers()
	seen := make(map[string]bool, len(ids))

	for _, id := range ids {
		key := r.normalize(id)
		if existing, ok := index[key]; ok {
			return fmt.Errorf("%w: %q is used by %s", ErrDuplicateCommand, id, existing.Name)
		}
		if seen[key] {
			return fmt.Errorf("%w: %q is declared twice by %s", ErrDuplicateCommand, id, cmd.Name)
		}
		seen[key] = true
	}

	commands[r.normalize(cmd.Name)] = cmd
	for key := range seen {
		index[key] = cmd
	}
	return nil
}

func (r *Registry) normalize(identifier string) string {
	if r.options.CaseSensitive {
		return identifier
	}
	return strings.ToLower(identifier)
}

// helpCommand builds the built-in help command. It lists all commands or
// describes a single one.
func (r *Registry) helpCommand() *Command {
	return &Command{
		Name:        HelpCommand,
		Description: "Lists all commands or shows the usage of one command",
		Schema:      args.MustSchema(args.Optional("command", "")),
		Handler: func(ctx context.Context, inv *Invocation) (string, error) {
			if name := inv.Args.String("command"); name != "" {
				cmd, ok := r.Lookup(name)
				if !ok {
					return "", fmt.Errorf("no command named %q", name)
				}
				return describe(cmd, inv.Prefix), nil
			}

			var b strings.Builder
			for i, cmd := range r.Commands() {
				if i > 0 {
					b.WriteByte('\n')
				}
				fmt.Fprintf(&b, "%s - %s", cmd.Usage(inv.Prefix), cmd.Description)
			}
			return b.String(), nil
		},
	}
}

func describe(cmd *Command, prefix string) string {
	var b strings.Builder
	b.WriteString(cmd.Usage(prefix))
	if cmd.Description != "" {
		b.WriteString("\n" + cmd.Description)
	}
	if len(cmd.Aliases) > 0 {
		b.WriteString("\nAliases: " + strings.Join(cmd.Aliases, ", "))
	}
	return b.String()
}
