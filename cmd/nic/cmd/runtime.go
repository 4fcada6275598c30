package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/msto63/nic/internal/catalog"
	"github.com/msto63/nic/internal/cooldown"
	"github.com/msto63/nic/pkg/core/config"
	"github.com/msto63/nic/pkg/nic/command"
)

// newRegistry creates the command registry and loads the configured
// catalog. A missing catalog file leaves only the built-in help command.
func newRegistry(cfg *config.Config, log *zap.Logger) (*command.Registry, error) {
	registry := command.NewRegistry(command.RegistryOptions{
		Logger:        log,
		CaseSensitive: cfg.Parsing.CaseSensitive,
		EnableHelp:    !cfg.Parsing.DisableHelp,
	})

	c, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn("Command catalog not found", zap.String("path", cfg.Catalog.Path))
			return registry, nil
		}
		return nil, err
	}

	if err := registry.Replace(c.Definitions()); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", cfg.Catalog.Path, err)
	}
	log.Debug("Command catalog loaded",
		zap.String("path", cfg.Catalog.Path),
		zap.Int("commandCount", c.Len()))

	return registry, nil
}

// newDispatcher builds registry and dispatcher from the configuration. audit
// must be a nil interface, not a typed nil, when auditing is off.
func newDispatcher(cfg *config.Config, log *zap.Logger, audit command.AuditLogger) (*command.Dispatcher, error) {
	registry, err := newRegistry(cfg, log)
	if err != nil {
		return nil, err
	}

	opts := command.Options{
		Logger:           log,
		Parsing:          cfg.ParsingOptions(),
		MaxMessageLength: cfg.Parsing.MaxMessageLength,
		MaxChainLength:   cfg.Parsing.MaxChainLength,
		AuditLogger:      audit,
	}
	if window := cfg.Parsing.Cooldown.Duration; window > 0 {
		opts.PermissionChecker = cooldown.New(window, cooldown.DefaultMaxTracked, log)
	}

	return command.NewDispatcher(registry, opts)
}

// primaryPrefix returns the first configured prefix for usage output
func primaryPrefix(cfg *config.Config) string {
	if len(cfg.Parsing.Prefixes) == 0 {
		return ""
	}
	return cfg.Parsing.Prefixes[0]
}

// readMessage joins the positional arguments into one message. Without
// arguments the message is read from a piped stdin.
func readMessage(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if stdinIsTerminal() {
		return "", errors.New("keine Nachricht angegeben")
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func stdinIsTerminal() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return true
	}
	return info.Mode()&os.ModeCharDevice != 0
}
