// Package cooldown limits how often an author may run the same command.
package cooldown

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/msto63/nic/pkg/core/cache"
	"github.com/msto63/nic/pkg/core/logging"
	"github.com/msto63/nic/pkg/nic/command"
)

// DefaultMaxTracked bounds the number of author/command pairs held at once
const DefaultMaxTracked = 10000

// Limiter is a command.PermissionChecker that denies a command while the
// author's previous run of it is younger than the window. A chain naming
// the same command twice hits the window on its second invocation.
type Limiter struct {
	window  time.Duration
	entries *cache.Cache[time.Time]
	logger  *zap.Logger
}

var _ command.PermissionChecker = (*Limiter)(nil)

// New creates a limiter. Expired entries are dropped on access and the
// oldest entry is evicted once maxTracked pairs are held.
func New(window time.Duration, maxTracked int, logger *zap.Logger) *Limiter {
	if maxTracked <= 0 {
		maxTracked = DefaultMaxTracked
	}
	return &Limiter{
		window: window,
		entries: cache.New[time.Time](cache.Config{
			MaxItems: maxTracked,
			TTL:      window,
		}),
		logger: logging.Component(logger, "cooldown"),
	}
}

// HasPermission implements command.PermissionChecker
func (l *Limiter) HasPermission(ctx context.Context, msg command.Message, cmd *command.Command) bool {
	remaining, ok := l.entries.SetIfAbsent(key(msg.Author, cmd.Name), time.Now(), l.window)
	if !ok {
		l.logger.Debug("Command on cooldown",
			zap.String("author", msg.Author),
			zap.String("command", cmd.Name),
			zap.Duration("remaining", remaining))
	}
	return ok
}

// Reset clears the window of one author and command
func (l *Limiter) Reset(author, name string) {
	l.entries.Delete(key(author, name))
}

// Tracked returns the number of pairs currently held
func (l *Limiter) Tracked() int {
	return l.entries.Size()
}

// Window returns the configured cooldown
func (l *Limiter) Window() time.Duration {
	return l.window
}

func key(author, name string) string {
	return author + "\x00" + name
}
