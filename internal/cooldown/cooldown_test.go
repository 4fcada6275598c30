package cooldown

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msto63/nic/pkg/nic/command"
)

func newDispatcher(t *testing.T, l *Limiter) *command.Dispatcher {
	t.Helper()

	r := command.NewRegistry(command.RegistryOptions{})
	for _, name := range []string{"ping", "pong"} {
		r.MustRegister(command.Definition{
			Identifiers: []string{name},
			Handler: func(ctx context.Context, inv *command.Invocation) (string, error) {
				return inv.Command.Name, nil
			},
		})
	}

	d, err := command.NewDispatcher(r, command.Options{PermissionChecker: l})
	require.NoError(t, err)
	return d
}

func TestLimiter_Dispatch(t *testing.T) {
	l := New(time.Hour, 0, nil)
	d := newDispatcher(t, l)
	ctx := context.Background()

	tests := []struct {
		name    string
		author  string
		content string
		denied  bool
	}{
		{"first run", "alice", "!ping", false},
		{"repeat within window", "alice", "!ping", true},
		{"other command", "alice", "!pong", false},
		{"other author", "bob", "!ping", false},
		{"same command in chain", "carol", "!ping > ping", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Dispatch(ctx, command.Message{Content: tt.content, Author: tt.author})
			if tt.denied {
				require.ErrorIs(t, err, command.ErrPermissionDenied)
				assert.Equal(t, command.CodePermissionDenied, command.Code(err))
				return
			}
			require.NoError(t, err)
		})
	}

	assert.Equal(t, 4, l.Tracked())

	l.Reset("alice", "ping")
	_, err := d.Dispatch(ctx, command.Message{Content: "!ping", Author: "alice"})
	assert.NoError(t, err)
}

func TestLimiter_WindowExpires(t *testing.T) {
	l := New(20*time.Millisecond, 0, nil)
	cmd := &command.Command{Name: "ping"}
	msg := command.Message{Author: "alice"}

	require.True(t, l.HasPermission(context.Background(), msg, cmd))
	require.False(t, l.HasPermission(context.Background(), msg, cmd))

	assert.Eventually(t, func() bool {
		return l.HasPermission(context.Background(), msg, cmd)
	}, time.Second, 5*time.Millisecond)
}

func TestLimiter_MaxTracked(t *testing.T) {
	l := New(time.Hour, 2, nil)
	ctx := context.Background()

	for _, author := range []string{"a", "b", "c"} {
		assert.True(t, l.HasPermission(ctx, command.Message{Author: author}, &command.Command{Name: "ping"}))
	}
	assert.Equal(t, 2, l.Tracked())
	assert.Equal(t, time.Hour, l.Window())
}
