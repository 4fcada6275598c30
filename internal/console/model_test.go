package console

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msto63/nic/pkg/nic/args"
	"github.com/msto63/nic/pkg/nic/command"
	"github.com/msto63/nic/pkg/nic/scanner"
)

func newTestModel(t *testing.T) Model {
	t.Helper()

	r := command.NewRegistry(command.RegistryOptions{})
	r.MustRegister(command.Definition{
		Identifiers: []string{"echo"},
		Arguments:   []args.Spec{args.Required("text")},
		Handler: func(ctx context.Context, inv *command.Invocation) (string, error) {
			return inv.Args.String("text"), nil
		},
	})
	d, err := command.NewDispatcher(r, command.Options{})
	require.NoError(t, err)

	m := New(Config{Dispatcher: d})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(Model)
}

// submit types line, presses enter and feeds the dispatch result back
func submit(t *testing.T, m Model, line string) Model {
	t.Helper()

	m.input.SetValue(line)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	require.NotNil(t, cmd)
	require.True(t, m.busy)

	updated, _ = m.Update(m.dispatch(line)())
	return updated.(Model)
}

func TestConsole_Dispatch(t *testing.T) {
	m := newTestModel(t)

	tests := []struct {
		name string
		line string
		kind EntryKind
		code string
		text string
	}{
		{"Output", `!echo "hallo welt"`, EntryOutput, "", "hallo welt"},
		{"Ignored", "hallo", EntryIgnored, scanner.CodeNoPrefixMatch, ""},
		{"Error", "!echo", EntryError, args.CodeMissingArgument, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m = submit(t, m, tt.line)
			assert.False(t, m.busy)

			entries := m.Entries()
			require.GreaterOrEqual(t, len(entries), 2)
			assert.Equal(t, EntryInput, entries[len(entries)-2].Kind)
			assert.Equal(t, tt.line, entries[len(entries)-2].Text)

			last := entries[len(entries)-1]
			assert.Equal(t, tt.kind, last.Kind)
			assert.Equal(t, tt.code, last.Code)
			if tt.text != "" {
				assert.Equal(t, tt.text, last.Text)
				assert.Equal(t, "echo", last.Command)
			}
		})
	}

	assert.Contains(t, m.View(), "hallo welt")
}

func TestConsole_TokenView(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	m = updated.(Model)
	assert.True(t, m.tokens)

	m = submit(t, m, "!echo hi")

	entries := m.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, EntryTokens, entries[1].Kind)
	assert.Equal(t, "PREFIX(!) WORD(echo) WORD(hi)", entries[1].Text)
}

func TestConsole_EmptyLineIgnored(t *testing.T) {
	m := newTestModel(t)

	m.input.SetValue("   ")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	assert.Nil(t, cmd)
	assert.False(t, m.busy)
	assert.Empty(t, m.Entries())
}

func TestConsole_History(t *testing.T) {
	m := newTestModel(t)
	m = submit(t, m, "!echo a")
	m = submit(t, m, "!echo b")

	m.input.SetValue("draft")

	up := func() {
		updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
		m = updated.(Model)
	}
	down := func() {
		updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
		m = updated.(Model)
	}

	up()
	assert.Equal(t, "!echo b", m.input.Value())
	up()
	assert.Equal(t, "!echo a", m.input.Value())
	up()
	assert.Equal(t, "!echo a", m.input.Value())
	down()
	assert.Equal(t, "!echo b", m.input.Value())
	down()
	assert.Equal(t, "draft", m.input.Value())
}

func TestConsole_ClearAndQuit(t *testing.T) {
	m := newTestModel(t)
	m = submit(t, m, "!echo a")
	require.NotEmpty(t, m.Entries())

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	m = updated.(Model)
	assert.Empty(t, m.Entries())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestConsole_ViewBeforeResize(t *testing.T) {
	m := New(Config{})
	assert.Equal(t, "Lade Konsole...", m.View())
	assert.True(t, strings.HasSuffix(m.input.Placeholder, "!help"))
}
