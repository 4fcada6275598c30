package catalog

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msto63/nic/pkg/nic/command"
)

const sampleCatalog = `
commands:
  - identifiers: [echo, say]
    description: Repeats the text
    arguments:
      - signature: text
      - signature: "[times]"
        kind: string
        default: "1"
    reply: '{{ repeat .times .text }}'

  - identifiers: [greet]
    arguments:
      - signature: "[name]"
        default: stranger
    reply: 'Hallo {{ .name }}, ich bin {{ command }} für {{ author }} in {{ channel }}'

  - identifiers: [shout]
    arguments:
      - signature: "[text]"
        default: ""
    reply: '{{ if .text }}{{ upper .text }}{{ else }}{{ upper previous }}{{ end }}'

  - identifiers: [all]
    arguments:
      - signature: a
      - signature: b
    reply: '{{ args }}'
`

func newDispatcher(t *testing.T, c *Catalog) *command.Dispatcher {
	t.Helper()

	r := command.NewRegistry(command.RegistryOptions{})
	require.NoError(t, r.Replace(c.Definitions()))

	d, err := command.NewDispatcher(r, command.Options{})
	require.NoError(t, err)
	return d
}

func TestDecode(t *testing.T) {
	c, err := Decode(strings.NewReader(sampleCatalog))
	require.NoError(t, err)

	assert.Equal(t, 4, c.Len())
	assert.Len(t, c.Definitions(), 4)
	assert.Equal(t, []string{"echo", "say"}, c.Entries()[0].Identifiers)
	assert.Empty(t, c.Path)
	assert.False(t, c.LoadedAt.IsZero())
}

func TestDecode_Empty(t *testing.T) {
	c, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"Malformed YAML", "commands: [\n"},
		{"Unknown field", "commands:\n  - identifiers: [a]\n    reply: x\n    color: red\n"},
		{"Empty reply", "commands:\n  - identifiers: [a]\n    reply: ' '\n"},
		{"Broken template", "commands:\n  - identifiers: [a]\n    reply: '{{ .x '\n"},
		{"Unknown template function", "commands:\n  - identifiers: [a]\n    reply: '{{ explode }}'\n"},
		{"No identifiers", "commands:\n  - reply: x\n"},
		{"Optional without default", "commands:\n  - identifiers: [a]\n    arguments:\n      - signature: '[x]'\n    reply: x\n"},
		{"Unknown kind", "commands:\n  - identifiers: [a]\n    arguments:\n      - signature: x\n        kind: number\n    reply: x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.content))
			assert.ErrorIs(t, err, ErrInvalidCatalog)
		})
	}
}

func TestCatalog_Replies(t *testing.T) {
	c, err := Decode(strings.NewReader(sampleCatalog))
	require.NoError(t, err)
	d := newDispatcher(t, c)

	tests := []struct {
		name     string
		content  string
		expected []string
	}{
		{"Default repeat", "!echo hi", []string{"hi"}},
		{"Explicit repeat", `!say "ab " 3`, []string{"ab ab ab "}},
		{"Default argument", "!greet", []string{"Hallo stranger, ich bin greet für alice in #general"}},
		{"Chained previous output", "!echo laut > shout", []string{"laut", "LAUT"}},
		{"All arguments", "!all x y", []string{"x y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := d.Dispatch(context.Background(), command.Message{
				Content: tt.content,
				Author:  "alice",
				Channel: "#general",
			})
			require.NoError(t, err)

			got := make([]string, len(results))
			for i, r := range results {
				got[i] = r.Output
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCatalog_RepeatRejectsBadCount(t *testing.T) {
	c, err := Decode(strings.NewReader(sampleCatalog))
	require.NoError(t, err)
	d := newDispatcher(t, c)

	for _, content := range []string{"!echo x many", "!echo x 1000", "!echo x -1"} {
		_, err := d.Dispatch(context.Background(), command.Message{Content: content})
		assert.ErrorIs(t, err, command.ErrHandlerFailed, content)
	}
}

func TestCatalog_MissingKeyFails(t *testing.T) {
	c, err := Decode(strings.NewReader("commands:\n  - identifiers: [typo]\n    reply: '{{ .missing }}'\n"))
	require.NoError(t, err)
	d := newDispatcher(t, c)

	_, err = d.Dispatch(context.Background(), command.Message{Content: "!typo"})
	assert.ErrorIs(t, err, command.ErrHandlerFailed)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commands.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, c.Path)
	assert.Equal(t, 4, c.Len())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("commands: 3\n"), 0644))
	_, err = Load(path)
	assert.ErrorIs(t, err, ErrInvalidCatalog)
	assert.Contains(t, err.Error(), "commands.yaml")
}

func TestSchema(t *testing.T) {
	data, err := SchemaJSON()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, SchemaID, doc["$id"])
	assert.Equal(t, "nic command catalog", doc["title"])

	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "commands")

	assert.NotContains(t, string(data), "Strategy", "runtime-only fields are not part of the format")
	assert.Contains(t, string(data), "signature")
	assert.Contains(t, string(data), "reply")
}
