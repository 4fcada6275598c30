// ============================================================================
// nic - Chat-Kommando-Framework
// ============================================================================
//
// Package:     catalog
// Description: YAML command catalog with templated replies
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/msto63/nic/pkg/nic/args"
	"github.com/msto63/nic/pkg/nic/command"
)

var (
	// ErrInvalidCatalog is returned for catalog files that do not decode or
	// whose entries do not compile.
	ErrInvalidCatalog = errors.New("invalid command catalog")
)

// File is the on-disk catalog format
type File struct {
	Commands []Entry `yaml:"commands" json:"commands" jsonschema:"description=Commands served by the catalog"`
}

// Entry declares one command with a templated reply
type Entry struct {
	Identifiers []string    `yaml:"identifiers" json:"identifiers" jsonschema:"minItems=1,description=Command name followed by its aliases"`
	Description string      `yaml:"description,omitempty" json:"description,omitempty"`
	Arguments   []args.Spec `yaml:"arguments,omitempty" json:"arguments,omitempty"`
	Reply       string      `yaml:"reply" json:"reply" jsonschema:"description=Go text/template rendered with the bound arguments"`
}

// Catalog is a decoded and validated command catalog
type Catalog struct {
	Path     string    // Source file, empty when decoded from a reader
	LoadedAt time.Time // Time of decoding
	entries  []Entry
	defs     []command.Definition
}

// Load reads and validates a catalog file
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	c, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	c.Path = path
	return c, nil
}

// Decode reads a catalog from r. Unknown fields are rejected.
func Decode(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file File
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	c := &Catalog{
		LoadedAt: time.Now(),
		entries:  file.Commands,
		defs:     make([]command.Definition, 0, len(file.Commands)),
	}

	for i, entry := range file.Commands {
		def, err := entry.definition()
		if err != nil {
			return nil, fmt.Errorf("%w: command %d (%s): %v", ErrInvalidCatalog, i+1, entry.name(), err)
		}
		if _, err := def.Compile(); err != nil {
			return nil, fmt.Errorf("%w: command %d (%s): %v", ErrInvalidCatalog, i+1, entry.name(), err)
		}
		c.defs = append(c.defs, def)
	}

	return c, nil
}

// Definitions returns the command definitions of the catalog
func (c *Catalog) Definitions() []command.Definition {
	defs := make([]command.Definition, len(c.defs))
	copy(defs, c.defs)
	return defs
}

// Entries returns the raw catalog entries
func (c *Catalog) Entries() []Entry {
	entries := make([]Entry, len(c.entries))
	copy(entries, c.entries)
	return entries
}

// Len returns the number of commands in the catalog
func (c *Catalog) Len() int {
	return len(c.entries)
}

func (e Entry) name() string {
	if len(e.Identifiers) == 0 {
		return "?"
	}
	return e.Identifiers[0]
}

// definition builds the command definition whose handler renders the reply
func (e Entry) definition() (command.Definition, error) {
	if strings.TrimSpace(e.Reply) == "" {
		return command.Definition{}, errors.New("reply is empty")
	}

	tmpl, err := parseReply(e.name(), e.Reply)
	if err != nil {
		return command.Definition{}, err
	}

	return command.Definition{
		Identifiers: e.Identifiers,
		Description: e.Description,
		Arguments:   e.Arguments,
		Handler:     tmpl.handler(),
	}, nil
}
