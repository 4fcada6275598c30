package console

import (
	"time"

	"github.com/msto63/nic/pkg/nic/command"
	"github.com/msto63/nic/pkg/nic/scanner"
)

// EntryKind classifies history entries
type EntryKind int

const (
	EntryInput EntryKind = iota
	EntryOutput
	EntryIgnored
	EntryError
	EntryTokens
)

// Entry is one line block in the console history
type Entry struct {
	Kind      EntryKind
	Text      string
	Command   string        // Command name for outputs
	Code      string        // Error code for errors and ignored messages
	Duration  time.Duration // Handler duration for outputs
	Timestamp time.Time
}

// dispatchedMsg carries the outcome of one dispatched line
type dispatchedMsg struct {
	results []*command.Result
	tokens  []scanner.Token
	err     error
}
