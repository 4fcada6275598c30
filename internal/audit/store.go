// ============================================================================
// nic - Chat-Kommando-Framework
// ============================================================================
//
// Package:     audit
// Description: SQLite-backed audit trail of command invocations
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/msto63/nic/pkg/core/logging"
	"github.com/msto63/nic/pkg/nic/command"
)

// Status of a recorded invocation
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// Record is one audited invocation
type Record struct {
	ID         string            `json:"id"`
	Timestamp  time.Time         `json:"timestamp"`
	Author     string            `json:"author,omitempty"`
	Channel    string            `json:"channel,omitempty"`
	Command    string            `json:"command"`
	Identifier string            `json:"identifier"`
	Args       map[string]string `json:"args,omitempty"`
	Status     Status            `json:"status"`
	Code       string            `json:"code,omitempty"`
	Error      string            `json:"error,omitempty"`
	Duration   time.Duration     `json:"duration"`
}

// Filter restricts Query results
type Filter struct {
	Command string
	Author  string
	Status  Status
	Since   time.Time
	Limit   int
}

// Config holds configuration for the store
type Config struct {
	Path   string
	Logger *zap.Logger
}

// DefaultConfig returns the default store configuration
func DefaultConfig() Config {
	return Config{
		Path: "./data/audit.db",
	}
}

// Store persists invocations in SQLite. It implements command.AuditLogger.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	logger *zap.Logger
}

var _ command.AuditLogger = (*Store)(nil)

// Open opens or creates the audit database
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		cfg.Path = DefaultConfig().Path
	}

	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{
		db:     db,
		logger: logging.Component(cfg.Logger, "audit"),
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS invocations (
		id TEXT PRIMARY KEY,
		timestamp DATETIME NOT NULL,
		author TEXT,
		channel TEXT,
		command TEXT NOT NULL,
		identifier TEXT NOT NULL,
		args TEXT,
		status TEXT NOT NULL,
		code TEXT,
		error TEXT,
		duration_ms INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_invocations_timestamp ON invocations(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_invocations_command ON invocations(command);
	CREATE INDEX IF NOT EXISTS idx_invocations_status ON invocations(status);
	`

	_, err := s.db.Exec(schema)
	return err
}

// LogExecution records an invocation. Storage errors are logged, never
// returned to the dispatcher.
func (s *Store) LogExecution(ctx context.Context, inv *command.Invocation, result *command.Result, err error) {
	if err := s.Insert(ctx, newRecord(inv, result, err)); err != nil {
		s.logger.Warn("Failed to record invocation",
			zap.String("invocationId", inv.ID),
			zap.Error(err))
	}
}

func newRecord(inv *command.Invocation, result *command.Result, err error) *Record {
	rec := &Record{
		ID:         inv.ID,
		Timestamp:  time.Now(),
		Author:     inv.Message.Author,
		Channel:    inv.Message.Channel,
		Identifier: inv.Identifier,
		Status:     StatusOK,
	}
	if inv.Command != nil {
		rec.Command = inv.Command.Name
	}
	if len(inv.Args) > 0 {
		rec.Args = make(map[string]string, len(inv.Args))
		for _, b := range inv.Args {
			rec.Args[b.Name] = fmt.Sprint(b.Value)
		}
	}
	if result != nil {
		rec.Duration = result.Duration
	}
	if err != nil {
		rec.Status = StatusFailed
		rec.Code = command.Code(err)
		rec.Error = err.Error()
	}
	return rec
}

// Insert stores a record
func (s *Store) Insert(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	var argsJSON []byte
	if rec.Args != nil {
		argsJSON, _ = json.Marshal(rec.Args)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invocations (id, timestamp, author, channel, command, identifier, args, status, code, error, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Timestamp.UTC(), rec.Author, rec.Channel, rec.Command, rec.Identifier,
		argsJSON, rec.Status, rec.Code, rec.Error, rec.Duration.Milliseconds())

	if err != nil {
		return fmt.Errorf("failed to insert invocation: %w", err)
	}
	return nil
}

// Query returns records matching filter, newest first
func (s *Store) Query(ctx context.Context, filter Filter) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, timestamp, author, channel, command, identifier, args, status, code, error, duration_ms
		FROM invocations WHERE 1=1`
	var params []any

	if filter.Command != "" {
		query += " AND command = ?"
		params = append(params, filter.Command)
	}
	if filter.Author != "" {
		query += " AND author = ?"
		params = append(params, filter.Author)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		params = append(params, filter.Status)
	}
	if !filter.Since.IsZero() {
		query += " AND timestamp >= ?"
		params = append(params, filter.Since.UTC())
	}

	query += " ORDER BY timestamp DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		params = append(params, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invocations: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var (
			rec                                   Record
			author, channel, argsJSON, code, text sql.NullString
			durationMS                            int64
		)

		if err := rows.Scan(&rec.ID, &rec.Timestamp, &author, &channel, &rec.Command,
			&rec.Identifier, &argsJSON, &rec.Status, &code, &text, &durationMS); err != nil {
			return nil, fmt.Errorf("failed to scan invocation: %w", err)
		}

		rec.Author = author.String
		rec.Channel = channel.String
		rec.Code = code.String
		rec.Error = text.String
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		if argsJSON.Valid && argsJSON.String != "" {
			if err := json.Unmarshal([]byte(argsJSON.String), &rec.Args); err != nil {
				return nil, fmt.Errorf("invocation %s: invalid args: %w", rec.ID, err)
			}
		}

		records = append(records, &rec)
	}

	return records, rows.Err()
}

// Count returns the number of stored invocations
func (s *Store) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM invocations`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count invocations: %w", err)
	}
	return total, nil
}

// Stats returns the number of invocations per command
func (s *Store) Stats(ctx context.Context) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT command, COUNT(*) FROM invocations GROUP BY command`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int64)
	for rows.Next() {
		var name string
		var count int64
		if err := rows.Scan(&name, &count); err != nil {
			return nil, err
		}
		stats[name] = count
	}
	return stats, rows.Err()
}

// Prune removes records older than the given duration
func (s *Store) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan).UTC()

	result, err := s.db.ExecContext(ctx, `DELETE FROM invocations WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune invocations: %w", err)
	}
	return result.RowsAffected()
}

// PingContext checks the database connection
func (s *Store) PingContext(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}
