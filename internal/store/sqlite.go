// ABOUTME: SQLite implementation of the InvocationStore interface using modernc.org/sqlite
// ABOUTME: Records dispatched tool calls with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the InvocationStore interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	if path != ":memory:" {
		// Ensure parent directory exists
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS invocations (
			id          TEXT PRIMARY KEY,
			call_id     TEXT NOT NULL,
			tool        TEXT NOT NULL,
			status      TEXT NOT NULL,
			error       TEXT,
			duration_ms INTEGER NOT NULL,
			created_at  TEXT NOT NULL,

			CHECK (status IN ('ok', 'error'))
		);

		CREATE INDEX IF NOT EXISTS idx_invocations_tool
			ON invocations(tool);

		CREATE INDEX IF NOT EXISTS idx_invocations_created
			ON invocations(created_at);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}

	return nil
}

// SaveInvocation stores one tool invocation record.
func (s *SQLiteStore) SaveInvocation(ctx context.Context, inv *Invocation) error {
	query := `
		INSERT INTO invocations (id, call_id, tool, status, error, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		inv.ID,
		inv.CallID,
		inv.Tool,
		inv.Status,
		nullString(inv.Error),
		inv.DurationMs,
		inv.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting invocation: %w", err)
	}

	s.logger.Debug("saved invocation",
		"id", inv.ID,
		"tool", inv.Tool,
		"status", inv.Status,
		"duration_ms", inv.DurationMs,
	)
	return nil
}

// RecentInvocations retrieves the most recent invocation records, newest first.
func (s *SQLiteStore) RecentInvocations(ctx context.Context, limit int) ([]*Invocation, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, call_id, tool, status, error, duration_ms, created_at
		FROM invocations
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying invocations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var invs []*Invocation
	for rows.Next() {
		inv, err := scanInvocation(rows)
		if err != nil {
			return nil, err
		}
		invs = append(invs, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invocation rows: %w", err)
	}

	return invs, nil
}

// Stats returns per-tool call and error counts.
func (s *SQLiteStore) Stats(ctx context.Context) ([]*ToolStats, error) {
	query := `
		SELECT tool,
		       COUNT(*) as calls,
		       COALESCE(SUM(CASE WHEN status = 'error' THEN 1 ELSE 0 END), 0) as errors
		FROM invocations
		GROUP BY tool
		ORDER BY tool ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying invocation stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stats []*ToolStats
	for rows.Next() {
		var st ToolStats
		if err := rows.Scan(&st.Tool, &st.Calls, &st.Errors); err != nil {
			return nil, fmt.Errorf("scanning stats row: %w", err)
		}
		stats = append(stats, &st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stats rows: %w", err)
	}

	return stats, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// scanInvocation scans a single invocation row.
func scanInvocation(rows *sql.Rows) (*Invocation, error) {
	var inv Invocation
	var errText sql.NullString
	var createdAtStr string

	err := rows.Scan(
		&inv.ID,
		&inv.CallID,
		&inv.Tool,
		&inv.Status,
		&errText,
		&inv.DurationMs,
		&createdAtStr,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning invocation row: %w", err)
	}

	if errText.Valid {
		inv.Error = errText.String
	}

	inv.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &inv, nil
}

// nullString converts an empty string to a NULL-able value.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Ensure SQLiteStore implements InvocationStore interface.
var _ InvocationStore = (*SQLiteStore)(nil)
