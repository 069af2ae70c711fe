// Package sqlite provides a queryable activity store backed by
// modernc.org/sqlite. It is the audit backend behind `oslctl audit query`.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/airsstack/airssys-osl/pkg/audit"
)

type Store struct {
	db *sql.DB
}

var (
	_ audit.Logger  = (*Store)(nil)
	_ audit.Querier = (*Store)(nil)
)

// Open opens (creating if necessary) the activity database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS activity (
			id TEXT PRIMARY KEY,
			ts_unix_ns INTEGER NOT NULL,
			operation_id TEXT NOT NULL,
			operation_type TEXT NOT NULL,
			execution_id TEXT,
			principal TEXT,
			session_id TEXT,
			status TEXT NOT NULL,
			error TEXT,
			duration_ms INTEGER NOT NULL,
			security_relevant INTEGER NOT NULL DEFAULT 0,
			payload_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_activity_principal_ts ON activity(principal, ts_unix_ns);`,
		`CREATE INDEX IF NOT EXISTS idx_activity_session_ts ON activity(session_id, ts_unix_ns);`,
		`CREATE INDEX IF NOT EXISTS idx_activity_type_ts ON activity(operation_type, ts_unix_ns);`,
		`CREATE INDEX IF NOT EXISTS idx_activity_status ON activity(status);`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite migrate: %w", err)
		}
	}
	return nil
}

// Log inserts one activity record. A missing ID or timestamp is stamped
// here so callers can hand records straight from the logging middleware.
func (s *Store) Log(ctx context.Context, entry audit.ActivityLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	b, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal activity: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO activity(
			id, ts_unix_ns, operation_id, operation_type, execution_id,
			principal, session_id, status, error, duration_ms,
			security_relevant, payload_json
		) VALUES(?,?,?,?,?,?,?,?,?,?,?,?);`,
		entry.ID,
		entry.Timestamp.UTC().UnixNano(),
		entry.OperationID,
		string(entry.OperationType),
		nullable(entry.ExecutionID),
		nullable(entry.Principal),
		nullable(entry.SessionID),
		string(entry.Status),
		nullable(entry.Error),
		entry.DurationMS,
		boolToInt(entry.SecurityRelevant),
		string(b),
	)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// Query returns the records matching q, newest first unless q.Asc.
func (s *Store) Query(ctx context.Context, q audit.Query) ([]audit.ActivityLog, error) {
	where := []string{"1=1"}
	var args []any

	if q.Principal != "" {
		where = append(where, "principal = ?")
		args = append(args, q.Principal)
	}
	if q.SessionID != "" {
		where = append(where, "session_id = ?")
		args = append(args, q.SessionID)
	}
	if q.OperationType != "" {
		where = append(where, "operation_type = ?")
		args = append(args, q.OperationType)
	}
	if q.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(q.Status))
	}
	if q.Since != nil {
		where = append(where, "ts_unix_ns >= ?")
		args = append(args, q.Since.UTC().UnixNano())
	}
	if q.Until != nil {
		where = append(where, "ts_unix_ns <= ?")
		args = append(args, q.Until.UTC().UnixNano())
	}
	if q.SecurityOnly {
		where = append(where, "security_relevant = 1")
	}

	order := "DESC"
	if q.Asc {
		order = "ASC"
	}
	limit := q.Limit
	if limit <= 0 || limit > 5000 {
		limit = 200
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT payload_json FROM activity WHERE `+strings.Join(where, " AND ")+
			` ORDER BY ts_unix_ns `+order+` LIMIT ? OFFSET ?`,
		append(args, limit, offset)...,
	)
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}
	defer rows.Close()

	var out []audit.ActivityLog
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		var entry audit.ActivityLog
		if err := json.Unmarshal([]byte(payload), &entry); err != nil {
			return nil, fmt.Errorf("unmarshal activity: %w", err)
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query activity rows: %w", err)
	}
	return out, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
