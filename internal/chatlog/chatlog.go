// Package chatlog records every turn to an append-only SQLite table. The
// log is a pure observer of the pipeline: nothing reads it back at runtime
// and a failed write never fails the turn.
package chatlog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/einfachManu/marine-snow-tutor/internal/models"
)

// Entry is one logged message, user or assistant.
type Entry struct {
	SessionID string
	Turn      int
	Role      string // "user" or "assistant"
	Message   string
	Level     models.StyleLevel
	Intent    models.Intent
	CreatedAt time.Time
}

// Sink accepts chat log entries.
type Sink interface {
	Record(ctx context.Context, e Entry) error
	Close() error
}

// Logger is a SQLite-backed Sink.
type Logger struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (and if necessary creates) the chat log database at path.
func Open(path string, logger *slog.Logger) (*Logger, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening chat log %s: %w", path, err)
	}

	l := &Logger{db: db, logger: logger}
	if err := l.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating chat log %s: %w", path, err)
	}

	logger.Info("chat log opened", "path", path)
	return l, nil
}

func (l *Logger) migrate() error {
	_, err := l.db.Exec(`
CREATE TABLE IF NOT EXISTS chat_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT    NOT NULL,
	turn        INTEGER NOT NULL,
	role        TEXT    NOT NULL,
	message     TEXT    NOT NULL,
	style_level INTEGER NOT NULL,
	intent      TEXT,
	created_at  TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chat_log_session ON chat_log(session_id);
`)
	return err
}

// Record appends one entry.
func (l *Logger) Record(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := l.db.ExecContext(ctx, `
INSERT INTO chat_log (session_id, turn, role, message, style_level, intent, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.Turn, e.Role, e.Message, int(e.Level), string(e.Intent),
		e.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("recording chat log entry: %w", err)
	}
	return nil
}

// Count returns the number of entries for a session, or all entries when
// sessionID is empty.
func (l *Logger) Count(ctx context.Context, sessionID string) (int64, error) {
	var n int64
	var err error
	if sessionID == "" {
		err = l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chat_log`).Scan(&n)
	} else {
		err = l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chat_log WHERE session_id = ?`, sessionID).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("counting chat log entries: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (l *Logger) Close() error {
	return l.db.Close()
}

// Nop is a Sink that discards everything; used when logging is disabled.
type Nop struct{}

func (Nop) Record(context.Context, Entry) error { return nil }
func (Nop) Close() error                        { return nil }
