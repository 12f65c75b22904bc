package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/petasbytes/searchchat/conversation"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS turns (
	session_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	request_id TEXT NOT NULL DEFAULT '',
	request_name TEXT NOT NULL DEFAULT '',
	request_argument TEXT NOT NULL DEFAULT '',
	result_for TEXT NOT NULL DEFAULT '',
	is_error INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	PRIMARY KEY (session_id, seq)
);
`

// SQLiteStore keeps transcripts in a SQLite database, one row per Turn.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens the database at path and applies the schema. Creates the file if missing.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Load(ctx context.Context, id string) (Transcript, error) {
	if err := checkID(id); err != nil {
		return Transcript{}, err
	}
	t := Transcript{SessionID: id}

	var created, updated string
	err := s.db.QueryRowContext(ctx, `SELECT created_at, updated_at FROM sessions WHERE id = ?`, id).Scan(&created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return t, nil
	}
	if err != nil {
		return Transcript{}, err
	}
	t.CreatedAt = parseTime(created)
	t.UpdatedAt = parseTime(updated)

	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content, request_id, request_name, request_argument, result_for, is_error, created_at
		 FROM turns WHERE session_id = ? ORDER BY seq ASC`, id)
	if err != nil {
		return Transcript{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var turn conversation.Turn
		var role, at string
		if err := rows.Scan(&role, &turn.Content, &turn.Request.ID, &turn.Request.Name, &turn.Request.Argument,
			&turn.ResultFor, &turn.IsError, &at); err != nil {
			return Transcript{}, err
		}
		turn.Role = conversation.Role(role)
		turn.CreatedAt = parseTime(at)
		t.Turns = append(t.Turns, turn)
	}
	return t, rows.Err()
}

// Save upserts the session row and appends the Turns not stored yet. A
// transcript shorter than what is stored replaces it entirely.
func (s *SQLiteStore) Save(ctx context.Context, t Transcript) error {
	if err := checkID(t.SessionID); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (id, created_at, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at`,
		t.SessionID, formatTime(t.CreatedAt), formatTime(t.UpdatedAt)); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	var stored int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM turns WHERE session_id = ?`, t.SessionID).Scan(&stored); err != nil {
		return err
	}
	if stored > len(t.Turns) {
		if _, err := tx.ExecContext(ctx, `DELETE FROM turns WHERE session_id = ?`, t.SessionID); err != nil {
			return err
		}
		stored = 0
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO turns (session_id, seq, role, content, request_id, request_name, request_argument, result_for, is_error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i := stored; i < len(t.Turns); i++ {
		turn := t.Turns[i]
		if _, err := stmt.ExecContext(ctx, t.SessionID, i, string(turn.Role), turn.Content,
			turn.Request.ID, turn.Request.Name, turn.Request.Argument, turn.ResultFor, turn.IsError,
			formatTime(turn.CreatedAt)); err != nil {
			return fmt.Errorf("insert turn %d: %w", i, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM turns WHERE session_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
